package models

import "testing"

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		role       UserRole
		capability Capability
		want       bool
	}{
		{UserRoleAdmin, CapabilityCasesOverride, true},
		{UserRoleAdmin, CapabilityUsersManage, true},
		{UserRolePartner, CapabilityCasesOverride, true},
		{UserRolePartner, CapabilityUsersManage, false},
		{UserRoleStaff, CapabilityCasesAdvance, true},
		{UserRoleStaff, CapabilityCasesOverride, false},
		{UserRoleStaff, CapabilityYearsOpen, false},
		{UserRole("X"), CapabilityCasesAdvance, false},
	}
	for _, tc := range cases {
		if got := RoleHasCapability(tc.role, tc.capability); got != tc.want {
			t.Errorf("RoleHasCapability(%s, %s): expected %v, got %v", tc.role, tc.capability, tc.want, got)
		}
	}
}

func TestRoleIsPrivileged(t *testing.T) {
	if !RoleIsPrivileged(UserRoleAdmin) || !RoleIsPrivileged(UserRolePartner) {
		t.Error("admins and partners are privileged")
	}
	if RoleIsPrivileged(UserRoleStaff) {
		t.Error("staff are not privileged")
	}
}
