package models

// Capability names consulted by the workflow engine. The mapping from roles to
// capabilities lives here so call sites never re-derive permissions from raw
// role strings.
type Capability string

const (
	// advance a case to the immediate next stage
	CapabilityCasesAdvance Capability = "cases:advance"
	// revert a case or jump over stages (privileged)
	CapabilityCasesOverride Capability = "cases:override"
	// open a new fiscal year for all eligible clients
	CapabilityYearsOpen Capability = "years:open"
	// view the cross-case dashboard
	CapabilityDashboardView Capability = "dashboard:view"
	// manage client records
	CapabilityClientsManage Capability = "clients:manage"
	// manage firm users
	CapabilityUsersManage Capability = "users:manage"
)

var roleCapabilities = map[UserRole][]Capability{
	UserRoleAdmin: {
		CapabilityCasesAdvance,
		CapabilityCasesOverride,
		CapabilityYearsOpen,
		CapabilityDashboardView,
		CapabilityClientsManage,
		CapabilityUsersManage,
	},
	UserRolePartner: {
		CapabilityCasesAdvance,
		CapabilityCasesOverride,
		CapabilityYearsOpen,
		CapabilityDashboardView,
		CapabilityClientsManage,
	},
	UserRoleStaff: {
		CapabilityCasesAdvance,
		CapabilityDashboardView,
	},
}

func RoleHasCapability(role UserRole, capability Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// RoleIsPrivileged reports whether the role may jump or revert case stages.
// This is the single place the workflow's "privileged actor" bit comes from.
func RoleIsPrivileged(role UserRole) bool {
	return RoleHasCapability(role, CapabilityCasesOverride)
}
