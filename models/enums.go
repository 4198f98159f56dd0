package models

// BalanceStage is the lifecycle state of an annual balance case.
// The zero-th stage is the state a case is created in by the year opener;
// the last stage marks the case as done for the year.
type BalanceStage string

const (
	BalanceStageOpened            BalanceStage = "Opened"
	BalanceStageMaterialsReceived BalanceStage = "MaterialsReceived"
	BalanceStageAssignedToAuditor BalanceStage = "AssignedToAuditor"
	BalanceStageInProgress        BalanceStage = "InProgress"
	BalanceStageWorkCompleted     BalanceStage = "WorkCompleted"
	BalanceStageOfficeApproved    BalanceStage = "OfficeApproved"
	BalanceStageReportTransmitted BalanceStage = "ReportTransmitted"
	BalanceStageAdvancesUpdated   BalanceStage = "AdvancesUpdated"
)

// balanceStageOrder is the single source of truth for stage ordering.
// Every timestamp/revert computation walks this list; do not reorder.
var balanceStageOrder = []BalanceStage{
	BalanceStageOpened,
	BalanceStageMaterialsReceived,
	BalanceStageAssignedToAuditor,
	BalanceStageInProgress,
	BalanceStageWorkCompleted,
	BalanceStageOfficeApproved,
	BalanceStageReportTransmitted,
	BalanceStageAdvancesUpdated,
}

// AllBalanceStages returns the ordered stage list (copy; callers may not mutate ordering).
func AllBalanceStages() []BalanceStage {
	out := make([]BalanceStage, len(balanceStageOrder))
	copy(out, balanceStageOrder)
	return out
}

// BalanceStageIndex returns the order index of a stage, or -1 for unknown values.
func BalanceStageIndex(s BalanceStage) int {
	for i, stage := range balanceStageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

func IsValidBalanceStage(s BalanceStage) bool {
	return BalanceStageIndex(s) >= 0
}

type EntityType string

const (
	EntityTypeCompany      EntityType = "Company"
	EntityTypePartnership  EntityType = "Partnership"
	EntityTypeSelfEmployed EntityType = "SelfEmployed"
	EntityTypeNonProfit    EntityType = "NonProfit"
)

type UserRole string

const (
	UserRoleAdmin   UserRole = "A"
	UserRolePartner UserRole = "P"
	UserRoleStaff   UserRole = "S"
)

func (r UserRole) DisplayName() string {
	switch r {
	case UserRoleAdmin:
		return "Admin"
	case UserRolePartner:
		return "Partner"
	case UserRoleStaff:
		return "Staff"
	}
	return string(r)
}
