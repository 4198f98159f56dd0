package workflow

import (
	"bitbucket.org/mmdatafocus/balances_backend/models"
)

// StageInfo carries per-stage metadata the engine needs beyond the ordering
// itself: the display label, the capability required to move a case INTO the
// stage, and the case column owned by the stage. StampOnEntry says whether
// the column is written when the stage is entered forward; a revert below the
// stage always clears the column regardless.
type StageInfo struct {
	Stage           models.BalanceStage
	Label           string
	Capability      models.Capability
	TimestampColumn string
	StampOnEntry    bool
}

// auditor_confirmed_at belongs to AssignedToAuditor but is written by the
// confirmation action, not by entering the stage.
var stageCatalog = []StageInfo{
	{models.BalanceStageOpened, "Opened", models.CapabilityCasesAdvance, "", false},
	{models.BalanceStageMaterialsReceived, "Materials Received", models.CapabilityCasesAdvance, "materials_received_at", true},
	{models.BalanceStageAssignedToAuditor, "Assigned To Auditor", models.CapabilityCasesAdvance, "auditor_confirmed_at", false},
	{models.BalanceStageInProgress, "In Progress", models.CapabilityCasesAdvance, "work_started_at", true},
	{models.BalanceStageWorkCompleted, "Work Completed", models.CapabilityCasesAdvance, "work_completed_at", true},
	{models.BalanceStageOfficeApproved, "Office Approved", models.CapabilityCasesOverride, "office_approved_at", true},
	{models.BalanceStageReportTransmitted, "Report Transmitted", models.CapabilityCasesOverride, "report_transmitted_at", true},
	{models.BalanceStageAdvancesUpdated, "Advances Updated", models.CapabilityCasesAdvance, "advances_updated_at", true},
}

func StageIndex(stage models.BalanceStage) int {
	return models.BalanceStageIndex(stage)
}

func AllStages() []models.BalanceStage {
	return models.AllBalanceStages()
}

func StageLabel(stage models.BalanceStage) string {
	idx := StageIndex(stage)
	if idx < 0 {
		return string(stage)
	}
	return stageCatalog[idx].Label
}

func stageInfo(stage models.BalanceStage) (StageInfo, bool) {
	idx := StageIndex(stage)
	if idx < 0 {
		return StageInfo{}, false
	}
	return stageCatalog[idx], true
}

// NextStage returns the stage directly after the given one, or false when the
// case is already at the final stage.
func NextStage(stage models.BalanceStage) (models.BalanceStage, bool) {
	idx := StageIndex(stage)
	if idx < 0 || idx+1 >= len(stageCatalog) {
		return "", false
	}
	return stageCatalog[idx+1].Stage, true
}
