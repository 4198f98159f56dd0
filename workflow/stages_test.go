package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/balances_backend/models"
)

func TestStageOrder(t *testing.T) {
	want := []models.BalanceStage{
		models.BalanceStageOpened,
		models.BalanceStageMaterialsReceived,
		models.BalanceStageAssignedToAuditor,
		models.BalanceStageInProgress,
		models.BalanceStageWorkCompleted,
		models.BalanceStageOfficeApproved,
		models.BalanceStageReportTransmitted,
		models.BalanceStageAdvancesUpdated,
	}

	got := AllStages()
	if len(got) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(got))
	}
	for i, stage := range want {
		if got[i] != stage {
			t.Errorf("stage %d: expected %s, got %s", i, stage, got[i])
		}
		if StageIndex(stage) != i {
			t.Errorf("StageIndex(%s): expected %d, got %d", stage, i, StageIndex(stage))
		}
	}
}

func TestStageIndexUnknown(t *testing.T) {
	if idx := StageIndex("Bogus"); idx != -1 {
		t.Fatalf("expected -1 for unknown stage, got %d", idx)
	}
}

func TestNextStage(t *testing.T) {
	stages := AllStages()
	for i := 0; i < len(stages)-1; i++ {
		next, ok := NextStage(stages[i])
		if !ok {
			t.Fatalf("NextStage(%s): expected ok", stages[i])
		}
		if next != stages[i+1] {
			t.Errorf("NextStage(%s): expected %s, got %s", stages[i], stages[i+1], next)
		}
	}

	if _, ok := NextStage(models.BalanceStageAdvancesUpdated); ok {
		t.Error("expected no next stage after the final stage")
	}
	if _, ok := NextStage("Bogus"); ok {
		t.Error("expected no next stage for an unknown stage")
	}
}

func TestStageTimestampOwnership(t *testing.T) {
	wantColumns := map[models.BalanceStage]string{
		models.BalanceStageOpened:            "",
		models.BalanceStageMaterialsReceived: "materials_received_at",
		models.BalanceStageAssignedToAuditor: "auditor_confirmed_at",
		models.BalanceStageInProgress:        "work_started_at",
		models.BalanceStageWorkCompleted:     "work_completed_at",
		models.BalanceStageOfficeApproved:    "office_approved_at",
		models.BalanceStageReportTransmitted: "report_transmitted_at",
		models.BalanceStageAdvancesUpdated:   "advances_updated_at",
	}

	for stage, wantCol := range wantColumns {
		info, ok := stageInfo(stage)
		if !ok {
			t.Fatalf("stageInfo(%s): expected ok", stage)
		}
		if info.TimestampColumn != wantCol {
			t.Errorf("%s: expected column %q, got %q", stage, wantCol, info.TimestampColumn)
		}
	}

	// auditor_confirmed_at is written by the confirmation action, not on entry.
	info, _ := stageInfo(models.BalanceStageAssignedToAuditor)
	if info.StampOnEntry {
		t.Error("AssignedToAuditor must not stamp on entry")
	}
}

func TestStageLabels(t *testing.T) {
	if got := StageLabel(models.BalanceStageMaterialsReceived); got != "Materials Received" {
		t.Errorf("expected label 'Materials Received', got %q", got)
	}
	if got := StageLabel("Bogus"); got != "Bogus" {
		t.Errorf("unknown stage should echo its name, got %q", got)
	}
}
