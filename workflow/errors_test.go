package workflow

import (
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/balances_backend/models"
)

func TestIllegalTransitionErrorUsesStageLabels(t *testing.T) {
	err := &IllegalTransitionError{
		From:   models.BalanceStageWorkCompleted,
		To:     models.BalanceStageMaterialsReceived,
		Reason: "staff may only advance to the next stage",
	}
	msg := err.Error()
	if !strings.Contains(msg, "Work Completed") {
		t.Errorf("message should carry the from label, got %q", msg)
	}
	if !strings.Contains(msg, "Materials Received") {
		t.Errorf("message should carry the to label, got %q", msg)
	}
	if strings.Contains(msg, "WorkCompleted") || strings.Contains(msg, "MaterialsReceived") {
		t.Errorf("message should not leak raw enum names, got %q", msg)
	}
}

func TestMissingNoteErrorUsesStageLabels(t *testing.T) {
	err := &MissingNoteError{
		From: models.BalanceStageInProgress,
		To:   models.BalanceStageAssignedToAuditor,
	}
	msg := err.Error()
	if !strings.Contains(msg, "In Progress") || !strings.Contains(msg, "Assigned To Auditor") {
		t.Errorf("message should carry stage labels, got %q", msg)
	}
}

func TestStageConflictErrorUsesStageLabel(t *testing.T) {
	err := &StageConflictError{CaseId: 7, Expected: models.BalanceStageReportTransmitted}
	msg := err.Error()
	if !strings.Contains(msg, "Report Transmitted") {
		t.Errorf("message should carry the expected stage label, got %q", msg)
	}
}
