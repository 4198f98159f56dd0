package reports

import (
	"testing"

	"bitbucket.org/mmdatafocus/balances_backend/models"
)

func intPtr(v int) *int { return &v }

func TestAssembleDashboardZeroFill(t *testing.T) {
	dashboard := assembleDashboard(2025, nil, nil)

	if dashboard.TotalCases != 0 {
		t.Errorf("expected 0 total, got %d", dashboard.TotalCases)
	}
	if len(dashboard.ByStage) != len(models.AllBalanceStages()) {
		t.Fatalf("expected all stages present, got %d", len(dashboard.ByStage))
	}
	for stage, count := range dashboard.ByStage {
		if count != 0 {
			t.Errorf("stage %s: expected 0, got %d", stage, count)
		}
	}
	if len(dashboard.ByAuditor) != 0 {
		t.Errorf("expected empty auditor list, got %d", len(dashboard.ByAuditor))
	}
}

func TestAssembleDashboardSums(t *testing.T) {
	stageRows := []stageCountRow{
		{CurrentStage: models.BalanceStageOpened, Count: 4},
		{CurrentStage: models.BalanceStageInProgress, Count: 3},
		{CurrentStage: models.BalanceStageAdvancesUpdated, Count: 1},
	}
	auditorRows := []stageCountRow{
		{CurrentStage: models.BalanceStageInProgress, AuditorId: intPtr(7), AuditorName: "Noa", Count: 2},
		{CurrentStage: models.BalanceStageAdvancesUpdated, AuditorId: intPtr(7), AuditorName: "Noa", Count: 1},
		{CurrentStage: models.BalanceStageInProgress, AuditorId: intPtr(3), AuditorName: "Avi", Count: 1},
	}

	dashboard := assembleDashboard(2025, stageRows, auditorRows)

	if dashboard.TotalCases != 8 {
		t.Errorf("expected total 8, got %d", dashboard.TotalCases)
	}

	sum := 0
	for _, count := range dashboard.ByStage {
		sum += count
	}
	if sum != dashboard.TotalCases {
		t.Errorf("byStage sum %d != total %d", sum, dashboard.TotalCases)
	}
	if dashboard.ByStage[models.BalanceStageWorkCompleted] != 0 {
		t.Error("stages without cases must be zero-filled")
	}

	if len(dashboard.ByAuditor) != 2 {
		t.Fatalf("expected 2 auditors, got %d", len(dashboard.ByAuditor))
	}
	assigned := 0
	for _, summary := range dashboard.ByAuditor {
		stageSum := 0
		for _, count := range summary.ByStage {
			stageSum += count
		}
		if stageSum != summary.Total {
			t.Errorf("auditor %d: stage sum %d != total %d", summary.AuditorId, stageSum, summary.Total)
		}
		assigned += summary.Total
	}
	if assigned != 4 {
		t.Errorf("expected 4 assigned cases, got %d", assigned)
	}
}

func TestAssembleDashboardAuditorOrdering(t *testing.T) {
	auditorRows := []stageCountRow{
		{CurrentStage: models.BalanceStageOpened, AuditorId: intPtr(5), AuditorName: "Tal", Count: 1},
		{CurrentStage: models.BalanceStageOpened, AuditorId: intPtr(2), AuditorName: "Noa", Count: 3},
		{CurrentStage: models.BalanceStageOpened, AuditorId: intPtr(9), AuditorName: "Avi", Count: 1},
	}

	dashboard := assembleDashboard(2025, nil, auditorRows)

	if dashboard.ByAuditor[0].AuditorId != 2 {
		t.Errorf("busiest auditor first: expected id 2, got %d", dashboard.ByAuditor[0].AuditorId)
	}
	// Equal totals keep a deterministic order by auditor id.
	if dashboard.ByAuditor[1].AuditorId != 5 || dashboard.ByAuditor[2].AuditorId != 9 {
		t.Errorf("expected tie order 5 then 9, got %d then %d",
			dashboard.ByAuditor[1].AuditorId, dashboard.ByAuditor[2].AuditorId)
	}
}

func TestAssembleDashboardIgnoresUnknownRows(t *testing.T) {
	stageRows := []stageCountRow{
		{CurrentStage: "Bogus", Count: 5},
		{CurrentStage: models.BalanceStageOpened, Count: 1},
	}
	auditorRows := []stageCountRow{
		{CurrentStage: models.BalanceStageOpened, AuditorId: nil, Count: 2},
	}

	dashboard := assembleDashboard(2025, stageRows, auditorRows)
	if dashboard.TotalCases != 1 {
		t.Errorf("unknown stage rows must be dropped, total %d", dashboard.TotalCases)
	}
	if len(dashboard.ByAuditor) != 0 {
		t.Errorf("nil auditor rows must be dropped, got %d", len(dashboard.ByAuditor))
	}
}
