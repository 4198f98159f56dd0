package reports

import (
	"context"
	"errors"
	"sort"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/models"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
)

// AuditorSummary is one auditor's workload breakdown for the year.
type AuditorSummary struct {
	AuditorId   int                         `json:"auditor_id"`
	AuditorName string                      `json:"auditor_name"`
	ByStage     map[models.BalanceStage]int `json:"by_stage"`
	Total       int                         `json:"total"`
}

// BalanceDashboard is the firm-wide rollup for one fiscal year over active
// cases. ByStage always carries all stages, zero-filled; ByAuditor lists only
// auditors with at least one assigned case, busiest first.
type BalanceDashboard struct {
	Year       int                         `json:"year"`
	TotalCases int                         `json:"total_cases"`
	ByStage    map[models.BalanceStage]int `json:"by_stage"`
	ByAuditor  []*AuditorSummary           `json:"by_auditor"`
}

// stageCountRow is the scan target of the grouped queries.
type stageCountRow struct {
	CurrentStage models.BalanceStage
	AuditorId    *int
	AuditorName  string
	Count        int
}

func GetBalanceDashboard(ctx context.Context, year int) (*BalanceDashboard, error) {
	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, errors.New("firm id is required")
	}

	db := config.GetDB()

	var stageRows []stageCountRow
	err := db.WithContext(ctx).
		Model(&models.BalanceCase{}).
		Select("current_stage, COUNT(*) AS count").
		Where("firm_id = ? AND fiscal_year = ? AND is_active = ?", firmId, year, true).
		Group("current_stage").
		Scan(&stageRows).Error
	if err != nil {
		return nil, err
	}

	var auditorRows []stageCountRow
	err = db.WithContext(ctx).
		Model(&models.BalanceCase{}).
		Select("balance_cases.current_stage, balance_cases.auditor_id, users.name AS auditor_name, COUNT(*) AS count").
		Joins("LEFT JOIN users ON users.id = balance_cases.auditor_id AND users.firm_id = balance_cases.firm_id").
		Where("balance_cases.firm_id = ? AND balance_cases.fiscal_year = ? AND balance_cases.is_active = ? AND balance_cases.auditor_id IS NOT NULL", firmId, year, true).
		Group("balance_cases.auditor_id, users.name, balance_cases.current_stage").
		Scan(&auditorRows).Error
	if err != nil {
		return nil, err
	}

	return assembleDashboard(year, stageRows, auditorRows), nil
}

// assembleDashboard folds the grouped rows into the dashboard shape. Kept
// free of the database so the invariants are testable on plain slices.
func assembleDashboard(year int, stageRows, auditorRows []stageCountRow) *BalanceDashboard {
	dashboard := &BalanceDashboard{
		Year:      year,
		ByStage:   map[models.BalanceStage]int{},
		ByAuditor: []*AuditorSummary{},
	}
	for _, stage := range models.AllBalanceStages() {
		dashboard.ByStage[stage] = 0
	}

	for _, row := range stageRows {
		if models.BalanceStageIndex(row.CurrentStage) < 0 {
			continue
		}
		dashboard.ByStage[row.CurrentStage] += row.Count
		dashboard.TotalCases += row.Count
	}

	byAuditor := map[int]*AuditorSummary{}
	for _, row := range auditorRows {
		if row.AuditorId == nil || models.BalanceStageIndex(row.CurrentStage) < 0 {
			continue
		}
		summary, ok := byAuditor[*row.AuditorId]
		if !ok {
			summary = &AuditorSummary{
				AuditorId:   *row.AuditorId,
				AuditorName: row.AuditorName,
				ByStage:     map[models.BalanceStage]int{},
			}
			for _, stage := range models.AllBalanceStages() {
				summary.ByStage[stage] = 0
			}
			byAuditor[*row.AuditorId] = summary
			dashboard.ByAuditor = append(dashboard.ByAuditor, summary)
		}
		summary.ByStage[row.CurrentStage] += row.Count
		summary.Total += row.Count
	}

	// Busiest first; equal workloads keep a deterministic order by id.
	sort.SliceStable(dashboard.ByAuditor, func(i, j int) bool {
		if dashboard.ByAuditor[i].Total != dashboard.ByAuditor[j].Total {
			return dashboard.ByAuditor[i].Total > dashboard.ByAuditor[j].Total
		}
		return dashboard.ByAuditor[i].AuditorId < dashboard.ByAuditor[j].AuditorId
	})

	return dashboard
}
