package workflow

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/models"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
)

// YearOpener creates the firm's balance cases for a new fiscal year in one
// shot: one case per eligible client, all starting at Opened with no stage
// timestamps. The whole batch commits or none of it does.
type YearOpener struct {
	cases   CaseStore
	clients ClientSource
	locker  YearLocker
}

func NewYearOpener(cases CaseStore, clients ClientSource, locker YearLocker) *YearOpener {
	return &YearOpener{cases: cases, clients: clients, locker: locker}
}

// OpenYearResult reports the batch outcome. Skipped stays 0 under the current
// eligibility rules; the field exists so callers keep a stable shape if a
// per-client skip rule is ever added.
type OpenYearResult struct {
	Year    int   `json:"year"`
	Created int   `json:"created"`
	Skipped int   `json:"skipped"`
	CaseIds []int `json:"case_ids"`
}

// OpenYear is idempotent at the year level: a year that already has any case
// for the firm is rejected with *DuplicateYearError and nothing is written.
func (o *YearOpener) OpenYear(ctx context.Context, year int) (*OpenYearResult, error) {
	if year < 1990 || year > 2200 {
		return nil, fmt.Errorf("fiscal year %d out of range", year)
	}

	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, fmt.Errorf("firm id is required")
	}

	if o.locker != nil {
		release, err := o.locker.AcquireYearLock(ctx, firmId, year)
		if err != nil {
			return nil, fmt.Errorf("acquiring year lock: %w", err)
		}
		defer release()
	}

	existing, err := o.cases.CountCasesForYear(ctx, firmId, year)
	if err != nil {
		return nil, fmt.Errorf("counting existing cases: %w", err)
	}
	if existing > 0 {
		return nil, &DuplicateYearError{Year: year, ExistingCount: existing}
	}

	clients, err := o.clients.ListEligibleClients(ctx, firmId)
	if err != nil {
		return nil, fmt.Errorf("listing eligible clients: %w", err)
	}

	cases := make([]*models.BalanceCase, 0, len(clients))
	for _, client := range clients {
		cases = append(cases, &models.BalanceCase{
			FirmId:       firmId,
			ClientId:     client.ID,
			FiscalYear:   year,
			CurrentStage: models.BalanceStageOpened,
			IsActive:     utils.NewTrue(),
		})
	}

	if len(cases) > 0 {
		if err := o.cases.CreateCases(ctx, cases); err != nil {
			return nil, fmt.Errorf("creating cases for year %d: %w", year, err)
		}
	}

	result := &OpenYearResult{Year: year, Created: len(cases)}
	for _, bc := range cases {
		result.CaseIds = append(result.CaseIds, bc.ID)
	}

	logger := config.GetLogger()
	logger.WithField("firmId", firmId).WithField("year", year).
		Infof("opened fiscal year with %d cases", result.Created)

	return result, nil
}
