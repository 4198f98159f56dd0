package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
	"github.com/bsm/redislock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Store adapters backing the workflow engine's collaborator interfaces. They
// satisfy the interfaces structurally; this package never imports workflow.

type GormCaseStore struct{}

func (GormCaseStore) GetCase(ctx context.Context, firmId string, caseId int) (*BalanceCase, error) {
	return utils.FetchModel[BalanceCase](ctx, firmId, caseId, "Client")
}

// ApplyTransition performs the conditional stage write. The WHERE clause
// re-checks current_stage so a case that moved since the caller read it is
// left untouched; the returned row count tells the caller which happened.
func (GormCaseStore) ApplyTransition(ctx context.Context, firmId string, caseId int, expectedStage BalanceStage, updates map[string]interface{}) (int64, error) {
	db := config.GetDB()
	result := db.WithContext(ctx).
		Model(&BalanceCase{}).
		Where("firm_id = ? AND id = ? AND current_stage = ?", firmId, caseId, expectedStage).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (GormCaseStore) CountCasesForYear(ctx context.Context, firmId string, year int) (int64, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).
		Model(&BalanceCase{}).
		Where("firm_id = ? AND fiscal_year = ?", firmId, year).
		Count(&count).Error
	return count, err
}

// CreateCases inserts the batch in one transaction. The unique index on
// (firm_id, client_id, fiscal_year) backstops the duplicate-year check under
// concurrent openers.
func (GormCaseStore) CreateCases(ctx context.Context, cases []*BalanceCase) error {
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, bc := range cases {
			if err := tx.Create(bc).Error; err != nil {
				return err
			}
		}
		return nil
	})
	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return fmt.Errorf("case already exists for a client in this year: %w", err)
	}
	return err
}

type GormHistoryStore struct{}

func (GormHistoryStore) AppendHistory(ctx context.Context, caseId int, from, to BalanceStage, note string) error {
	_, err := CreateStatusHistory(ctx, caseId, from, to, note)
	return err
}

type GormClientSource struct{}

func (GormClientSource) ListEligibleClients(ctx context.Context, firmId string) ([]*Client, error) {
	ctx = utils.SetFirmIdInContext(ctx, firmId)
	return ListEligibleClients(ctx)
}

// PubSubEventPublisher announces committed transitions on the balance events
// topic.
type PubSubEventPublisher struct{}

func (PubSubEventPublisher) Publish(ctx context.Context, msg config.BalanceEventMessage) error {
	_, err := config.PublishBalanceEvent(ctx, msg)
	return err
}

// RedisYearLocker serializes year opening per firm and year across instances.
type RedisYearLocker struct{}

func (RedisYearLocker) AcquireYearLock(ctx context.Context, firmId string, year int) (func(), error) {
	locker := config.GetRedisLock()
	if locker == nil {
		// Redis not connected yet; the duplicate-year count still protects a
		// single instance.
		return func() {}, nil
	}

	key := fmt.Sprintf("YearOpen:%s:%d", firmId, year)
	lock, err := locker.Obtain(ctx, key, 30*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(250*time.Millisecond), 8),
	})
	if err != nil {
		return nil, err
	}
	return func() {
		_ = lock.Release(context.Background())
	}, nil
}
