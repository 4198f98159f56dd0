package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bitbucket.org/mmdatafocus/balances_backend/models"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
)

type fakeClientSource struct {
	clients []*models.Client
	listErr error
}

func (s *fakeClientSource) ListEligibleClients(ctx context.Context, firmId string) ([]*models.Client, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.clients, nil
}

type fakeYearLocker struct {
	acquired int
	released int
}

func (l *fakeYearLocker) AcquireYearLock(ctx context.Context, firmId string, year int) (func(), error) {
	l.acquired++
	return func() { l.released++ }, nil
}

func eligibleClients(n int) []*models.Client {
	clients := make([]*models.Client, 0, n)
	for i := 1; i <= n; i++ {
		clients = append(clients, &models.Client{
			ID:         i,
			FirmId:     testFirm,
			Name:       fmt.Sprintf("Client %d", i),
			EntityType: models.EntityTypeCompany,
			IsActive:   utils.NewTrue(),
		})
	}
	return clients
}

func TestOpenYearCreatesCaseForEveryEligibleClient(t *testing.T) {
	store := newFakeCaseStore()
	locker := &fakeYearLocker{}
	opener := NewYearOpener(store, &fakeClientSource{clients: eligibleClients(40)}, locker)

	result, err := opener.OpenYear(testContext(models.UserRolePartner), 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 40 {
		t.Errorf("expected 40 cases created, got %d", result.Created)
	}
	if result.Skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", result.Skipped)
	}
	if len(store.created) != 40 {
		t.Fatalf("expected 40 stored cases, got %d", len(store.created))
	}
	for _, bc := range store.created {
		if bc.CurrentStage != models.BalanceStageOpened {
			t.Errorf("case %d: expected stage Opened, got %s", bc.ClientId, bc.CurrentStage)
		}
		if bc.FiscalYear != 2025 || bc.FirmId != testFirm {
			t.Errorf("case %d: wrong year/firm %+v", bc.ClientId, bc)
		}
		if bc.MaterialsReceivedAt != nil || bc.WorkStartedAt != nil {
			t.Errorf("case %d: new case must carry no stage timestamps", bc.ClientId)
		}
	}
	if locker.acquired != 1 || locker.released != 1 {
		t.Errorf("expected lock acquired and released once, got %d/%d", locker.acquired, locker.released)
	}
}

func TestOpenYearDuplicateRejectedWithCount(t *testing.T) {
	store := newFakeCaseStore()
	opener := NewYearOpener(store, &fakeClientSource{clients: eligibleClients(3)}, nil)
	ctx := testContext(models.UserRolePartner)

	if _, err := opener.OpenYear(ctx, 2025); err != nil {
		t.Fatalf("first open failed: %v", err)
	}

	_, err := opener.OpenYear(ctx, 2025)
	var dup *DuplicateYearError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateYearError, got %v", err)
	}
	if dup.Year != 2025 || dup.ExistingCount != 3 {
		t.Errorf("expected year 2025 with 3 existing, got %+v", dup)
	}
	if len(store.created) != 3 {
		t.Errorf("second open must not create cases, got %d", len(store.created))
	}
}

func TestOpenYearDifferentYearsIndependent(t *testing.T) {
	store := newFakeCaseStore()
	opener := NewYearOpener(store, &fakeClientSource{clients: eligibleClients(2)}, nil)
	ctx := testContext(models.UserRolePartner)

	if _, err := opener.OpenYear(ctx, 2024); err != nil {
		t.Fatalf("open 2024 failed: %v", err)
	}
	if _, err := opener.OpenYear(ctx, 2025); err != nil {
		t.Fatalf("open 2025 failed: %v", err)
	}
	if len(store.created) != 4 {
		t.Errorf("expected 4 cases across two years, got %d", len(store.created))
	}
}

func TestOpenYearNoEligibleClients(t *testing.T) {
	store := newFakeCaseStore()
	opener := NewYearOpener(store, &fakeClientSource{}, nil)

	result, err := opener.OpenYear(testContext(models.UserRolePartner), 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 0 || len(store.created) != 0 {
		t.Errorf("expected an empty batch, got %+v", result)
	}
}

func TestOpenYearInsertFailureCreatesNothing(t *testing.T) {
	store := newFakeCaseStore()
	store.createErr = fmt.Errorf("deadlock")
	opener := NewYearOpener(store, &fakeClientSource{clients: eligibleClients(5)}, nil)

	_, err := opener.OpenYear(testContext(models.UserRolePartner), 2025)
	if err == nil {
		t.Fatal("expected insert failure to surface")
	}
	if len(store.created) != 0 {
		t.Errorf("failed batch must leave nothing behind, got %d", len(store.created))
	}
	if store.yearCounts[2025] != 0 {
		t.Errorf("failed batch must not count toward the year, got %d", store.yearCounts[2025])
	}
}

func TestOpenYearOutOfRange(t *testing.T) {
	opener := NewYearOpener(newFakeCaseStore(), &fakeClientSource{}, nil)
	if _, err := opener.OpenYear(testContext(models.UserRolePartner), 190); err == nil {
		t.Fatal("expected out-of-range year to be rejected")
	}
}
