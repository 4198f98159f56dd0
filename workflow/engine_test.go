package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/models"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
)

// NOTE: These tests are intentionally DB-free. The stores are faked; full
// DB integration tests need an environment that can run MySQL.

const testFirm = "firm-1"

type fakeCaseStore struct {
	cases         map[int]*models.BalanceCase
	stamps        map[int]map[string]interface{}
	forceConflict bool
	applyErr      error
	yearCounts    map[int]int64
	created       []*models.BalanceCase
	createErr     error
}

func newFakeCaseStore(cases ...*models.BalanceCase) *fakeCaseStore {
	s := &fakeCaseStore{
		cases:      map[int]*models.BalanceCase{},
		stamps:     map[int]map[string]interface{}{},
		yearCounts: map[int]int64{},
	}
	for _, bc := range cases {
		s.cases[bc.ID] = bc
		s.stamps[bc.ID] = map[string]interface{}{}
	}
	return s
}

func (s *fakeCaseStore) GetCase(ctx context.Context, firmId string, caseId int) (*models.BalanceCase, error) {
	bc, ok := s.cases[caseId]
	if !ok || bc.FirmId != firmId {
		return nil, utils.ErrorRecordNotFound
	}
	copied := *bc
	return &copied, nil
}

func (s *fakeCaseStore) ApplyTransition(ctx context.Context, firmId string, caseId int, expectedStage models.BalanceStage, updates map[string]interface{}) (int64, error) {
	if s.applyErr != nil {
		return 0, s.applyErr
	}
	bc, ok := s.cases[caseId]
	if !ok || bc.FirmId != firmId || bc.CurrentStage != expectedStage || s.forceConflict {
		return 0, nil
	}
	for col, v := range updates {
		switch col {
		case "current_stage":
			bc.CurrentStage = v.(models.BalanceStage)
		case "auditor_confirmed":
			bc.AuditorConfirmed = v.(bool)
		default:
			s.stamps[caseId][col] = v
		}
	}
	return 1, nil
}

func (s *fakeCaseStore) CountCasesForYear(ctx context.Context, firmId string, year int) (int64, error) {
	return s.yearCounts[year], nil
}

func (s *fakeCaseStore) CreateCases(ctx context.Context, cases []*models.BalanceCase) error {
	if s.createErr != nil {
		// The real store wraps the batch in one transaction; a failure leaves
		// nothing behind.
		return s.createErr
	}
	for i, bc := range cases {
		bc.ID = len(s.created) + i + 1
	}
	s.created = append(s.created, cases...)
	if len(cases) > 0 {
		s.yearCounts[cases[0].FiscalYear] += int64(len(cases))
	}
	return nil
}

type historyEntry struct {
	caseId   int
	from, to models.BalanceStage
	note     string
}

type fakeHistoryStore struct {
	entries   []historyEntry
	appendErr error
}

func (s *fakeHistoryStore) AppendHistory(ctx context.Context, caseId int, from, to models.BalanceStage, note string) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.entries = append(s.entries, historyEntry{caseId: caseId, from: from, to: to, note: note})
	return nil
}

type fakePublisher struct {
	published chan config.BalanceEventMessage
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{published: make(chan config.BalanceEventMessage, 8)}
}

func (p *fakePublisher) Publish(ctx context.Context, msg config.BalanceEventMessage) error {
	p.published <- msg
	return nil
}

func testContext(role models.UserRole) context.Context {
	ctx := utils.SetFirmIdInContext(context.Background(), testFirm)
	ctx = utils.SetUserIdInContext(ctx, 42)
	ctx = utils.SetUserNameInContext(ctx, "Dana")
	ctx = utils.SetUserRoleInContext(ctx, string(role))
	return ctx
}

func testCase(stage models.BalanceStage) *models.BalanceCase {
	return &models.BalanceCase{
		ID:           1,
		FirmId:       testFirm,
		ClientId:     10,
		FiscalYear:   2025,
		CurrentStage: stage,
		IsActive:     utils.NewTrue(),
	}
}

func newTestEngine(cases CaseStore, history HistoryStore, events EventPublisher) *Engine {
	e := NewEngine(cases, history, events)
	e.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	return e
}

func TestRequestTransitionForwardStep(t *testing.T) {
	store := newFakeCaseStore(testCase(models.BalanceStageOpened))
	history := &fakeHistoryStore{}
	engine := newTestEngine(store, history, nil)

	bc, err := engine.RequestTransition(testContext(models.UserRoleStaff), TransitionRequest{
		CaseId:      1,
		TargetStage: models.BalanceStageMaterialsReceived,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bc.CurrentStage != models.BalanceStageMaterialsReceived {
		t.Errorf("expected stage MaterialsReceived, got %s", bc.CurrentStage)
	}
	if store.stamps[1]["materials_received_at"] == nil {
		t.Error("expected materials_received_at stamped")
	}
	if len(history.entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history.entries))
	}
	if history.entries[0].from != models.BalanceStageOpened || history.entries[0].to != models.BalanceStageMaterialsReceived {
		t.Errorf("unexpected history entry %+v", history.entries[0])
	}
}

func TestRequestTransitionSameStageRejected(t *testing.T) {
	store := newFakeCaseStore(testCase(models.BalanceStageOpened))
	engine := newTestEngine(store, &fakeHistoryStore{}, nil)

	_, err := engine.RequestTransition(testContext(models.UserRoleAdmin), TransitionRequest{
		CaseId:      1,
		TargetStage: models.BalanceStageOpened,
	})
	var illegal *IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
}

func TestRequestTransitionStaffCannotJump(t *testing.T) {
	store := newFakeCaseStore(testCase(models.BalanceStageOpened))
	engine := newTestEngine(store, &fakeHistoryStore{}, nil)

	_, err := engine.RequestTransition(testContext(models.UserRoleStaff), TransitionRequest{
		CaseId:      1,
		TargetStage: models.BalanceStageInProgress,
		Note:        "rushing",
	})
	var illegal *IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if store.cases[1].CurrentStage != models.BalanceStageOpened {
		t.Error("rejected transition must not change the case")
	}
}

func TestRequestTransitionConfirmationGuard(t *testing.T) {
	bc := testCase(models.BalanceStageAssignedToAuditor)
	store := newFakeCaseStore(bc)
	engine := newTestEngine(store, &fakeHistoryStore{}, nil)

	_, err := engine.RequestTransition(testContext(models.UserRoleStaff), TransitionRequest{
		CaseId:      1,
		TargetStage: models.BalanceStageInProgress,
	})
	var guard *ConfirmationGuardError
	if !errors.As(err, &guard) {
		t.Fatalf("expected ConfirmationGuardError, got %v", err)
	}

	bc.AuditorConfirmed = true
	if _, err := engine.RequestTransition(testContext(models.UserRoleStaff), TransitionRequest{
		CaseId:      1,
		TargetStage: models.BalanceStageInProgress,
	}); err != nil {
		t.Fatalf("confirmed case should advance, got %v", err)
	}
}

func TestRequestTransitionRevertNeedsNote(t *testing.T) {
	store := newFakeCaseStore(testCase(models.BalanceStageWorkCompleted))
	engine := newTestEngine(store, &fakeHistoryStore{}, nil)
	ctx := testContext(models.UserRolePartner)

	_, err := engine.RequestTransition(ctx, TransitionRequest{
		CaseId:      1,
		TargetStage: models.BalanceStageMaterialsReceived,
		Note:        "   ",
	})
	var missing *MissingNoteError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingNoteError, got %v", err)
	}
}

func TestRequestTransitionClientDisputeRevert(t *testing.T) {
	bc := testCase(models.BalanceStageWorkCompleted)
	bc.AuditorConfirmed = true
	store := newFakeCaseStore(bc)
	store.stamps[1]["work_completed_at"] = time.Now().UTC()
	history := &fakeHistoryStore{}
	publisher := newFakePublisher()
	engine := newTestEngine(store, history, publisher)

	got, err := engine.RequestTransition(testContext(models.UserRolePartner), TransitionRequest{
		CaseId:      1,
		TargetStage: models.BalanceStageMaterialsReceived,
		Note:        "client dispute",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentStage != models.BalanceStageMaterialsReceived {
		t.Errorf("expected MaterialsReceived, got %s", got.CurrentStage)
	}
	if got.AuditorConfirmed {
		t.Error("revert below AssignedToAuditor must reset auditor confirmation")
	}
	for _, col := range []string{"work_started_at", "work_completed_at", "auditor_confirmed_at"} {
		if v, ok := store.stamps[1][col]; !ok || v != nil {
			t.Errorf("expected %s cleared, got %v (present=%v)", col, v, ok)
		}
	}
	if len(history.entries) != 1 || history.entries[0].note != "client dispute" {
		t.Fatalf("expected history entry with the note, got %+v", history.entries)
	}

	select {
	case msg := <-publisher.published:
		if msg.Text != "status reverted: Work Completed → Materials Received" {
			t.Errorf("unexpected notification text %q", msg.Text)
		}
		if msg.CaseId != 1 || msg.FirmId != testFirm {
			t.Errorf("unexpected notification addressing %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notification")
	}
}

func TestRequestTransitionStageConflict(t *testing.T) {
	store := newFakeCaseStore(testCase(models.BalanceStageOpened))
	store.forceConflict = true
	engine := newTestEngine(store, &fakeHistoryStore{}, nil)

	_, err := engine.RequestTransition(testContext(models.UserRoleStaff), TransitionRequest{
		CaseId:      1,
		TargetStage: models.BalanceStageMaterialsReceived,
	})
	var conflict *StageConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StageConflictError, got %v", err)
	}
	if conflict.Expected != models.BalanceStageOpened {
		t.Errorf("conflict should carry the read stage, got %s", conflict.Expected)
	}
}

func TestRequestTransitionHistoryFailureDoesNotFail(t *testing.T) {
	store := newFakeCaseStore(testCase(models.BalanceStageOpened))
	history := &fakeHistoryStore{appendErr: fmt.Errorf("history table down")}
	engine := newTestEngine(store, history, nil)

	bc, err := engine.RequestTransition(testContext(models.UserRoleStaff), TransitionRequest{
		CaseId:      1,
		TargetStage: models.BalanceStageMaterialsReceived,
	})
	if err != nil {
		t.Fatalf("history failure must not fail the transition, got %v", err)
	}
	if bc.CurrentStage != models.BalanceStageMaterialsReceived {
		t.Errorf("expected committed stage, got %s", bc.CurrentStage)
	}
}

func TestRequestTransitionUnknownCase(t *testing.T) {
	store := newFakeCaseStore()
	engine := newTestEngine(store, &fakeHistoryStore{}, nil)

	_, err := engine.RequestTransition(testContext(models.UserRoleStaff), TransitionRequest{
		CaseId:      99,
		TargetStage: models.BalanceStageMaterialsReceived,
	})
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected record-not-found, got %v", err)
	}
}
