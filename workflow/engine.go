package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/models"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
)

// CaseStore is the persistence surface the engine drives. ApplyTransition
// must apply the updates only while the case is still at expectedStage and
// report how many rows it touched; zero rows means the case moved underneath
// the caller.
type CaseStore interface {
	GetCase(ctx context.Context, firmId string, caseId int) (*models.BalanceCase, error)
	ApplyTransition(ctx context.Context, firmId string, caseId int, expectedStage models.BalanceStage, updates map[string]interface{}) (int64, error)
	CountCasesForYear(ctx context.Context, firmId string, year int) (int64, error)
	CreateCases(ctx context.Context, cases []*models.BalanceCase) error
}

// HistoryStore appends audit trail rows.
type HistoryStore interface {
	AppendHistory(ctx context.Context, caseId int, from, to models.BalanceStage, note string) error
}

// EventPublisher delivers post-commit notifications. Implementations must not
// be relied on for correctness; the engine ignores their errors.
type EventPublisher interface {
	Publish(ctx context.Context, msg config.BalanceEventMessage) error
}

// ClientSource lists the entities a new fiscal year opens cases for.
type ClientSource interface {
	ListEligibleClients(ctx context.Context, firmId string) ([]*models.Client, error)
}

// YearLocker serializes year opening per firm and year. Release errors are
// ignorable; the lock TTL bounds the worst case.
type YearLocker interface {
	AcquireYearLock(ctx context.Context, firmId string, year int) (release func(), err error)
}

// Engine executes stage transitions over the collaborator interfaces. A
// single Engine is shared by the HTTP handlers and the CLI commands.
type Engine struct {
	cases    CaseStore
	history  HistoryStore
	events   EventPublisher
	notifier *notifier
	now      func() time.Time
}

func NewEngine(cases CaseStore, history HistoryStore, events EventPublisher) *Engine {
	return &Engine{
		cases:    cases,
		history:  history,
		events:   events,
		notifier: newNotifier(events),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TransitionRequest is one actor's attempt to move one case.
type TransitionRequest struct {
	CaseId      int
	TargetStage models.BalanceStage
	Note        string
}

// RequestTransition validates and applies a stage change, appends the audit
// trail row and announces the change. The order is fixed: validation and
// guards run against the state read at the top, and the write itself
// re-checks the stage so a concurrent transition surfaces as
// *StageConflictError instead of silently clobbering it.
func (e *Engine) RequestTransition(ctx context.Context, req TransitionRequest) (*models.BalanceCase, error) {
	logger := config.GetLogger()

	firmId, ok := utils.GetFirmIdFromContext(ctx)
	if !ok || firmId == "" {
		return nil, fmt.Errorf("firm id is required")
	}
	role, _ := utils.GetUserRoleFromContext(ctx)
	privileged := models.RoleIsPrivileged(models.UserRole(role))

	bc, err := e.cases.GetCase(ctx, firmId, req.CaseId)
	if err != nil {
		return nil, err
	}

	if err := ValidateTransition(bc.CurrentStage, req.TargetStage, privileged); err != nil {
		return nil, err
	}
	if err := CheckConfirmationGuard(bc, req.TargetStage, privileged); err != nil {
		return nil, err
	}
	if NoteRequired(bc.CurrentStage, req.TargetStage) && strings.TrimSpace(req.Note) == "" {
		return nil, &MissingNoteError{From: bc.CurrentStage, To: req.TargetStage}
	}

	effects := BuildTransitionEffects(bc.CurrentStage, req.TargetStage, e.now())

	rows, err := e.cases.ApplyTransition(ctx, firmId, bc.ID, bc.CurrentStage, effects.Updates)
	if err != nil {
		return nil, fmt.Errorf("applying transition: %w", err)
	}
	if rows == 0 {
		return nil, &StageConflictError{CaseId: bc.ID, Expected: bc.CurrentStage}
	}

	// The transition is committed. The trail append is best effort from here.
	if err := e.history.AppendHistory(ctx, bc.ID, effects.From, effects.To, req.Note); err != nil {
		config.LogError(logger, "workflow", "RequestTransition", "append history", map[string]interface{}{
			"caseId": bc.ID,
			"from":   effects.From,
			"to":     effects.To,
		}, err)
	}

	e.notifier.announce(ctx, bc, effects)

	return e.cases.GetCase(ctx, firmId, bc.ID)
}
