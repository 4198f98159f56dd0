package workflow

import (
	"fmt"

	"bitbucket.org/mmdatafocus/balances_backend/models"
)

// IllegalTransitionError rejects a requested stage change the caller's role
// does not permit, or one that targets an unknown stage.
type IllegalTransitionError struct {
	From   models.BalanceStage
	To     models.BalanceStage
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s: %s", StageLabel(e.From), StageLabel(e.To), e.Reason)
}

// ConfirmationGuardError blocks the move into InProgress while the assigned
// auditor has not confirmed the case.
type ConfirmationGuardError struct {
	CaseId int
}

func (e *ConfirmationGuardError) Error() string {
	return fmt.Sprintf("case %d cannot start: auditor has not confirmed the assignment", e.CaseId)
}

// MissingNoteError blocks a backward transition submitted without an
// explanation for the audit trail.
type MissingNoteError struct {
	From models.BalanceStage
	To   models.BalanceStage
}

func (e *MissingNoteError) Error() string {
	return fmt.Sprintf("revert %s -> %s requires a note", StageLabel(e.From), StageLabel(e.To))
}

// StageConflictError reports that the case's stage changed between the read
// and the conditional write. The request can be retried against fresh state.
type StageConflictError struct {
	CaseId   int
	Expected models.BalanceStage
}

func (e *StageConflictError) Error() string {
	return fmt.Sprintf("case %d is no longer at stage %s, retry with current state", e.CaseId, StageLabel(e.Expected))
}

// DuplicateYearError rejects opening a fiscal year the firm already has cases
// for.
type DuplicateYearError struct {
	Year          int
	ExistingCount int64
}

func (e *DuplicateYearError) Error() string {
	return fmt.Sprintf("fiscal year %d already has %d cases", e.Year, e.ExistingCount)
}
