package workflow

import (
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/balances_backend/models"
)

// TransitionEffects is everything a validated stage change writes and
// announces. Updates is in the shape gorm's Updates(map) takes so the store
// can apply it in one conditional statement.
type TransitionEffects struct {
	From     models.BalanceStage
	To       models.BalanceStage
	Updates  map[string]interface{}
	Notice   string
	IsRevert bool
	IsJump   bool
}

// ValidateTransition decides whether an actor may move a case from one stage
// to another. Non-privileged actors may only advance to the directly
// following stage; privileged actors may move to any stage other than the
// current one. The decision is a pure function of the three arguments.
func ValidateTransition(from, to models.BalanceStage, privileged bool) error {
	fromIdx := StageIndex(from)
	toIdx := StageIndex(to)
	if fromIdx < 0 {
		return &IllegalTransitionError{From: from, To: to, Reason: fmt.Sprintf("unknown current stage %q", from)}
	}
	if toIdx < 0 {
		return &IllegalTransitionError{From: from, To: to, Reason: fmt.Sprintf("unknown target stage %q", to)}
	}
	if fromIdx == toIdx {
		return &IllegalTransitionError{From: from, To: to, Reason: "case is already at this stage"}
	}
	if privileged {
		return nil
	}
	if toIdx != fromIdx+1 {
		return &IllegalTransitionError{
			From:   from,
			To:     to,
			Reason: fmt.Sprintf("only the next stage (%s) is allowed", StageLabel(stageCatalog[min(fromIdx+1, len(stageCatalog)-1)].Stage)),
		}
	}
	return nil
}

// CheckConfirmationGuard blocks the entry into InProgress while the assigned
// auditor has not confirmed the case. Privileged actors may push through.
func CheckConfirmationGuard(bc *models.BalanceCase, to models.BalanceStage, privileged bool) error {
	if to != models.BalanceStageInProgress || privileged {
		return nil
	}
	if !bc.AuditorConfirmed {
		return &ConfirmationGuardError{CaseId: bc.ID}
	}
	return nil
}

// BuildTransitionEffects computes the column writes for an already validated
// transition at the given instant.
//
// Forward moves stamp the target stage's timestamp (when the stage owns one
// written on entry) and leave every other timestamp untouched, so a forward
// jump records only where the case landed. Backward moves clear the timestamp
// of every stage ordered after the target, and a revert below
// AssignedToAuditor additionally resets the auditor confirmation flag.
func BuildTransitionEffects(from, to models.BalanceStage, now time.Time) TransitionEffects {
	fromIdx := StageIndex(from)
	toIdx := StageIndex(to)

	effects := TransitionEffects{
		From:     from,
		To:       to,
		IsRevert: toIdx < fromIdx,
		IsJump:   toIdx > fromIdx+1,
		Updates: map[string]interface{}{
			"current_stage": to,
		},
	}

	if effects.IsRevert {
		for idx := toIdx + 1; idx < len(stageCatalog); idx++ {
			if col := stageCatalog[idx].TimestampColumn; col != "" {
				effects.Updates[col] = nil
			}
		}
		if toIdx < StageIndex(models.BalanceStageAssignedToAuditor) {
			effects.Updates["auditor_confirmed"] = false
		}
		effects.Notice = fmt.Sprintf("status reverted: %s → %s", StageLabel(from), StageLabel(to))
		return effects
	}

	info := stageCatalog[toIdx]
	if info.StampOnEntry && info.TimestampColumn != "" {
		effects.Updates[info.TimestampColumn] = now
	}
	effects.Notice = fmt.Sprintf("status changed: %s → %s", StageLabel(from), StageLabel(to))
	return effects
}

// NoteRequired reports whether the transition must carry an explanation for
// the audit trail: every revert and every forward jump past the next stage.
func NoteRequired(from, to models.BalanceStage) bool {
	fromIdx := StageIndex(from)
	toIdx := StageIndex(to)
	return toIdx < fromIdx || toIdx > fromIdx+1
}
