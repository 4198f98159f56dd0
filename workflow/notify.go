package workflow

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/balances_backend/config"
	"bitbucket.org/mmdatafocus/balances_backend/models"
	"bitbucket.org/mmdatafocus/balances_backend/utils"
)

// notifier announces committed stage changes on a background goroutine.
// Publishing failures are logged and dropped; a notification never fails or
// delays the transition that produced it.
type notifier struct {
	events EventPublisher
}

func newNotifier(events EventPublisher) *notifier {
	return &notifier{events: events}
}

func (n *notifier) announce(ctx context.Context, bc *models.BalanceCase, effects TransitionEffects) {
	if n.events == nil {
		return
	}

	firmId, _ := utils.GetFirmIdFromContext(ctx)
	userId, _ := utils.GetUserIdFromContext(ctx)
	userName, _ := utils.GetUserNameFromContext(ctx)
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)

	msg := config.BalanceEventMessage{
		FirmId:        firmId,
		CaseId:        bc.ID,
		ClientId:      bc.ClientId,
		Year:          bc.FiscalYear,
		Text:          effects.Notice,
		ActorId:       userId,
		ActorName:     userName,
		OccurredAt:    time.Now().UTC(),
		CorrelationId: correlationId,
	}

	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := n.events.Publish(pubCtx, msg); err != nil {
			logger := config.GetLogger()
			config.LogError(logger, "workflow", "announce", "publish balance event", map[string]interface{}{
				"caseId": bc.ID,
				"text":   effects.Notice,
			}, err)
		}
	}()
}
