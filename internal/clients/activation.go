package clients

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shohaib1996/better-edible-backend/internal/events"
	"github.com/shohaib1996/better-edible-backend/pkg/logger"
)

// ActivationHandler promotes an onboarding client to active the first time
// one of its labels reaches ready_for_production. It runs inside the label
// update transaction, so a failed activation rolls the stage change back.
type ActivationHandler struct {
	repo Repository
	logg *logger.Logger
}

func NewActivationHandler(repo Repository, logg *logger.Logger) (*ActivationHandler, error) {
	if repo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &ActivationHandler{repo: repo, logg: logg}, nil
}

func (h *ActivationHandler) HandleLabelReachedProduction(ctx context.Context, tx *gorm.DB, event events.LabelReachedProduction) error {
	activated, err := h.repo.WithTx(tx).ActivateIfOnboarding(ctx, event.ClientID)
	if err != nil {
		return fmt.Errorf("activate client %s: %w", event.ClientID, err)
	}
	if activated {
		logCtx := h.logg.WithFields(ctx, map[string]any{
			"client_id": event.ClientID.String(),
			"label_id":  event.LabelID.String(),
		})
		h.logg.Info(logCtx, "private label client activated")
	}
	return nil
}
