package kafka

import (
	"context"
	"fmt"

	"github.com/vogiaan1904/repairhub-display/internal/service"
	"github.com/vogiaan1904/repairhub-display/pkg/logger"
)

// MessageHandler handles incoming campaign/slide administration events.
type MessageHandler interface {
	HandleCampaignActivated(ctx context.Context, event CampaignActivatedEvent) error
	HandleCampaignDeactivated(ctx context.Context, event CampaignDeactivatedEvent) error
	HandleSlideUpserted(ctx context.Context, event SlideUpsertedEvent) error
}

type contentEventHandler struct {
	contentSvc service.ContentService
	l          logger.Logger
}

func NewContentEventHandler(contentSvc service.ContentService, l logger.Logger) MessageHandler {
	return &contentEventHandler{
		contentSvc: contentSvc,
		l:          l,
	}
}

func (h *contentEventHandler) HandleCampaignActivated(ctx context.Context, event CampaignActivatedEvent) error {
	h.l.Infof(ctx, "Handling campaign activated - location_id: %s, campaign_id: %s",
		event.LocationID, event.Campaign.ID)

	if err := h.contentSvc.ApplyCampaign(ctx, event.LocationID, event.Campaign); err != nil {
		return fmt.Errorf("failed to apply campaign: %w", err)
	}

	return nil
}

func (h *contentEventHandler) HandleCampaignDeactivated(ctx context.Context, event CampaignDeactivatedEvent) error {
	h.l.Infof(ctx, "Handling campaign deactivated - location_id: %s, campaign_id: %s, reason: %s",
		event.LocationID, event.CampaignID, event.Reason)

	if err := h.contentSvc.RemoveCampaign(ctx, event.LocationID, event.CampaignID); err != nil {
		return fmt.Errorf("failed to remove campaign: %w", err)
	}

	return nil
}

func (h *contentEventHandler) HandleSlideUpserted(ctx context.Context, event SlideUpsertedEvent) error {
	h.l.Infof(ctx, "Handling slide upserted - location_id: %s, slide_id: %s",
		event.LocationID, event.Slide.ID)

	if _, err := h.contentSvc.UpsertSlide(ctx, event.LocationID, event.Slide); err != nil {
		return fmt.Errorf("failed to upsert slide: %w", err)
	}

	return nil
}
