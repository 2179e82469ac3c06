package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vogiaan1904/repairhub-display/internal/models"
	repo "github.com/vogiaan1904/repairhub-display/internal/repository/redis"
	"github.com/vogiaan1904/repairhub-display/pkg/logger"
)

// ContentService serves and maintains the per-location advertisement
// content consumed by the displays.
type ContentService interface {
	GetContent(ctx context.Context, locationID string) (*models.ContentBundle, error)
	UpsertSlide(ctx context.Context, locationID string, s models.Slide) (*models.Slide, error)
	RemoveSlide(ctx context.Context, locationID, slideID string) error
	SetBranding(ctx context.Context, locationID string, b models.Branding) error
	ApplyCampaign(ctx context.Context, locationID string, c models.Campaign) error
	RemoveCampaign(ctx context.Context, locationID, campaignID string) error
}

type contentService struct {
	repo repo.ContentRepository
	l    logger.Logger
}

func NewContentService(repo repo.ContentRepository, l logger.Logger) ContentService {
	return &contentService{
		repo: repo,
		l:    l,
	}
}

func (s *contentService) GetContent(ctx context.Context, locationID string) (*models.ContentBundle, error) {
	bundle, err := s.repo.GetBundle(ctx, locationID)
	if err != nil {
		s.l.Errorf(ctx, "contentService.GetContent: %v", err)
		return nil, err
	}

	return bundle, nil
}

func (s *contentService) UpsertSlide(ctx context.Context, locationID string, slide models.Slide) (*models.Slide, error) {
	if slide.ID == "" {
		slide.ID = uuid.New().String()
	}

	if err := s.repo.UpsertSlide(ctx, locationID, slide); err != nil {
		s.l.Errorf(ctx, "contentService.UpsertSlide: %v", err)
		return nil, fmt.Errorf("failed to upsert slide: %w", err)
	}

	return &slide, nil
}

func (s *contentService) RemoveSlide(ctx context.Context, locationID, slideID string) error {
	if err := s.repo.RemoveSlide(ctx, locationID, slideID); err != nil {
		s.l.Errorf(ctx, "contentService.RemoveSlide: %v", err)
		return fmt.Errorf("failed to remove slide: %w", err)
	}

	return nil
}

func (s *contentService) SetBranding(ctx context.Context, locationID string, b models.Branding) error {
	if err := s.repo.SetBranding(ctx, locationID, b); err != nil {
		s.l.Errorf(ctx, "contentService.SetBranding: %v", err)
		return fmt.Errorf("failed to set branding: %w", err)
	}

	return nil
}

func (s *contentService) ApplyCampaign(ctx context.Context, locationID string, c models.Campaign) error {
	if err := s.repo.UpsertCampaign(ctx, locationID, c); err != nil {
		s.l.Errorf(ctx, "contentService.ApplyCampaign: %v", err)
		return fmt.Errorf("failed to apply campaign: %w", err)
	}

	s.l.Infof(ctx, "Campaign applied - location_id: %s, campaign_id: %s", locationID, c.ID)

	return nil
}

func (s *contentService) RemoveCampaign(ctx context.Context, locationID, campaignID string) error {
	if err := s.repo.RemoveCampaign(ctx, locationID, campaignID); err != nil {
		s.l.Errorf(ctx, "contentService.RemoveCampaign: %v", err)
		return fmt.Errorf("failed to remove campaign: %w", err)
	}

	return nil
}
