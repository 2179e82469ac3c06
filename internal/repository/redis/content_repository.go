package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	pkgErrors "github.com/vogiaan1904/repairhub-display/internal/errors"
	"github.com/vogiaan1904/repairhub-display/internal/models"
	"github.com/vogiaan1904/repairhub-display/pkg/logger"
)

// ContentRepository stores the per-location advertisement content: paid
// campaigns, operator slides and branding. This is the authoritative set
// behind both the content API and the Kafka ingestion path.
type ContentRepository interface {
	UpsertCampaign(ctx context.Context, locationID string, c models.Campaign) error
	RemoveCampaign(ctx context.Context, locationID, campaignID string) error
	ListCampaigns(ctx context.Context, locationID string) ([]models.Campaign, error)

	UpsertSlide(ctx context.Context, locationID string, s models.Slide) error
	RemoveSlide(ctx context.Context, locationID, slideID string) error
	ListSlides(ctx context.Context, locationID string) ([]models.Slide, error)

	SetBranding(ctx context.Context, locationID string, b models.Branding) error
	GetBranding(ctx context.Context, locationID string) (*models.Branding, error)

	GetBundle(ctx context.Context, locationID string) (*models.ContentBundle, error)
}

type redisContentRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisContentRepository(cli *redis.Client, l logger.Logger) ContentRepository {
	return &redisContentRepository{
		cli: cli,
		l:   l,
	}
}

func (r *redisContentRepository) UpsertCampaign(ctx context.Context, locationID string, c models.Campaign) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal campaign: %w", err)
	}

	if err := r.cli.HSet(ctx, r.campaignsKey(locationID), c.ID, data).Err(); err != nil {
		r.l.Errorf(ctx, "redisContentRepository.UpsertCampaign: %v", err)
		return err
	}

	r.l.Debugf(ctx, "Campaign upserted - location_id: %s, campaign_id: %s", locationID, c.ID)

	return nil
}

func (r *redisContentRepository) RemoveCampaign(ctx context.Context, locationID, campaignID string) error {
	if err := r.cli.HDel(ctx, r.campaignsKey(locationID), campaignID).Err(); err != nil {
		r.l.Errorf(ctx, "redisContentRepository.RemoveCampaign: %v", err)
		return err
	}

	return nil
}

func (r *redisContentRepository) ListCampaigns(ctx context.Context, locationID string) ([]models.Campaign, error) {
	entries, err := r.cli.HGetAll(ctx, r.campaignsKey(locationID)).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisContentRepository.ListCampaigns: %v", err)
		return nil, err
	}

	campaigns := make([]models.Campaign, 0, len(entries))
	for id, raw := range entries {
		var c models.Campaign
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			r.l.Warnf(ctx, "Skipping corrupt campaign entry - location_id: %s, id: %s", locationID, id)
			continue
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, nil
}

func (r *redisContentRepository) UpsertSlide(ctx context.Context, locationID string, s models.Slide) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal slide: %w", err)
	}

	if err := r.cli.HSet(ctx, r.slidesKey(locationID), s.ID, data).Err(); err != nil {
		r.l.Errorf(ctx, "redisContentRepository.UpsertSlide: %v", err)
		return err
	}

	r.l.Debugf(ctx, "Slide upserted - location_id: %s, slide_id: %s", locationID, s.ID)

	return nil
}

func (r *redisContentRepository) RemoveSlide(ctx context.Context, locationID, slideID string) error {
	if err := r.cli.HDel(ctx, r.slidesKey(locationID), slideID).Err(); err != nil {
		r.l.Errorf(ctx, "redisContentRepository.RemoveSlide: %v", err)
		return err
	}

	return nil
}

func (r *redisContentRepository) ListSlides(ctx context.Context, locationID string) ([]models.Slide, error) {
	entries, err := r.cli.HGetAll(ctx, r.slidesKey(locationID)).Result()
	if err != nil {
		r.l.Errorf(ctx, "redisContentRepository.ListSlides: %v", err)
		return nil, err
	}

	slides := make([]models.Slide, 0, len(entries))
	for id, raw := range entries {
		var s models.Slide
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			r.l.Warnf(ctx, "Skipping corrupt slide entry - location_id: %s, id: %s", locationID, id)
			continue
		}
		slides = append(slides, s)
	}

	return slides, nil
}

func (r *redisContentRepository) SetBranding(ctx context.Context, locationID string, b models.Branding) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal branding: %w", err)
	}

	if err := r.cli.Set(ctx, r.brandingKey(locationID), data, 0).Err(); err != nil {
		r.l.Errorf(ctx, "redisContentRepository.SetBranding: %v", err)
		return err
	}

	return nil
}

func (r *redisContentRepository) GetBranding(ctx context.Context, locationID string) (*models.Branding, error) {
	raw, err := r.cli.Get(ctx, r.brandingKey(locationID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, pkgErrors.ErrLocationNotFound
		}
		r.l.Errorf(ctx, "redisContentRepository.GetBranding: %v", err)
		return nil, err
	}

	var b models.Branding
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal branding: %w", err)
	}

	return &b, nil
}

// GetBundle assembles the full content read contract for one location.
// A missing branding entry is not an error; the kiosk falls back to its
// built-in presentation.
func (r *redisContentRepository) GetBundle(ctx context.Context, locationID string) (*models.ContentBundle, error) {
	campaigns, err := r.ListCampaigns(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	slides, err := r.ListSlides(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list slides: %w", err)
	}

	bundle := &models.ContentBundle{
		LocationID: locationID,
		Campaigns:  campaigns,
		Slides:     slides,
	}

	branding, err := r.GetBranding(ctx, locationID)
	if err != nil && err != pkgErrors.ErrLocationNotFound {
		return nil, fmt.Errorf("failed to get branding: %w", err)
	}
	if branding != nil {
		bundle.Branding = *branding
	}

	return bundle, nil
}

func (r *redisContentRepository) campaignsKey(locationID string) string {
	return fmt.Sprintf("content:%s:campaigns", locationID)
}

func (r *redisContentRepository) slidesKey(locationID string) string {
	return fmt.Sprintf("content:%s:slides", locationID)
}

func (r *redisContentRepository) brandingKey(locationID string) string {
	return fmt.Sprintf("content:%s:branding", locationID)
}
