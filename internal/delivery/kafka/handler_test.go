package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vogiaan1904/repairhub-display/internal/models"
	repo "github.com/vogiaan1904/repairhub-display/internal/repository/redis"
	"github.com/vogiaan1904/repairhub-display/internal/service"
	pkgLog "github.com/vogiaan1904/repairhub-display/pkg/logger"
)

func setupContentHandler(t *testing.T) (MessageHandler, service.ContentService) {
	t.Helper()

	mr := miniredis.RunT(t)
	cli := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cli.Close() })

	l := pkgLog.InitializeTestZapLogger()
	contentSvc := service.NewContentService(repo.NewRedisContentRepository(cli, l), l)

	return NewContentEventHandler(contentSvc, l), contentSvc
}

func TestContentEventHandler_CampaignLifecycle(t *testing.T) {
	ctx := context.Background()
	handler, contentSvc := setupContentHandler(t)

	campaign := models.Campaign{
		ID:        "cmp-1",
		Title:     "Spring Screen Sale",
		Status:    models.CampaignStatusActive,
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, handler.HandleCampaignActivated(ctx, CampaignActivatedEvent{
		LocationID: "loc-1",
		Campaign:   campaign,
	}))

	bundle, err := contentSvc.GetContent(ctx, "loc-1")
	require.NoError(t, err)
	require.Len(t, bundle.Campaigns, 1)
	assert.Equal(t, "Spring Screen Sale", bundle.Campaigns[0].Title)

	require.NoError(t, handler.HandleCampaignDeactivated(ctx, CampaignDeactivatedEvent{
		LocationID: "loc-1",
		CampaignID: "cmp-1",
		Reason:     "window_ended",
	}))

	bundle, err = contentSvc.GetContent(ctx, "loc-1")
	require.NoError(t, err)
	assert.Empty(t, bundle.Campaigns)
}

func TestContentEventHandler_SlideUpserted(t *testing.T) {
	ctx := context.Background()
	handler, contentSvc := setupContentHandler(t)

	require.NoError(t, handler.HandleSlideUpserted(ctx, SlideUpsertedEvent{
		LocationID: "loc-1",
		Slide:      models.Slide{ID: "sl-1", Title: "Trade-In Bonus", VisualStyle: "gradient"},
	}))

	bundle, err := contentSvc.GetContent(ctx, "loc-1")
	require.NoError(t, err)
	require.Len(t, bundle.Slides, 1)
	assert.Equal(t, "sl-1", bundle.Slides[0].ID)
}
