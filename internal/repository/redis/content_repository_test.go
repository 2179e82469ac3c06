package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgErrors "github.com/vogiaan1904/repairhub-display/internal/errors"
	"github.com/vogiaan1904/repairhub-display/internal/models"
	pkgLog "github.com/vogiaan1904/repairhub-display/pkg/logger"
)

func setupContentRepo(t *testing.T) (*miniredis.Miniredis, ContentRepository) {
	t.Helper()

	mr := miniredis.RunT(t)
	cli := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cli.Close() })

	return mr, NewRedisContentRepository(cli, pkgLog.InitializeTestZapLogger())
}

func TestContentRepository_CampaignRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, repo := setupContentRepo(t)

	c := models.Campaign{
		ID:         "cmp-1",
		CampaignID: "booking-42",
		Title:      "Spring Screen Sale",
		Status:     models.CampaignStatusActive,
		StartDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		DurationMs: 7000,
	}
	require.NoError(t, repo.UpsertCampaign(ctx, "loc-1", c))

	campaigns, err := repo.ListCampaigns(ctx, "loc-1")
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, c, campaigns[0])

	// Upsert with the same ID overwrites.
	c.Title = "Extended Spring Sale"
	require.NoError(t, repo.UpsertCampaign(ctx, "loc-1", c))
	campaigns, err = repo.ListCampaigns(ctx, "loc-1")
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, "Extended Spring Sale", campaigns[0].Title)

	require.NoError(t, repo.RemoveCampaign(ctx, "loc-1", "cmp-1"))
	campaigns, err = repo.ListCampaigns(ctx, "loc-1")
	require.NoError(t, err)
	assert.Empty(t, campaigns)
}

func TestContentRepository_LocationsAreIsolated(t *testing.T) {
	ctx := context.Background()
	_, repo := setupContentRepo(t)

	require.NoError(t, repo.UpsertSlide(ctx, "loc-1", models.Slide{ID: "sl-1"}))

	slides, err := repo.ListSlides(ctx, "loc-2")
	require.NoError(t, err)
	assert.Empty(t, slides)
}

func TestContentRepository_CorruptEntriesSkipped(t *testing.T) {
	ctx := context.Background()
	mr, repo := setupContentRepo(t)

	require.NoError(t, repo.UpsertSlide(ctx, "loc-1", models.Slide{ID: "sl-1", Title: "Good"}))
	mr.HSet("content:loc-1:slides", "sl-broken", "{not json")

	slides, err := repo.ListSlides(ctx, "loc-1")
	require.NoError(t, err)
	require.Len(t, slides, 1)
	assert.Equal(t, "sl-1", slides[0].ID)
}

func TestContentRepository_BrandingMissing(t *testing.T) {
	ctx := context.Background()
	_, repo := setupContentRepo(t)

	_, err := repo.GetBranding(ctx, "loc-1")
	require.ErrorIs(t, err, pkgErrors.ErrLocationNotFound)
}

func TestContentRepository_GetBundle(t *testing.T) {
	ctx := context.Background()
	_, repo := setupContentRepo(t)

	require.NoError(t, repo.UpsertSlide(ctx, "loc-1", models.Slide{ID: "sl-1"}))
	require.NoError(t, repo.UpsertCampaign(ctx, "loc-1", models.Campaign{ID: "cmp-1"}))
	require.NoError(t, repo.SetBranding(ctx, "loc-1", models.Branding{ShopName: "TechFix"}))

	bundle, err := repo.GetBundle(ctx, "loc-1")
	require.NoError(t, err)
	assert.Equal(t, "loc-1", bundle.LocationID)
	assert.Len(t, bundle.Slides, 1)
	assert.Len(t, bundle.Campaigns, 1)
	assert.Equal(t, "TechFix", bundle.Branding.ShopName)
}

func TestContentRepository_GetBundleToleratesMissingBranding(t *testing.T) {
	ctx := context.Background()
	_, repo := setupContentRepo(t)

	bundle, err := repo.GetBundle(ctx, "loc-1")
	require.NoError(t, err)
	assert.Empty(t, bundle.Branding.ShopName)
	assert.Empty(t, bundle.Slides)
	assert.Empty(t, bundle.Campaigns)
}
