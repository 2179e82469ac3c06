package ads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vogiaan1904/repairhub-display/internal/models"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBuildPlaylist_EmptyBundleFallsBackToDefaults(t *testing.T) {
	items := BuildPlaylist(models.ContentBundle{}, day("2026-03-10"))

	require.NotEmpty(t, items)
	// Default slides first, promotional slide last.
	assert.Equal(t, models.PlaylistItemSlide, items[0].Kind)
	assert.Equal(t, models.PlaylistItemPromo, items[len(items)-1].Kind)
}

func TestBuildPlaylist_CustomSlidesSuppressDefaultsAndPromo(t *testing.T) {
	bundle := models.ContentBundle{
		Slides: []models.Slide{
			{ID: "sl-1", Title: "Trade-In Bonus"},
		},
	}

	items := BuildPlaylist(bundle, day("2026-03-10"))

	require.Len(t, items, 1)
	assert.Equal(t, "sl-1", items[0].ID)
	assert.Equal(t, models.PlaylistItemSlide, items[0].Kind)
}

func TestBuildPlaylist_RunningCampaignsAppendAfterSlides(t *testing.T) {
	bundle := models.ContentBundle{
		Slides: []models.Slide{{ID: "sl-1"}},
		Campaigns: []models.Campaign{
			{
				ID:        "cmp-1",
				Status:    models.CampaignStatusActive,
				StartDate: day("2026-03-01"),
				EndDate:   day("2026-03-31"),
			},
		},
	}

	items := BuildPlaylist(bundle, day("2026-03-10"))

	require.Len(t, items, 2)
	assert.Equal(t, "sl-1", items[0].ID)
	assert.Equal(t, "cmp-1", items[1].ID)
	assert.Equal(t, models.PlaylistItemCampaign, items[1].Kind)
}

func TestBuildPlaylist_FiltersCampaignsOutsideWindowOrInactive(t *testing.T) {
	bundle := models.ContentBundle{
		Slides: []models.Slide{{ID: "sl-1"}},
		Campaigns: []models.Campaign{
			{ID: "ended", Status: models.CampaignStatusActive, StartDate: day("2026-01-01"), EndDate: day("2026-01-31")},
			{ID: "future", Status: models.CampaignStatusActive, StartDate: day("2026-06-01"), EndDate: day("2026-06-30")},
			{ID: "paused", Status: models.CampaignStatusPaused, StartDate: day("2026-03-01"), EndDate: day("2026-03-31")},
			{ID: "running", Status: models.CampaignStatusActive, StartDate: day("2026-03-01"), EndDate: day("2026-03-31")},
		},
	}

	items := BuildPlaylist(bundle, day("2026-03-10"))

	require.Len(t, items, 2)
	assert.Equal(t, "running", items[1].ID)
}

func TestBuildPlaylist_CampaignWindowIsInclusive(t *testing.T) {
	c := models.Campaign{
		Status:    models.CampaignStatusActive,
		StartDate: day("2026-03-01"),
		EndDate:   day("2026-03-31"),
	}

	assert.True(t, c.IsRunning(day("2026-03-01")))
	assert.True(t, c.IsRunning(day("2026-03-31")))
	assert.False(t, c.IsRunning(day("2026-02-28")))
	assert.False(t, c.IsRunning(day("2026-04-01")))
}

func TestBuildPlaylist_CampaignVisualStyleFollowsImage(t *testing.T) {
	bundle := models.ContentBundle{
		Slides: []models.Slide{{ID: "sl-1"}},
		Campaigns: []models.Campaign{
			{ID: "with-image", ImageURL: "https://cdn.example.com/a.png", Status: models.CampaignStatusActive, StartDate: day("2026-03-01"), EndDate: day("2026-03-31")},
			{ID: "no-image", Status: models.CampaignStatusActive, StartDate: day("2026-03-01"), EndDate: day("2026-03-31")},
		},
	}

	items := BuildPlaylist(bundle, day("2026-03-10"))

	require.Len(t, items, 3)
	assert.Equal(t, "image", items[1].VisualStyle)
	assert.Equal(t, "gradient", items[2].VisualStyle)
}
