// Package ads owns the standby advertisement rotation: playlist
// composition from operator slides and paid campaigns, and the per-item
// rotation timer.
package ads

import (
	"time"

	"github.com/vogiaan1904/repairhub-display/internal/models"
)

// defaultSlides keeps a freshly provisioned location from showing an empty
// screen before any content has been authored.
var defaultSlides = []models.Slide{
	{
		ID:          "default-welcome",
		Title:       "Welcome",
		Description: "Repairs, trade-ins and accessories for every device",
		VisualStyle: "gradient",
	},
	{
		ID:          "default-diagnostics",
		Title:       "Free Diagnostics",
		Description: "Bring in your device and get a quote in minutes",
		VisualStyle: "gradient",
	},
	{
		ID:          "default-warranty",
		Title:       "90-Day Warranty",
		Description: "Every repair is covered, parts and labor included",
		VisualStyle: "gradient",
	},
}

// promoSlide is appended when the location has no custom slides, so the
// rotation never gets trivially short.
var promoSlide = models.PlaylistItem{
	ID:          "promo-space-available",
	Kind:        models.PlaylistItemPromo,
	Title:       "This Space Is Available",
	Description: "Advertise your business on this screen. Ask our staff for details.",
	VisualStyle: "gradient",
}

// BuildPlaylist composes the effective rotation: custom (or default)
// slides first, running paid campaigns appended, and the promotional
// slide last when no custom slides exist. The result is never empty.
func BuildPlaylist(bundle models.ContentBundle, now time.Time) []models.PlaylistItem {
	slides := bundle.Slides
	custom := len(slides) > 0
	if !custom {
		slides = defaultSlides
	}

	items := make([]models.PlaylistItem, 0, len(slides)+len(bundle.Campaigns)+1)
	for _, s := range slides {
		items = append(items, models.PlaylistItem{
			ID:          s.ID,
			Kind:        models.PlaylistItemSlide,
			Title:       s.Title,
			Description: s.Description,
			VisualStyle: s.VisualStyle,
			ImageURL:    s.ImageURL,
			DurationMs:  s.DurationMs,
		})
	}

	for _, c := range bundle.Campaigns {
		if !c.IsRunning(now) {
			continue
		}
		style := "image"
		if c.ImageURL == "" {
			style = "gradient"
		}
		items = append(items, models.PlaylistItem{
			ID:          c.ID,
			Kind:        models.PlaylistItemCampaign,
			Title:       c.Title,
			Description: c.Description,
			VisualStyle: style,
			ImageURL:    c.ImageURL,
			DurationMs:  c.DurationMs,
			Enhanced:    c.Enhanced,
		})
	}

	if !custom {
		items = append(items, promoSlide)
	}

	return items
}
