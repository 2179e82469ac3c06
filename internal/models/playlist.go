package models

import "time"

// PlaylistItemKind distinguishes the playlist item variants.
type PlaylistItemKind string

const (
	PlaylistItemSlide    PlaylistItemKind = "slide"
	PlaylistItemCampaign PlaylistItemKind = "campaign"
	PlaylistItemPromo    PlaylistItemKind = "promo"
)

// PlaylistItem is one entry of the standby rotation. Each item carries its
// own display duration; the rotation timer is rescheduled per item.
type PlaylistItem struct {
	ID          string           `json:"id"`
	Kind        PlaylistItemKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	VisualStyle string           `json:"visual_style"`
	ImageURL    string           `json:"image_url,omitempty"`
	DurationMs  int64            `json:"duration_ms,omitempty"`
	Enhanced    EnhancedFeatures `json:"enhanced_features,omitempty"`
}

// Duration returns the item's display duration, or def when unset.
func (i PlaylistItem) Duration(def time.Duration) time.Duration {
	if i.DurationMs <= 0 {
		return def
	}
	return time.Duration(i.DurationMs) * time.Millisecond
}

type EnhancedFeatures struct {
	Logo      bool `json:"logo,omitempty"`
	Countdown bool `json:"countdown,omitempty"`
	QRCode    bool `json:"qr_code,omitempty"`
}

// Slide is an operator-authored advertisement.
type Slide struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VisualStyle string `json:"visual_style"` // gradient | image
	ImageURL    string `json:"image_url,omitempty"`
	DurationMs  int64  `json:"duration_ms,omitempty"`
}

type CampaignStatus string

const (
	CampaignStatusActive CampaignStatus = "active"
	CampaignStatusPaused CampaignStatus = "paused"
	CampaignStatusEnded  CampaignStatus = "ended"
)

// Campaign is an externally managed paid advertisement with a booking window.
type Campaign struct {
	ID          string           `json:"id"`
	CampaignID  string           `json:"campaign_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url,omitempty"`
	Gradient    string           `json:"gradient,omitempty"`
	DurationMs  int64            `json:"duration_ms"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	Status      CampaignStatus   `json:"status"`
	Enhanced    EnhancedFeatures `json:"enhanced_features"`
}

// IsRunning reports whether the campaign should be shown on the given day:
// status active and the [StartDate, EndDate] window contains it.
func (c Campaign) IsRunning(now time.Time) bool {
	if c.Status != CampaignStatusActive {
		return false
	}
	day := now.Truncate(24 * time.Hour)
	start := c.StartDate.Truncate(24 * time.Hour)
	end := c.EndDate.Truncate(24 * time.Hour)
	return !day.Before(start) && !day.After(end)
}

// Branding is per-location presentation data served with the content bundle.
type Branding struct {
	ShopName    string `json:"shop_name"`
	AccentColor string `json:"accent_color,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
}

// ContentBundle is the read contract the display polls: everything the
// advertisement rotation needs for one location.
type ContentBundle struct {
	LocationID string     `json:"location_id"`
	Campaigns  []Campaign `json:"campaigns"`
	Slides     []Slide    `json:"slides"`
	Branding   Branding   `json:"branding"`
}
