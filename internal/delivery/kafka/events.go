package kafka

import (
	"time"

	"github.com/vogiaan1904/repairhub-display/internal/models"
)

// Events published BY the display subsystem (intake audit trail for the
// reporting side of the shop application)

type IntakeCompletedEvent struct {
	SessionID      string    `json:"session_id"`
	LocationID     string    `json:"location_id"`
	CustomerName   string    `json:"customer_name"`
	DeviceBrand    string    `json:"device_brand"`
	DeviceModel    string    `json:"device_model"`
	EstimatedTotal float64   `json:"estimated_total"`
	CompletedAt    time.Time `json:"completed_at"`
	Timestamp      time.Time `json:"timestamp"`
}

type IntakeCancelledEvent struct {
	SessionID   string    `json:"session_id"`
	LocationID  string    `json:"location_id"`
	Reason      string    `json:"reason"` // operator_cancelled, wizard_closed
	CancelledAt time.Time `json:"cancelled_at"`
	Timestamp   time.Time `json:"timestamp"`
}

// Events consumed BY the content service (from the shop backend's
// campaign and slide administration)

type CampaignActivatedEvent struct {
	LocationID string          `json:"location_id"`
	Campaign   models.Campaign `json:"campaign"`
	Timestamp  time.Time       `json:"timestamp"`
}

type CampaignDeactivatedEvent struct {
	LocationID string    `json:"location_id"`
	CampaignID string    `json:"campaign_id"`
	Reason     string    `json:"reason"` // window_ended, paused, removed
	Timestamp  time.Time `json:"timestamp"`
}

type SlideUpsertedEvent struct {
	LocationID string       `json:"location_id"`
	Slide      models.Slide `json:"slide"`
	Timestamp  time.Time    `json:"timestamp"`
}

// Topic names
const (
	TopicIntakeCompleted = "INTAKE_COMPLETED"
	TopicIntakeCancelled = "INTAKE_CANCELLED"

	TopicCampaignActivated   = "CAMPAIGN_ACTIVATED"
	TopicCampaignDeactivated = "CAMPAIGN_DEACTIVATED"
	TopicSlideUpserted       = "SLIDE_UPSERTED"
)

// ConsumerTopics are the topics the content service subscribes to.
var ConsumerTopics = []string{
	TopicCampaignActivated,
	TopicCampaignDeactivated,
	TopicSlideUpserted,
}
