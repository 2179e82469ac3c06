package models

// IntakeSession is the transient record of one customer-intake interaction.
// It lives only in memory on both ends of the channel and is reconstructed
// for each new session.
type IntakeSession struct {
	SessionID string   `json:"session_id"`
	Customer  Customer `json:"customer"`
	Device    Device   `json:"device"`
	Quote     Quote    `json:"quote"`
}

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type Device struct {
	Brand            string `json:"brand"`
	Model            string `json:"model"`
	DeviceType       string `json:"device_type"`
	IssueDescription string `json:"issue_description"`
	IMEI             string `json:"imei,omitempty"`
	SerialNumber     string `json:"serial_number,omitempty"`
	PhotoURL         string `json:"photo_url,omitempty"`
}

type Quote struct {
	EstimatedTotal float64         `json:"estimated_total"`
	DiagnosticFee  float64         `json:"diagnostic_fee"`
	AmountDueNow   float64         `json:"amount_due_now"`
	LineItems      []QuoteLineItem `json:"line_items"`
}

type QuoteLineItem struct {
	Name      string       `json:"name"`
	Quantity  int          `json:"quantity"`
	UnitPrice float64      `json:"unit_price"`
	Total     float64      `json:"total"`
	Kind      LineItemKind `json:"kind"`
}

type LineItemKind string

const (
	LineItemKindPart    LineItemKind = "part"
	LineItemKindService LineItemKind = "service"
	LineItemKindLabor   LineItemKind = "labor"
)

// SessionPatch is a partial session update. Each group is optional; within
// a group only non-nil fields are applied, so out-of-order partial updates
// merge deterministically (last write wins per field, never a delete).
type SessionPatch struct {
	Customer *CustomerPatch `json:"customer,omitempty"`
	Device   *DevicePatch   `json:"device,omitempty"`
	Quote    *QuotePatch    `json:"quote,omitempty"`
}

type CustomerPatch struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

type DevicePatch struct {
	Brand            *string `json:"brand,omitempty"`
	Model            *string `json:"model,omitempty"`
	DeviceType       *string `json:"device_type,omitempty"`
	IssueDescription *string `json:"issue_description,omitempty"`
	IMEI             *string `json:"imei,omitempty"`
	SerialNumber     *string `json:"serial_number,omitempty"`
	PhotoURL         *string `json:"photo_url,omitempty"`
}

// QuotePatch replaces line items wholesale when present. Partial edits to
// individual line items never cross the wire.
type QuotePatch struct {
	EstimatedTotal *float64         `json:"estimated_total,omitempty"`
	DiagnosticFee  *float64         `json:"diagnostic_fee,omitempty"`
	AmountDueNow   *float64         `json:"amount_due_now,omitempty"`
	LineItems      *[]QuoteLineItem `json:"line_items,omitempty"`
}

// Apply merges the patch into the session.
func (s *IntakeSession) Apply(p SessionPatch) {
	if p.Customer != nil {
		applyString(&s.Customer.Name, p.Customer.Name)
		applyString(&s.Customer.Phone, p.Customer.Phone)
		applyString(&s.Customer.Email, p.Customer.Email)
	}
	if p.Device != nil {
		applyString(&s.Device.Brand, p.Device.Brand)
		applyString(&s.Device.Model, p.Device.Model)
		applyString(&s.Device.DeviceType, p.Device.DeviceType)
		applyString(&s.Device.IssueDescription, p.Device.IssueDescription)
		applyString(&s.Device.IMEI, p.Device.IMEI)
		applyString(&s.Device.SerialNumber, p.Device.SerialNumber)
		applyString(&s.Device.PhotoURL, p.Device.PhotoURL)
	}
	if p.Quote != nil {
		applyFloat(&s.Quote.EstimatedTotal, p.Quote.EstimatedTotal)
		applyFloat(&s.Quote.DiagnosticFee, p.Quote.DiagnosticFee)
		applyFloat(&s.Quote.AmountDueNow, p.Quote.AmountDueNow)
		if p.Quote.LineItems != nil {
			s.Quote.LineItems = append([]QuoteLineItem(nil), (*p.Quote.LineItems)...)
		}
	}
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func applyFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// DisplayMode is the display-side projection of the session lifecycle.
type DisplayMode string

const (
	ModeStandby     DisplayMode = "standby"
	ModeConfirmData DisplayMode = "confirm_data"
	ModeCompleted   DisplayMode = "completed"
)

// ConnectionState reflects the realtime subscription lifecycle. Advisory
// only; nothing blocks on it.
type ConnectionState string

const (
	ConnectionConnecting   ConnectionState = "connecting"
	ConnectionConnected    ConnectionState = "connected"
	ConnectionDisconnected ConnectionState = "disconnected"
)
