package quote

import "time"

const (
	// Source tags every payload with the site it came from.
	Source = "customtruckbeds.com.au"
	// FormType tags every payload with the form that produced it.
	FormType = "quote_request"

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Payload is the JSON body posted to the automation webhook. Optional fields
// are always present, empty when the visitor left them blank.
type Payload struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	Vehicle      string `json:"vehicle"`
	Requirements string `json:"requirements"`
	Timeline     string `json:"timeline"`
	Timestamp    string `json:"timestamp"`
	Source       string `json:"source"`
	FormType     string `json:"formType"`
}

// NewPayload builds the outbound body from a validated request.
func NewPayload(req Request, now time.Time) Payload {
	req = req.Normalize()
	return Payload{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Location:     req.Location,
		Vehicle:      req.Vehicle,
		Requirements: req.Requirements,
		Timeline:     req.Timeline,
		Timestamp:    now.UTC().Format(timestampLayout),
		Source:       Source,
		FormType:     FormType,
	}
}
