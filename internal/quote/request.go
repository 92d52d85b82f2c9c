// Package quote implements the quote-request lead form: field rules, per-update
// form state, the outbound webhook payload and the submit flow.
package quote

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Form field names as posted by the page and used as error keys.
const (
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldLocation     = "location"
	FieldVehicle      = "vehicle"
	FieldRequirements = "requirements"
	FieldTimeline     = "timeline"
	FieldWebhookURL   = "webhookUrl"
)

// Maximum lengths in characters.
const (
	MaxNameLength         = 50
	MaxEmailLength        = 255
	MaxPhoneLength        = 20
	MaxOptionalLength     = 100
	MaxRequirementsLength = 2000
	MaxWebhookURLLength   = 2048
)

// Request is a single quote request as entered by a visitor.
type Request struct {
	FirstName    string `json:"firstName" form:"firstName" validate:"required,max=50"`
	LastName     string `json:"lastName" form:"lastName" validate:"required,max=50"`
	Email        string `json:"email" form:"email" validate:"required,max=255,email"`
	Phone        string `json:"phone" form:"phone" validate:"required,max=20"`
	Location     string `json:"location" form:"location" validate:"max=100"`
	Vehicle      string `json:"vehicle" form:"vehicle" validate:"max=100"`
	Requirements string `json:"requirements" form:"requirements" validate:"required,max=2000"`
	Timeline     string `json:"timeline" form:"timeline" validate:"max=100"`
	WebhookURL   string `json:"webhookUrl,omitempty" form:"webhookUrl" validate:"omitempty,max=2048,http_url"`
}

// Fields lists every form field in display order.
func Fields() []string {
	return []string{
		FieldFirstName,
		FieldLastName,
		FieldEmail,
		FieldPhone,
		FieldLocation,
		FieldVehicle,
		FieldRequirements,
		FieldTimeline,
		FieldWebhookURL,
	}
}

// Normalize trims surrounding whitespace and applies NFC so lengths are counted
// on composed characters.
func (r Request) Normalize() Request {
	return Request{
		FirstName:    clean(r.FirstName),
		LastName:     clean(r.LastName),
		Email:        clean(r.Email),
		Phone:        clean(r.Phone),
		Location:     clean(r.Location),
		Vehicle:      clean(r.Vehicle),
		Requirements: clean(r.Requirements),
		Timeline:     clean(r.Timeline),
		WebhookURL:   clean(r.WebhookURL),
	}
}

// Get returns the value of the named field.
func (r Request) Get(field string) (string, bool) {
	switch field {
	case FieldFirstName:
		return r.FirstName, true
	case FieldLastName:
		return r.LastName, true
	case FieldEmail:
		return r.Email, true
	case FieldPhone:
		return r.Phone, true
	case FieldLocation:
		return r.Location, true
	case FieldVehicle:
		return r.Vehicle, true
	case FieldRequirements:
		return r.Requirements, true
	case FieldTimeline:
		return r.Timeline, true
	case FieldWebhookURL:
		return r.WebhookURL, true
	}
	return "", false
}

// with returns a copy of r with the named field set.
func (r Request) with(field, value string) (Request, bool) {
	switch field {
	case FieldFirstName:
		r.FirstName = value
	case FieldLastName:
		r.LastName = value
	case FieldEmail:
		r.Email = value
	case FieldPhone:
		r.Phone = value
	case FieldLocation:
		r.Location = value
	case FieldVehicle:
		r.Vehicle = value
	case FieldRequirements:
		r.Requirements = value
	case FieldTimeline:
		r.Timeline = value
	case FieldWebhookURL:
		r.WebhookURL = value
	default:
		return r, false
	}
	return r, true
}

func clean(value string) string {
	return norm.NFC.String(strings.TrimSpace(value))
}
