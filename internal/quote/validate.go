package quote

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to a human readable message.
type FieldErrors map[string]string

var fieldLabels = map[string]string{
	FieldFirstName:    "First name",
	FieldLastName:     "Last name",
	FieldEmail:        "Email",
	FieldPhone:        "Phone",
	FieldLocation:     "Location",
	FieldVehicle:      "Vehicle type",
	FieldRequirements: "Project requirements",
	FieldTimeline:     "Preferred timeline",
	FieldWebhookURL:   "Webhook URL",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate normalises req and checks it against the field rules. A nil result
// means the request is valid.
func Validate(req Request) FieldErrors {
	req = req.Normalize()
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return FieldErrors{"general": err.Error()}
	}
	out := make(FieldErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = messageFor(fe)
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be %s characters or less", label, fe.Param())
	case "email":
		return "Please enter a valid email address"
	case "http_url", "url":
		return "Please enter a valid webhook URL, including http:// or https://"
	}
	return label + " is invalid"
}
