package quote

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() Request {
	return Request{
		FirstName:    "John",
		LastName:     "Smith",
		Email:        "john@example.com",
		Phone:        "0400123456",
		Requirements: "Need a tray for a Hilux",
	}
}

func TestValidateAcceptsMinimalRequest(t *testing.T) {
	assert.Empty(t, Validate(validRequest()))
}

func TestValidateMissingRequiredFields(t *testing.T) {
	required := []string{FieldFirstName, FieldLastName, FieldEmail, FieldPhone, FieldRequirements}
	for _, field := range required {
		t.Run(field, func(t *testing.T) {
			state, err := UpdateField(FormState{Values: validRequest()}, field, "   ")
			require.NoError(t, err)

			errs := Validate(state.Values)
			require.Len(t, errs, 1)
			assert.Contains(t, errs, field)
			assert.True(t, strings.HasSuffix(errs[field], "is required"), errs[field])
		})
	}

	errs := Validate(Request{})
	assert.Len(t, errs, len(required))
	for _, field := range required {
		assert.Contains(t, errs, field)
	}
}

func TestValidateEmailGrammar(t *testing.T) {
	for _, email := range []string{"not-an-email", "bad", "john@", "@example.com", "john smith@example.com"} {
		req := validRequest()
		req.Email = email
		errs := Validate(req)
		require.Len(t, errs, 1, email)
		assert.Contains(t, strings.ToLower(errs[FieldEmail]), "email", email)
	}

	req := validRequest()
	req.Email = "john@example.com"
	assert.Empty(t, Validate(req))
}

func TestValidateMaxLengthIsInclusive(t *testing.T) {
	cases := []struct {
		field string
		at    string
		over  string
	}{
		{FieldFirstName, strings.Repeat("a", MaxNameLength), strings.Repeat("a", MaxNameLength+1)},
		{FieldLastName, strings.Repeat("b", MaxNameLength), strings.Repeat("b", MaxNameLength+1)},
		{FieldEmail, emailOfLength(MaxEmailLength), emailOfLength(MaxEmailLength + 1)},
		{FieldPhone, strings.Repeat("0", MaxPhoneLength), strings.Repeat("0", MaxPhoneLength+1)},
		{FieldLocation, strings.Repeat("l", MaxOptionalLength), strings.Repeat("l", MaxOptionalLength+1)},
		{FieldVehicle, strings.Repeat("v", MaxOptionalLength), strings.Repeat("v", MaxOptionalLength+1)},
		{FieldTimeline, strings.Repeat("t", MaxOptionalLength), strings.Repeat("t", MaxOptionalLength+1)},
		{FieldRequirements, strings.Repeat("r", MaxRequirementsLength), strings.Repeat("r", MaxRequirementsLength+1)},
		{FieldWebhookURL, urlOfLength(MaxWebhookURLLength), urlOfLength(MaxWebhookURLLength + 1)},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			state, err := UpdateField(FormState{Values: validRequest()}, tc.field, tc.at)
			require.NoError(t, err)
			assert.Empty(t, Validate(state.Values), "value at the limit must pass")

			state, err = UpdateField(state, tc.field, tc.over)
			require.NoError(t, err)
			errs := Validate(state.Values)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[tc.field], "characters or less")
		})
	}
}

func TestValidateTrimsAndCountsCharacters(t *testing.T) {
	req := validRequest()
	req.FirstName = "   " + strings.Repeat("\u00e9", MaxNameLength) + "\t\n"
	assert.Empty(t, Validate(req))

	// "e" followed by a combining acute accent composes to one character.
	req.FirstName = strings.Repeat("e\u0301", MaxNameLength)
	assert.Empty(t, Validate(req))
}

func TestValidateWebhookURL(t *testing.T) {
	req := validRequest()
	req.WebhookURL = "not a url"
	errs := Validate(req)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[FieldWebhookURL], "webhook URL")

	req.WebhookURL = ""
	assert.Empty(t, Validate(req))

	req.WebhookURL = "https://hooks.example.com/catch/123"
	assert.Empty(t, Validate(req))
}

// emailOfLength builds a syntactically valid address of exactly n characters.
func emailOfLength(n int) string {
	const local, tld = "j@", ".com"
	body := n - len(local) - len(tld)
	k, r := body/50, body%50
	if r == 0 {
		k, r = k-1, 50
	}
	return local + strings.Repeat(strings.Repeat("a", 49)+".", k) + strings.Repeat("a", r) + tld
}

func urlOfLength(n int) string {
	const prefix = "https://hooks.example.com/"
	return prefix + strings.Repeat("p", n-len(prefix))
}
