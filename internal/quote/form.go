package quote

// Notice kinds shown above the form.
const (
	NoticeSuccess = "success"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// Notice is a one-off message about the last submit.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// FormState is the in-memory form record. Operations never mutate a state in
// place; they return a fresh copy.
type FormState struct {
	Values Request     `json:"values"`
	Errors FieldErrors `json:"errors,omitempty"`
	Notice *Notice     `json:"notice,omitempty"`
}

// NewFormState returns the empty state a freshly mounted form starts with.
func NewFormState() FormState {
	return FormState{}
}

// UpdateField sets one field and drops its error annotation. No validation
// happens here.
func UpdateField(state FormState, field, value string) (FormState, error) {
	values, ok := state.Values.with(field, value)
	if !ok {
		return state, &UnknownFieldError{Field: field}
	}
	next := state.clone()
	next.Values = values
	delete(next.Errors, field)
	if len(next.Errors) == 0 {
		next.Errors = nil
	}
	return next, nil
}

// Error returns the message recorded for field, if any.
func (s FormState) Error(field string) string {
	return s.Errors[field]
}

// HasErrors reports whether any field carries an error.
func (s FormState) HasErrors() bool {
	return len(s.Errors) > 0
}

// IsZero reports whether the state holds nothing worth restoring.
func (s FormState) IsZero() bool {
	return s.Values == (Request{}) && len(s.Errors) == 0 && s.Notice == nil
}

func (s FormState) clone() FormState {
	next := FormState{Values: s.Values}
	if len(s.Errors) > 0 {
		next.Errors = make(FieldErrors, len(s.Errors))
		for k, v := range s.Errors {
			next.Errors[k] = v
		}
	}
	if s.Notice != nil {
		n := *s.Notice
		next.Notice = &n
	}
	return next
}

func (s FormState) withErrors(errs FieldErrors, notice Notice) FormState {
	next := s.clone()
	next.Errors = make(FieldErrors, len(errs))
	for k, v := range errs {
		next.Errors[k] = v
	}
	next.Notice = &notice
	return next
}

// WithNotice returns a copy of s carrying notice.
func (s FormState) WithNotice(notice Notice) FormState {
	next := s.clone()
	next.Notice = &notice
	return next
}

// reset clears every field. keepWebhook retains the operator supplied URL.
func (s FormState) reset(keepWebhook bool, notice Notice) FormState {
	next := FormState{Notice: &notice}
	if keepWebhook {
		next.Values.WebhookURL = s.Values.WebhookURL
	}
	return next
}
