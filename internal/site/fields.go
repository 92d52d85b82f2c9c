package site

import "github.com/customtruckbeds/site/internal/quote"

type fieldMeta struct {
	name      string
	label     string
	inputType string
	required  bool
	multiline bool
	wide      bool
	maxLength int
}

// formFields lists the inputs in page order.
var formFields = []fieldMeta{
	{name: quote.FieldFirstName, label: "First Name", inputType: "text", required: true, maxLength: quote.MaxNameLength},
	{name: quote.FieldLastName, label: "Last Name", inputType: "text", required: true, maxLength: quote.MaxNameLength},
	{name: quote.FieldEmail, label: "Email", inputType: "email", required: true, maxLength: quote.MaxEmailLength},
	{name: quote.FieldPhone, label: "Phone", inputType: "tel", required: true, maxLength: quote.MaxPhoneLength},
	{name: quote.FieldLocation, label: "Location", inputType: "text", maxLength: quote.MaxOptionalLength},
	{name: quote.FieldVehicle, label: "Vehicle Type", inputType: "text", maxLength: quote.MaxOptionalLength},
	{name: quote.FieldRequirements, label: "Project Requirements", required: true, multiline: true, wide: true, maxLength: quote.MaxRequirementsLength},
	{name: quote.FieldTimeline, label: "Preferred Timeline", inputType: "text", wide: true, maxLength: quote.MaxOptionalLength},
}

var webhookField = fieldMeta{name: quote.FieldWebhookURL, label: "Webhook URL", inputType: "url", wide: true, maxLength: quote.MaxWebhookURLLength}

type fieldView struct {
	Name        string
	Label       string
	Type        string
	Value       string
	Error       string
	Placeholder string
	Required    bool
	Multiline   bool
	Wide        bool
	MaxLength   int
}

type formView struct {
	Action string
	Fields []fieldView
	Notice *quote.Notice
}

func buildFormView(state quote.FormState, collectsWebhook bool, placeholder func(string) string) formView {
	metas := formFields
	if collectsWebhook {
		metas = append(append([]fieldMeta(nil), formFields...), webhookField)
	}
	view := formView{Action: "/quote", Notice: state.Notice, Fields: make([]fieldView, 0, len(metas))}
	for _, m := range metas {
		value, _ := state.Values.Get(m.name)
		view.Fields = append(view.Fields, fieldView{
			Name:        m.name,
			Label:       m.label,
			Type:        m.inputType,
			Value:       value,
			Error:       state.Error(m.name),
			Placeholder: placeholder(m.name),
			Required:    m.required,
			Multiline:   m.multiline,
			Wide:        m.wide,
			MaxLength:   m.maxLength,
		})
	}
	return view
}
