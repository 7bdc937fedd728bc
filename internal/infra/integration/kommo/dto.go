package kommo

// CreateLeadInput é o lead a ser espelhado no funil do Kommo.
type CreateLeadInput struct {
	Name         string
	Email        string
	Phone        string
	Organization string
	Source       string
	Price        float64
}

type customFieldValue struct {
	Value    string `json:"value"`
	EnumCode string `json:"enum_code,omitempty"`
}

type customField struct {
	FieldCode string             `json:"field_code"`
	Values    []customFieldValue `json:"values"`
}

type contactPayload struct {
	Name         string        `json:"name"`
	CustomFields []customField `json:"custom_fields_values"`
}

type tag struct {
	Name string `json:"name"`
}

type ref struct {
	ID int `json:"id"`
}

type leadPayload struct {
	Name     string  `json:"name"`
	StatusID int     `json:"status_id,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Embedded struct {
		Tags     []tag `json:"tags,omitempty"`
		Contacts []ref `json:"contacts"`
	} `json:"_embedded"`
}

// embeddedResponse cobre as respostas de /contacts e /leads.
type embeddedResponse struct {
	Embedded struct {
		Contacts []ref `json:"contacts"`
		Leads    []ref `json:"leads"`
	} `json:"_embedded"`
}
