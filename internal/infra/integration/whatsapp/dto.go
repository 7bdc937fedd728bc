package whatsapp

// SendMessageInput descreve uma mensagem de template para um lead.
type SendMessageInput struct {
	PhoneNumber  string   // E.164 sem "+", ex: "5511999999999"
	TemplateName string   // ex: "lead_welcome"
	Parameters   []string // variáveis do corpo, na ordem do template
	Language     string   // vazio = pt_BR
}

type templateMessage struct {
	MessagingProduct string          `json:"messaging_product"`
	RecipientType    string          `json:"recipient_type"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Template         templatePayload `json:"template"`
}

type templatePayload struct {
	Name       string              `json:"name"`
	Language   templateLanguage    `json:"language"`
	Components []templateComponent `json:"components,omitempty"`
}

type templateLanguage struct {
	Code string `json:"code"`
}

type templateComponent struct {
	Type       string          `json:"type"`
	Parameters []textParameter `json:"parameters"`
}

type textParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type sendResult struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

func newTemplateMessage(in SendMessageInput) templateMessage {
	lang := in.Language
	if lang == "" {
		lang = "pt_BR"
	}

	msg := templateMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               in.PhoneNumber,
		Type:             "template",
		Template: templatePayload{
			Name:     in.TemplateName,
			Language: templateLanguage{Code: lang},
		},
	}
	if len(in.Parameters) > 0 {
		params := make([]textParameter, len(in.Parameters))
		for i, p := range in.Parameters {
			params[i] = textParameter{Type: "text", Text: p}
		}
		msg.Template.Components = []templateComponent{{Type: "body", Parameters: params}}
	}
	return msg
}
