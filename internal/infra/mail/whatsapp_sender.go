package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/infra/integration/whatsapp"
)

type whatsAppClient interface {
	SendMessage(ctx context.Context, input whatsapp.SendMessageInput) error
}

type WhatsAppSender struct {
	client     whatsAppClient
	templateID string
	logger     *zap.Logger
}

func NewWhatsAppSender(client whatsAppClient, templateID string, logger *zap.Logger) *WhatsAppSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppSender{client: client, templateID: templateID, logger: logger}
}

// SendWelcome manda a saudação de template. Dados incompletos são ignorados.
func (s *WhatsAppSender) SendWelcome(ctx context.Context, phone, name string) error {
	if phone == "" || name == "" || s.templateID == "" {
		s.logger.Warn("⚠️ WhatsApp: dados incompletos para envio",
			zap.String("phone", phone), zap.String("name", name), zap.String("template", s.templateID))
		return nil
	}

	return s.client.SendMessage(ctx, whatsapp.SendMessageInput{
		PhoneNumber:  onlyDigits(phone),
		TemplateName: s.templateID,
		Parameters:   []string{name},
	})
}

func onlyDigits(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return string(out)
}
