package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/entity"
)

type EmailService interface {
	SendWelcome(to, name, organization string) error
	SendFollowUp(to, name string) error
}

type WhatsAppService interface {
	SendWelcome(ctx context.Context, phone, name string) error
}

// CRMService espelha leads novos num CRM externo.
type CRMService interface {
	SyncLead(ctx context.Context, event entity.LeadEvent) error
}

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Worker consome os eventos de lead e dispara a automação de contato.
type Worker struct {
	Channel  consumer
	Email    EmailService
	WhatsApp WhatsAppService
	CRM      CRMService // opcional
	Metrics  Metrics
	Logger   *zap.Logger
}

func NewWorker(ch consumer, email EmailService, whatsApp WhatsAppService, metrics Metrics, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		Channel:  ch,
		Email:    email,
		WhatsApp: whatsApp,
		Metrics:  metrics,
		Logger:   logger,
	}
}

// Start consome a fila até o contexto ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Logger.Info(" [*] worker aguardando eventos", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("canal de entregas fechado")
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var event entity.LeadEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.Logger.Error("❌ [WORKER] JSON inválido", zap.Error(err))
		// mensagem podre: rejeita sem requeue para não travar a fila
		d.Nack(false, false)
		return
	}

	log := w.Logger.With(zap.String("type", event.Type), zap.String("lead_id", event.LeadID))
	log.Debug("📥 [WORKER] evento recebido")

	if err := w.processEvent(ctx, event); err != nil {
		log.Error("❌ [WORKER] falha ao processar evento", zap.Error(err))
		d.Nack(false, false) // vai para a DLQ
		return
	}

	log.Info("✅ [WORKER] evento processado")
	d.Ack(false)
}

func (w *Worker) processEvent(ctx context.Context, event entity.LeadEvent) error {
	switch event.Type {
	case entity.EventLeadCreated:
		if w.Email != nil && event.Email != "" {
			if err := w.Email.SendWelcome(event.Email, event.Name, event.Organization); err != nil {
				w.recordIntegrationError("smtp")
				return fmt.Errorf("welcome email: %w", err)
			}
		}
		// WhatsApp é best-effort: o email já saiu, não reenviamos o evento por ele
		if w.WhatsApp != nil && event.Phone != "" {
			if err := w.WhatsApp.SendWelcome(ctx, event.Phone, event.Name); err != nil {
				w.recordIntegrationError("whatsapp")
				w.Logger.Warn("⚠️ WhatsApp: falha ao enviar saudação",
					zap.String("lead_id", event.LeadID), zap.Error(err))
			}
		}
		if w.CRM != nil {
			if err := w.CRM.SyncLead(ctx, event); err != nil {
				w.recordIntegrationError("crm")
				w.Logger.Warn("⚠️ CRM: falha ao sincronizar lead",
					zap.String("lead_id", event.LeadID), zap.Error(err))
			}
		}
		return nil

	case entity.EventLeadFollowUp:
		if w.Email == nil {
			return nil
		}
		if err := w.Email.SendFollowUp(event.Email, event.Name); err != nil {
			w.recordIntegrationError("smtp")
			return fmt.Errorf("follow-up email: %w", err)
		}
		return nil

	case entity.EventLeadStageChanged:
		w.Logger.Info("🔄 stage alterado",
			zap.String("lead_id", event.LeadID),
			zap.String("from", event.FromStage),
			zap.String("to", event.Stage),
		)
		return nil

	default:
		// sem handler: ACK para tirar da fila
		w.Logger.Warn("⚠️ tipo de evento desconhecido, apenas logando", zap.String("type", event.Type))
		return nil
	}
}

func (w *Worker) recordIntegrationError(service string) {
	if w.Metrics != nil {
		w.Metrics.RecordIntegrationError(service)
	}
}
