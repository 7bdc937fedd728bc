package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound       = errors.New("lead not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidStage       = errors.New("invalid stage")
	ErrStoreUnavailable   = errors.New("lead store unavailable")
)

type Lead struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Organization    string     `json:"organization,omitempty"`
	Requirement     string     `json:"requirement,omitempty"`
	Source          string     `json:"source,omitempty"`
	Stage           string     `json:"stage"`    // generated, contacted, ... closed, lost
	Status          string     `json:"status"`   // new, active, inactive, converted, lost
	Priority        string     `json:"priority"` // low, medium, high, urgent
	Notes           string     `json:"notes,omitempty"`
	Value           *float64   `json:"value,omitempty"`
	EmailStage      int        `json:"email_stage"`
	LastEmailSentAt *time.Time `json:"last_email_sent_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewLead monta um lead novo com defaults de stage/status/priority.
func NewLead(name, email, phone string) *Lead {
	now := time.Now()
	return &Lead{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     NormalizeEmail(email),
		Phone:     phone,
		Stage:     DefaultStage,
		Status:    DefaultStatus,
		Priority:  DefaultPriority,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyDefaults preenche os enums vazios.
func (l *Lead) ApplyDefaults() {
	if l.Stage == "" {
		l.Stage = DefaultStage
	}
	if l.Status == "" {
		l.Status = DefaultStatus
	}
	if l.Priority == "" {
		l.Priority = DefaultPriority
	}
}

func (l *Lead) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(l.Email) == "" {
		return errors.New("email is required")
	}
	if strings.TrimSpace(l.Phone) == "" {
		return errors.New("phone is required")
	}
	if l.Stage != "" && !IsValidStage(l.Stage) {
		return ErrInvalidStage
	}
	return nil
}

// NormalizeEmail é a chave de comparação de leads: sem espaços e em minúsculas.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LeadRepositoryInterface cobre as operações unitárias sobre leads.
// Upsert devolve true quando o lead foi inserido (e não atualizado).
type LeadRepositoryInterface interface {
	Upsert(ctx context.Context, lead *Lead) (bool, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	UpdateStage(ctx context.Context, id, stage string) error
	Delete(ctx context.Context, id string) error
}
