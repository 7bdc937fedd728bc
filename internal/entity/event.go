package entity

import "time"

const (
	EventLeadCreated      = "lead.created"
	EventLeadStageChanged = "lead.stage_changed"
	EventLeadFollowUp     = "lead.follow_up"
)

// LeadEvent é o payload publicado na fila de automação.
type LeadEvent struct {
	Type         string    `json:"type"`
	LeadID       string    `json:"lead_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Organization string    `json:"organization,omitempty"`
	Source       string    `json:"source,omitempty"`
	Stage        string    `json:"stage,omitempty"`
	FromStage    string    `json:"from_stage,omitempty"`
	Origin       string    `json:"origin"` // EXCEL_IMPORT, CAPTURE, STAGE_UPDATE, FOLLOW_UP
	OccurredAt   time.Time `json:"occurred_at"`
}

func NewLeadEvent(eventType, origin string, lead *Lead) LeadEvent {
	return LeadEvent{
		Type:         eventType,
		LeadID:       lead.ID,
		Name:         lead.Name,
		Email:        lead.Email,
		Phone:        lead.Phone,
		Organization: lead.Organization,
		Source:       lead.Source,
		Stage:        lead.Stage,
		Origin:       origin,
		OccurredAt:   time.Now(),
	}
}
