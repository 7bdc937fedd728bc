package entity

import "errors"

var ErrInvalidStageTransition = errors.New("invalid stage transition")

const (
	StageGenerated   = "generated"
	StageContacted   = "contacted"
	StageQualified   = "qualified"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageClosed      = "closed"
	StageLost        = "lost"

	DefaultStage    = StageGenerated
	DefaultStatus   = "new"
	DefaultPriority = "medium"
)

// Valores aceitos para os campos enumerados do lead.
var (
	ValidStages     = []string{StageGenerated, StageContacted, StageQualified, StageProposal, StageNegotiation, StageClosed, StageLost}
	ValidStatuses   = []string{"new", "active", "inactive", "converted", "lost"}
	ValidPriorities = []string{"low", "medium", "high", "urgent"}
)

// StageTransitions lista os próximos stages permitidos a partir de cada stage.
var StageTransitions = map[string]map[string]bool{
	StageGenerated:   {StageContacted: true, StageLost: true},
	StageContacted:   {StageQualified: true, StageLost: true},
	StageQualified:   {StageProposal: true, StageLost: true},
	StageProposal:    {StageNegotiation: true, StageClosed: true, StageLost: true},
	StageNegotiation: {StageClosed: true, StageLost: true},
	StageClosed:      {},
	StageLost:        {StageGenerated: true}, // recycle
}

// CanTransition diz se o lead pode ir de um stage para outro. Stage atual
// vazio aceita qualquer stage válido.
func CanTransition(from, to string) bool {
	if !IsValidStage(to) {
		return false
	}
	if from == "" || from == to {
		return true
	}
	next, ok := StageTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

func IsValidStage(s string) bool    { return contains(ValidStages, s) }
func IsValidStatus(s string) bool   { return contains(ValidStatuses, s) }
func IsValidPriority(s string) bool { return contains(ValidPriorities, s) }

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// CanonicalLeadFields é a ordem dos campos no template de importação.
var CanonicalLeadFields = []string{
	"name", "email", "phone", "organization", "requirement",
	"source", "stage", "status", "priority", "notes", "value",
}
