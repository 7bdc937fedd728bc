package usecase

import (
	"fmt"

	"github.com/xavierca1/leadhub/internal/entity"
)

const ReasonExistsInDatabase = "already exists in database"

type DuplicateResult struct {
	UniqueLeads []TransformedLead
	// ExistingMatches são linhas cujo email já está no store, com ExistingID preenchido.
	ExistingMatches []TransformedLead
	Duplicates      []DuplicateRecord
}

// DetectDuplicates separa as linhas únicas das repetidas. O match com o store
// tem prioridade sobre o match dentro do próprio arquivo.
func DetectDuplicates(leads []TransformedLead, existing []entity.Lead) DuplicateResult {
	existingByEmail := make(map[string]entity.Lead, len(existing))
	for _, l := range existing {
		existingByEmail[entity.NormalizeEmail(l.Email)] = l
	}

	seen := make(map[string]int, len(leads)) // email -> primeira linha
	var res DuplicateResult

	for _, lead := range leads {
		email := entity.NormalizeEmail(lead.Email)

		if stored, ok := existingByEmail[email]; ok {
			if _, repeated := seen[email]; !repeated {
				lead.ExistingID = stored.ID
				res.ExistingMatches = append(res.ExistingMatches, lead)
				seen[email] = lead.RowIndex
			}
			res.Duplicates = append(res.Duplicates, DuplicateRecord{
				Row:    lead.RowIndex,
				Email:  email,
				Reason: ReasonExistsInDatabase,
			})
			continue
		}

		if firstRow, ok := seen[email]; ok {
			res.Duplicates = append(res.Duplicates, DuplicateRecord{
				Row:    lead.RowIndex,
				Email:  email,
				Reason: fmt.Sprintf("duplicate in current batch, row %d", firstRow),
			})
			continue
		}

		seen[email] = lead.RowIndex
		res.UniqueLeads = append(res.UniqueLeads, lead)
	}

	return res
}
