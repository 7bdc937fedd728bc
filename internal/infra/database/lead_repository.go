package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/xavierca1/leadhub/internal/entity"
)

const leadColumns = `id, name, email, phone, organization, requirement, source, stage, status,
	priority, notes, value, email_stage, last_email_sent_at, created_at, updated_at`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// FindByEmails busca os leads cujos emails estão na lista (um único round-trip).
func (r *LeadRepository) FindByEmails(ctx context.Context, emails []string) ([]entity.Lead, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	query := `SELECT ` + leadColumns + ` FROM leads WHERE email = ANY($1)`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(emails))
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var leads []entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, classify(err)
		}
		leads = append(leads, *lead)
	}
	return leads, classify(rows.Err())
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE email = $1`
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, entity.NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return lead, classify(err)
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return lead, classify(err)
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, name, email, phone, organization, requirement, source, stage, status,
			priority, notes, value, email_stage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		nullString(lead.Organization),
		nullString(lead.Requirement),
		nullString(lead.Source),
		lead.Stage,
		lead.Status,
		lead.Priority,
		nullString(lead.Notes),
		lead.Value,
		lead.EmailStage,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	return classify(err)
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads SET
			name = $2, email = $3, phone = $4, organization = $5, requirement = $6, source = $7,
			stage = $8, status = $9, priority = $10, notes = $11, value = $12, updated_at = $13
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		nullString(lead.Organization),
		nullString(lead.Requirement),
		nullString(lead.Source),
		lead.Stage,
		lead.Status,
		lead.Priority,
		nullString(lead.Notes),
		lead.Value,
		lead.UpdatedAt,
	)
	if err != nil {
		return classify(err)
	}
	return expectOneRow(res)
}

// Upsert grava o lead pelo email. Campos opcionais vazios não sobrescrevem
// o que já está no banco.
func (r *LeadRepository) Upsert(ctx context.Context, lead *entity.Lead) (bool, error) {
	query := `
		INSERT INTO leads (id, name, email, phone, organization, requirement, source, stage, status,
			priority, notes, value, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (email)
		DO UPDATE SET
			name = COALESCE(EXCLUDED.name, leads.name),
			phone = COALESCE(EXCLUDED.phone, leads.phone),
			organization = COALESCE(EXCLUDED.organization, leads.organization),
			requirement = COALESCE(EXCLUDED.requirement, leads.requirement),
			source = COALESCE(EXCLUDED.source, leads.source),
			notes = COALESCE(EXCLUDED.notes, leads.notes),
			value = COALESCE(EXCLUDED.value, leads.value),
			updated_at = NOW()
		RETURNING id, created_at, updated_at, stage, status, priority, email_stage, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.DB.QueryRowContext(
		ctx,
		query,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		nullString(lead.Organization),
		nullString(lead.Requirement),
		nullString(lead.Source),
		lead.Stage,
		lead.Status,
		lead.Priority,
		nullString(lead.Notes),
		lead.Value,
	).Scan(
		&lead.ID,
		&lead.CreatedAt,
		&lead.UpdatedAt,
		&lead.Stage,
		&lead.Status,
		&lead.Priority,
		&lead.EmailStage,
		&inserted,
	)
	return inserted, classify(err)
}

func (r *LeadRepository) UpdateStage(ctx context.Context, id, stage string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET stage = $2, updated_at = NOW() WHERE id = $1`, id, stage)
	if err != nil {
		return classify(err)
	}
	return expectOneRow(res)
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	return expectOneRow(res)
}

// FindFollowUpCandidates devolve leads ainda em "generated", sem nenhum email
// de follow-up, criados antes de olderThan.
func (r *LeadRepository) FindFollowUpCandidates(ctx context.Context, olderThan time.Time, limit int) ([]entity.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE stage = $1 AND email_stage = 0 AND created_at < $2
		ORDER BY created_at
		LIMIT $3
	`
	rows, err := r.DB.QueryContext(ctx, query, entity.StageGenerated, olderThan, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var leads []entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, classify(err)
		}
		leads = append(leads, *lead)
	}
	return leads, classify(rows.Err())
}

func (r *LeadRepository) MarkEmailSent(ctx context.Context, id string, emailStage int) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE leads SET email_stage = $2, last_email_sent_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, id, emailStage)
	if err != nil {
		return classify(err)
	}
	return expectOneRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead                                     entity.Lead
		organization, requirement, source, notes sql.NullString
		value                                    sql.NullFloat64
		lastEmail                                sql.NullTime
	)

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&organization,
		&requirement,
		&source,
		&lead.Stage,
		&lead.Status,
		&lead.Priority,
		&notes,
		&value,
		&lead.EmailStage,
		&lastEmail,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Organization = organization.String
	lead.Requirement = requirement.String
	lead.Source = source.String
	lead.Notes = notes.String
	if value.Valid {
		v := value.Float64
		lead.Value = &v
	}
	if lastEmail.Valid {
		t := lastEmail.Time
		lead.LastEmailSentAt = &t
	}
	return &lead, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

// classify traduz erros do driver: 23505 vira ErrEmailAlreadyExists e falhas
// de conexão viram ErrStoreUnavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return entity.ErrEmailAlreadyExists
	}

	var (
		connErr *pgconn.ConnectError
		netErr  net.Error
	)
	if errors.As(err, &connErr) || errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)
	}
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
