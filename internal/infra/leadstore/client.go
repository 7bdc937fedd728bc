// Package leadstore implementa o LeadStore sobre a API HTTP de leads do CRM.
package leadstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/entity"
)

const (
	defaultTimeout = 10 * time.Second

	// limita o tamanho da URL de cada GET /leads
	maxEmailsPerLookup = 50
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// FindByEmails consulta em lotes, um parâmetro email por endereço.
func (c *Client) FindByEmails(ctx context.Context, emails []string) ([]entity.Lead, error) {
	var leads []entity.Lead
	for start := 0; start < len(emails); start += maxEmailsPerLookup {
		end := min(start+maxEmailsPerLookup, len(emails))
		found, err := c.lookup(ctx, emails[start:end])
		if err != nil {
			return nil, err
		}
		leads = append(leads, found...)
	}
	return leads, nil
}

func (c *Client) lookup(ctx context.Context, emails []string) ([]entity.Lead, error) {
	q := url.Values{"email": emails}
	var dtos []LeadDTO
	status, err := c.do(ctx, http.MethodGet, "/leads?"+q.Encode(), nil, &dtos)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	leads := make([]entity.Lead, 0, len(dtos))
	for _, d := range dtos {
		leads = append(leads, d.toEntity())
	}
	return leads, nil
}

func (c *Client) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	leads, err := c.FindByEmails(ctx, []string{entity.NormalizeEmail(email)})
	if err != nil {
		return nil, err
	}
	for i := range leads {
		if leads[i].Email == entity.NormalizeEmail(email) {
			return &leads[i], nil
		}
	}
	return nil, entity.ErrLeadNotFound
}

func (c *Client) Create(ctx context.Context, lead *entity.Lead) error {
	var created LeadDTO
	status, err := c.do(ctx, http.MethodPost, "/leads", fromEntity(lead), &created)
	if err != nil {
		if status == http.StatusConflict {
			return entity.ErrEmailAlreadyExists
		}
		return err
	}
	if created.ID != "" {
		lead.ID = created.ID
	}
	return nil
}

func (c *Client) Update(ctx context.Context, lead *entity.Lead) error {
	status, err := c.do(ctx, http.MethodPut, "/leads/"+url.PathEscape(lead.ID), fromEntity(lead), nil)
	if err != nil {
		switch status {
		case http.StatusNotFound:
			return entity.ErrLeadNotFound
		case http.StatusConflict:
			return entity.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

// do executa a requisição e decodifica o campo data do envelope em out.
// O status é devolvido mesmo em erro para o chamador mapear 404/409.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("leadstore: failed to encode payload: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("leadstore: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("❌ lead store inacessível", zap.String("method", method), zap.Error(err))
		return 0, fmt.Errorf("%w: %s %s: %v", entity.ErrStoreUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Warn("❌ lead store retornou erro", zap.Int("status", resp.StatusCode))
		return resp.StatusCode, fmt.Errorf("%w: status %d", entity.ErrStoreUnavailable, resp.StatusCode)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return resp.StatusCode, fmt.Errorf("leadstore: invalid response (status %d): %w", resp.StatusCode, err)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || (len(raw) > 0 && !env.Success) {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, fmt.Errorf("leadstore: %s %s: %d %s", method, path, resp.StatusCode, msg)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("leadstore: failed to decode data: %w", err)
		}
	}
	return resp.StatusCode, nil
}
