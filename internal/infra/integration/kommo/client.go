package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/entity"
)

var (
	ErrNotConfigured = errors.New("kommo não configurado")
	errNoContact     = errors.New("contato não encontrado")
)

type Client struct {
	apiToken   string
	baseURL    string
	statusID   int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient recebe a URL da conta, ex.: https://empresa.kommo.com/api/v4.
// statusID é a etapa do funil onde os leads novos entram (0 = padrão da conta).
func NewClient(baseURL, apiToken string, statusID int, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiToken:   apiToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
		statusID:   statusID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (c *Client) Configured() bool {
	return c.apiToken != "" && c.baseURL != ""
}

// SyncLead espelha um lead recém-criado no Kommo.
func (c *Client) SyncLead(ctx context.Context, event entity.LeadEvent) error {
	_, err := c.CreateLead(ctx, CreateLeadInput{
		Name:         event.Name,
		Email:        event.Email,
		Phone:        event.Phone,
		Organization: event.Organization,
		Source:       event.Source,
	})
	return err
}

func (c *Client) CreateLead(ctx context.Context, input CreateLeadInput) (int, error) {
	if !c.Configured() {
		return 0, ErrNotConfigured
	}

	contactID, err := c.findOrCreateContact(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("erro ao criar/buscar contato: %w", err)
	}

	lead := leadPayload{Name: leadTitle(input), StatusID: c.statusID, Price: input.Price}
	lead.Embedded.Contacts = []ref{{ID: contactID}}
	if input.Source != "" {
		lead.Embedded.Tags = []tag{{Name: input.Source}}
	}

	var result embeddedResponse
	if err := c.do(ctx, http.MethodPost, "/leads", []leadPayload{lead}, &result); err != nil {
		return 0, fmt.Errorf("erro ao criar lead: %w", err)
	}
	if len(result.Embedded.Leads) == 0 {
		return 0, errors.New("lead não criado")
	}

	leadID := result.Embedded.Leads[0].ID
	c.logger.Info("✅ Kommo: lead criado", zap.Int("kommo_id", leadID), zap.String("email", input.Email))
	return leadID, nil
}

func (c *Client) findOrCreateContact(ctx context.Context, input CreateLeadInput) (int, error) {
	query := input.Email
	if query == "" {
		query = input.Phone
	}
	id, err := c.findContact(ctx, query)
	if err == nil {
		c.logger.Debug("📱 Kommo: contato existente", zap.Int("contact_id", id))
		return id, nil
	}
	if !errors.Is(err, errNoContact) {
		return 0, err
	}
	return c.createContact(ctx, input)
}

func (c *Client) findContact(ctx context.Context, query string) (int, error) {
	var result embeddedResponse
	err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(query), nil, &result)
	if err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, errNoContact
	}
	return result.Embedded.Contacts[0].ID, nil
}

func (c *Client) createContact(ctx context.Context, input CreateLeadInput) (int, error) {
	contact := contactPayload{Name: input.Name}
	if input.Phone != "" {
		contact.CustomFields = append(contact.CustomFields, customField{
			FieldCode: "PHONE",
			Values:    []customFieldValue{{Value: input.Phone, EnumCode: "WORK"}},
		})
	}
	if input.Email != "" {
		contact.CustomFields = append(contact.CustomFields, customField{
			FieldCode: "EMAIL",
			Values:    []customFieldValue{{Value: input.Email, EnumCode: "WORK"}},
		})
	}

	var result embeddedResponse
	if err := c.do(ctx, http.MethodPost, "/contacts", []contactPayload{contact}, &result); err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, errors.New("erro ao obter ID do contato criado")
	}
	return result.Embedded.Contacts[0].ID, nil
}

// do envia o request; 204 (busca sem resultado) deixa out intacto.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("kommo %s %s: %d - %s", method, path, resp.StatusCode, string(data))
	}
	return json.Unmarshal(data, out)
}

func leadTitle(input CreateLeadInput) string {
	if input.Organization != "" {
		return fmt.Sprintf("%s - %s", input.Name, input.Organization)
	}
	return input.Name
}
