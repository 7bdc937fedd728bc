package leadstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadhub/internal/entity"
)

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload, _ := json.Marshal(data)
	json.NewEncoder(w).Encode(map[string]any{"success": status < 400, "data": json.RawMessage(payload)})
}

func TestFindByEmails(t *testing.T) {
	var gotQuery []string
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()["email"]
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, []LeadDTO{{ID: "1", Name: "Ana", Email: "ANA@example.com", Phone: "+5511"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", nil)
	leads, err := c.FindByEmails(context.Background(), []string{"ana@example.com", `"bruno,silva"@example.com`})

	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com", `"bruno,silva"@example.com`}, gotQuery)
	assert.Equal(t, "Bearer secret", gotAuth)
	require.Len(t, leads, 1)
	assert.Equal(t, "ana@example.com", leads[0].Email)
}

func TestFindByEmailsChunksRequests(t *testing.T) {
	var sizes []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sizes = append(sizes, len(r.URL.Query()["email"]))
		writeEnvelope(w, http.StatusOK, []LeadDTO{})
	}))
	defer srv.Close()

	emails := make([]string, maxEmailsPerLookup*2+1)
	for i := range emails {
		emails[i] = fmt.Sprintf("lead%d@example.com", i)
	}

	leads, err := NewClient(srv.URL, "", nil).FindByEmails(context.Background(), emails)
	require.NoError(t, err)
	assert.Empty(t, leads)
	assert.Equal(t, []int{maxEmailsPerLookup, maxEmailsPerLookup, 1}, sizes)
}

func TestFindByEmailNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, []LeadDTO{})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", nil).FindByEmail(context.Background(), "ana@example.com")
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestCreateUsesReturnedID(t *testing.T) {
	var got LeadDTO
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/leads", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeEnvelope(w, http.StatusCreated, LeadDTO{ID: "remote-1", Email: got.Email})
	}))
	defer srv.Close()

	lead := entity.NewLead("Ana", "ana@example.com", "+5511999990000")
	require.NoError(t, NewClient(srv.URL, "", nil).Create(context.Background(), lead))

	assert.Equal(t, "remote-1", lead.ID)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, entity.StageGenerated, got.Stage)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		call   func(c *Client) error
		want   error
	}{
		{
			name:   "conflict on create",
			status: http.StatusConflict,
			call: func(c *Client) error {
				return c.Create(context.Background(), entity.NewLead("Ana", "ana@example.com", "+5511"))
			},
			want: entity.ErrEmailAlreadyExists,
		},
		{
			name:   "not found on update",
			status: http.StatusNotFound,
			call: func(c *Client) error {
				return c.Update(context.Background(), &entity.Lead{ID: "x"})
			},
			want: entity.ErrLeadNotFound,
		},
		{
			name:   "server error is unavailable",
			status: http.StatusBadGateway,
			call: func(c *Client) error {
				_, err := c.FindByEmails(context.Background(), []string{"a@b.com"})
				return err
			},
			want: entity.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"success":false,"message":"nope"}`))
			}))
			defer srv.Close()

			assert.ErrorIs(t, tt.call(NewClient(srv.URL, "", nil)), tt.want)
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "", nil).FindByEmail(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, entity.ErrStoreUnavailable)
}
