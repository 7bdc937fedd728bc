package kommo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadhub/internal/entity"
)

func TestCreateLeadCreatesContactWhenMissing(t *testing.T) {
	var gotLead []leadPayload
	var paths []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/contacts":
			assert.Equal(t, "ana@example.com", r.URL.Query().Get("query"))
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == "/contacts":
			w.Write([]byte(`{"_embedded":{"contacts":[{"id":77}]}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/leads":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotLead))
			w.Write([]byte(`{"_embedded":{"leads":[{"id":501}]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "tok", 12345, nil)
	id, err := c.CreateLead(context.Background(), CreateLeadInput{
		Name: "Ana", Email: "ana@example.com", Phone: "+5511987654321", Organization: "Acme", Source: "website",
	})
	require.NoError(t, err)
	assert.Equal(t, 501, id)
	assert.Equal(t, []string{"GET /contacts", "POST /contacts", "POST /leads"}, paths)

	require.Len(t, gotLead, 1)
	assert.Equal(t, "Ana - Acme", gotLead[0].Name)
	assert.Equal(t, 12345, gotLead[0].StatusID)
	assert.Equal(t, []ref{{ID: 77}}, gotLead[0].Embedded.Contacts)
	assert.Equal(t, []tag{{Name: "website"}}, gotLead[0].Embedded.Tags)
}

func TestSyncLeadReusesContact(t *testing.T) {
	var createdContact bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/contacts":
			if r.Method == http.MethodPost {
				createdContact = true
			}
			w.Write([]byte(`{"_embedded":{"contacts":[{"id":9}]}}`))
		case "/leads":
			w.Write([]byte(`{"_embedded":{"leads":[{"id":1}]}}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", 0, nil)
	err := c.SyncLead(context.Background(), entity.LeadEvent{Name: "Bruno", Email: "bruno@example.com"})
	require.NoError(t, err)
	assert.False(t, createdContact)
}

func TestCreateLeadErrors(t *testing.T) {
	_, err := NewClient("", "", 0, nil).CreateLead(context.Background(), CreateLeadInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err = NewClient(srv.URL, "bad", 0, nil).CreateLead(context.Background(), CreateLeadInput{Name: "x", Email: "x@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
