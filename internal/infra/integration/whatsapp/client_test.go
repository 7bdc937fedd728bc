package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	var body map[string]interface{}
	var path, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	c := NewClient("token", "12345", nil)
	c.baseURL = srv.URL

	err := c.SendMessage(context.Background(), SendMessageInput{
		PhoneNumber:  "5511999990000",
		TemplateName: "lead_welcome",
		Parameters:   []string{"Ana"},
	})

	require.NoError(t, err)
	assert.Equal(t, "/12345/messages", path)
	assert.Equal(t, "Bearer token", auth)
	assert.Equal(t, "5511999990000", body["to"])
	assert.Equal(t, "template", body["type"])
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"template not found","code":132001}}`))
	}))
	defer srv.Close()

	c := NewClient("token", "12345", nil)
	c.baseURL = srv.URL

	err := c.SendMessage(context.Background(), SendMessageInput{PhoneNumber: "1", TemplateName: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template not found")
}

func TestSendMessageNotConfigured(t *testing.T) {
	err := NewClient("", "", nil).SendMessage(context.Background(), SendMessageInput{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewTemplateMessage(t *testing.T) {
	got := newTemplateMessage(SendMessageInput{
		PhoneNumber:  "5511999990000",
		TemplateName: "lead_welcome",
		Parameters:   []string{"Ana", "Acme"},
	})

	want := templateMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               "5511999990000",
		Type:             "template",
		Template: templatePayload{
			Name:     "lead_welcome",
			Language: templateLanguage{Code: "pt_BR"},
			Components: []templateComponent{{
				Type: "body",
				Parameters: []textParameter{
					{Type: "text", Text: "Ana"},
					{Type: "text", Text: "Acme"},
				},
			}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}

	bare := newTemplateMessage(SendMessageInput{TemplateName: "ping", Language: "en_US"})
	assert.Empty(t, bare.Template.Components)
	assert.Equal(t, "en_US", bare.Template.Language.Code)
}
