package mail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSendGridSenderPostsMessage(t *testing.T) {
	var body map[string]interface{}
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, sendgridEndpoint, r.URL.Path)
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender := NewSendGridSender("sg-key", "Roster", "no-reply@example.com")
	sender.host = server.URL

	err := sender.Send(context.Background(), Message{
		To:          []mail.Address{{Name: "Ada", Address: "ada@example.com"}},
		Subject:     "Assigned",
		TextContent: "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sg-key", auth)
	personalizations := body["personalizations"].([]interface{})
	first := personalizations[0].(map[string]interface{})
	assert.Equal(t, "[Roster] Assigned", first["subject"])
}

func TestSendGridSenderSurfacesErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer server.Close()

	sender := NewSendGridSender("bad", "", "no-reply@example.com")
	sender.host = server.URL

	err := sender.Send(context.Background(), Message{To: []mail.Address{{Address: "a@example.com"}}, Subject: "x", TextContent: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSendersRejectEmptyRecipients(t *testing.T) {
	assert.ErrorIs(t, NewSendGridSender("k", "", "a@b.c").Send(context.Background(), Message{}), ErrNoRecipients)
	assert.ErrorIs(t, NewLogSender(nil).Send(context.Background(), Message{To: []mail.Address{{}}}), ErrNoRecipients)
}

func TestLogSenderWritesEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))

	require.NoError(t, sender.Send(context.Background(), Message{
		To:          []mail.Address{{Address: "ada@example.com"}},
		Subject:     "Assigned",
		TextContent: "body",
	}))

	entries := logs.FilterMessage("email").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Assigned", entries[0].ContextMap()["subject"])
}
