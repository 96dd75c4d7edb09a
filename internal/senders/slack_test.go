package senders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mentionpulse/alert-engine/internal/format"
)

func TestSlackSender_Send(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewSlackSender(5 * time.Second)
	outcome := sender.Send(context.Background(), server.URL, &format.SlackMessage{Text: "hello"})

	assert.True(t, outcome.Success)
}

func TestSlackSender_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	sender := NewSlackSender(5 * time.Second)
	outcome := sender.Send(context.Background(), server.URL, &format.SlackMessage{Text: "hello"})

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "410")
}

func TestSlackSender_SkipsOnEmptyURL(t *testing.T) {
	sender := NewSlackSender(5 * time.Second)
	outcome := sender.Send(context.Background(), "", &format.SlackMessage{Text: "hello"})

	assert.True(t, outcome.Skipped)
	assert.False(t, outcome.Success)
	assert.Empty(t, outcome.Error)
}
