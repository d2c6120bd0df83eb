package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/api"
	"github.com/stafflyhq/chat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationHappensBeforeAnyRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	c := api.NewClient(srv.URL, "tok")
	ctx := context.Background()

	_, err := c.CreateMessage(ctx, uuid.New(), api.CreateMessageInput{Content: "   "})
	assert.ErrorIs(t, err, api.ErrEmptyContent)

	_, err = c.UpdateMessage(ctx, uuid.New(), "")
	assert.ErrorIs(t, err, api.ErrEmptyContent)

	_, err = c.CreateThread(ctx, uuid.New(), " ")
	assert.ErrorIs(t, err, api.ErrEmptyTitle)

	_, err = c.CreateChannel(ctx, api.CreateChannelInput{Type: domain.ChannelPublic, Name: ""})
	assert.ErrorIs(t, err, api.ErrEmptyName)

	_, err = c.CreateChannel(ctx, api.CreateChannelInput{Type: domain.ChannelDirect})
	assert.ErrorIs(t, err, api.ErrMissingCounter)
}

func TestErrorEnvelopeIsDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "THREAD_NOT_FOUND", "message": "thread not found"},
		})
	}))
	defer srv.Close()

	c := api.NewClient(srv.URL, "tok")
	_, err := c.Messages(context.Background(), uuid.New())

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "THREAD_NOT_FOUND", apiErr.Code)
	assert.Equal(t, "thread not found", apiErr.Message)
}

func TestErrorWithoutEnvelopeStillSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := api.NewClient(srv.URL, "tok")
	err := c.DeleteMessage(context.Background(), uuid.New())

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "INTERNAL", apiErr.Code)
}

func TestCreateMessageSendsTokenAndBody(t *testing.T) {
	threadID := uuid.New()
	reply := domain.Message{
		ID:        uuid.New(),
		ThreadID:  threadID,
		Content:   "hello",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/threads/"+threadID.String()+"/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body api.CreateMessageInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body.Content)

		json.NewEncoder(w).Encode(reply)
	}))
	defer srv.Close()

	c := api.NewClient(srv.URL, "tok")
	msg, err := c.CreateMessage(context.Background(), threadID, api.CreateMessageInput{Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, reply.ID, msg.ID)
	assert.Equal(t, "hello", msg.Content)
}

func TestMarkAsReadHitsReadEndpoint(t *testing.T) {
	messageID := uuid.New()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := api.NewClient(srv.URL, "tok")
	require.NoError(t, c.MarkAsRead(context.Background(), messageID))
	assert.Equal(t, "POST /api/v1/messages/"+messageID.String()+"/read", gotPath)
}

func TestFileURLComposition(t *testing.T) {
	c := api.NewClient("http://files.local/", "a b+c")

	att := domain.Attachment{Path: "/uploads/report.pdf"}
	assert.Equal(t, "http://files.local/api/v1/files/uploads/report.pdf?token=a+b%2Bc", c.FileURL(att))

	thumb := "uploads/thumb.png"
	att.ThumbnailPath = &thumb
	assert.Equal(t, "http://files.local/api/v1/files/uploads/thumb.png?token=a+b%2Bc", c.PreviewURL(att))

	att.ThumbnailPath = nil
	assert.Equal(t, c.FileURL(att), c.PreviewURL(att))
}
