package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
	stdhttp "github.com/anhbatoichoi/content-capture-universe/infrastructure/http/standard"
	"github.com/anhbatoichoi/content-capture-universe/infrastructure/remote"
)

func fixed(v float64) func() float64 {
	return func() float64 { return v }
}

func TestStub_SubmitReturnsPendingID(t *testing.T) {
	_, api := humatest.New(t)
	s := newStub(fixed(0.9), DefaultDoneProbability, 0, nil)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	s.RegisterRoutes(api)

	ids := make([]string, 2)
	for i := range ids {
		resp := api.Post("/api/extract", map[string]interface{}{"url": "https://example.com"})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var body interfaces.StatusResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "pending", body.Status)
		ids[i] = body.RequestID
	}

	assert.Equal(t, "req_1700000000000", ids[0])
	assert.Equal(t, "req_1700000000001", ids[1])
}

func TestStub_SubmitRequiresURL(t *testing.T) {
	_, api := humatest.New(t)
	newStub(fixed(0), DefaultDoneProbability, 0, nil).RegisterRoutes(api)

	resp := api.Post("/api/extract", map[string]interface{}{"url": ""})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestStub_Status(t *testing.T) {
	tests := []struct {
		name       string
		roll       float64
		wantStatus string
	}{
		{"below probability finishes", 0.1, "done"},
		{"above probability stays pending", 0.5, "pending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, api := humatest.New(t)
			newStub(fixed(tt.roll), DefaultDoneProbability, 0, nil).RegisterRoutes(api)

			resp := api.Get("/api/status/req_1")
			require.Equal(t, http.StatusOK, resp.Code)

			var body interfaces.StatusResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.Equal(t, "req_1", body.RequestID)
			assert.Equal(t, tt.wantStatus, body.Status)
			if tt.wantStatus == "done" {
				assert.Equal(t, SampleContent, body.Content)
			} else {
				assert.Empty(t, body.Content)
			}
		})
	}
}

func TestStub_DoneIsSticky(t *testing.T) {
	rolls := []float64{0.1, 0.9}
	s := newStub(func() float64 {
		v := rolls[0]
		rolls = rolls[1:]
		return v
	}, DefaultDoneProbability, 0, nil)

	assert.True(t, s.status("req_1"))
	assert.True(t, s.status("req_1"))
	assert.Len(t, rolls, 1)
}

func TestStub_Chat(t *testing.T) {
	_, api := humatest.New(t)
	newStub(fixed(0), DefaultDoneProbability, 0, nil).RegisterRoutes(api)

	resp := api.Post("/api/chat", map[string]interface{}{"message": "hi", "conversationId": "session_1"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, strings.Contains(resp.Body.String(), "You said: hi"))
}

func TestStub_WithRemoteClient(t *testing.T) {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("Extraction Stub", "1.0.0"))
	newStub(fixed(0), 1, 0, nil).RegisterRoutes(api)

	server := httptest.NewServer(router)
	defer server.Close()

	client := remote.NewClient(stdhttp.NewStandardHTTPClient(5*time.Second), server.URL+"/api", nil)
	ctx := context.Background()

	submitted, err := client.Submit(ctx, interfaces.SubmitRequest{URL: "https://example.com", Source: "standard"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(submitted.RequestID, "req_"))

	status, err := client.CheckStatus(ctx, submitted.RequestID)
	require.NoError(t, err)
	assert.Equal(t, "done", status.Status)
	assert.Equal(t, SampleContent, status.Content)

	reply, err := client.Send(ctx, interfaces.ChatRequest{Message: "ping", ConversationID: "session_1"})
	require.NoError(t, err)
	assert.Equal(t, "You said: ping", reply.Message)
}
