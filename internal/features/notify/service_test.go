package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDirectCast(t *testing.T) {
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/dc", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		key := r.Header.Get("Idempotency-Key")
		assert.NotEmpty(t, key)
		keys = append(keys, key)

		body, _ := io.ReadAll(r.Body)
		var parsed struct {
			RecipientFID uint64 `json:"recipientFid"`
			Message      string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(body, &parsed))
		assert.Equal(t, uint64(200), parsed.RecipientFID)
		assert.NotEmpty(t, parsed.Message)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewService(srv.URL, "")
	ctx := context.Background()

	require.NoError(t, svc.SendDirectCast(ctx, 200, "hello"))
	require.NoError(t, svc.SendDirectCast(ctx, 200, "hello again"))

	// Each send carries its own idempotency key.
	require.Len(t, keys, 2)
	assert.NotEqual(t, keys[0], keys[1])
}

func TestSendDirectCast_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := NewService(srv.URL, "")
	err := svc.SendDirectCast(context.Background(), 200, "hello")
	assert.Error(t, err)
}

func TestMessageBuilders(t *testing.T) {
	assert.Contains(t, SelfConfirmation(30), "30 days")

	assert.Contains(t, GiftSentConfirmation("bob", 200, 30), "@bob")
	assert.Contains(t, GiftSentConfirmation("", 200, 30), "fid 200")

	assert.Contains(t, GiftReceived("alice", 100, 30), "@alice")
	assert.Contains(t, GiftReceived("", 100, 30), "fid 100")
}
