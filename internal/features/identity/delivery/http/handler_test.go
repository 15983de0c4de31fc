package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fc-pro-backend/internal/features/identity/models"
	"fc-pro-backend/internal/features/identity/service"
)

type fakeLookup struct {
	expiresAt int64
}

func (f *fakeLookup) Profile(ctx context.Context, fid uint64) (*models.Profile, error) {
	if fid == 404 {
		return nil, errors.New("upstream 404")
	}
	return &models.Profile{FID: fid, Username: "alice", DisplayName: "Alice"}, nil
}

func (f *fakeLookup) ProStatus(ctx context.Context, fid uint64) (*models.ProStatus, error) {
	return &models.ProStatus{ExpiresAt: f.expiresAt}, nil
}

func (f *fakeLookup) LookupUsername(ctx context.Context, name string) (uint64, error) {
	if name == "bob" {
		return 200, nil
	}
	return 0, errors.New("no owner")
}

func newTestRouter(lookup *fakeLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api")
	NewIdentityHandler(service.NewService(lookup, nil), zerolog.Nop()).RegisterRoutes(api)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetProfile(t *testing.T) {
	router := newTestRouter(&fakeLookup{})

	rec := get(router, "/api/profile?fid=100")
	require.Equal(t, http.StatusOK, rec.Code)

	var p models.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, uint64(100), p.FID)
	assert.Equal(t, "alice", p.Username)
}

func TestGetProfile_BadFID(t *testing.T) {
	router := newTestRouter(&fakeLookup{})

	tests := []struct {
		name string
		path string
	}{
		{"missing", "/api/profile"},
		{"zero", "/api/profile?fid=0"},
		{"non-numeric", "/api/profile?fid=alice"},
		{"negative", "/api/profile?fid=-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(router, tt.path)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetProfile_UpstreamFailure(t *testing.T) {
	router := newTestRouter(&fakeLookup{})

	rec := get(router, "/api/profile?fid=404")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetProStatus(t *testing.T) {
	expiry := time.Now().Add(48*time.Hour + time.Minute).Unix()
	router := newTestRouter(&fakeLookup{expiresAt: expiry})

	rec := get(router, "/api/proStatus?fid=100")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, expiry, resp.ExpiresAt)
	assert.Contains(t, resp.Remaining, "Expires in 2 days")
}

func TestGetProStatus_Expired(t *testing.T) {
	router := newTestRouter(&fakeLookup{expiresAt: time.Now().Add(-time.Hour).Unix()})

	rec := get(router, "/api/proStatus?fid=100")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "No active subscription", resp.Remaining)
}

func TestResolveUsername(t *testing.T) {
	router := newTestRouter(&fakeLookup{})

	rec := get(router, "/api/resolve?username=%40Bob")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ResolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(200), resp.FID)
}

func TestResolveUsername_Unknown(t *testing.T) {
	router := newTestRouter(&fakeLookup{})

	rec := get(router, "/api/resolve?username=ghost")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username")
}
