package http

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"fc-pro-backend/internal/common/logger"
)

// Handler serves the platform discovery surface: the signed app manifest
// and an HTML page embedding the app descriptor for link unfurling.
type Handler struct {
	raw        []byte
	miniAppURL string
	appName    string
	imageURL   string
}

// NewHandler loads the manifest file once at startup. The account
// association inside it is a cryptographic attestation; it is passed
// through byte for byte, never re-encoded.
func NewHandler(manifestPath, miniAppURL string) (*Handler, error) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var parsed struct {
		MiniApp struct {
			Name     string `json:"name"`
			ImageURL string `json:"imageUrl"`
			IconURL  string `json:"iconUrl"`
		} `json:"miniapp"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	h := &Handler{
		raw:        raw,
		miniAppURL: miniAppURL,
		appName:    parsed.MiniApp.Name,
		imageURL:   parsed.MiniApp.ImageURL,
	}
	if h.appName == "" {
		h.appName = "Farcaster Pro"
	}
	if h.imageURL == "" {
		h.imageURL = parsed.MiniApp.IconURL
	}

	logger.Info().Str("app", h.appName).Msg("Manifest loaded")
	return h, nil
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/.well-known/farcaster.json", h.getManifest)
	router.GET("/", h.getIndex)
}

func (h *Handler) getManifest(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", h.raw)
}

// getIndex renders a minimal page carrying the fc:miniapp meta tag so
// shared links unfurl with a launch button.
func (h *Handler) getIndex(c *gin.Context) {
	descriptor, _ := json.Marshal(map[string]any{
		"version":  "1",
		"imageUrl": h.imageURL,
		"button": map[string]any{
			"title": "Subscribe to Pro",
			"action": map[string]any{
				"type": "launch_miniapp",
				"url":  h.miniAppURL,
				"name": h.appName,
			},
		},
	})

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<meta name="fc:miniapp" content="%s">
<meta property="og:title" content="%s">
<meta property="og:image" content="%s">
</head>
<body></body>
</html>
`,
		html.EscapeString(h.appName),
		html.EscapeString(string(descriptor)),
		html.EscapeString(h.appName),
		html.EscapeString(h.imageURL),
	)

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
