// Package miniapp detects whether the client runs embedded in a mini-app host
// and signals readiness to it.
package miniapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	ContextPath = "/context"
	ReadyPath   = "/actions/ready"
)

// Host is the embedding container.
type Host interface {
	IsInMiniApp(ctx context.Context) (bool, error)
	Ready(ctx context.Context) error
}

// HTTPHost talks to a host that exposes its SDK actions over HTTP.
type HTTPHost struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPHost returns a host client for baseURL. An empty baseURL means the
// process is never embedded.
func NewHTTPHost(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPHost {
	return &HTTPHost{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("miniapp_host"),
	}
}

func (h *HTTPHost) IsInMiniApp(ctx context.Context) (bool, error) {
	if h.baseURL == "" {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+ContextPath, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create context request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to query mini-app context: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		h.logger.Debug("Mini-app host detected", zap.String("host", h.baseURL))
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected mini-app context status: %d", resp.StatusCode)
	}
}

func (h *HTTPHost) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+ReadyPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create ready request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to signal ready: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ready rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
