// Package estimate integrates with the backend estimate computation service:
// a fire-and-forget job trigger plus a bounded poll loop that watches the lead
// row for the computed result.
package estimate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/quotewise/intake-api/internal/domain"
	"go.uber.org/zap"
)

// JobRequest carries everything the estimate backend needs to price a lead
type JobRequest struct {
	LeadID             uuid.UUID `json:"leadId"`
	ContractorID       string    `json:"contractorId"`
	ProjectDescription string    `json:"projectDescription"`
	Category           *string   `json:"category,omitempty"`
	ImageURL           string    `json:"imageUrl,omitempty"`
	ProjectImages      []string  `json:"projectImages,omitempty"`
}

// JobInvoker triggers the asynchronous estimate computation. The result is
// never returned here; it lands on the lead row and is observed by the poller.
type JobInvoker interface {
	Invoke(ctx context.Context, req *JobRequest) error
}

// HTTPJobClient invokes the estimate backend over HTTP
type HTTPJobClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPJobClient creates a new estimate job client
func NewHTTPJobClient(baseURL string, apiKey string, httpClient *http.Client, logger *zap.Logger) *HTTPJobClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPJobClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Invoke triggers the estimate computation for a lead. Failures are
// normalized into domain.GatewayError before they reach the orchestrator.
func (c *HTTPJobClient) Invoke(ctx context.Context, req *JobRequest) error {
	if c.baseURL == "" {
		return domain.NewGatewayError(domain.GatewayErrorKindBackend, "estimate backend not configured", nil)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return domain.NewGatewayError(domain.GatewayErrorKindBackend, "failed to encode job request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return domain.NewGatewayError(domain.GatewayErrorKindTransport, "failed to build job request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.NewGatewayError(domain.GatewayErrorKindTransport, "estimate backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Info("estimate job invoked",
			zap.String("leadID", req.LeadID.String()),
			zap.String("contractorID", req.ContractorID),
		)
		return nil
	}

	message := fmt.Sprintf("estimate backend returned status %d", resp.StatusCode)
	if payload, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		var backendErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(payload, &backendErr) == nil && backendErr.Error != "" {
			message = backendErr.Error
		}
	}

	c.logger.Warn("estimate job invocation failed",
		zap.String("leadID", req.LeadID.String()),
		zap.Int("status", resp.StatusCode),
		zap.String("message", message),
	)
	return domain.NewGatewayError(domain.GatewayErrorKindBackend, message, nil)
}
