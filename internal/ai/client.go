// Package ai wraps the external analysis service that scores verification
// artifacts: per-image quality checks during the physical-verification
// upload flow and sentiment/summary analysis of the submitted report.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/maatram/scholarship-review-api/internal/models"
	"github.com/maatram/scholarship-review-api/pkg/config"
)

// QualityResult is the verdict for a single uploaded image.
type QualityResult struct {
	Status models.ImageQuality `json:"status"`
	Reason string              `json:"reason,omitempty"`
	Issues json.RawMessage     `json:"issues,omitempty"`
}

// ReportAnalysis is the outcome of analyzing a physical-verification report.
type ReportAnalysis struct {
	Sentiment       string  `json:"sentiment"`
	Score           float64 `json:"score"`
	ElementsSummary string  `json:"elementsSummary"`
}

// Client calls the analysis service over HTTP. A zero BaseURL disables the
// client; callers degrade to neutral defaults so reviews never block on an
// unavailable model.
type Client struct {
	cfg    config.AIConfig
	client *http.Client
	logger *zap.Logger
}

func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Enabled reports whether an analysis service is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.BaseURL != ""
}

// CheckImageQuality submits one image for quality screening. When the
// service is not configured every image passes, so field volunteers in
// low-connectivity deployments are never blocked.
func (c *Client) CheckImageQuality(ctx context.Context, filename string, data []byte) (QualityResult, error) {
	if !c.Enabled() {
		return QualityResult{Status: models.ImageQualityGood, Reason: "quality check skipped"}, nil
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return QualityResult{}, fmt.Errorf("build quality-check request: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return QualityResult{}, fmt.Errorf("build quality-check request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return QualityResult{}, fmt.Errorf("build quality-check request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/image-quality", body)
	if err != nil {
		return QualityResult{}, fmt.Errorf("build quality-check request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	var result QualityResult
	if err := c.do(req, &result); err != nil {
		return QualityResult{}, fmt.Errorf("image quality check: %w", err)
	}
	if result.Status != models.ImageQualityGood && result.Status != models.ImageQualityBad {
		c.logger.Warn("unexpected quality verdict, treating as BAD", zap.String("status", string(result.Status)))
		result.Status = models.ImageQualityBad
	}
	return result, nil
}

// AnalyzeReport runs sentiment and elements-summary analysis over the
// volunteer's written report. audioKey is optional and identifies a stored
// voice note the service may transcribe.
func (c *Client) AnalyzeReport(ctx context.Context, remarks string, audioKey string) (ReportAnalysis, error) {
	if !c.Enabled() {
		return ReportAnalysis{Sentiment: "NEUTRAL", ElementsSummary: ""}, nil
	}

	payload, err := json.Marshal(map[string]string{
		"remarks":  remarks,
		"audioKey": audioKey,
	})
	if err != nil {
		return ReportAnalysis{}, fmt.Errorf("build analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/report-analysis", bytes.NewReader(payload))
	if err != nil {
		return ReportAnalysis{}, fmt.Errorf("build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	var result ReportAnalysis
	if err := c.do(req, &result); err != nil {
		return ReportAnalysis{}, fmt.Errorf("report analysis: %w", err)
	}
	return result, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("analysis service returned %d: %s", resp.StatusCode, snippet)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode analysis response: %w", err)
	}
	return nil
}
