package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fulqrun-crm/internal/config"
	"fulqrun-crm/internal/logger"
	"fulqrun-crm/internal/pipeline"
)

const (
	maxRetries = 3
	retryDelay = 2 * time.Second
)

// ErrDisabled повертається коли insight-сервіс вимкнений конфігурацією.
// Сервіс unavailable-by-default: викликаючий шар зобов'язаний віддати
// повний локальний результат і без нього.
var ErrDisabled = errors.New("insight service is disabled")

// Client для зовнішнього AI scoring-сервісу
type Client struct {
	baseURL    string
	apiKey     string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient створює новий insight Client
func NewClient(cfg config.InsightConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.New("info")
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		enabled: cfg.Enabled,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		log: log.Component("insight"),
	}
}

// GetDealInsight відправляє snapshot на зовнішній сервіс та повертає
// санітизовану підказку
func (c *Client) GetDealInsight(ctx context.Context, snap pipeline.DealSnapshot) (*DealInsight, error) {
	if !c.enabled {
		return nil, ErrDisabled
	}

	url := fmt.Sprintf("%s/v1/deals/score", c.baseURL)

	body, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	var response insightResponse
	if err := c.doRequest(ctx, url, body, &response); err != nil {
		return nil, fmt.Errorf("failed to get deal insight: %w", err)
	}

	return sanitize(response.Data, c.baseURL), nil
}

func (c *Client) doRequest(ctx context.Context, url string, body []byte, result interface{}) error {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.log.Warn("request attempt %d/%d failed: %v", attempt, maxRetries, err)
			lastErr = err
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
			// 4xx не ретраїмо - повторний запит дасть те саме
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return lastErr
			}
			continue
		}

		return json.Unmarshal(data, result)
	}

	return lastErr
}
