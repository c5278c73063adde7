package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fulqrun-crm/internal/pipeline"

	"github.com/redis/go-redis/v9"
)

const (
	dealAnalyticsKey    = "fulqrun:analytics:deal:%d"
	portfolioSummaryKey = "fulqrun:analytics:portfolio"
)

// AnalysisCache кешує результати движків у Redis. Движки дешеві, але
// dashboard опитує їх агресивно; кеш з коротким TTL знімає це навантаження.
// Без Redis (nil client) кожен виклик - cache miss, сервіс рахує напряму.
type AnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalysisCache створює новий AnalysisCache
func NewAnalysisCache(client *redis.Client, ttl time.Duration) *AnalysisCache {
	return &AnalysisCache{client: client, ttl: ttl}
}

// GetDealAnalytics повертає закешований аналіз угоди
func (c *AnalysisCache) GetDealAnalytics(ctx context.Context, dealID uint) (*pipeline.AnalyticsResult, bool) {
	if c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, fmt.Sprintf(dealAnalyticsKey, dealID)).Bytes()
	if err != nil {
		return nil, false
	}

	var result pipeline.AnalyticsResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}
	return &result, true
}

// SetDealAnalytics кешує аналіз угоди
func (c *AnalysisCache) SetDealAnalytics(ctx context.Context, dealID uint, result *pipeline.AnalyticsResult) {
	if c.client == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}

	c.client.Set(ctx, fmt.Sprintf(dealAnalyticsKey, dealID), data, c.ttl)
}

// InvalidateDeal скидає кеш угоди та portfolio (будь-який запис в угоду
// робить обидва застарілими)
func (c *AnalysisCache) InvalidateDeal(ctx context.Context, dealID uint) {
	if c.client == nil {
		return
	}

	c.client.Del(ctx, fmt.Sprintf(dealAnalyticsKey, dealID), portfolioSummaryKey)
}

// GetPortfolioSummary повертає закешований portfolio summary
func (c *AnalysisCache) GetPortfolioSummary(ctx context.Context) (*pipeline.PortfolioSummary, bool) {
	if c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, portfolioSummaryKey).Bytes()
	if err != nil {
		return nil, false
	}

	var summary pipeline.PortfolioSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

// SetPortfolioSummary кешує portfolio summary
func (c *AnalysisCache) SetPortfolioSummary(ctx context.Context, summary *pipeline.PortfolioSummary) {
	if c.client == nil {
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return
	}

	c.client.Set(ctx, portfolioSummaryKey, data, c.ttl)
}
