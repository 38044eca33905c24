package judilibre

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/yeisme/sociojustice/pkg/apperr"
	"github.com/yeisme/sociojustice/pkg/configs"
	"github.com/yeisme/sociojustice/pkg/log"
	"github.com/yeisme/sociojustice/pkg/metrics"
	"github.com/yeisme/sociojustice/pkg/tracing"
)

// maxErrorBody 错误信息中保留的上游响应体长度.
const maxErrorBody = 512

// StatusError 上游返回非 2xx.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("judilibre responded %d: %s", e.StatusCode, e.Body)
}

// Client Judilibre HTTP 客户端.
type Client struct {
	cfg     configs.JudilibreConfig
	http    *http.Client
	oauth   *clientcredentials.Config
	breaker *gobreaker.TwoStepCircuitBreaker
	tokens  TokenStore
}

// Option 客户端可选项.
type Option func(*Client)

// WithHTTPClient 替换底层 HTTP 客户端.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenStore 启用令牌缓存.
func WithTokenStore(ts TokenStore) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithCircuitBreaker 按配置为检索请求加熔断，未启用时不生效.
// 只统计网络错误与 5xx，4xx 说明请求本身有问题，不计入失败.
func WithCircuitBreaker(cb configs.BreakerConfig) Option {
	return func(c *Client) {
		if !cb.Enabled {
			return
		}

		c.breaker = gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
			Name:        "judilibre",
			MaxRequests: cb.HalfOpenRequests,
			Timeout:     cb.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cb.ConsecutiveFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Component("judilibre").Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state changed")
			},
		})
	}
}

// NewClient 创建客户端.
func NewClient(cfg configs.JudilibreConfig, opts ...Option) *Client {
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		oauth: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Authenticate 执行 client credentials 交换，默认每次都向令牌端点请求.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "judilibre.authenticate")
	defer span.End()

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx, c.cfg.ClientID+"|"+c.cfg.TokenURL, c.fetchToken)
		tracing.Fail(span, err)

		return token, err
	}

	tok, err := c.fetchToken(ctx)
	if err != nil {
		tracing.Fail(span, err)
		return "", err
	}

	return tok.AccessToken, nil
}

func (c *Client) fetchToken(ctx context.Context) (*oauth2.Token, error) {
	start := time.Now()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	tok, err := c.oauth.Token(ctx)
	observe("token", err, start)

	if err != nil {
		return nil, apperr.UpstreamAuth("failed to authenticate against Judilibre", err)
	}

	if tok.AccessToken == "" {
		return nil, apperr.UpstreamAuth("Judilibre token response has no access_token", nil)
	}

	return tok, nil
}

// SearchURL 构造检索地址，page_size 固定取配置值.
func (c *Client) SearchURL(cr Criteria) string {
	q := url.Values{}

	text := strings.TrimSpace(cr.Query)
	if text == "" {
		text = "*"
	}

	q.Set("query", text)
	q.Set("date_start", cr.DateMin)
	q.Set("date_end", cr.DateMax)

	if cr.Jurisdiction != "" {
		q.Set("jurisdiction", cr.Jurisdiction)
	}

	if cr.CaseType != "" {
		q.Set("type", cr.CaseType)
	}

	q.Set("page_size", strconv.Itoa(c.cfg.PageSize))

	if cr.Page > 0 {
		q.Set("page", strconv.Itoa(cr.Page))
	}

	return strings.TrimRight(c.cfg.BaseURL, "/") + "/search?" + q.Encode()
}

// Search 发起带令牌的检索请求，不重试.
func (c *Client) Search(ctx context.Context, token string, cr Criteria) (*Page, error) {
	ctx, span := tracing.StartSpan(ctx, "judilibre.search")
	defer span.End()

	span.SetAttributes(
		attribute.String("judilibre.date_min", cr.DateMin),
		attribute.String("judilibre.date_max", cr.DateMax),
		attribute.Int("judilibre.page", cr.Page),
	)

	start := time.Now()
	body, err := c.get(ctx, token, c.SearchURL(cr))
	observe("search", err, start)

	if err != nil {
		tracing.Fail(span, err)
		return nil, apperr.UpstreamRequest("Judilibre search failed", err)
	}

	page, err := decodePage(body)
	if err != nil {
		tracing.Fail(span, err)
		return nil, apperr.UpstreamRequest("Judilibre returned an unreadable body", err)
	}

	span.SetAttributes(attribute.Int("judilibre.results", len(page.Results)))

	return page, nil
}

func (c *Client) get(ctx context.Context, token, target string) ([]byte, error) {
	if c.breaker == nil {
		return c.do(ctx, token, target)
	}

	done, err := c.breaker.Allow()
	if err != nil {
		return nil, fmt.Errorf("circuit breaker: %w", err)
	}

	body, err := c.do(ctx, token, target)

	// 4xx 属于请求问题，不计入熔断
	var se *StatusError
	done(err == nil || (errors.As(err, &se) && se.StatusCode < http.StatusInternalServerError))

	return body, err
}

func (c *Client) do(ctx context.Context, token, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	tracing.Inject(ctx, req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}

		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// decodePage 兼容 {"results": [...], "total": n} 与裸数组两种响应.
func decodePage(body []byte) (*Page, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &Page{Results: []RawDecision{}}, nil
	}

	if trimmed[0] == '[' {
		var results []RawDecision
		if err := sonic.Unmarshal(trimmed, &results); err != nil {
			return nil, err
		}

		return &Page{Results: results, Total: len(results)}, nil
	}

	var envelope struct {
		Results []RawDecision `json:"results"`
		Total   int           `json:"total"`
	}

	if err := sonic.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}

	if envelope.Results == nil {
		envelope.Results = []RawDecision{}
	}

	return &Page{Results: envelope.Results, Total: envelope.Total}, nil
}

func observe(op string, err error, start time.Time) {
	status := "ok"

	var se *StatusError

	switch {
	case errors.As(err, &se):
		status = strconv.Itoa(se.StatusCode)
	case err != nil:
		status = "error"
	}

	metrics.UpstreamRequests.WithLabelValues(op, status).Inc()
	metrics.UpstreamDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
