package centralserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/charge-console/internal/config"
	"github.com/taoyao-code/charge-console/internal/coremodel"
	"github.com/taoyao-code/charge-console/internal/metrics"
)

const tracerName = "github.com/taoyao-code/charge-console/internal/centralserver"

// 调用名（指标 op 标签）
const (
	opStartTransaction = "start_transaction"
	opGetStation       = "get_charging_station"
)

// Client 中心服务 HTTP 客户端，实现 starttx.Gateway
type Client struct {
	baseURL string
	http    *http.Client
	apiKey  string
	secret  string
	retries int
	backoff []time.Duration

	breaker *gobreaker.CircuitBreaker
	metrics *metrics.AppMetrics
	logger  *zap.Logger
	tracer  trace.Tracer

	now   func() time.Time
	nonce func() string
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.AppMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer 设置 tracer
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New 创建客户端
func New(cfg cfgpkg.CentralServerConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	backoff := cfg.Backoff
	if len(backoff) == 0 {
		backoff = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, time.Second}
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		apiKey:  cfg.APIKey,
		secret:  cfg.Secret,
		retries: cfg.Retries,
		backoff: backoff,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
		nonce:   func() string { return fmt.Sprintf("%08x", rand.Uint32()) },
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker(cfg.Breaker, logger, func(s gobreaker.State) {
		c.metrics.SetBreakerState(breakerGauge(s))
	})
	return c
}

// BreakerState 当前熔断状态
func (c *Client) BreakerState() gobreaker.State { return c.breaker.State() }

type startArgs struct {
	TagID       string                `json:"tagID"`
	ConnectorID coremodel.ConnectorID `json:"connectorId"`
}

type startRequest struct {
	ChargingStationID coremodel.StationID `json:"chargingStationID"`
	Args              startArgs           `json:"args"`
}

// StartTransaction 远程启动交易
//
//	PUT {base}/v1/api/charging-stations/{id}/remote/start
func (c *Client) StartTransaction(ctx context.Context, stationID coremodel.StationID, connectorID coremodel.ConnectorID, tagID string) (coremodel.ActionResponse, error) {
	var out coremodel.ActionResponse
	path := "/v1/api/charging-stations/" + url.PathEscape(string(stationID)) + "/remote/start"
	payload := startRequest{
		ChargingStationID: stationID,
		Args:              startArgs{TagID: tagID, ConnectorID: connectorID},
	}
	err := c.do(ctx, opStartTransaction, http.MethodPut, path, payload, &out,
		attribute.String("station.id", string(stationID)),
		attribute.Int("connector.id", int(connectorID)))
	return out, err
}

// GetChargingStation 读取充电站及其连接器状态
func (c *Client) GetChargingStation(ctx context.Context, stationID coremodel.StationID) (*coremodel.ChargingStation, error) {
	var out coremodel.ChargingStation
	path := "/v1/api/charging-stations/" + url.PathEscape(string(stationID))
	if err := c.do(ctx, opGetStation, http.MethodGet, path, nil, &out,
		attribute.String("station.id", string(stationID))); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = stationID
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload, out any, attrs ...attribute.KeyValue) error {
	ctx, span := c.tracer.Start(ctx, "centralserver."+op, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs, attribute.String("http.method", method))...))
	defer span.End()

	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		body = b
	}

	started := c.now()
	// 4xx 不计入熔断失败，由结果带出
	res, err := c.breaker.Execute(func() (interface{}, error) {
		rb, err := c.send(ctx, method, path, body)
		var he *HTTPError
		if errors.As(err, &he) && !he.retryable() {
			return he, nil
		}
		return rb, err
	})
	elapsed := c.now().Sub(started)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.metrics.ObserveCentralServer(op, "open", elapsed)
		span.SetStatus(codes.Error, "breaker open")
		c.logger.Warn("central server call rejected by breaker", zap.String("op", op))
		return ErrBreakerOpen
	}
	if err == nil {
		if he, ok := res.(*HTTPError); ok {
			err = he
		}
	}
	if err != nil {
		c.metrics.ObserveCentralServer(op, "error", elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var he *HTTPError
		if errors.As(err, &he) {
			span.SetAttributes(attribute.Int("http.status_code", he.StatusCode))
		}
		c.logger.Warn("central server call failed",
			zap.String("op", op),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return err
	}

	c.metrics.ObserveCentralServer(op, "ok", elapsed)
	rb, _ := res.([]byte)
	if out == nil || len(bytes.TrimSpace(rb)) == 0 {
		return nil
	}
	if err := json.Unmarshal(rb, out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// send 签名并发送，网络错误/5xx 按 backoff 重试
func (c *Client) send(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		rb, err := c.sendOnce(ctx, method, path, body)
		if err == nil {
			return rb, nil
		}
		lastErr = err
		var he *HTTPError
		if errors.As(err, &he) && !he.retryable() {
			return nil, err
		}
		if ctx.Err() != nil || attempt == c.retries {
			break
		}
		wait := c.backoff[min(attempt, len(c.backoff)-1)]
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

func (c *Client) sendOnce(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	c.sign(req, path, body)
	if token := AccessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	rb, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(rb))}
	}
	return rb, nil
}

func (c *Client) sign(req *http.Request, path string, body []byte) {
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	if c.secret == "" {
		return
	}
	ts := c.now().Unix()
	nonce := c.nonce()
	canonical := buildCanonical(req.Method, path, ts, nonce, hashHex(body))
	req.Header.Set("X-Signature", SignHMAC(c.secret, canonical))
	req.Header.Set("X-Timestamp", strconv.FormatInt(ts, 10))
	req.Header.Set("X-Nonce", nonce)
}
