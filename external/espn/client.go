package espn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/league"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports"
	maxBodyBytes   = 8 << 20
)

var tracer = otel.Tracer("sports-scoreboard/external/espn")

// Bodies are read into pooled buffers, so decoded strings must not alias them.
var decoder = sonic.Config{UseNumber: true, CopyString: true}.Froze()

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	// Timeout applies only when HTTPClient is nil. Zero means no timeout.
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// ScoreboardParams narrows a scoreboard request. Date is passed through to the
// provider verbatim, normally as YYYYMMDD; empty means today.
type ScoreboardParams struct {
	Date string
}

// Client is a thin read-only client for the ESPN site API. It never retries
// and never caches; both belong to the caller.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("espn")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	if breakerCfg.OnStateChange == nil {
		breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
			logger.Warn("espn circuit breaker state changed", "from", from, "to", to)
		}
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchScoreboard loads the scoreboard for one league and optional date.
func (c *Client) FetchScoreboard(ctx context.Context, l league.League, params ScoreboardParams) (Payload, error) {
	query := url.Values{}
	if params.Date != "" {
		query.Set("dates", params.Date)
	}
	return c.get(ctx, l, EndpointScoreboard, query)
}

// FetchGameSummary loads the detail document for a single event.
func (c *Client) FetchGameSummary(ctx context.Context, l league.League, eventID string) (Payload, error) {
	if strings.TrimSpace(eventID) == "" {
		return nil, ErrMissingEventID
	}
	query := url.Values{}
	query.Set("event", eventID)
	return c.get(ctx, l, EndpointSummary, query)
}

func (c *Client) get(ctx context.Context, l league.League, endpoint Endpoint, query url.Values) (Payload, error) {
	path := league.Path(l)
	if path == "" {
		return nil, fmt.Errorf("%w: %q", league.ErrUnknownLeague, string(l))
	}

	fullURL := c.baseURL + "/" + path + "/" + string(endpoint)
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	ctx, span := tracer.Start(ctx, "espn."+string(endpoint), trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("espn.league", l.String()),
			attribute.String("espn.endpoint", string(endpoint)),
		),
	)
	defer span.End()

	var payload Payload
	call := func() error {
		var err error
		payload, err = c.execute(ctx, endpoint, fullURL)
		return err
	}

	var err error
	if c.circuitEnabled {
		err = c.breaker.Execute(call, IsTransient)
		if errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", c.breaker.State(), "url", fullURL)
			err = fmt.Errorf("%w: %s", ErrProviderUnavailable, endpoint)
		}
	} else {
		err = call()
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return payload, nil
}

func (c *Client) execute(ctx context.Context, endpoint Endpoint, fullURL string) (Payload, error) {
	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "espn request failed", "url", fullURL, "error", err)
		return nil, newTransportError(fullURL, err)
	}
	defer resp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.DebugContext(ctx, "espn request completed",
		"url", fullURL,
		"status", resp.StatusCode,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, newRequestError(endpoint, resp)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		return nil, newTransportError(fullURL, fmt.Errorf("read response body: %w", err))
	}

	return decodePayload(buf.B)
}

// decodePayload parses a response body. Valid JSON that is not an object
// yields an empty payload.
func decodePayload(raw []byte) (Payload, error) {
	var body any
	if err := decoder.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode espn payload: %w", err)
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return Payload{}, nil
	}
	return Payload(obj), nil
}
