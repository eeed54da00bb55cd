package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/riskibarqy/sports-scoreboard/internal/config"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		AppEnv:             config.EnvDev,
		HTTPAddr:           ":0",
		CORSAllowedOrigins: []string{"*"},
		ESPNBaseURL:        baseURL,
		QueryMaxRetries:    1,
		QueryWorkers:       2,
		PrefetchEnabled:    true,
	}
}

func TestNew_RequiresAddr(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://localhost")
	cfg.HTTPAddr = ""

	_, err := New(cfg, logging.NewNop())
	require.Error(t, err)
}

func TestApp_WarmupFillsScoreboardCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Empty(t, r.URL.Query().Get("dates"))
		_, _ = w.Write([]byte(`{"events":[]}`))
	}))
	t.Cleanup(upstream.Close)

	a, err := New(testConfig(upstream.URL), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	a.Warmup(context.Background())
	assert.Equal(t, int32(2), calls.Load())

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leagues/nfl/games", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, a.Scoreboard.CacheStats().Entries)
}

func TestApp_WarmupDisabled(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(upstream.Close)

	cfg := testConfig(upstream.URL)
	cfg.PrefetchEnabled = false

	a, err := New(cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	a.Warmup(context.Background())
	assert.Zero(t, calls.Load())
}

func TestNew_ComponentLoggersNamedOnce(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(upstream.Close)

	core, logs := observer.New(logging.LevelDebug)
	a, err := New(testConfig(upstream.URL), logging.FromZap(zap.New(core)))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	a.Warmup(context.Background())

	names := map[string]bool{}
	for _, e := range logs.All() {
		names[e.LoggerName] = true
	}
	assert.True(t, names["query"], "names: %v", names)
	assert.True(t, names["espn"], "names: %v", names)
	assert.False(t, names["query.query"])
	assert.False(t, names["espn.espn"])
}
