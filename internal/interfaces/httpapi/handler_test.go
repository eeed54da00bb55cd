package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/sports-scoreboard/external/espn"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/query"
	"github.com/riskibarqy/sports-scoreboard/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeScoreboard = `{"events":[
 {"id":"401585601","date":"2024-01-15T20:00Z",
  "status":{"type":{"description":"Final","shortDetail":"Final"}},
  "competitions":[{"competitors":[
   {"homeAway":"home","score":"102","team":{"id":"13","displayName":"Los Angeles Lakers","abbreviation":"LAL"}},
   {"homeAway":"away","score":"99","team":{"id":"2","displayName":"Boston Celtics","abbreviation":"BOS"}}]}]},
 {"id":"401585602","date":"2024-01-16T00:00Z",
  "status":{"type":{"description":"Scheduled","shortDetail":"7:00 PM ET"}},
  "competitions":[{"competitors":[
   {"homeAway":"home","team":{"id":"1","displayName":"Atlanta Hawks","abbreviation":"ATL"}},
   {"homeAway":"away","team":{"id":"13","displayName":"Los Angeles Lakers","abbreviation":"LAL"}}]}]}
]}`

const fakeSummary = `{"header":{"competitions":[{
  "status":{"type":{"shortDetail":"Final"}},
  "headlines":[{"headline":"Lakers hold off Celtics"}],
  "competitors":[
   {"homeAway":"home","score":"102","team":{"displayName":"Los Angeles Lakers","abbreviation":"LAL"}},
   {"homeAway":"away","score":"99","team":{"displayName":"Boston Celtics","abbreviation":"BOS"}}]}]},
 "gameInfo":{"venue":{"fullName":"Crypto.com Arena","address":{"city":"Los Angeles","state":"CA"}}}}`

type testEnv struct {
	router          http.Handler
	scoreboardCalls *atomic.Int32
	summaryCalls    *atomic.Int32
	// releaseSlow unblocks the upstream answer for event "slow1".
	releaseSlow func()
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	var scoreboardCalls, summaryCalls atomic.Int32
	slow := make(chan struct{})
	releaseSlow := sync.OnceFunc(func() { close(slow) })
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/basketball/nba/scoreboard":
			scoreboardCalls.Add(1)
			_, _ = w.Write([]byte(fakeScoreboard))
		case "/basketball/nba/summary":
			summaryCalls.Add(1)
			switch r.URL.Query().Get("event") {
			case "401585601":
				_, _ = w.Write([]byte(fakeSummary))
			case "404":
				w.WriteHeader(http.StatusNotFound)
			case "slow1":
				<-slow
				_, _ = w.Write([]byte(fakeSummary))
			default:
				_, _ = w.Write([]byte(`{}`))
			}
		case "/football/nfl/scoreboard":
			scoreboardCalls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(upstream.Close)
	t.Cleanup(releaseSlow)

	cache, err := query.NewCache(query.Config{Workers: 4})
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	client := espn.NewClient(espn.ClientConfig{HTTPClient: upstream.Client(), BaseURL: upstream.URL})
	service := usecase.NewScoreboardService(client, cache, usecase.ScoreboardConfig{Retry: usecase.DefaultRetry})
	handler := NewHandler(service, nil)

	return testEnv{
		router:          NewRouter(handler, nil, true, []string{"*"}),
		scoreboardCalls: &scoreboardCalls,
		summaryCalls:    &summaryCalls,
		releaseSlow:     releaseSlow,
	}
}

func (e testEnv) get(t *testing.T, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestHandler_ListGames(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec, body := env.get(t, "/v1/leagues/nba/games")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerUpdatedAt))

	items, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)

	first := items[0].(map[string]any)
	assert.Equal(t, "401585601", first["id"])
	assert.Equal(t, "final", first["statusVariant"])
	assert.Equal(t, "LAL", first["home"].(map[string]any)["short"])
	assert.Equal(t, "scheduled", items[1].(map[string]any)["statusVariant"])
}

func TestHandler_ScoreboardIsSharedAcrossEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	for _, path := range []string{
		"/v1/leagues/NBA/scoreboard",
		"/v1/leagues/NBA/games",
		"/v1/leagues/NBA/teams",
		"/v1/leagues/NBA/teams/13/games",
	} {
		rec, _ := env.get(t, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
	assert.Equal(t, int32(1), env.scoreboardCalls.Load())
}

func TestHandler_ListTeams(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec, body := env.get(t, "/v1/leagues/NBA/teams?date=20240115")
	require.Equal(t, http.StatusOK, rec.Code)

	items := body["data"].([]any)
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"Atlanta Hawks", "Boston Celtics", "Los Angeles Lakers"}, names)
}

func TestHandler_ListTeamGames(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec, body := env.get(t, "/v1/leagues/NBA/teams/13/games")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"].([]any), 2)

	rec, body = env.get(t, "/v1/leagues/NBA/teams/13/games?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"].([]any), 1)

	rec, _ = env.get(t, "/v1/leagues/NBA/teams/13/games?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.get(t, "/v1/leagues/NBA/teams/13/games?limit=500")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GetGameSummary(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec, body := env.get(t, "/v1/leagues/NBA/games/401585601/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, "Final", data["status"])
	assert.Equal(t, "final", data["statusVariant"])
	assert.Equal(t, "Lakers hold off Celtics", data["headline"])
	assert.Equal(t, "Crypto.com Arena", data["venue"])
	assert.Equal(t, "Los Angeles, CA", data["location"])

	rec, _ = env.get(t, "/v1/leagues/NBA/games/401585601/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), env.summaryCalls.Load())
}

func TestHandler_GetGameSummary_NotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec, _ := env.get(t, "/v1/leagues/NBA/games/999/summary")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body := env.get(t, "/v1/leagues/NBA/games/404/summary")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "ESPN summary failed: 404 Not Found", errObj["message"])
}

func TestHandler_NoWaitReportsLoadingThenData(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	const path = "/v1/leagues/NBA/games/slow1/summary?wait=false"

	rec, body := env.get(t, path)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	errObj := body["error"].(map[string]any)
	reason := errObj["errors"].([]any)[0].(map[string]any)["reason"]
	assert.Equal(t, "resultPending", reason)

	_, health := env.get(t, "/healthz")
	cache := health["data"].(map[string]any)["cache"].(map[string]any)
	assert.EqualValues(t, 1, cache["inFlight"])

	env.releaseSlow()
	require.Eventually(t, func() bool {
		rec, _ := env.get(t, path)
		return rec.Code == http.StatusOK
	}, time.Second, 10*time.Millisecond)

	_, body = env.get(t, path)
	assert.Equal(t, "Crypto.com Arena", body["data"].(map[string]any)["venue"])
	assert.Equal(t, int32(1), env.summaryCalls.Load())
}

func TestHandler_NoWaitServesCachedScoreboard(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec, _ := env.get(t, "/v1/leagues/NBA/games")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := env.get(t, "/v1/leagues/NBA/teams?wait=false")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"].([]any), 3)
	assert.Equal(t, int32(1), env.scoreboardCalls.Load())

	rec, _ = env.get(t, "/v1/leagues/NBA/games?wait=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_CallerCancelled(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/leagues/NBA/games/slow1/summary", nil).WithContext(ctx)
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, statusClientClosedRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "clientClosedRequest")
}

func TestHandler_UpstreamFailureAfterRetry(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec, body := env.get(t, "/v1/leagues/NFL/games")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "ESPN request failed: 500 Internal Server Error", errObj["message"])
	assert.Equal(t, int32(2), env.scoreboardCalls.Load())
}

func TestHandler_ValidationErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	for _, path := range []string{
		"/v1/leagues/MLB/games",
		"/v1/leagues/NBA/games?date=2024-01-15",
		"/v1/leagues/NBA/teams?date=tomorrow",
		"/v1/leagues/NBA/games/not-an-id!/summary",
	} {
		rec, body := env.get(t, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		errObj := body["error"].(map[string]any)
		assert.Equal(t, "INVALID_ARGUMENT", errObj["status"], path)
	}
	assert.Equal(t, int32(0), env.scoreboardCalls.Load())
	assert.Equal(t, int32(0), env.summaryCalls.Load())
}

func TestHandler_ListLeaguesAndHealth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec, body := env.get(t, "/v1/leagues")
	require.Equal(t, http.StatusOK, rec.Code)
	leagues := body["data"].([]any)
	require.Len(t, leagues, 2)
	assert.Equal(t, "basketball/nba", leagues[0].(map[string]any)["path"])

	rec, body = env.get(t, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["data"].(map[string]any)["status"])
}

func TestHandler_OpenAPI(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sports Scoreboard API")
}

func TestRecoverPanic(t *testing.T) {
	t.Parallel()

	handler := recoverPanic(nil, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leagues", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
