package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/sports-scoreboard/external/espn"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/game"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/league"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/summary"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/team"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/query"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultScoreboardStaleTime = 30 * time.Second
	DefaultSummaryStaleTime    = 60 * time.Second
	DefaultRetry               = 1
)

type ScoreboardConfig struct {
	ScoreboardStaleTime time.Duration
	SummaryStaleTime    time.Duration
	// Retry is the number of extra attempts after a failed fetch.
	Retry  int
	Logger *logging.Logger
}

// TeamsResult is the scoreboard query plus the teams aggregated from it.
type TeamsResult struct {
	query.Result[espn.Payload]
	Teams []team.Team
}

// GamesResult is the scoreboard query plus its normalized games.
type GamesResult struct {
	query.Result[espn.Payload]
	Games []game.Game
}

// SummaryResult is the summary query plus its flattened view.
type SummaryResult struct {
	query.Result[espn.Payload]
	Summary summary.Summary
}

type ScoreboardService struct {
	fetcher ScoreboardFetcher
	cache   *query.Cache
	cfg     ScoreboardConfig
	logger  *logging.Logger
}

func NewScoreboardService(fetcher ScoreboardFetcher, cache *query.Cache, cfg ScoreboardConfig) *ScoreboardService {
	if cfg.ScoreboardStaleTime <= 0 {
		cfg.ScoreboardStaleTime = DefaultScoreboardStaleTime
	}
	if cfg.SummaryStaleTime <= 0 {
		cfg.SummaryStaleTime = DefaultSummaryStaleTime
	}
	if cfg.Retry < 0 {
		cfg.Retry = 0
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &ScoreboardService{
		fetcher: fetcher,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *ScoreboardService) scoreboardOptions() query.Options {
	opts := query.DefaultOptions(s.cfg.ScoreboardStaleTime)
	opts.Retry = s.cfg.Retry
	return opts
}

func (s *ScoreboardService) summaryOptions(eventID string) query.Options {
	opts := query.DefaultOptions(s.cfg.SummaryStaleTime)
	opts.Retry = s.cfg.Retry
	opts.Enabled = eventID != ""
	return opts
}

// Scoreboard returns the raw scoreboard for a league. An empty date means today.
func (s *ScoreboardService) Scoreboard(ctx context.Context, l league.League, date string) query.Result[espn.Payload] {
	return s.scoreboard(ctx, l, date, ReadWait)
}

// ObserveScoreboard is Scoreboard without waiting: the first read of a key
// reports loading while the fetch runs in the background.
func (s *ScoreboardService) ObserveScoreboard(ctx context.Context, l league.League, date string) query.Result[espn.Payload] {
	return s.scoreboard(ctx, l, date, ReadObserve)
}

func (s *ScoreboardService) scoreboard(ctx context.Context, l league.League, date string, mode ReadMode) query.Result[espn.Payload] {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreboardService.Scoreboard")
	defer span.End()

	if err := l.Validate(); err != nil {
		return invalidResult[espn.Payload](fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}

	key := ScoreboardKey(l, date)
	span.SetAttributes(
		attribute.String("query.key", key.String()),
		attribute.String("query.read_mode", mode.String()),
	)

	res := mode.read(ctx, s.cache, key, scoreboardProducer(s.fetcher, l, date), s.scoreboardOptions())
	if res.Status == query.StatusError {
		s.logger.WarnContext(ctx, "scoreboard query failed", "league", l, "date", key.Variable, "error", res.Err)
	}
	return res
}

// GameSummary returns the raw summary of one event. An empty event id gates
// the query: the result stays idle and nothing is fetched.
func (s *ScoreboardService) GameSummary(ctx context.Context, l league.League, eventID string) query.Result[espn.Payload] {
	return s.gameSummary(ctx, l, eventID, ReadWait)
}

// ObserveGameSummary is GameSummary without waiting.
func (s *ScoreboardService) ObserveGameSummary(ctx context.Context, l league.League, eventID string) query.Result[espn.Payload] {
	return s.gameSummary(ctx, l, eventID, ReadObserve)
}

func (s *ScoreboardService) gameSummary(ctx context.Context, l league.League, eventID string, mode ReadMode) query.Result[espn.Payload] {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreboardService.GameSummary")
	defer span.End()

	if err := l.Validate(); err != nil {
		return invalidResult[espn.Payload](fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}

	key := SummaryKey(l, eventID)
	span.SetAttributes(attribute.String("query.read_mode", mode.String()))

	res := mode.read(ctx, s.cache, key, summaryProducer(s.fetcher, l, eventID), s.summaryOptions(key.Variable))
	if res.Status == query.StatusError {
		s.logger.WarnContext(ctx, "summary query failed", "league", l, "event_id", key.Variable, "error", res.Err)
	}
	return res
}

// Summary is GameSummary with the document flattened.
func (s *ScoreboardService) Summary(ctx context.Context, l league.League, eventID string) SummaryResult {
	return summaryOf(s.GameSummary(ctx, l, eventID))
}

// ObserveSummary is Summary without waiting.
func (s *ScoreboardService) ObserveSummary(ctx context.Context, l league.League, eventID string) SummaryResult {
	return summaryOf(s.ObserveGameSummary(ctx, l, eventID))
}

// Teams returns the scoreboard query together with the distinct teams it lists.
func (s *ScoreboardService) Teams(ctx context.Context, l league.League, date string) TeamsResult {
	return teamsOf(s.Scoreboard(ctx, l, date))
}

// ObserveTeams is Teams without waiting. Teams is empty until data arrives.
func (s *ScoreboardService) ObserveTeams(ctx context.Context, l league.League, date string) TeamsResult {
	return teamsOf(s.ObserveScoreboard(ctx, l, date))
}

// Games returns the scoreboard query together with its normalized games.
func (s *ScoreboardService) Games(ctx context.Context, l league.League, date string) GamesResult {
	return gamesOf(s.Scoreboard(ctx, l, date))
}

// ObserveGames is Games without waiting.
func (s *ScoreboardService) ObserveGames(ctx context.Context, l league.League, date string) GamesResult {
	return gamesOf(s.ObserveScoreboard(ctx, l, date))
}

// TeamGames returns up to limit games of the scoreboard involving teamID.
func (s *ScoreboardService) TeamGames(ctx context.Context, l league.League, date, teamID string, limit int) GamesResult {
	return s.teamGames(ctx, l, date, teamID, limit, ReadWait)
}

// ObserveTeamGames is TeamGames without waiting.
func (s *ScoreboardService) ObserveTeamGames(ctx context.Context, l league.League, date, teamID string, limit int) GamesResult {
	return s.teamGames(ctx, l, date, teamID, limit, ReadObserve)
}

func (s *ScoreboardService) teamGames(ctx context.Context, l league.League, date, teamID string, limit int, mode ReadMode) GamesResult {
	if teamID == "" {
		return GamesResult{
			Result: invalidResult[espn.Payload](fmt.Errorf("%w: team id is required", ErrInvalidInput)),
			Games:  []game.Game{},
		}
	}

	res := s.scoreboard(ctx, l, date, mode)
	out := GamesResult{Result: res, Games: []game.Game{}}
	if res.HasData() {
		out.Games = espn.FilterEventsByTeam(res.Data, teamID, limit)
	}
	return out
}

func summaryOf(res query.Result[espn.Payload]) SummaryResult {
	out := SummaryResult{Result: res}
	if res.HasData() {
		out.Summary = espn.MapSummary(res.Data)
	}
	return out
}

func teamsOf(res query.Result[espn.Payload]) TeamsResult {
	out := TeamsResult{Result: res, Teams: []team.Team{}}
	if res.HasData() {
		out.Teams = espn.AggregateTeams(res.Data)
	}
	return out
}

func gamesOf(res query.Result[espn.Payload]) GamesResult {
	out := GamesResult{Result: res, Games: []game.Game{}}
	if res.HasData() {
		out.Games = espn.MapEventsToGames(res.Data)
	}
	return out
}

// Prefetch warms today's scoreboard for each league concurrently. It returns
// the joined errors of the leagues that failed.
func (s *ScoreboardService) Prefetch(ctx context.Context, leagues ...league.League) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreboardService.Prefetch")
	defer span.End()

	if len(leagues) == 0 {
		leagues = league.All()
	}

	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(len(leagues))
	for _, l := range leagues {
		p.Go(func(ctx context.Context) error {
			res := s.Scoreboard(ctx, l, "")
			if res.Status == query.StatusError {
				return fmt.Errorf("prefetch %s scoreboard: %w", l, res.Err)
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "scoreboards prefetched", "leagues", len(leagues))
	return nil
}

// Invalidate drops every cached query of a league.
func (s *ScoreboardService) Invalidate(l league.League) int {
	removed := s.cache.InvalidateLeague("", l.String())
	s.logger.Info("league queries invalidated", "league", l, "removed", removed)
	return removed
}

func (s *ScoreboardService) CacheStats() query.Stats {
	return s.cache.Stats()
}
