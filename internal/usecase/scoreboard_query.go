package usecase

import (
	"context"
	"strings"

	"github.com/riskibarqy/sports-scoreboard/external/espn"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/league"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/query"
)

const (
	KindScoreboard = "scoreboard"
	KindSummary    = "summary"

	// TodayKey stands in for an empty date so "today" has one stable key.
	TodayKey = "today"
)

// ScoreboardFetcher is the remote source of raw scoreboard and summary documents.
type ScoreboardFetcher interface {
	FetchScoreboard(ctx context.Context, l league.League, params espn.ScoreboardParams) (espn.Payload, error)
	FetchGameSummary(ctx context.Context, l league.League, eventID string) (espn.Payload, error)
}

func ScoreboardKey(l league.League, date string) query.Key {
	date = providerDate(date)
	if date == "" {
		date = TodayKey
	}
	return query.Key{Kind: KindScoreboard, League: l.String(), Variable: date}
}

// providerDate maps the today sentinel back to an empty date.
func providerDate(date string) string {
	date = strings.TrimSpace(date)
	if strings.EqualFold(date, TodayKey) {
		return ""
	}
	return date
}

func SummaryKey(l league.League, eventID string) query.Key {
	return query.Key{Kind: KindSummary, League: l.String(), Variable: strings.TrimSpace(eventID)}
}

func scoreboardProducer(fetcher ScoreboardFetcher, l league.League, date string) query.Producer {
	date = providerDate(date)
	return func(ctx context.Context) (any, error) {
		return fetcher.FetchScoreboard(ctx, l, espn.ScoreboardParams{Date: date})
	}
}

func summaryProducer(fetcher ScoreboardFetcher, l league.League, eventID string) query.Producer {
	eventID = strings.TrimSpace(eventID)
	return func(ctx context.Context) (any, error) {
		return fetcher.FetchGameSummary(ctx, l, eventID)
	}
}

func invalidResult[T any](err error) query.Result[T] {
	return query.Result[T]{Status: query.StatusError, Err: err}
}

// ReadMode selects how a read treats a key with no fresh data.
type ReadMode int

const (
	// ReadWait blocks until the first fetch of a key settles.
	ReadWait ReadMode = iota
	// ReadObserve never blocks: a first fetch reports loading and stale data
	// is returned while it revalidates.
	ReadObserve
)

func (m ReadMode) String() string {
	if m == ReadObserve {
		return "observe"
	}
	return "wait"
}

func (m ReadMode) read(ctx context.Context, c *query.Cache, key query.Key, producer query.Producer, opts query.Options) query.Result[espn.Payload] {
	if m == ReadObserve {
		return query.ObserveAs[espn.Payload](ctx, c, key, producer, opts)
	}
	return query.FetchAs[espn.Payload](ctx, c, key, producer, opts)
}
