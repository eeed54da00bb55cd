package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/game"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/league"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/summary"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/team"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/query"
	"github.com/riskibarqy/sports-scoreboard/internal/usecase"
)

const (
	defaultTeamGamesLimit = 6
	headerUpdatedAt       = "X-Data-Updated-At"
	headerRevalidating    = "X-Data-Revalidating"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("league", func(fl validator.FieldLevel) bool {
		_, err := league.Parse(fl.Field().String())
		return err == nil
	})
	return v
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type scoreboardRequest struct {
	League string `validate:"required,league"`
	// Date is YYYYMMDD; empty means today.
	Date string `validate:"omitempty,datetime=20060102"`
	Mode usecase.ReadMode
}

type summaryRequest struct {
	League  string `validate:"required,league"`
	EventID string `validate:"required,max=32,alphanum"`
	Mode    usecase.ReadMode
}

type teamGamesRequest struct {
	League string `validate:"required,league"`
	Date   string `validate:"omitempty,datetime=20060102"`
	TeamID string `validate:"required,max=64"`
	Limit  int    `validate:"min=1,max=50"`
	Mode   usecase.ReadMode
}

// parseReadMode reads ?wait=. Waiting is the default; wait=false answers
// immediately with whatever the cache holds.
func parseReadMode(r *http.Request) (usecase.ReadMode, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("wait"))
	if raw == "" {
		return usecase.ReadWait, nil
	}
	wait, err := strconv.ParseBool(raw)
	if err != nil {
		return usecase.ReadWait, fmt.Errorf("%w: wait must be a boolean", usecase.ErrInvalidInput)
	}
	if !wait {
		return usecase.ReadObserve, nil
	}
	return usecase.ReadWait, nil
}

func parseScoreboardRequest(r *http.Request) (scoreboardRequest, error) {
	req := scoreboardRequest{
		League: strings.TrimSpace(r.PathValue("league")),
		Date:   strings.TrimSpace(r.URL.Query().Get("date")),
	}
	mode, err := parseReadMode(r)
	req.Mode = mode
	return req, err
}

func parseSummaryRequest(r *http.Request) (summaryRequest, error) {
	req := summaryRequest{
		League:  strings.TrimSpace(r.PathValue("league")),
		EventID: strings.TrimSpace(r.PathValue("eventID")),
	}
	mode, err := parseReadMode(r)
	req.Mode = mode
	return req, err
}

func parseTeamGamesRequest(r *http.Request) (teamGamesRequest, error) {
	req := teamGamesRequest{
		League: strings.TrimSpace(r.PathValue("league")),
		Date:   strings.TrimSpace(r.URL.Query().Get("date")),
		TeamID: strings.TrimSpace(r.PathValue("teamID")),
		Limit:  defaultTeamGamesLimit,
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput)
		}
		req.Limit = limit
	}
	mode, err := parseReadMode(r)
	req.Mode = mode
	return req, err
}

// resultError converts a non-success query result into an error for the
// response. Success returns nil.
func resultError[T any](res query.Result[T]) error {
	switch res.Status {
	case query.StatusSuccess:
		return nil
	case query.StatusError:
		return res.Err
	default:
		return fmt.Errorf("%w: status=%s", errResultPending, res.Status)
	}
}

// warnResult logs a failed query read. Results that are still loading are not
// failures.
func (h *Handler) warnResult(ctx context.Context, err error, msg string, args ...any) {
	if errors.Is(err, errResultPending) {
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}

func writeResultHeaders[T any](w http.ResponseWriter, res query.Result[T]) {
	if !res.UpdatedAt.IsZero() {
		w.Header().Set(headerUpdatedAt, res.UpdatedAt.UTC().Format(time.RFC3339))
	}
	if res.Fetching {
		w.Header().Set(headerRevalidating, "true")
	}
}

type healthDTO struct {
	Status string        `json:"status"`
	Cache  cacheStatsDTO `json:"cache"`
}

type cacheStatsDTO struct {
	Entries  int   `json:"entries"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Fetches  int64 `json:"fetches"`
	Failures int64 `json:"failures"`
	InFlight int   `json:"inFlight"`
}

type leagueDTO struct {
	Key  string `json:"key"`
	Path string `json:"path"`
}

type sideDTO struct {
	Name  string `json:"name"`
	Short string `json:"short"`
	Logo  string `json:"logo"`
	Score string `json:"score"`
}

type gameDTO struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	StatusVariant string  `json:"statusVariant"`
	Date          string  `json:"date"`
	Home          sideDTO `json:"home"`
	Away          sideDTO `json:"away"`
}

type teamDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Logo         string `json:"logo"`
}

type summaryDTO struct {
	EventID       string  `json:"eventId"`
	Status        string  `json:"status"`
	StatusVariant string  `json:"statusVariant"`
	Headline      string  `json:"headline"`
	Venue         string  `json:"venue"`
	Location      string  `json:"location"`
	Home          sideDTO `json:"home"`
	Away          sideDTO `json:"away"`
}

func cacheStatsToDTO(v query.Stats) cacheStatsDTO {
	return cacheStatsDTO{
		Entries:  v.Entries,
		Hits:     v.Hits,
		Misses:   v.Misses,
		Fetches:  v.Fetches,
		Failures: v.Failures,
		InFlight: v.InFlight,
	}
}

func leagueToDTO(v league.League) leagueDTO {
	return leagueDTO{Key: v.String(), Path: league.Path(v)}
}

func sideToDTO(v game.Side) sideDTO {
	return sideDTO{Name: v.Name, Short: v.Short, Logo: v.Logo, Score: v.Score}
}

func gameToDTO(v game.Game) gameDTO {
	return gameDTO{
		ID:            v.ID,
		Status:        v.Status,
		StatusVariant: string(v.Variant()),
		Date:          v.Date,
		Home:          sideToDTO(v.Home),
		Away:          sideToDTO(v.Away),
	}
}

func gamesToDTO(items []game.Game) []gameDTO {
	out := make([]gameDTO, 0, len(items))
	for _, g := range items {
		out = append(out, gameToDTO(g))
	}
	return out
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:           v.ID,
		Name:         v.Name,
		Abbreviation: v.Abbreviation,
		Logo:         v.Logo,
	}
}

func summaryToDTO(eventID string, v summary.Summary) summaryDTO {
	return summaryDTO{
		EventID:       eventID,
		Status:        v.Status,
		StatusVariant: string(game.StatusVariantOf(v.Status)),
		Headline:      v.Headline,
		Venue:         v.Venue,
		Location:      v.Location,
		Home:          sideToDTO(v.Home),
		Away:          sideToDTO(v.Away),
	}
}
