package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/sports-scoreboard/external/espn"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/league"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/query"
	"github.com/riskibarqy/sports-scoreboard/internal/usecase"
)

func (h *Handler) GetScoreboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScoreboard")
	defer span.End()

	req, err := parseScoreboardRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	l, _ := league.Parse(req.League)

	var res query.Result[espn.Payload]
	if req.Mode == usecase.ReadObserve {
		res = h.scoreboardService.ObserveScoreboard(ctx, l, req.Date)
	} else {
		res = h.scoreboardService.Scoreboard(ctx, l, req.Date)
	}
	if err := resultError(res); err != nil {
		h.warnResult(ctx, err, "get scoreboard failed", "league", l, "date", req.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeResultHeaders(w, res)
	writeSuccess(ctx, w, http.StatusOK, res.Data)
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	req, err := parseScoreboardRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	l, _ := league.Parse(req.League)

	var res usecase.GamesResult
	if req.Mode == usecase.ReadObserve {
		res = h.scoreboardService.ObserveGames(ctx, l, req.Date)
	} else {
		res = h.scoreboardService.Games(ctx, l, req.Date)
	}
	if err := resultError(res.Result); err != nil {
		h.warnResult(ctx, err, "list games failed", "league", l, "date", req.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeResultHeaders(w, res.Result)
	writeSuccess(ctx, w, http.StatusOK, gamesToDTO(res.Games))
}

func (h *Handler) GetGameSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameSummary")
	defer span.End()

	req, err := parseSummaryRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	l, _ := league.Parse(req.League)

	var res usecase.SummaryResult
	if req.Mode == usecase.ReadObserve {
		res = h.scoreboardService.ObserveSummary(ctx, l, req.EventID)
	} else {
		res = h.scoreboardService.Summary(ctx, l, req.EventID)
	}
	if err := resultError(res.Result); err != nil {
		h.warnResult(ctx, err, "get game summary failed", "league", l, "event_id", req.EventID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if res.Data.IsEmpty() {
		writeError(ctx, w, fmt.Errorf("%w: no details for event=%s", usecase.ErrNotFound, req.EventID))
		return
	}

	writeResultHeaders(w, res.Result)
	writeSuccess(ctx, w, http.StatusOK, summaryToDTO(req.EventID, res.Summary))
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	req, err := parseScoreboardRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	l, _ := league.Parse(req.League)

	var res usecase.TeamsResult
	if req.Mode == usecase.ReadObserve {
		res = h.scoreboardService.ObserveTeams(ctx, l, req.Date)
	} else {
		res = h.scoreboardService.Teams(ctx, l, req.Date)
	}
	if err := resultError(res.Result); err != nil {
		h.warnResult(ctx, err, "list teams failed", "league", l, "date", req.Date, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(res.Teams))
	for _, t := range res.Teams {
		items = append(items, teamToDTO(t))
	}

	writeResultHeaders(w, res.Result)
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTeamGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamGames")
	defer span.End()

	req, err := parseTeamGamesRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	l, _ := league.Parse(req.League)

	var res usecase.GamesResult
	if req.Mode == usecase.ReadObserve {
		res = h.scoreboardService.ObserveTeamGames(ctx, l, req.Date, req.TeamID, req.Limit)
	} else {
		res = h.scoreboardService.TeamGames(ctx, l, req.Date, req.TeamID, req.Limit)
	}
	if err := resultError(res.Result); err != nil {
		h.warnResult(ctx, err, "list team games failed", "league", l, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeResultHeaders(w, res.Result)
	writeSuccess(ctx, w, http.StatusOK, gamesToDTO(res.Games))
}
