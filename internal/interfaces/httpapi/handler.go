package httpapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/league"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/sports-scoreboard/internal/usecase"
)

type Handler struct {
	scoreboardService *usecase.ScoreboardService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(scoreboardService *usecase.ScoreboardService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		scoreboardService: scoreboardService,
		logger:            logger,
		validator:         newValidator(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, healthDTO{
		Status: "ok",
		Cache:  cacheStatsToDTO(h.scoreboardService.CacheStats()),
	})
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues := league.All()
	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
