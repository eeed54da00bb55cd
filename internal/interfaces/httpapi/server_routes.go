package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{league}/scoreboard", handler.GetScoreboard)
	mux.HandleFunc("GET /v1/leagues/{league}/games", handler.ListGames)
	mux.HandleFunc("GET /v1/leagues/{league}/games/{eventID}/summary", handler.GetGameSummary)
	mux.HandleFunc("GET /v1/leagues/{league}/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/leagues/{league}/teams/{teamID}/games", handler.ListTeamGames)
}
