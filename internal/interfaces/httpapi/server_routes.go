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
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("GET /v1/matches/{matchID}/players/{playerSlot}/metrics", handler.GetPlayerMetrics)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedMatchRoutes(mux, handler, verifier)
	registerAuthorizedUserRoutes(mux, handler, verifier)
	registerAuthorizedRecomputeRoutes(mux, handler, verifier)
}

func registerAuthorizedMatchRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/matches/{matchID}/import", RequireAuth(verifier, http.HandlerFunc(handler.ImportMatch)))
	mux.Handle("POST /v1/matches/{matchID}/import-async", RequireAuth(verifier, http.HandlerFunc(handler.ImportMatchAsync)))
	mux.Handle("POST /v1/matches/{matchID}/digest", RequireAuth(verifier, http.HandlerFunc(handler.RebuildDigest)))
}

func registerAuthorizedUserRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/users/me/statistics", RequireAuth(verifier, http.HandlerFunc(handler.GetMyStatistics)))
	mux.Handle("POST /v1/users/me/statistics/recalculate", RequireAuth(verifier, http.HandlerFunc(handler.RecalculateMyStatistics)))
	mux.Handle("GET /v1/users/me/tasks", RequireAuth(verifier, http.HandlerFunc(handler.ListMyTasks)))
	mux.Handle("POST /v1/users/me/tasks/generate", RequireAuth(verifier, http.HandlerFunc(handler.GenerateMyTasks)))
	mux.Handle("GET /v1/users/me/dashboard", RequireAuth(verifier, http.HandlerFunc(handler.GetDashboard)))
}

func registerAuthorizedRecomputeRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/internal/recompute/matches", RequireAuth(verifier, http.HandlerFunc(handler.RecomputeMatches)))
	mux.Handle("POST /v1/internal/recompute/users", RequireAuth(verifier, http.HandlerFunc(handler.RecomputeUsers)))
	mux.Handle("GET /v1/internal/pipeline/runs/{matchID}", RequireAuth(verifier, http.HandlerFunc(handler.GetPipelineRun)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/import-match", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunImportMatchJob)))
}
