package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"atlas-tracker/internal/auth"
	"atlas-tracker/middleware"
)

// SetupRoutes wires the JSON API. Session login and token exchange are open;
// everything under /api requires either an active session or a bearer token.
func (h *WebHandler) SetupRoutes(authHandlers *auth.AuthHandlers, mw *middleware.Middleware) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/logout", h.Logout).Methods("POST")
	r.HandleFunc("/api/token", authHandlers.TokenHandler).Methods("POST")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return h.sessionOrBearer(next, mw)
	})

	api.HandleFunc("/render-plan", h.APIRenderPlan).Methods("GET")
	api.HandleFunc("/statistics", h.APIStatistics).Methods("GET")

	api.HandleFunc("/locations/refresh", h.APIRefreshLocations).Methods("POST")
	api.HandleFunc("/locations/{id:[0-9]+}/status", h.APISetLocationStatus).Methods("PUT")

	api.HandleFunc("/campaigns", h.APIListCampaigns).Methods("GET")
	api.HandleFunc("/campaigns", h.APIClearCampaigns).Methods("DELETE")
	api.HandleFunc("/campaigns/{id}", h.APILoadCampaign).Methods("POST")
	api.HandleFunc("/campaigns/{id}", h.APIDeleteCampaign).Methods("DELETE")
	api.HandleFunc("/campaigns/{id}/visibility", h.APISetCampaignVisibility).Methods("PUT")
	api.HandleFunc("/campaigns/{id}/markers/{markerId:[0-9]+}/status", h.APISetCampaignMarkerStatus).Methods("PUT")

	api.HandleFunc("/cities", h.APICities).Methods("GET")
	api.HandleFunc("/preferences", h.APIPreferences).Methods("GET")
	api.HandleFunc("/preferences", h.APIUpdatePreferences).Methods("PUT")

	api.HandleFunc("/export", h.APIExport).Methods("GET")
	api.HandleFunc("/import", h.APIImport).Methods("POST")

	return r
}

// sessionOrBearer admits an authenticated session directly and defers to the
// bearer token middleware otherwise.
func (h *WebHandler) sessionOrBearer(next http.Handler, mw *middleware.Middleware) http.Handler {
	bearer := mw.AuthMiddleware(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.hasSession(r) {
			next.ServeHTTP(w, r)
			return
		}
		bearer.ServeHTTP(w, r)
	})
}
