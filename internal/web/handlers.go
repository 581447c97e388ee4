package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"

	"atlas-tracker/internal/campaign"
	"atlas-tracker/internal/config"
	"atlas-tracker/internal/export"
	"atlas-tracker/internal/planner"
	"atlas-tracker/internal/preferences"
	"atlas-tracker/internal/status"
)

const sessionName = "atlas-session"

// WebHandler serves the JSON API the map frontend drives. Optional
// collaborators are nil-checked so a missing one degrades the dependent
// endpoint to a no-op instead of panicking.
type WebHandler struct {
	plannerService  *planner.PlannerService
	statusService   *status.StatusService
	campaignService *campaign.CampaignService
	prefsService    *preferences.PreferencesService
	exportService   *export.ExportService
	sessionStore    *sessions.CookieStore
	config          *config.Config
}

func NewWebHandler(
	plannerService *planner.PlannerService,
	statusService *status.StatusService,
	campaignService *campaign.CampaignService,
	prefsService *preferences.PreferencesService,
	exportService *export.ExportService,
	cfg *config.Config,
) *WebHandler {
	return &WebHandler{
		plannerService:  plannerService,
		statusService:   statusService,
		campaignService: campaignService,
		prefsService:    prefsService,
		exportService:   exportService,
		sessionStore:    sessions.NewCookieStore([]byte(cfg.SessionSecret)),
		config:          cfg,
	}
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// Login opens the single-user session.
func (h *WebHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if creds.Username != h.config.Username || creds.Password != h.config.Password {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	session, _ := h.sessionStore.Get(r, sessionName)
	session.Values["authenticated"] = true
	session.Values["username"] = creds.Username
	if err := session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"username": creds.Username})
}

// Logout closes the session.
func (h *WebHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessionStore.Get(r, sessionName)
	session.Values["authenticated"] = false
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WebHandler) hasSession(r *http.Request) bool {
	session, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		return false
	}
	authenticated, ok := session.Values["authenticated"].(bool)
	return ok && authenticated
}

// APIRenderPlan recomputes and returns the full render plan.
func (h *WebHandler) APIRenderPlan(w http.ResponseWriter, r *http.Request) {
	if h.plannerService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	plan, err := h.plannerService.RenderPlan(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// APIStatistics returns only the statistics of a reconciliation pass.
func (h *WebHandler) APIStatistics(w http.ResponseWriter, r *http.Request) {
	if h.plannerService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	plan, err := h.plannerService.RenderPlan(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, plan.Stats)
}

// respondWithPlan re-renders after a state change so the client can redraw
// without a second request.
func (h *WebHandler) respondWithPlan(w http.ResponseWriter, r *http.Request) {
	h.APIRenderPlan(w, r)
}

// APIRefreshLocations refetches the base location set from the marker API.
func (h *WebHandler) APIRefreshLocations(w http.ResponseWriter, r *http.Request) {
	if h.plannerService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	count, err := h.plannerService.RefreshLocations(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	log.Printf("Base location set refreshed, %d locations", count)
	h.respondWithPlan(w, r)
}

// APISetLocationStatus toggles the global visited flag for a base location.
func (h *WebHandler) APISetLocationStatus(w http.ResponseWriter, r *http.Request) {
	if h.statusService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	locationID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid location id")
		return
	}

	var body struct {
		Visited bool `json:"visited"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	h.statusService.Set(r.Context(), locationID, body.Visited)
	h.respondWithPlan(w, r)
}

// APILoadCampaign loads a campaign overlay by id. Reloading an already
// loaded campaign requires ?overwrite=true; without it the handler answers
// 409 so the UI can ask for confirmation.
func (h *WebHandler) APILoadCampaign(w http.ResponseWriter, r *http.Request) {
	if h.campaignService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	id := mux.Vars(r)["id"]
	overwrite := r.URL.Query().Get("overwrite") == "true"

	loaded, err := h.campaignService.Load(r.Context(), id, overwrite)
	if err == campaign.ErrCampaignLoaded {
		writeError(w, http.StatusConflict, "Campaign is already loaded; confirm overwrite to reload")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	log.Printf("Campaign %s (%s) loaded", loaded.ID, loaded.Name)
	h.respondWithPlan(w, r)
}

// APIDeleteCampaign removes one campaign and its markers atomically.
func (h *WebHandler) APIDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if h.campaignService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.campaignService.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondWithPlan(w, r)
}

// APIClearCampaigns removes every campaign overlay.
func (h *WebHandler) APIClearCampaigns(w http.ResponseWriter, r *http.Request) {
	if h.campaignService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.campaignService.ClearAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.respondWithPlan(w, r)
}

// APIListCampaigns returns the campaign registry in color assignment order.
func (h *WebHandler) APIListCampaigns(w http.ResponseWriter, r *http.Request) {
	if h.campaignService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	campaigns, err := h.campaignService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// APISetCampaignVisibility flips one campaign's visibility toggle.
func (h *WebHandler) APISetCampaignVisibility(w http.ResponseWriter, r *http.Request) {
	if h.campaignService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	var body struct {
		Visible bool `json:"visible"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.campaignService.SetVisible(r.Context(), mux.Vars(r)["id"], body.Visible); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.respondWithPlan(w, r)
}

// APISetCampaignMarkerStatus toggles the per-campaign visited flag of one
// marker. It is independent of the global status for the same marker id.
func (h *WebHandler) APISetCampaignMarkerStatus(w http.ResponseWriter, r *http.Request) {
	if h.campaignService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	vars := mux.Vars(r)
	markerID, err := strconv.ParseInt(vars["markerId"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid marker id")
		return
	}

	var body struct {
		Visited bool `json:"visited"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.campaignService.SetMarkerVisited(r.Context(), vars["id"], markerID, body.Visited); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.respondWithPlan(w, r)
}

// APICities returns the selectable city list derived from the base set.
func (h *WebHandler) APICities(w http.ResponseWriter, r *http.Request) {
	if h.plannerService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	cities, err := h.plannerService.Cities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cities)
}

// APIPreferences returns the persisted UI state.
func (h *WebHandler) APIPreferences(w http.ResponseWriter, r *http.Request) {
	if h.prefsService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, h.prefsService.Get(r.Context()))
}

// APIUpdatePreferences applies a partial preferences update and re-renders.
func (h *WebHandler) APIUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	if h.prefsService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if _, err := h.prefsService.Update(r.Context(), updates); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respondWithPlan(w, r)
}

// APIExport streams the progress file as a download.
func (h *WebHandler) APIExport(w http.ResponseWriter, r *http.Request) {
	if h.exportService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	file, err := h.exportService.Export(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := fmt.Sprintf("location-tracker-data_%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := json.NewEncoder(w).Encode(file); err != nil {
		log.Printf("Error writing export: %v", err)
	}
}

// APIImport destructively replaces all persisted state with the uploaded
// file. The destructive step requires ?confirm=true; an invalid file is
// rejected before anything is mutated.
func (h *WebHandler) APIImport(w http.ResponseWriter, r *http.Request) {
	if h.exportService == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusConflict, "Import replaces all existing data; confirm to proceed")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, 32<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read import file")
		return
	}

	if err := h.exportService.Import(r.Context(), data); err != nil {
		if errors.Is(err, export.ErrInvalidFormat) {
			writeError(w, http.StatusBadRequest, "The file is not in the correct format")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.statusService != nil {
		if err := h.statusService.Reload(r.Context()); err != nil {
			log.Printf("Failed to reload visit statuses after import: %v", err)
		}
	}
	h.respondWithPlan(w, r)
}
