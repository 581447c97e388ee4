package preferences

import (
	"context"
	"errors"
	"log"
	"time"

	"atlas-tracker/db"
	"atlas-tracker/models"
)

// PreferencesService handles the persisted UI state
type PreferencesService struct {
	repo      db.PreferencesRepository
	dbManager *db.DBManager
}

// NewPreferencesService creates a new preferences service
func NewPreferencesService(repo db.PreferencesRepository, dbManager *db.DBManager) *PreferencesService {
	return &PreferencesService{
		repo:      repo,
		dbManager: dbManager,
	}
}

// Get retrieves the stored preferences, creating defaults on first use.
// Read failures degrade to defaults so rendering can always proceed.
func (s *PreferencesService) Get(ctx context.Context) *models.Preferences {
	prefs, err := s.repo.Find(ctx)
	if err == nil {
		return prefs
	}
	if err != db.ErrNotFound {
		log.Printf("Error reading preferences, using defaults: %v", err)
		return models.DefaultPreferences()
	}

	prefs = models.DefaultPreferences()
	prefs.ID = db.GenerateID()
	now := time.Now()
	prefs.CreatedAt = &now
	prefs.UpdatedAt = &now

	if err := s.dbManager.SavePreferences(s.repo, ctx, prefs); err != nil {
		log.Printf("Error creating default preferences: %v", err)
	}
	return prefs
}

// Update applies a partial update and persists the result
func (s *PreferencesService) Update(ctx context.Context, updates map[string]interface{}) (*models.Preferences, error) {
	prefs := s.Get(ctx)

	for key, value := range updates {
		switch key {
		case "show_base_markers":
			boolVal, ok := value.(bool)
			if !ok {
				return nil, errors.New("show_base_markers must be a boolean")
			}
			prefs.ShowBaseMarkers = boolVal
		case "cluster_radius":
			numVal, ok := value.(float64)
			if !ok {
				return nil, errors.New("cluster_radius must be a number")
			}
			prefs.ClusterRadius = int(numVal)
		case "selected_city":
			strVal, ok := value.(string)
			if !ok {
				return nil, errors.New("selected_city must be a string")
			}
			prefs.SelectedCity = strVal
		case "map_zoom":
			numVal, ok := value.(float64)
			if !ok {
				return nil, errors.New("map_zoom must be a number")
			}
			prefs.MapZoom = int(numVal)
		case "map_lat":
			numVal, ok := value.(float64)
			if !ok {
				return nil, errors.New("map_lat must be a number")
			}
			prefs.MapLat = numVal
		case "map_lng":
			numVal, ok := value.(float64)
			if !ok {
				return nil, errors.New("map_lng must be a number")
			}
			prefs.MapLng = numVal
		default:
			return nil, errors.New("unknown preference: " + key)
		}
	}

	now := time.Now()
	prefs.UpdatedAt = &now

	if err := s.dbManager.SavePreferences(s.repo, ctx, prefs); err != nil {
		return nil, err
	}

	return prefs, nil
}
