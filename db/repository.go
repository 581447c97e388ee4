package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"atlas-tracker/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// LocationRepository defines the interface for base location operations
type LocationRepository interface {
	Repository
	FindByID(ctx context.Context, id int64) (*models.Location, error)
	FindAll(ctx context.Context) ([]*models.Location, error)
	// ReplaceAll supersedes the whole base set in one transaction.
	ReplaceAll(ctx context.Context, locations []*models.Location) error
}

// StatusRepository defines the interface for global visit status operations
type StatusRepository interface {
	Repository
	FindByLocationID(ctx context.Context, locationID int64) (*models.VisitStatus, error)
	FindAll(ctx context.Context) ([]*models.VisitStatus, error)
	Upsert(ctx context.Context, status *models.VisitStatus) error
	ReplaceAll(ctx context.Context, statuses []*models.VisitStatus) error
}

// CampaignRepository defines the interface for campaign metadata and marker
// operations. Delete removes a campaign and its markers atomically.
type CampaignRepository interface {
	Repository
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
	FindAll(ctx context.Context) ([]*models.Campaign, error)
	NextColorSeq(ctx context.Context) (int, error)
	Upsert(ctx context.Context, campaign *models.Campaign) error
	SetVisible(ctx context.Context, id string, visible bool) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error

	FindMarkers(ctx context.Context, campaignID string) ([]*models.CampaignMarker, error)
	FindAllMarkers(ctx context.Context) ([]*models.CampaignMarker, error)
	// ReplaceMarkers swaps a campaign's marker set wholesale in one transaction.
	ReplaceMarkers(ctx context.Context, campaignID string, markers []*models.CampaignMarker) error
	SetMarkerVisited(ctx context.Context, campaignID string, markerID int64, visited bool, visitedAt *time.Time) error
}

// PreferencesRepository defines the interface for the persisted UI state
type PreferencesRepository interface {
	Repository
	Find(ctx context.Context) (*models.Preferences, error)
	Save(ctx context.Context, prefs *models.Preferences) error
}

// ImportSnapshot is the full persisted state an import replaces wholesale.
type ImportSnapshot struct {
	Locations         []*models.Location
	Statuses          []*models.VisitStatus
	Campaigns         []*models.Campaign
	MarkersByCampaign map[string][]*models.CampaignMarker
}

// ImportRepository replaces all persisted state in one transaction. Any
// failure rolls the whole replace back, so prior state survives a bad file.
type ImportRepository interface {
	Repository
	ReplaceAll(ctx context.Context, snapshot *ImportSnapshot) error
}

// RepositoryFactory creates repositories backed by the shared sqlite handle
type RepositoryFactory struct {
	SQLiteDB *sql.DB
	DBName   string
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(sqliteDB *sql.DB, dbName string) *RepositoryFactory {
	return &RepositoryFactory{
		SQLiteDB: sqliteDB,
		DBName:   dbName,
	}
}

// NewLocationRepository creates a new location repository
func (f *RepositoryFactory) NewLocationRepository() LocationRepository {
	return NewSQLiteLocationRepository(f.SQLiteDB)
}

// NewStatusRepository creates a new visit status repository
func (f *RepositoryFactory) NewStatusRepository() StatusRepository {
	return NewSQLiteStatusRepository(f.SQLiteDB)
}

// NewCampaignRepository creates a new campaign repository
func (f *RepositoryFactory) NewCampaignRepository() CampaignRepository {
	return NewSQLiteCampaignRepository(f.SQLiteDB)
}

// NewPreferencesRepository creates a new preferences repository
func (f *RepositoryFactory) NewPreferencesRepository() PreferencesRepository {
	return NewSQLitePreferencesRepository(f.SQLiteDB)
}

// NewImportRepository creates a new import repository
func (f *RepositoryFactory) NewImportRepository() ImportRepository {
	return NewSQLiteImportRepository(f.SQLiteDB)
}

// GenerateID generates a unique ID for a record
func GenerateID() string {
	return uuid.New().String()
}
