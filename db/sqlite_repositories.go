package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"atlas-tracker/models"
)

// SQLiteLocationRepository implements the LocationRepository interface for SQLite
type SQLiteLocationRepository struct {
	db *sql.DB
}

// NewSQLiteLocationRepository creates a new SQLiteLocationRepository
func NewSQLiteLocationRepository(db *sql.DB) *SQLiteLocationRepository {
	return &SQLiteLocationRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteLocationRepository) Close() error {
	return r.db.Close()
}

// FindByID finds a base location by ID
func (r *SQLiteLocationRepository) FindByID(ctx context.Context, id int64) (*models.Location, error) {
	query := `SELECT id, name, lat, lng, fetched_at FROM locations WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var location models.Location
	err := row.Scan(&location.ID, &location.Name, &location.Lat, &location.Lng, &location.FetchedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning location: %w", err)
	}

	return &location, nil
}

// FindAll finds all base locations
func (r *SQLiteLocationRepository) FindAll(ctx context.Context) ([]*models.Location, error) {
	query := `SELECT id, name, lat, lng, fetched_at FROM locations ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying locations: %w", err)
	}
	defer rows.Close()

	var locations []*models.Location
	for rows.Next() {
		var location models.Location
		if err := rows.Scan(&location.ID, &location.Name, &location.Lat, &location.Lng, &location.FetchedAt); err != nil {
			return nil, fmt.Errorf("error scanning location: %w", err)
		}
		locations = append(locations, &location)
	}

	return locations, rows.Err()
}

// ReplaceAll supersedes the whole base location set in one transaction
func (r *SQLiteLocationRepository) ReplaceAll(ctx context.Context, locations []*models.Location) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM locations`); err != nil {
		return fmt.Errorf("error clearing locations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO locations (id, name, lat, lng, fetched_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing location insert: %w", err)
	}
	defer stmt.Close()

	for _, location := range locations {
		if _, err := stmt.ExecContext(ctx, location.ID, location.Name, location.Lat, location.Lng, location.FetchedAt); err != nil {
			return fmt.Errorf("error inserting location %d: %w", location.ID, err)
		}
	}

	return tx.Commit()
}

// SQLiteStatusRepository implements the StatusRepository interface for SQLite
type SQLiteStatusRepository struct {
	db *sql.DB
}

// NewSQLiteStatusRepository creates a new SQLiteStatusRepository
func NewSQLiteStatusRepository(db *sql.DB) *SQLiteStatusRepository {
	return &SQLiteStatusRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteStatusRepository) Close() error {
	return r.db.Close()
}

// FindByLocationID finds the visit status for a location
func (r *SQLiteStatusRepository) FindByLocationID(ctx context.Context, locationID int64) (*models.VisitStatus, error) {
	query := `SELECT location_id, visited, visited_at FROM visit_status WHERE location_id = ?`
	row := r.db.QueryRowContext(ctx, query, locationID)

	var status models.VisitStatus
	var visitedAt sql.NullTime
	err := row.Scan(&status.LocationID, &status.Visited, &visitedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning visit status: %w", err)
	}

	if visitedAt.Valid {
		status.VisitedAt = &visitedAt.Time
	}

	return &status, nil
}

// FindAll finds all visit statuses
func (r *SQLiteStatusRepository) FindAll(ctx context.Context) ([]*models.VisitStatus, error) {
	query := `SELECT location_id, visited, visited_at FROM visit_status`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying visit statuses: %w", err)
	}
	defer rows.Close()

	var statuses []*models.VisitStatus
	for rows.Next() {
		var status models.VisitStatus
		var visitedAt sql.NullTime
		if err := rows.Scan(&status.LocationID, &status.Visited, &visitedAt); err != nil {
			return nil, fmt.Errorf("error scanning visit status: %w", err)
		}
		if visitedAt.Valid {
			status.VisitedAt = &visitedAt.Time
		}
		statuses = append(statuses, &status)
	}

	return statuses, rows.Err()
}

// Upsert creates or updates the visit status for a location
func (r *SQLiteStatusRepository) Upsert(ctx context.Context, status *models.VisitStatus) error {
	query := `
	INSERT INTO visit_status (location_id, visited, visited_at) VALUES (?, ?, ?)
	ON CONFLICT(location_id) DO UPDATE SET visited = excluded.visited, visited_at = excluded.visited_at`
	_, err := r.db.ExecContext(ctx, query, status.LocationID, status.Visited, status.VisitedAt)
	if err != nil {
		return fmt.Errorf("error upserting visit status: %w", err)
	}
	return nil
}

// ReplaceAll swaps the whole visit status set in one transaction
func (r *SQLiteStatusRepository) ReplaceAll(ctx context.Context, statuses []*models.VisitStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM visit_status`); err != nil {
		return fmt.Errorf("error clearing visit statuses: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO visit_status (location_id, visited, visited_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing visit status insert: %w", err)
	}
	defer stmt.Close()

	for _, status := range statuses {
		if _, err := stmt.ExecContext(ctx, status.LocationID, status.Visited, status.VisitedAt); err != nil {
			return fmt.Errorf("error inserting visit status for %d: %w", status.LocationID, err)
		}
	}

	return tx.Commit()
}

// SQLiteCampaignRepository implements the CampaignRepository interface for SQLite
type SQLiteCampaignRepository struct {
	db *sql.DB
}

// NewSQLiteCampaignRepository creates a new SQLiteCampaignRepository
func NewSQLiteCampaignRepository(db *sql.DB) *SQLiteCampaignRepository {
	return &SQLiteCampaignRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteCampaignRepository) Close() error {
	return r.db.Close()
}

// FindByID finds a campaign by ID
func (r *SQLiteCampaignRepository) FindByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := `SELECT id, name, description, color, color_seq, visible, created_at, updated_at FROM campaigns WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	campaign, err := scanCampaign(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning campaign: %w", err)
	}

	return campaign, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	var campaign models.Campaign
	var description sql.NullString
	err := row.Scan(&campaign.ID, &campaign.Name, &description, &campaign.Color,
		&campaign.ColorSeq, &campaign.Visible, &campaign.CreatedAt, &campaign.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		campaign.Description = description.String
	}
	return &campaign, nil
}

// FindAll finds all campaigns ordered by their color assignment sequence
func (r *SQLiteCampaignRepository) FindAll(ctx context.Context) ([]*models.Campaign, error) {
	query := `SELECT id, name, description, color, color_seq, visible, created_at, updated_at FROM campaigns ORDER BY color_seq`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning campaign: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}

	return campaigns, rows.Err()
}

// NextColorSeq returns the next palette assignment sequence number
func (r *SQLiteCampaignRepository) NextColorSeq(ctx context.Context) (int, error) {
	query := `SELECT COALESCE(MAX(color_seq) + 1, 0) FROM campaigns`
	row := r.db.QueryRowContext(ctx, query)

	var seq int
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("error scanning next color sequence: %w", err)
	}
	return seq, nil
}

// Upsert creates or updates a campaign
func (r *SQLiteCampaignRepository) Upsert(ctx context.Context, campaign *models.Campaign) error {
	query := `
	INSERT INTO campaigns (id, name, description, color, color_seq, visible, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description, updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query, campaign.ID, campaign.Name, campaign.Description,
		campaign.Color, campaign.ColorSeq, campaign.Visible, campaign.CreatedAt, campaign.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting campaign: %w", err)
	}
	return nil
}

// SetVisible updates a campaign's visibility flag
func (r *SQLiteCampaignRepository) SetVisible(ctx context.Context, id string, visible bool) error {
	query := `UPDATE campaigns SET visible = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, visible, time.Now(), id)
	if err != nil {
		return fmt.Errorf("error updating campaign visibility: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking campaign visibility update: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a campaign and all its markers in one transaction
func (r *SQLiteCampaignRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_markers WHERE campaign_id = ?`, id); err != nil {
		return fmt.Errorf("error deleting campaign markers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id); err != nil {
		return fmt.Errorf("error deleting campaign: %w", err)
	}

	return tx.Commit()
}

// DeleteAll removes every campaign and every campaign marker in one transaction
func (r *SQLiteCampaignRepository) DeleteAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_markers`); err != nil {
		return fmt.Errorf("error deleting campaign markers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM campaigns`); err != nil {
		return fmt.Errorf("error deleting campaigns: %w", err)
	}

	return tx.Commit()
}

// FindMarkers finds all markers belonging to a campaign
func (r *SQLiteCampaignRepository) FindMarkers(ctx context.Context, campaignID string) ([]*models.CampaignMarker, error) {
	query := `
	SELECT campaign_id, marker_id, name, lat, lng, start_date, end_date, visited, visited_at
	FROM campaign_markers WHERE campaign_id = ? ORDER BY marker_id`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("error querying campaign markers: %w", err)
	}
	defer rows.Close()

	return scanCampaignMarkers(rows)
}

// FindAllMarkers finds every marker across all campaigns
func (r *SQLiteCampaignRepository) FindAllMarkers(ctx context.Context) ([]*models.CampaignMarker, error) {
	query := `
	SELECT campaign_id, marker_id, name, lat, lng, start_date, end_date, visited, visited_at
	FROM campaign_markers ORDER BY campaign_id, marker_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying campaign markers: %w", err)
	}
	defer rows.Close()

	return scanCampaignMarkers(rows)
}

func scanCampaignMarkers(rows *sql.Rows) ([]*models.CampaignMarker, error) {
	var markers []*models.CampaignMarker
	for rows.Next() {
		var marker models.CampaignMarker
		var startDate, endDate, visitedAt sql.NullTime
		err := rows.Scan(&marker.CampaignID, &marker.MarkerID, &marker.Name, &marker.Lat, &marker.Lng,
			&startDate, &endDate, &marker.Visited, &visitedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning campaign marker: %w", err)
		}
		if startDate.Valid {
			marker.StartDate = startDate.Time
		}
		if endDate.Valid {
			marker.EndDate = endDate.Time
		}
		if visitedAt.Valid {
			marker.VisitedAt = &visitedAt.Time
		}
		markers = append(markers, &marker)
	}
	return markers, rows.Err()
}

// ReplaceMarkers swaps a campaign's marker set wholesale in one transaction
func (r *SQLiteCampaignRepository) ReplaceMarkers(ctx context.Context, campaignID string, markers []*models.CampaignMarker) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_markers WHERE campaign_id = ?`, campaignID); err != nil {
		return fmt.Errorf("error clearing campaign markers: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO campaign_markers (campaign_id, marker_id, name, lat, lng, start_date, end_date, visited, visited_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing campaign marker insert: %w", err)
	}
	defer stmt.Close()

	for _, marker := range markers {
		_, err := stmt.ExecContext(ctx, campaignID, marker.MarkerID, marker.Name, marker.Lat, marker.Lng,
			marker.StartDate, marker.EndDate, marker.Visited, marker.VisitedAt)
		if err != nil {
			return fmt.Errorf("error inserting campaign marker %d: %w", marker.MarkerID, err)
		}
	}

	return tx.Commit()
}

// SetMarkerVisited updates the independent visited flag of one campaign marker
func (r *SQLiteCampaignRepository) SetMarkerVisited(ctx context.Context, campaignID string, markerID int64, visited bool, visitedAt *time.Time) error {
	query := `UPDATE campaign_markers SET visited = ?, visited_at = ? WHERE campaign_id = ? AND marker_id = ?`
	result, err := r.db.ExecContext(ctx, query, visited, visitedAt, campaignID, markerID)
	if err != nil {
		return fmt.Errorf("error updating campaign marker status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking campaign marker update: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SQLiteImportRepository implements the ImportRepository interface for SQLite
type SQLiteImportRepository struct {
	db *sql.DB
}

// NewSQLiteImportRepository creates a new SQLiteImportRepository
func NewSQLiteImportRepository(db *sql.DB) *SQLiteImportRepository {
	return &SQLiteImportRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteImportRepository) Close() error {
	return r.db.Close()
}

// ReplaceAll swaps every table an import touches inside one transaction.
// Markers are cleared first and inserted last to satisfy the campaign
// foreign key.
func (r *SQLiteImportRepository) ReplaceAll(ctx context.Context, snapshot *ImportSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"campaign_markers", "campaigns", "visit_status", "locations"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}

	locationStmt, err := tx.PrepareContext(ctx, `INSERT INTO locations (id, name, lat, lng, fetched_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing location insert: %w", err)
	}
	defer locationStmt.Close()
	for _, location := range snapshot.Locations {
		if _, err := locationStmt.ExecContext(ctx, location.ID, location.Name, location.Lat, location.Lng, location.FetchedAt); err != nil {
			return fmt.Errorf("error importing location %d: %w", location.ID, err)
		}
	}

	statusStmt, err := tx.PrepareContext(ctx, `INSERT INTO visit_status (location_id, visited, visited_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing visit status insert: %w", err)
	}
	defer statusStmt.Close()
	for _, status := range snapshot.Statuses {
		if _, err := statusStmt.ExecContext(ctx, status.LocationID, status.Visited, status.VisitedAt); err != nil {
			return fmt.Errorf("error importing visit status for %d: %w", status.LocationID, err)
		}
	}

	campaignStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO campaigns (id, name, description, color, color_seq, visible, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing campaign insert: %w", err)
	}
	defer campaignStmt.Close()

	markerStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO campaign_markers (campaign_id, marker_id, name, lat, lng, start_date, end_date, visited, visited_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing campaign marker insert: %w", err)
	}
	defer markerStmt.Close()

	for _, campaign := range snapshot.Campaigns {
		_, err := campaignStmt.ExecContext(ctx, campaign.ID, campaign.Name, campaign.Description,
			campaign.Color, campaign.ColorSeq, campaign.Visible, campaign.CreatedAt, campaign.UpdatedAt)
		if err != nil {
			return fmt.Errorf("error importing campaign %s: %w", campaign.ID, err)
		}
		for _, marker := range snapshot.MarkersByCampaign[campaign.ID] {
			_, err := markerStmt.ExecContext(ctx, campaign.ID, marker.MarkerID, marker.Name, marker.Lat, marker.Lng,
				marker.StartDate, marker.EndDate, marker.Visited, marker.VisitedAt)
			if err != nil {
				return fmt.Errorf("error importing marker %d for campaign %s: %w", marker.MarkerID, campaign.ID, err)
			}
		}
	}

	return tx.Commit()
}

// SQLitePreferencesRepository implements the PreferencesRepository interface for SQLite
type SQLitePreferencesRepository struct {
	db *sql.DB
}

// NewSQLitePreferencesRepository creates a new SQLitePreferencesRepository
func NewSQLitePreferencesRepository(db *sql.DB) *SQLitePreferencesRepository {
	return &SQLitePreferencesRepository{db: db}
}

// Close closes the database connection
func (r *SQLitePreferencesRepository) Close() error {
	return r.db.Close()
}

// Find returns the stored preferences row, if any
func (r *SQLitePreferencesRepository) Find(ctx context.Context) (*models.Preferences, error) {
	query := `
	SELECT id, show_base_markers, cluster_radius, selected_city, map_zoom, map_lat, map_lng, created_at, updated_at
	FROM preferences LIMIT 1`
	row := r.db.QueryRowContext(ctx, query)

	var prefs models.Preferences
	var selectedCity sql.NullString
	var createdAt, updatedAt sql.NullTime
	err := row.Scan(&prefs.ID, &prefs.ShowBaseMarkers, &prefs.ClusterRadius, &selectedCity,
		&prefs.MapZoom, &prefs.MapLat, &prefs.MapLng, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning preferences: %w", err)
	}

	if selectedCity.Valid {
		prefs.SelectedCity = selectedCity.String
	}
	if createdAt.Valid {
		prefs.CreatedAt = &createdAt.Time
	}
	if updatedAt.Valid {
		prefs.UpdatedAt = &updatedAt.Time
	}

	return &prefs, nil
}

// Save creates or updates the single preferences row
func (r *SQLitePreferencesRepository) Save(ctx context.Context, prefs *models.Preferences) error {
	if prefs.ID == "" {
		prefs.ID = GenerateID()
	}

	query := `
	INSERT INTO preferences (id, show_base_markers, cluster_radius, selected_city, map_zoom, map_lat, map_lng, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		show_base_markers = excluded.show_base_markers,
		cluster_radius = excluded.cluster_radius,
		selected_city = excluded.selected_city,
		map_zoom = excluded.map_zoom,
		map_lat = excluded.map_lat,
		map_lng = excluded.map_lng,
		updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query, prefs.ID, prefs.ShowBaseMarkers, prefs.ClusterRadius,
		prefs.SelectedCity, prefs.MapZoom, prefs.MapLat, prefs.MapLng, prefs.CreatedAt, prefs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error saving preferences: %w", err)
	}
	return nil
}
