package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ConnectToSQLite initializes and returns a SQLite connection
func ConnectToSQLite(dbPath string) (*sql.DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for SQLite: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	log.Println("Connected to SQLite database")
	return db, nil
}

// InitializeSchema creates all the necessary tables if they don't exist
func InitializeSchema(db *sql.DB) error {
	// Create locations table
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		fetched_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create locations table: %w", err)
	}

	// Create visit_status table
	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS visit_status (
		location_id INTEGER PRIMARY KEY,
		visited BOOLEAN NOT NULL,
		visited_at TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create visit_status table: %w", err)
	}

	// Create campaigns table
	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS campaigns (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		color TEXT NOT NULL,
		color_seq INTEGER NOT NULL,
		visible BOOLEAN NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create campaigns table: %w", err)
	}

	// Create campaign_markers table
	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS campaign_markers (
		campaign_id TEXT NOT NULL,
		marker_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		start_date TIMESTAMP,
		end_date TIMESTAMP,
		visited BOOLEAN NOT NULL DEFAULT 0,
		visited_at TIMESTAMP,
		PRIMARY KEY (campaign_id, marker_id),
		FOREIGN KEY (campaign_id) REFERENCES campaigns(id)
	)`)
	if err != nil {
		return fmt.Errorf("failed to create campaign_markers table: %w", err)
	}

	// Create preferences table
	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS preferences (
		id TEXT PRIMARY KEY,
		show_base_markers BOOLEAN NOT NULL,
		cluster_radius INTEGER NOT NULL,
		selected_city TEXT,
		map_zoom INTEGER NOT NULL,
		map_lat REAL NOT NULL,
		map_lng REAL NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create preferences table: %w", err)
	}

	log.Println("Database schema initialized successfully")
	return nil
}
