package testutils

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"atlas-tracker/db"
	"atlas-tracker/internal/config"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func SetupTestDatabase(t *testing.T) (*sql.DB, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	testDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_timeout=10000&_foreign_keys=on")
	require.NoError(t, err)

	err = db.InitializeSchema(testDB)
	require.NoError(t, err)

	cleanup := func() {
		testDB.Close()
		os.RemoveAll(tempDir)
	}

	return testDB, cleanup
}

func SetupTestRepositoryFactory(t *testing.T) (*db.RepositoryFactory, func()) {
	testDB, cleanup := SetupTestDatabase(t)
	factory := db.NewRepositoryFactory(testDB, "atlas_tracker_test")
	return factory, cleanup
}

func GetTestConfig() *config.Config {
	return &config.Config{
		Port:          "3008",
		SQLitePath:    ":memory:",
		DatabaseName:  "atlas_tracker_test",
		APIBaseURL:    "http://127.0.0.1:0/api/v1",
		MapID:         "100",
		Username:      "test_admin",
		Password:      "test_password",
		JwtSecret:     "test_jwt_secret_key_for_testing_only",
		SessionSecret: "test_session_secret_for_testing",
	}
}
