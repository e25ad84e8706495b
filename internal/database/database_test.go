package database

import (
	"path/filepath"
	"testing"
)

func TestOpenRunsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "test.db")
	conn, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	for _, table := range []string{"runs", "run_diagnostics", "direction_weights", "building_impacts"} {
		var n int
		if err := conn.Get(&n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table); err != nil || n != 1 {
			t.Errorf("table %s: n = %d, err = %v", table, n, err)
		}
	}

	// a second run applies nothing
	if err := NewMigrationManager(conn, migrationFS).RunMigrations(); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	var applied int
	if err := conn.Get(&applied, "SELECT COUNT(*) FROM migrations"); err != nil || applied != 2 {
		t.Errorf("applied migrations = %d, err = %v", applied, err)
	}
}
