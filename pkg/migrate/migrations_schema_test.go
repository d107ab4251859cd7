package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLedgerSchemaMigrationContainsTables(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("migrations", "20260830120000_create_ledger_schema.sql"))
	if err != nil {
		t.Fatalf("reading migration: %v", err)
	}
	sql := string(data)

	for _, table := range []string{"accounts", "movements", "client_snapshots", "processed_events"} {
		if !strings.Contains(sql, "CREATE TABLE "+table) {
			t.Errorf("migration missing table %s", table)
		}
	}
	if !strings.Contains(sql, "idx_movements_account_replay") {
		t.Error("migration missing replay index")
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}
