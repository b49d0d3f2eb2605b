package shared

import (
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		if migrations[0].Name != "create_local_store" {
			t.Errorf("expected first migration create_local_store, got %q", migrations[0].Name)
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(MemoryDSN)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM local_store LIMIT 1"); err != nil {
			t.Errorf("local_store table should exist after migrations: %v", err)
		}

		before, err := AppliedVersions(db)
		if err != nil {
			t.Fatalf("failed to list versions: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		after, err := AppliedVersions(db)
		if err != nil {
			t.Fatalf("failed to list versions after rollback: %v", err)
		}
		if len(after) != len(before)-1 {
			t.Errorf("expected one fewer applied migration, got %d (was %d)", len(after), len(before))
		}

		if _, err := db.Exec("SELECT 1 FROM upload_log LIMIT 1"); err == nil {
			t.Error("upload_log should be dropped by rollback")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(MemoryDSN)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		for range 2 {
			if err := RunMigrations(db); err != nil {
				t.Fatalf("failed to run migrations: %v", err)
			}
		}

		versions, err := AppliedVersions(db)
		if err != nil {
			t.Fatalf("failed to list versions: %v", err)
		}

		migrations, _ := loadMigrations()
		if len(versions) != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), len(versions))
		}
	})

	t.Run("Rollback Empty", func(t *testing.T) {
		db, err := NewDatabase(MemoryDSN)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RollbackMigration(db); err == nil {
			t.Error("expected error rolling back with nothing applied")
		}
	})

	t.Run("splitStatements", func(t *testing.T) {
		stmts := splitStatements("-- comment\nCREATE TABLE a (x INT);\n\nCREATE INDEX i ON a(x); -- trailing\n")
		if len(stmts) != 2 {
			t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
		}
		if stmts[0] != "CREATE TABLE a (x INT)" {
			t.Errorf("unexpected first statement %q", stmts[0])
		}
	})
}

func TestHelpers(t *testing.T) {
	t.Run("GenerateID", func(t *testing.T) {
		id := GenerateID()
		if !IsUUID(id) {
			t.Errorf("generated id %q is not a UUID", id)
		}
		if id == GenerateID() {
			t.Error("expected distinct ids")
		}
	})

	t.Run("IsUUID", func(t *testing.T) {
		tests := []struct {
			in   string
			want bool
		}{
			{"5f0c7b1e-8a4c-4d0b-9d59-3f9a1d2b6c7e", true},
			{"", false},
			{"banner-1", false},
			{"5f0c7b1e8a4c4d0b9d593f9a1d2b6c7e", false},
		}
		for _, tt := range tests {
			if got := IsUUID(tt.in); got != tt.want {
				t.Errorf("IsUUID(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	})
}
