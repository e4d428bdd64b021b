package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrationVersion(t *testing.T) {
	tests := map[string]string{
		"001_create_users.sql":            "001",
		"migrations/002_add_index.sql":    "002",
		"010_a_name_with_underscores.sql": "010",
		"noversion.sql":                   "noversion.sql",
	}
	for in, want := range tests {
		if got := MigrationVersion(in); got != want {
			t.Errorf("MigrationVersion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPendingFilesSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o700); err != nil {
		t.Fatal(err)
	}

	got, err := PendingFiles(dir)
	if err != nil {
		t.Fatalf("PendingFiles() error = %v", err)
	}
	want := []string{filepath.Join(dir, "001_a.sql"), filepath.Join(dir, "002_b.sql")}
	if len(got) != len(want) {
		t.Fatalf("PendingFiles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestPendingFilesMissingDirectory(t *testing.T) {
	if _, err := PendingFiles(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("PendingFiles() on a missing directory returned nil error")
	}
}
