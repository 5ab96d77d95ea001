package yaml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestQuarantine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.yaml")
	if err := os.WriteFile(path, []byte("broken{{"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Quarantine(dir, path); err != nil {
		t.Fatalf("Quarantine: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("original file still present after quarantine")
	}

	entries, err := os.ReadDir(filepath.Join(dir, "quarantine"))
	if err != nil {
		t.Fatalf("quarantine dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("quarantine entries = %d, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "tasks.yaml.") || !strings.HasSuffix(name, ".corrupt") {
		t.Errorf("quarantine name = %q, want tasks.yaml.<ts>.corrupt", name)
	}
}

func TestRestoreFromBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.yaml")

	if err := os.WriteFile(path+".bak", []byte("tasks: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := RestoreFromBackup(path); err != nil {
		t.Fatalf("RestoreFromBackup: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "tasks: []\n" {
		t.Errorf("restored content = %q", content)
	}
}

func TestRestoreFromBackupMissing(t *testing.T) {
	dir := t.TempDir()
	if err := RestoreFromBackup(filepath.Join(dir, "tasks.yaml")); err == nil {
		t.Error("expected error when no backup exists")
	}
}

func TestRestoreFromBackupCorruptedBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.yaml")
	if err := os.WriteFile(path+".bak", []byte("{{{{"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := RestoreFromBackup(path); err == nil {
		t.Error("corrupted backup accepted")
	}
}

func TestRecoverCorruptedFileFallsBackToSkeleton(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "areas.yaml")
	if err := os.WriteFile(path, []byte("{{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	// No .bak exists, so recovery generates a skeleton.
	if err := RecoverCorruptedFile(dir, path, "workspace_areas"); err != nil {
		t.Fatalf("RecoverCorruptedFile: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateSchemaHeaderFromBytes(content, "workspace_areas"); err != nil {
		t.Errorf("skeleton does not validate: %v", err)
	}
}

func TestRecoverCorruptedFilePrefersBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.yaml")
	if err := os.WriteFile(path, []byte("{{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	good := "schema_version: 1\nfile_type: workspace_tasks\ntasks: []\n"
	if err := os.WriteFile(path+".bak", []byte(good), 0644); err != nil {
		t.Fatal(err)
	}

	if err := RecoverCorruptedFile(dir, path, "workspace_tasks"); err != nil {
		t.Fatalf("RecoverCorruptedFile: %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != good {
		t.Errorf("recovered content = %q, want backup content", content)
	}
}
