package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStorage(t *testing.T) {
	s := &Storage{}
	path := filepath.Join(t.TempDir(), "nested", "dir", "report.yaml")

	if s.HasFile(path) {
		t.Fatal("HasFile() true before save")
	}
	if err := s.SaveFile(path, []byte("added: 3\n")); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}
	if !s.HasFile(path) {
		t.Error("HasFile() false after save")
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "added: 3\n" {
		t.Errorf("saved content = %q, %v", data, err)
	}

	stats, err := s.GetFileStats(path)
	if err != nil {
		t.Fatalf("GetFileStats() error = %v", err)
	}
	if stats.SizeBytes != int64(len("added: 3\n")) {
		t.Errorf("SizeBytes = %d", stats.SizeBytes)
	}

	if _, err := s.GetFileStats(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("GetFileStats() expected error for missing file")
	}
}
