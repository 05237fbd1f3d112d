package backup

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pomodoro/internal/kvstore"
	"pomodoro/internal/pomodoro"
)

// createTestData writes a state and a history through the file store.
func createTestData(t *testing.T, dataDir string, sessions int) {
	t.Helper()
	ctx := context.Background()

	store, err := kvstore.NewFileStore(dataDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	items := make([]pomodoro.SessionItem, 0, sessions)
	for i := 0; i < sessions; i++ {
		start := int64(i) * 3_600_000
		items = append(items, pomodoro.SessionItem{
			ID: filepath.Base(t.Name()), Mode: pomodoro.ModeWork,
			StartAt: start, EndAt: start + 1_500_000, Completed: true,
		})
	}
	state := pomodoro.DefaultState(pomodoro.DefaultDurations())
	state.CompletedCount = sessions

	if err := store.SetJSON(ctx, pomodoro.HistoryKey, items); err != nil {
		t.Fatal(err)
	}
	if err := store.SetJSON(ctx, pomodoro.StateKey, state); err != nil {
		t.Fatal(err)
	}
}

func historyLen(t *testing.T, dataDir string) int {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dataDir, historyFile))
	if err != nil {
		t.Fatalf("failed to read history: %v", err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("failed to unmarshal history: %v", err)
	}
	return len(items)
}

func TestManager_Create(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir, 3)

	manager := NewManager(tmpDir, "1.2.0-test")
	name, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if len(name) != 21 { // "2006-01-02_150405_XXX"
		t.Errorf("Expected backup name length 21, got %d: %s", len(name), name)
	}

	backupPath := filepath.Join(tmpDir, BackupsDir, name)
	for _, filename := range []string{stateFile, historyFile} {
		if _, err := os.Stat(filepath.Join(backupPath, filename)); err != nil {
			t.Errorf("File not backed up: %s", filename)
		}
	}
	if _, err := os.Stat(filepath.Join(backupPath, kvstore.DefaultSQLiteFile)); !os.IsNotExist(err) {
		t.Error("absent sqlite file should be skipped")
	}

	info, err := manager.GetBackup(name)
	if err != nil {
		t.Fatalf("GetBackup() error: %v", err)
	}
	if info.Stats["sessions"] != 3 || info.Stats["completed_work"] != 3 {
		t.Errorf("Stats = %v", info.Stats)
	}
}

func TestManager_List(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir, 1)
	manager := NewManager(tmpDir, "1.0.0")

	backups, err := manager.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("Expected 0 backups, got %d", len(backups))
	}

	name1, _ := manager.Create()
	time.Sleep(10 * time.Millisecond)
	name2, _ := manager.Create()

	backups, err = manager.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("Expected 2 backups, got %d", len(backups))
	}
	if backups[0].Name != name2 || backups[1].Name != name1 {
		t.Errorf("order = %s, %s; want newest first", backups[0].Name, backups[1].Name)
	}
}

func TestManager_Restore(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir, 2)
	manager := NewManager(tmpDir, "1.0.0")

	name, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	createTestData(t, tmpDir, 5)
	if err := manager.Restore(name); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if n := historyLen(t, tmpDir); n != 2 {
		t.Errorf("Expected 2 sessions after restore, got %d", n)
	}

	// The safety backup holds the replaced data.
	backups, _ := manager.List()
	if len(backups) != 2 || backups[0].Stats["sessions"] != 5 {
		t.Errorf("safety backup = %+v", backups)
	}
}

func TestManager_RestoreLatest(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir, 1)
	manager := NewManager(tmpDir, "1.0.0")

	if _, err := manager.Create(); err != nil {
		t.Fatal(err)
	}
	createTestData(t, tmpDir, 4)
	time.Sleep(10 * time.Millisecond)
	if _, err := manager.Create(); err != nil {
		t.Fatal(err)
	}
	createTestData(t, tmpDir, 7)
	time.Sleep(10 * time.Millisecond)

	if err := manager.RestoreLatest(); err != nil {
		t.Fatalf("RestoreLatest() error: %v", err)
	}
	if n := historyLen(t, tmpDir); n != 4 {
		t.Errorf("Expected 4 sessions after restore, got %d", n)
	}
}

func TestManager_RestoreLatestWithoutBackups(t *testing.T) {
	if err := NewManager(t.TempDir(), "1.0.0").RestoreLatest(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestManager_RestoreRejectsBadNames(t *testing.T) {
	manager := NewManager(t.TempDir(), "1.0.0")
	for _, name := range []string{"", "nonexistent-backup", "../2025-12-15_143022", "2025-12-15_143022"} {
		if err := manager.Restore(name); err == nil {
			t.Errorf("Restore(%q) should fail", name)
		}
	}
}

func TestManager_RestoreSQLite(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, kvstore.DefaultSQLiteFile)

	db, err := kvstore.OpenSQLite(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	db.SetJSON(ctx, pomodoro.StateKey, pomodoro.State{Mode: pomodoro.ModeBreak})
	db.Checkpoint(ctx)
	db.Close()

	manager := NewManager(tmpDir, "1.0.0")
	name, err := manager.Create()
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(10 * time.Millisecond)
	db, _ = kvstore.OpenSQLite(dbPath)
	db.SetJSON(ctx, pomodoro.StateKey, pomodoro.State{Mode: pomodoro.ModeWork})
	db.Checkpoint(ctx)
	db.Close()

	if err := manager.Restore(name); err != nil {
		t.Fatal(err)
	}

	db, err = kvstore.OpenSQLite(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var s pomodoro.State
	if _, err := db.GetJSON(ctx, pomodoro.StateKey, &s); err != nil {
		t.Fatal(err)
	}
	if s.Mode != pomodoro.ModeBreak {
		t.Fatalf("mode = %s, want restored break", s.Mode)
	}
}

func TestManager_Delete(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir, 1)
	manager := NewManager(tmpDir, "1.0.0")

	name, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := manager.Delete(name); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if backups, _ := manager.List(); len(backups) != 0 {
		t.Errorf("Expected 0 backups after delete, got %d", len(backups))
	}
}

func TestManager_Prune(t *testing.T) {
	tmpDir := t.TempDir()
	createTestData(t, tmpDir, 1)
	manager := NewManager(tmpDir, "1.0.0")

	for i := 0; i < 5; i++ {
		if _, err := manager.Create(); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	deleted, err := manager.Prune(2)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted, got %d", deleted)
	}
	if backups, _ := manager.List(); len(backups) != 2 {
		t.Errorf("Expected 2 backups after prune, got %d", len(backups))
	}
	if _, err := manager.Prune(-1); err == nil {
		t.Error("negative keep should fail")
	}
}

func TestManager_CreateWithEmptyData(t *testing.T) {
	manager := NewManager(t.TempDir(), "1.0.0")

	name, err := manager.Create()
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	info, err := manager.GetBackup(name)
	if err != nil {
		t.Fatalf("GetBackup() error: %v", err)
	}
	if info.Name != name {
		t.Errorf("Expected backup name %s, got %s", name, info.Name)
	}
}

func TestParseBackupName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"2025-12-15_143022", false},
		{"2025-12-15_143022_123", false},
		{"2025-12-15_143022-123", true},
		{"2025-12-15_143022_abc", true},
		{"invalid", true},
	}
	for _, tt := range tests {
		_, err := parseBackupName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseBackupName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
