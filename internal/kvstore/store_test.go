package kvstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pomodoro/internal/pomodoro"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func openAll(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	stores := map[string]Store{}
	for _, backend := range []string{BackendFile, BackendSQLite, BackendMemory} {
		s, err := Open(Options{Backend: backend, DataDir: filepath.Join(dir, backend)})
		if err != nil {
			t.Fatalf("open %s: %v", backend, err)
		}
		t.Cleanup(func() { s.Close() })
		stores[backend] = s
	}
	return stores
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()
	for name, s := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			fallback := doc{Name: "default"}
			found, err := s.GetJSON(ctx, "missing", &fallback)
			if err != nil || found {
				t.Fatalf("missing key: found=%v err=%v", found, err)
			}
			if fallback.Name != "default" {
				t.Fatal("absent key modified the fallback")
			}

			if err := s.SetJSON(ctx, "doc", doc{Name: "a", Count: 1}); err != nil {
				t.Fatal(err)
			}
			if err := s.SetJSON(ctx, "doc", doc{Name: "b", Count: 2}); err != nil {
				t.Fatal(err)
			}

			var got doc
			found, err = s.GetJSON(ctx, "doc", &got)
			if err != nil || !found {
				t.Fatalf("found=%v err=%v", found, err)
			}
			if got != (doc{Name: "b", Count: 2}) {
				t.Fatalf("got %+v", got)
			}
		})
	}
}

func TestStore_RejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	for name, s := range openAll(t) {
		for _, key := range []string{"", "../etc", "a/b", ".hidden", "sp ace"} {
			if err := s.SetJSON(ctx, key, 1); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("%s: SetJSON(%q) err = %v", name, key, err)
			}
		}
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(Options{Backend: "redis"}); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("err = %v", err)
	}
}

func TestFileStore_RecoversFromBackup(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	s.logger = discardLogger()

	s.SetJSON(ctx, "doc", doc{Name: "old"})
	s.SetJSON(ctx, "doc", doc{Name: "new"})
	if err := os.WriteFile(s.Path("doc"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	var got doc
	found, err := s.GetJSON(ctx, "doc", &got)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if got.Name != "old" {
		t.Fatalf("recovered %+v, want the backup", got)
	}
	if !hasCorruptCopy(t, s.Dir()) {
		t.Fatal("damaged file not preserved")
	}
}

func TestFileStore_EmptyFileWithoutBackupReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFileStore(t.TempDir(), discardLogger())
	os.WriteFile(s.Path("doc"), []byte("  \n"), 0600)

	got := doc{Name: "fallback"}
	found, err := s.GetJSON(ctx, "doc", &got)
	if err != nil || found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if got.Name != "fallback" {
		t.Fatalf("got %+v", got)
	}
}

func TestFileStore_Closed(t *testing.T) {
	s, _ := NewFileStore(t.TempDir(), discardLogger())
	s.Close()
	if err := s.SetJSON(context.Background(), "doc", 1); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v", err)
	}
}

func TestSQLiteStore_Keys(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.SetJSON(ctx, "b", 1)
	s.SetJSON(ctx, "a", 2)
	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(keys, ",") != "a,b" {
		t.Fatalf("keys = %v", keys)
	}
	if err := s.Checkpoint(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestStore_ClockSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, backend := range []string{BackendFile, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			opts := Options{Backend: backend, DataDir: filepath.Join(dir, backend)}
			s1, err := Open(opts)
			if err != nil {
				t.Fatal(err)
			}
			c1 := pomodoro.New(pomodoro.Options{Store: s1})
			if err := c1.Start(ctx, pomodoro.ModeBreak); err != nil {
				t.Fatal(err)
			}
			want := *c1.State().EndAt
			s1.Close()

			s2, err := Open(opts)
			if err != nil {
				t.Fatal(err)
			}
			defer s2.Close()
			c2 := pomodoro.New(pomodoro.Options{Store: s2})
			st, err := c2.Load(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if !st.IsRunning || st.Mode != pomodoro.ModeBreak || *st.EndAt != want {
				t.Fatalf("restored %+v", st)
			}
		})
	}
}

func hasCorruptCopy(t *testing.T, dir string) bool {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".corrupt.") {
			return true
		}
	}
	return false
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
