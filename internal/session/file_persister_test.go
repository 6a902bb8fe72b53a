package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestFilePersister_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested")
	p, err := NewFilePersister(dir)
	if err != nil {
		t.Fatalf("new file persister: %v", err)
	}

	if _, err := p.Load(ctx); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord on empty dir, got %v", err)
	}
	if err := p.Save(ctx, []byte(`{"accessToken":"a"}`)); err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(dir, StorageKey+".json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	data, err := p.Load(ctx)
	if err != nil || string(data) != `{"accessToken":"a"}` {
		t.Fatalf("unexpected load %q, %v", data, err)
	}

	if err := p.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := p.Delete(ctx); err != nil {
		t.Fatalf("second delete should be no-op, got %v", err)
	}
	if _, err := p.Load(ctx); !errors.Is(err, ErrNoRecord) {
		t.Fatalf("expected ErrNoRecord after delete, got %v", err)
	}
}

func TestFilePersister_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p, _ := NewFilePersister(dir)
	s := New(ctx, p, zap.NewNop())
	if err := s.SetCredentials(ctx, sampleCredentials()); err != nil {
		t.Fatalf("set credentials: %v", err)
	}

	p2, _ := NewFilePersister(dir)
	reloaded := New(ctx, p2, zap.NewNop())
	if !reloaded.IsAuthenticated() || reloaded.AccessToken() != "access-1" {
		t.Fatalf("expected session restored from file, got %+v", reloaded.Session())
	}
}

func TestFilePersister_CorruptFileStartsLoggedOut(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, StorageKey+".json"), []byte("garbage"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, _ := NewFilePersister(dir)
	s := New(context.Background(), p, zap.NewNop())
	if s.IsAuthenticated() {
		t.Fatalf("corrupt file must yield empty session")
	}
}
