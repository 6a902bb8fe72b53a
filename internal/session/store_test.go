package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"allowance-client/internal/domain"
)

type failingPersister struct {
	loadData []byte
	loadErr  error
	saveErr  error
	delErr   error
	saved    []byte
	deleted  bool
}

func (f *failingPersister) Load(_ context.Context) ([]byte, error) {
	return f.loadData, f.loadErr
}

func (f *failingPersister) Save(_ context.Context, data []byte) error {
	f.saved = data
	return f.saveErr
}

func (f *failingPersister) Delete(_ context.Context) error {
	f.deleted = true
	return f.delErr
}

func sampleCredentials() domain.Credentials {
	return domain.Credentials{
		User:         &domain.User{ID: 7, Username: "tendai", Email: "tendai@example.com", FirstName: "Tendai", LastName: "Moyo"},
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
	}
}

func TestStore_StartsLoggedOutWithoutRecord(t *testing.T) {
	s := New(context.Background(), NewMemoryPersister(), zap.NewNop())
	if s.IsAuthenticated() || s.AccessToken() != "" {
		t.Fatalf("expected empty session, got %+v", s.Session())
	}
}

func TestStore_SetCredentialsMirrorsDurableRecord(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	s := New(ctx, p, zap.NewNop())

	if err := s.SetCredentials(ctx, sampleCredentials()); err != nil {
		t.Fatalf("set credentials: %v", err)
	}
	if !s.IsAuthenticated() {
		t.Fatalf("expected authenticated session")
	}

	raw, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("load durable record: %v", err)
	}
	var stored domain.Credentials
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("unmarshal durable record: %v", err)
	}
	mem := s.Session().Credentials()
	if stored.AccessToken != mem.AccessToken || stored.RefreshToken != mem.RefreshToken || *stored.User != *mem.User {
		t.Fatalf("durable record %+v does not mirror memory %+v", stored, mem)
	}
}

func TestStore_RestartReproducesSession(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	first := New(ctx, p, zap.NewNop())
	if err := first.SetCredentials(ctx, sampleCredentials()); err != nil {
		t.Fatalf("set credentials: %v", err)
	}

	reloaded := New(ctx, p, zap.NewNop())
	got := reloaded.Session()
	want := first.Session()
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken || got.IsAuthenticated != want.IsAuthenticated {
		t.Fatalf("reloaded session %+v, want %+v", got, want)
	}
	if got.User == nil || *got.User != *want.User {
		t.Fatalf("reloaded user %+v, want %+v", got.User, want.User)
	}
}

func TestStore_SecondLoginOverwritesWholesale(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, NewMemoryPersister(), zap.NewNop())
	_ = s.SetCredentials(ctx, sampleCredentials())

	if err := s.SetCredentials(ctx, domain.Credentials{AccessToken: "access-2"}); err != nil {
		t.Fatalf("set credentials: %v", err)
	}
	got := s.Session()
	if got.User != nil || got.RefreshToken != "" || got.AccessToken != "access-2" {
		t.Fatalf("expected wholesale overwrite, got %+v", got)
	}
}

func TestStore_LogoutAlwaysClears(t *testing.T) {
	ctx := context.Background()

	t.Run("from logged in", func(t *testing.T) {
		p := NewMemoryPersister()
		s := New(ctx, p, zap.NewNop())
		_ = s.SetCredentials(ctx, sampleCredentials())
		if err := s.Logout(ctx); err != nil {
			t.Fatalf("logout: %v", err)
		}
		if s.IsAuthenticated() || s.Session().User != nil {
			t.Fatalf("expected cleared session")
		}
		if _, err := p.Load(ctx); !errors.Is(err, ErrNoRecord) {
			t.Fatalf("expected durable record removed, got %v", err)
		}
	})

	t.Run("from logged out", func(t *testing.T) {
		s := New(ctx, NewMemoryPersister(), zap.NewNop())
		if err := s.Logout(ctx); err != nil {
			t.Fatalf("logout: %v", err)
		}
		if s.IsAuthenticated() {
			t.Fatalf("expected logged out")
		}
	})

	t.Run("delete failure still clears memory", func(t *testing.T) {
		p := &failingPersister{loadErr: ErrNoRecord, delErr: errors.New("disk gone")}
		s := New(ctx, p, zap.NewNop())
		_ = s.SetCredentials(ctx, sampleCredentials())
		if err := s.Logout(ctx); err == nil {
			t.Fatalf("expected delete error to surface")
		}
		if s.IsAuthenticated() {
			t.Fatalf("expected logged out despite delete failure")
		}
	})
}

func TestStore_MalformedRecordFailsOpen(t *testing.T) {
	p := &failingPersister{loadData: []byte("{not json")}
	s := New(context.Background(), p, zap.NewNop())
	if s.IsAuthenticated() {
		t.Fatalf("malformed record must be treated as no session")
	}
}

func TestStore_LoadErrorFailsOpen(t *testing.T) {
	p := &failingPersister{loadErr: errors.New("permission denied")}
	s := New(context.Background(), p, zap.NewNop())
	if s.IsAuthenticated() {
		t.Fatalf("load error must be treated as no session")
	}
}

func TestStore_RecordWithoutTokenIsNotAuthenticated(t *testing.T) {
	p := &failingPersister{loadData: []byte(`{"user":{"id":1,"username":"x"},"accessToken":null}`)}
	s := New(context.Background(), p, zap.NewNop())
	if s.IsAuthenticated() {
		t.Fatalf("session without access token must not be authenticated")
	}
}

func TestStore_SaveFailureIsReported(t *testing.T) {
	p := &failingPersister{loadErr: ErrNoRecord, saveErr: errors.New("quota exceeded")}
	s := New(context.Background(), p, zap.NewNop())
	if err := s.SetCredentials(context.Background(), sampleCredentials()); err == nil {
		t.Fatalf("expected persist error")
	}
	if len(p.saved) == 0 {
		t.Fatalf("expected save attempt")
	}
}

func TestStore_SessionReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, NewMemoryPersister(), zap.NewNop())
	_ = s.SetCredentials(ctx, sampleCredentials())

	snap := s.Session()
	snap.User.Username = "mutated"
	if s.Session().User.Username != "tendai" {
		t.Fatalf("store state leaked through snapshot")
	}
}

type blockingPersister struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingPersister) Load(_ context.Context) ([]byte, error) {
	return nil, ErrNoRecord
}

func (b *blockingPersister) Save(_ context.Context, _ []byte) error {
	b.entered <- struct{}{}
	<-b.release
	return nil
}

func (b *blockingPersister) Delete(_ context.Context) error {
	return nil
}

func TestStore_ReadsDoNotWaitForSlowPersistence(t *testing.T) {
	ctx := context.Background()
	p := &blockingPersister{entered: make(chan struct{}), release: make(chan struct{})}
	s := New(ctx, p, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- s.SetCredentials(ctx, sampleCredentials()) }()
	<-p.entered

	read := make(chan string, 1)
	go func() { read <- s.AccessToken() }()
	select {
	case token := <-read:
		if token != "access-1" {
			t.Fatalf("expected new token while save is in flight, got %q", token)
		}
	case <-time.After(time.Second):
		t.Fatalf("AccessToken blocked behind persister.Save")
	}
	if !s.IsAuthenticated() {
		t.Fatalf("session must be authenticated while save is in flight")
	}

	close(p.release)
	if err := <-done; err != nil {
		t.Fatalf("SetCredentials: %v", err)
	}
}
