package profile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/catch-arcade/internal/api"
	"github.com/vovakirdan/catch-arcade/internal/api/apitest"
	"github.com/vovakirdan/catch-arcade/internal/config"
	"github.com/vovakirdan/catch-arcade/internal/game"
	"github.com/vovakirdan/catch-arcade/internal/storage"
)

func newTestStore(t *testing.T, scope string) (*Store, *apitest.Server, *storage.Store) {
	t.Helper()
	srv := apitest.NewServer(t)
	remote := config.Default().Remote
	remote.BaseURL = srv.URL

	db, err := storage.Open(filepath.Join(t.TempDir(), "catch.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s, err := NewStore(api.NewClient(remote, nil), db, scope, nil)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	return s, srv, db
}

func TestCreateAndFetchRoundTrip(t *testing.T) {
	s, _, _ := newTestStore(t, "")
	ctx := context.Background()

	in := api.ProfileInput{
		Username:    "Juan",
		Email:       "juan@example.com",
		Avatar:      "🐱",
		Preferences: api.Preferences{Difficulty: "easy", Rows: 4, Cols: 6, Time: 60},
	}
	created, err := s.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if s.ActiveID() != created.ID {
		t.Errorf("created profile should become active")
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Username != "Juan" || got.Email != in.Email || got.Avatar != in.Avatar || got.Preferences.Time != 60 ||
		got.Preferences.Difficulty != "easy" || got.Preferences.Rows != 4 || got.Preferences.Cols != 6 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestCreateRejectsShortUsernameBeforeRequest(t *testing.T) {
	s, srv, _ := newTestStore(t, "")

	for _, name := range []string{"Jo", "  Jo  ", "", "   "} {
		_, err := s.Create(context.Background(), api.ProfileInput{Username: name})
		if !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("Create(%q) = %v, expected ErrInvalidUsername", name, err)
		}
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("invalid usernames made %d requests", n)
	}

	p, err := s.Create(context.Background(), api.ProfileInput{Username: " Juan "})
	if err != nil {
		t.Fatalf("Create(Juan) failed: %v", err)
	}
	if p.Username != "Juan" || p.Avatar != DefaultAvatar {
		t.Errorf("expected trimmed name and default avatar, got %+v", p)
	}
}

func TestUpdateValidatesUsername(t *testing.T) {
	s, srv, _ := newTestStore(t, "")
	seeded := srv.Seed(api.ProfileInput{Username: "Juan"})

	short := "Al"
	if _, err := s.Update(context.Background(), seeded.ID, api.ProfilePatch{Username: &short}); !errors.Is(err, ErrInvalidUsername) {
		t.Errorf("Update() = %v, expected ErrInvalidUsername", err)
	}
	if n := srv.Count("PATCH", "/"); n != 0 {
		t.Errorf("invalid update made %d requests", n)
	}

	email := "j@example.com"
	p, err := s.Update(context.Background(), seeded.ID, api.ProfilePatch{Email: &email})
	if err != nil || p.Email != email {
		t.Errorf("Update() = %+v, %v", p, err)
	}
}

func TestSavePreferencesNeedsActiveProfile(t *testing.T) {
	s, srv, _ := newTestStore(t, "")
	ctx := context.Background()

	if _, err := s.SavePreferences(ctx, api.Preferences{Rows: 3}); !errors.Is(err, ErrNoActiveProfile) {
		t.Fatalf("SavePreferences() without profile = %v", err)
	}

	seeded := srv.Seed(api.ProfileInput{Username: "Juan", Email: "keep@example.com"})
	if _, err := s.Select(ctx, seeded.ID); err != nil {
		t.Fatalf("Select() failed: %v", err)
	}
	p, err := s.SavePreferences(ctx, api.Preferences{Rows: 3, Cols: 9, Time: 20, Difficulty: "hard"})
	if err != nil {
		t.Fatalf("SavePreferences() failed: %v", err)
	}
	if p.Preferences.Rows != 3 || p.Preferences.Difficulty != "hard" || p.Email != "keep@example.com" {
		t.Errorf("preferences-only update = %+v", p)
	}
	if cached, ok := s.Active(); !ok || cached.Preferences.Cols != 9 {
		t.Errorf("active cache not refreshed: %+v", cached)
	}
}

func TestSelectPersistsAcrossReopen(t *testing.T) {
	s, srv, db := newTestStore(t, "alice")
	seeded := srv.Seed(api.ProfileInput{Username: "Alice"})

	if _, err := s.Select(context.Background(), seeded.ID); err != nil {
		t.Fatalf("Select() failed: %v", err)
	}

	again, err := NewStore(api.NewClient(config.RemoteConfig{BaseURL: srv.URL}, nil), db, "alice", nil)
	if err != nil {
		t.Fatal(err)
	}
	if again.ActiveID() != seeded.ID {
		t.Errorf("active id not restored: %q", again.ActiveID())
	}

	other, err := NewStore(api.NewClient(config.RemoteConfig{BaseURL: srv.URL}, nil), db, "bob", nil)
	if err != nil {
		t.Fatal(err)
	}
	if other.ActiveID() != "" {
		t.Errorf("scopes must not share a selection, got %q", other.ActiveID())
	}
}

func TestSelectFailureKeepsSelection(t *testing.T) {
	s, srv, _ := newTestStore(t, "")
	seeded := srv.Seed(api.ProfileInput{Username: "Juan"})
	if _, err := s.Select(context.Background(), seeded.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Select(context.Background(), "missing"); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("Select(missing) = %v", err)
	}
	if s.ActiveID() != seeded.ID {
		t.Error("a failed select must not change the active profile")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	s, srv, _ := newTestStore(t, "")
	seeded := srv.Seed(api.ProfileInput{Username: "Juan"})
	ctx := context.Background()

	var prompt string
	ok, err := s.Delete(ctx, seeded.ID, func(p string) bool { prompt = p; return false })
	if ok || err != nil {
		t.Fatalf("refused delete = %v, %v", ok, err)
	}
	if prompt == "" {
		t.Error("confirm should receive a prompt")
	}
	if ok, _ := s.Delete(ctx, seeded.ID, nil); ok {
		t.Error("nil confirm must not delete")
	}
	if n := srv.Count("DELETE", "/"); n != 0 {
		t.Errorf("unconfirmed delete sent %d requests", n)
	}
}

func TestDeleteActiveClearsSelection(t *testing.T) {
	s, srv, db := newTestStore(t, "")
	seeded := srv.Seed(api.ProfileInput{Username: "Juan"})
	ctx := context.Background()
	if _, err := s.Select(ctx, seeded.ID); err != nil {
		t.Fatal(err)
	}

	ok, err := s.Delete(ctx, seeded.ID, func(string) bool { return true })
	if !ok || err != nil {
		t.Fatalf("Delete() = %v, %v", ok, err)
	}
	if s.ActiveID() != "" || s.IsCurrent(seeded.ID) {
		t.Error("deleting the active profile should clear the selection")
	}
	if _, found, _ := db.Setting(storage.ActiveProfileKey("")); found {
		t.Error("persisted active id should be removed")
	}
	if _, ok := s.Active(); ok {
		t.Error("cached profile should be dropped")
	}
}

func TestDeleteOtherKeepsSelection(t *testing.T) {
	s, srv, _ := newTestStore(t, "")
	a := srv.Seed(api.ProfileInput{Username: "Juan"})
	b := srv.Seed(api.ProfileInput{Username: "Maria"})
	ctx := context.Background()
	if _, err := s.Select(ctx, a.ID); err != nil {
		t.Fatal(err)
	}

	if ok, err := s.Delete(ctx, b.ID, func(string) bool { return true }); !ok || err != nil {
		t.Fatalf("Delete() = %v, %v", ok, err)
	}
	if s.ActiveID() != a.ID {
		t.Error("deleting another profile must keep the selection")
	}
}

func TestRefreshDropsVanishedProfile(t *testing.T) {
	s, srv, _ := newTestStore(t, "")
	seeded := srv.Seed(api.ProfileInput{Username: "Juan"})
	ctx := context.Background()
	if _, err := s.Select(ctx, seeded.ID); err != nil {
		t.Fatal(err)
	}

	other := api.NewClient(config.RemoteConfig{BaseURL: srv.URL, UpdateMethod: "PATCH"}, nil)
	if err := other.DeleteProfile(ctx, seeded.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Refresh(ctx); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("Refresh() = %v", err)
	}
	if s.ActiveID() != "" {
		t.Error("vanished profile should be deselected")
	}
}

func TestAdoptIgnoresStaleProfiles(t *testing.T) {
	s, srv, _ := newTestStore(t, "")
	a := srv.Seed(api.ProfileInput{Username: "Juan"})
	b := srv.Seed(api.ProfileInput{Username: "Maria"})
	if _, err := s.Select(context.Background(), a.ID); err != nil {
		t.Fatal(err)
	}

	if s.Adopt(&b) {
		t.Error("a profile that is not active must not be cached")
	}
	if p, _ := s.Active(); p.ID != a.ID {
		t.Errorf("active cache = %q", p.ID)
	}
}

func TestResolve(t *testing.T) {
	list := []api.Profile{{ID: "1", Username: "Juan"}, {ID: "2", Username: "Maria"}}

	if p, ok := Resolve(list, "2"); !ok || p.Username != "Maria" {
		t.Errorf("Resolve by id = %+v, %v", p, ok)
	}
	if p, ok := Resolve(list, " juan "); !ok || p.ID != "1" {
		t.Errorf("Resolve by name = %+v, %v", p, ok)
	}
	if _, ok := Resolve(list, "pedro"); ok {
		t.Error("unknown reference should not resolve")
	}
}

func TestPreferenceConversion(t *testing.T) {
	sound := false
	prefs := FromSettings(game.Settings{Rows: 4, Cols: 5, Seconds: 40, Difficulty: config.DifficultyHard}, &sound)
	if prefs.Rows != 4 || prefs.Cols != 5 || prefs.Time != 40 || prefs.Difficulty != "hard" || prefs.Sound != &sound {
		t.Errorf("FromSettings() = %+v", prefs)
	}
	gp := GamePreferences(prefs)
	if gp != (game.Preferences{Rows: 4, Cols: 5, Time: 40, Difficulty: "hard"}) {
		t.Errorf("GamePreferences() = %+v", gp)
	}
}

// gatedRemote answers GetProfile immediately, except for ids in hold, whose
// answer waits until the matching release channel is closed.
type gatedRemote struct {
	Remote
	started chan api.ID
	hold    map[api.ID]chan struct{}
}

func (g *gatedRemote) GetProfile(ctx context.Context, id api.ID) (*api.Profile, error) {
	if release, ok := g.hold[id]; ok {
		g.started <- id
		<-release
	}
	return &api.Profile{ID: id, Username: "user-" + string(id)}, nil
}

func TestLateSelectResponseIsDropped(t *testing.T) {
	tests := []struct {
		name string
		then func(s *Store) error
		want api.ID
	}{
		{
			name: "newer select wins",
			then: func(s *Store) error {
				_, err := s.Select(context.Background(), "B")
				return err
			},
			want: "B",
		},
		{
			name: "clear wins",
			then: func(s *Store) error { return s.Clear() },
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			release := make(chan struct{})
			remote := &gatedRemote{
				started: make(chan api.ID, 1),
				hold:    map[api.ID]chan struct{}{"A": release},
			}
			s, err := NewStore(remote, nil, "", nil)
			if err != nil {
				t.Fatalf("NewStore() failed: %v", err)
			}

			done := make(chan error, 1)
			go func() {
				_, err := s.Select(context.Background(), "A")
				done <- err
			}()
			<-remote.started

			if err := tc.then(s); err != nil {
				t.Fatal(err)
			}
			close(release)
			if err := <-done; err != nil {
				t.Fatalf("Select(A) = %v", err)
			}

			if got := s.ActiveID(); got != tc.want {
				t.Errorf("active = %q, want %q", got, tc.want)
			}
			if s.IsCurrent("A") {
				t.Error("late response for A reported as current")
			}
			if _, ok := s.Active(); ok != (tc.want != "") {
				t.Errorf("Active() ok = %v", ok)
			}
		})
	}
}
