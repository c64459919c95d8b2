// Package profile manages player profiles on the remote service and the
// locally persisted "active profile" selection.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/catch-arcade/internal/api"
	"github.com/vovakirdan/catch-arcade/internal/logging"
	"github.com/vovakirdan/catch-arcade/internal/storage"
	"github.com/vovakirdan/catch-arcade/internal/validate"
)

// DefaultAvatar is used when a profile is created without one.
const DefaultAvatar = "👾"

var (
	ErrInvalidUsername = errors.New("profile: username needs at least 3 non-space characters")
	ErrNoActiveProfile = errors.New("profile: no active profile")
)

// Remote is the subset of the service client used for profiles.
type Remote interface {
	ListProfiles(ctx context.Context) ([]api.Profile, error)
	GetProfile(ctx context.Context, id api.ID) (*api.Profile, error)
	CreateProfile(ctx context.Context, in api.ProfileInput) (*api.Profile, error)
	UpdateProfile(ctx context.Context, id api.ID, patch api.ProfilePatch) (*api.Profile, error)
	DeleteProfile(ctx context.Context, id api.ID) error
}

// Settings persists small key/value pairs. *storage.Store implements it.
type Settings interface {
	Setting(key string) (string, bool, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

// Store is the profile CRUD front end plus the active selection.
// Methods may be called from concurrent commands; remote calls run without
// holding the lock and their results are dropped when the selection moved on.
type Store struct {
	remote   Remote
	settings Settings
	key      string
	logger   *log.Logger

	mu     sync.Mutex
	active api.ID
	cached *api.Profile
	gen    uint64 // bumped by every Select, Create and Clear
}

// NewStore loads the persisted active profile id for scope. settings may be
// nil, in which case the selection lives only in memory.
func NewStore(remote Remote, settings Settings, scope string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Store{
		remote:   remote,
		settings: settings,
		key:      storage.ActiveProfileKey(scope),
		logger:   logger,
	}
	if settings != nil {
		id, ok, err := settings.Setting(s.key)
		if err != nil {
			return nil, fmt.Errorf("profile: load active profile: %w", err)
		}
		if ok {
			s.active = api.ID(id)
		}
	}
	return s, nil
}

// ActiveID returns the active profile id, or "" if none is selected.
func (s *Store) ActiveID() api.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Active returns a copy of the last fetched active profile, if any.
func (s *Store) Active() (api.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil || s.cached.ID != s.active {
		return api.Profile{}, false
	}
	return *s.cached, true
}

// IsCurrent reports whether id is still the active profile. Responses about
// any other id are stale.
func (s *Store) IsCurrent(id api.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return id != "" && id == s.active
}

// Adopt caches p if it is the active profile and reports whether it did.
func (s *Store) Adopt(p *api.Profile) bool {
	if p == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" || p.ID != s.active {
		return false
	}
	cp := *p
	s.cached = &cp
	return true
}

func (s *Store) List(ctx context.Context) ([]api.Profile, error) {
	list, err := s.remote.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile: list: %w", err)
	}
	return list, nil
}

func (s *Store) Get(ctx context.Context, id api.ID) (*api.Profile, error) {
	p, err := s.remote.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("profile: get %s: %w", id, err)
	}
	s.Adopt(p)
	return p, nil
}

// Create validates and creates a profile, then makes it active.
// An invalid username aborts before any request is made.
func (s *Store) Create(ctx context.Context, in api.ProfileInput) (*api.Profile, error) {
	in.Username = strings.TrimSpace(in.Username)
	if !validate.Username(in.Username) {
		return nil, ErrInvalidUsername
	}
	in.Email = strings.TrimSpace(in.Email)
	in.Avatar = strings.TrimSpace(in.Avatar)
	if in.Avatar == "" {
		in.Avatar = DefaultAvatar
	}

	gen := s.intent()
	p, err := s.remote.CreateProfile(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("profile: create: %w", err)
	}
	s.logger.Info("profile created", "id", p.ID, "username", p.Username)
	if _, err := s.activate(gen, p.ID, p); err != nil {
		return p, err
	}
	return p, nil
}

// Update applies a partial update. A username in the patch is validated first.
func (s *Store) Update(ctx context.Context, id api.ID, patch api.ProfilePatch) (*api.Profile, error) {
	if patch.Username != nil {
		name := strings.TrimSpace(*patch.Username)
		if !validate.Username(name) {
			return nil, ErrInvalidUsername
		}
		patch.Username = &name
	}

	p, err := s.remote.UpdateProfile(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("profile: update %s: %w", id, err)
	}
	if p == nil {
		// No body in the answer; fetch the result
		return s.Get(ctx, id)
	}
	s.Adopt(p)
	return p, nil
}

// SavePreferences updates only the preferences of the active profile.
func (s *Store) SavePreferences(ctx context.Context, prefs api.Preferences) (*api.Profile, error) {
	id := s.ActiveID()
	if id == "" {
		return nil, ErrNoActiveProfile
	}
	return s.Update(ctx, id, api.ProfilePatch{Preferences: &prefs})
}

// Delete removes a profile after confirm approves the prompt. It returns
// false without error when confirmation is refused. Deleting the active
// profile clears the selection.
func (s *Store) Delete(ctx context.Context, id api.ID, confirm func(prompt string) bool) (bool, error) {
	if id == "" {
		return false, ErrNoActiveProfile
	}
	prompt := fmt.Sprintf("Delete profile %s? This cannot be undone.", id)
	if confirm == nil || !confirm(prompt) {
		return false, nil
	}

	if err := s.remote.DeleteProfile(ctx, id); err != nil {
		if !errors.Is(err, api.ErrNotFound) {
			return false, fmt.Errorf("profile: delete %s: %w", id, err)
		}
		s.logger.Warn("profile already gone on the service", "id", id)
	}
	s.logger.Info("profile deleted", "id", id)

	if s.IsCurrent(id) {
		if err := s.Clear(); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Select fetches a profile and makes it active. The selection is unchanged
// if the fetch fails, or if another Select, Create or Clear ran while the
// fetch was in flight; IsCurrent then reports false for the returned profile.
func (s *Store) Select(ctx context.Context, id api.ID) (*api.Profile, error) {
	gen := s.intent()
	p, err := s.remote.GetProfile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("profile: select %s: %w", id, err)
	}
	ok, err := s.activate(gen, id, p)
	if err != nil {
		return p, err
	}
	if !ok {
		s.logger.Debug("dropping superseded selection", "id", id)
	}
	return p, nil
}

// Clear drops the active selection.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.active = ""
	s.cached = nil

	if s.settings != nil {
		if err := s.settings.DeleteSetting(s.key); err != nil {
			return fmt.Errorf("profile: clear active profile: %w", err)
		}
	}
	return nil
}

// Refresh refetches the active profile. A profile that no longer exists on
// the service is deselected.
func (s *Store) Refresh(ctx context.Context) (*api.Profile, error) {
	id := s.ActiveID()
	if id == "" {
		return nil, ErrNoActiveProfile
	}
	p, err := s.remote.GetProfile(ctx, id)
	if errors.Is(err, api.ErrNotFound) {
		if s.IsCurrent(id) {
			s.logger.Warn("active profile no longer exists", "id", id)
			if cerr := s.Clear(); cerr != nil {
				return nil, cerr
			}
		}
		return nil, fmt.Errorf("profile: refresh %s: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("profile: refresh %s: %w", id, err)
	}
	s.Adopt(p)
	return p, nil
}

// intent records a new selection request and returns its generation.
func (s *Store) intent() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// activate makes id active unless a newer selection request was made after
// gen. It reports whether the selection changed.
func (s *Store) activate(gen uint64, id api.ID, p *api.Profile) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false, nil
	}
	s.active = id
	s.cached = nil
	if p != nil {
		cp := *p
		s.cached = &cp
	}

	if s.settings != nil {
		if err := s.settings.SetSetting(s.key, string(id)); err != nil {
			return true, fmt.Errorf("profile: persist active profile: %w", err)
		}
	}
	return true, nil
}
