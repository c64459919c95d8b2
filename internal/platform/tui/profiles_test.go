package tui

import (
	"context"
	"testing"

	"github.com/vovakirdan/catch-arcade/internal/api"
	"github.com/vovakirdan/catch-arcade/internal/game"
)

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = update(t, m, keyPress(string(r)))
	}
	return m
}

func openProfiles(t *testing.T, m Model) Model {
	t.Helper()
	m = update(t, m, keyPress("p"))
	if m.mode != modeProfiles {
		t.Fatal("p did not open the profiles screen")
	}
	return update(t, m, m.listProfilesCmd()())
}

func TestProfilesScreenLists(t *testing.T) {
	m, srv, _ := newTestModel(t)
	srv.Seed(api.ProfileInput{Username: "ana"})
	srv.Seed(api.ProfileInput{Username: "juan"})

	m = openProfiles(t, m)
	if m.pv.loading {
		t.Error("still loading after the list arrived")
	}
	if len(m.pv.list) != 2 {
		t.Fatalf("list = %+v, want 2 profiles", m.pv.list)
	}

	m = update(t, m, keyPress("j"))
	if p, _ := m.pv.selected(); p.Username != "juan" {
		t.Errorf("selected %q, want juan", p.Username)
	}

	m = update(t, m, keyPress("esc"))
	if m.mode != modeGame {
		t.Error("esc did not return to the game")
	}
}

func TestProfileFormRejectsShortUsername(t *testing.T) {
	m, srv, _ := newTestModel(t)
	m = openProfiles(t, m)
	before := len(srv.Requests())

	m = update(t, m, keyPress("n"))
	if m.pv.form != formCreate {
		t.Fatal("n did not open the form")
	}
	m = typeText(t, m, "Jo")
	m = update(t, m, keyPress("enter"))

	if m.pv.formError == "" {
		t.Error("expected a username error")
	}
	if m.pv.form != formCreate {
		t.Error("form closed on invalid input")
	}
	if got := len(srv.Requests()); got != before {
		t.Errorf("made %d requests for an invalid username", got-before)
	}
}

func TestProfileFormCreatesAndActivates(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = openProfiles(t, m)

	m = update(t, m, keyPress("n"))
	m = typeText(t, m, "Juan")

	next, cmd := m.Update(keyPress("enter"))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("submit returned no command")
	}
	if m.pv.form != formNone {
		t.Error("form still open after submit")
	}

	// Run the create command directly instead of through Bubble Tea.
	in := api.ProfileInput{Username: "Juan", Preferences: m.currentPreferences()}
	m = update(t, m, m.createProfileCmd(in)())

	p, ok := m.profiles.Active()
	if !ok || p.Username != "Juan" {
		t.Fatalf("active = %+v, %v; want Juan", p, ok)
	}
	if !hasNotice(m, "Playing as Juan") {
		t.Errorf("notices = %+v", m.notices)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, srv, _ := newTestModel(t)
	srv.Seed(api.ProfileInput{Username: "ana"})
	m = openProfiles(t, m)

	m = update(t, m, keyPress("d"))
	if m.pv.form != formConfirmDelete {
		t.Fatal("d did not ask for confirmation")
	}
	m = update(t, m, keyPress("n"))
	if m.pv.form != formNone || !hasNotice(m, "cancelled") {
		t.Errorf("form = %v notices = %+v, want cancelled", m.pv.form, m.pv)
	}
	for _, n := range m.notices {
		if n.level != game.NoticeInfo {
			t.Errorf("notice %q has level %v, want info", n.text, n.level)
		}
	}
	if got := srv.Count("DELETE", "/api/perfiles"); got != 0 {
		t.Errorf("sent %d deletes after refusing", got)
	}
}

func TestDeleteActiveProfileClearsSelection(t *testing.T) {
	m, srv, _ := newTestModel(t)
	p := srv.Seed(api.ProfileInput{Username: "ana"})
	m = update(t, m, m.selectProfileCmd(p.ID)())
	m = openProfiles(t, m)

	m = update(t, m, m.deleteProfileCmd(p.ID)())
	if id := m.profiles.ActiveID(); id != "" {
		t.Errorf("active = %q after deleting it", id)
	}
	if !hasNotice(m, "Profile deleted") {
		t.Errorf("notices = %+v", m.notices)
	}
}

func TestSavePreferencesUsesEnteredFields(t *testing.T) {
	m, srv, _ := newTestModel(t)
	p := srv.Seed(api.ProfileInput{Username: "ana"})
	m = update(t, m, m.selectProfileCmd(p.ID)())

	m = update(t, m, keyPress("tab"))
	m = update(t, m, keyPress("backspace"))
	m = typeText(t, m, "4")
	m = update(t, m, keyPress("tab"))
	m = update(t, m, keyPress("tab"))
	m = update(t, m, keyPress("tab"))
	m = update(t, m, keyPress("l"))
	m = update(t, m, keyPress("esc"))

	prefs := m.currentPreferences()
	if prefs.Rows != 4 || prefs.Difficulty != "hard" {
		t.Fatalf("preferences = %+v, want rows 4 and hard", prefs)
	}

	m = openProfiles(t, m)
	m = update(t, m, m.savePreferencesCmd(prefs)())
	if !hasNotice(m, "Preferences saved to ana") {
		t.Errorf("notices = %+v", m.notices)
	}

	saved, err := m.client.GetProfile(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if saved.Preferences.Rows != 4 || saved.Preferences.Difficulty != "hard" {
		t.Errorf("saved preferences = %+v", saved.Preferences)
	}
}
