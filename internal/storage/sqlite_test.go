package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, dbPath
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestSettings(t *testing.T) {
	store, _ := openTestStore(t)

	if _, ok, err := store.Setting(KeyAPIBase); err != nil || ok {
		t.Fatalf("unset key: ok=%v err=%v", ok, err)
	}

	if err := store.SetSetting(KeyAPIBase, "http://a.test"); err != nil {
		t.Fatalf("SetSetting() failed: %v", err)
	}
	if err := store.SetSetting(KeyAPIBase, "http://b.test"); err != nil {
		t.Fatalf("SetSetting() overwrite failed: %v", err)
	}
	v, ok, err := store.Setting(KeyAPIBase)
	if err != nil || !ok || v != "http://b.test" {
		t.Errorf("Setting() = %q, %v, %v", v, ok, err)
	}

	if err := store.DeleteSetting(KeyAPIBase); err != nil {
		t.Fatalf("DeleteSetting() failed: %v", err)
	}
	if _, ok, _ := store.Setting(KeyAPIBase); ok {
		t.Error("setting should be gone after delete")
	}
	if err := store.DeleteSetting(KeyAPIBase); err != nil {
		t.Errorf("deleting an unset key should not fail: %v", err)
	}
}

func TestSettingsPersistAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := store.SetSetting(ActiveProfileKey(""), "p7"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetSetting(ActiveProfileKey("alice"), "p9"); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	if v, _, _ := store.Setting(ActiveProfileKey("")); v != "p7" {
		t.Errorf("local active profile = %q, expected p7", v)
	}
	if v, _, _ := store.Setting(ActiveProfileKey("alice")); v != "p9" {
		t.Errorf("scoped active profile = %q, expected p9", v)
	}
}

func TestActiveProfileKey(t *testing.T) {
	if ActiveProfileKey("") != "active_profile_id" {
		t.Errorf("unexpected local key %q", ActiveProfileKey(""))
	}
	if ActiveProfileKey("bob") != "active_profile_id:bob" {
		t.Errorf("unexpected scoped key %q", ActiveProfileKey("bob"))
	}
}

func TestSaveAndQueryResults(t *testing.T) {
	store, _ := openTestStore(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	results := []LocalResult{
		{SessionID: "s1", Score: 30, Result: "win", Level: 2, Difficulty: "medium", Rows: 6, Cols: 8, DurationSecs: 30, CreatedAt: base},
		{SessionID: "s2", Score: 0, Result: "loss", Level: 3, Difficulty: "hard", Rows: 4, Cols: 4, DurationSecs: 10, CreatedAt: base.Add(time.Minute), ProfileID: "p1"},
		{SessionID: "s3", Score: 50, Result: "win", Level: 1, Difficulty: "easy", Rows: 2, Cols: 2, DurationSecs: 90, CreatedAt: base.Add(2 * time.Minute), ProfileID: "p1"},
	}
	var ids []string
	for _, r := range results {
		id, err := store.SaveResult(r)
		if err != nil {
			t.Fatalf("SaveResult() failed: %v", err)
		}
		if id == "" {
			t.Fatal("SaveResult() returned an empty id")
		}
		ids = append(ids, id)
	}

	recent, err := store.RecentResults(10)
	if err != nil {
		t.Fatalf("RecentResults() failed: %v", err)
	}
	if len(recent) != 3 || recent[0].SessionID != "s3" || recent[2].SessionID != "s1" {
		t.Fatalf("RecentResults() order wrong: %+v", recent)
	}
	got := recent[1]
	if got.Score != 0 || got.Result != "loss" || got.Level != 3 || got.Rows != 4 || got.Cols != 4 || got.DurationSecs != 10 || got.ProfileID != "p1" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("CreatedAt = %v", got.CreatedAt)
	}

	top, err := store.TopResults(2)
	if err != nil || len(top) != 2 || top[0].Score != 50 || top[1].Score != 30 {
		t.Errorf("TopResults() = %+v, %v", top, err)
	}

	mine, err := store.ProfileResults("p1", 10)
	if err != nil || len(mine) != 2 {
		t.Errorf("ProfileResults() = %+v, %v", mine, err)
	}

	if err := store.MarkPosted(ids[1]); err != nil {
		t.Fatalf("MarkPosted() failed: %v", err)
	}
	recent, _ = store.RecentResults(10)
	if !recent[1].Posted || recent[0].Posted {
		t.Error("only the marked result should be posted")
	}
	if err := store.MarkPosted("missing"); err == nil {
		t.Error("MarkPosted() on an unknown id should fail")
	}
}

func TestHighScoreAndStats(t *testing.T) {
	store, _ := openTestStore(t)

	high, err := store.HighScore()
	if err != nil || high != 0 {
		t.Fatalf("empty HighScore() = %d, %v", high, err)
	}
	st, err := store.Stats("")
	if err != nil || st != (LocalStats{}) {
		t.Fatalf("empty Stats() = %+v, %v", st, err)
	}

	for _, r := range []LocalResult{
		{SessionID: "a", Score: 20, Result: "win", ProfileID: "p1"},
		{SessionID: "b", Score: 0, Result: "loss", ProfileID: "p1"},
		{SessionID: "c", Score: 40, Result: "win"},
	} {
		if _, err := store.SaveResult(r); err != nil {
			t.Fatal(err)
		}
	}

	if high, _ := store.HighScore(); high != 40 {
		t.Errorf("HighScore() = %d, expected 40", high)
	}
	all, _ := store.Stats("")
	if all != (LocalStats{Games: 3, Wins: 2, Losses: 1, TotalScore: 60, HighScore: 40}) {
		t.Errorf("Stats(all) = %+v", all)
	}
	p1, _ := store.Stats("p1")
	if p1 != (LocalStats{Games: 2, Wins: 1, Losses: 1, TotalScore: 20, HighScore: 20}) {
		t.Errorf("Stats(p1) = %+v", p1)
	}

	if err := store.ClearResults(); err != nil {
		t.Fatalf("ClearResults() failed: %v", err)
	}
	if res, _ := store.RecentResults(0); len(res) != 0 {
		t.Errorf("expected no results after clear, got %d", len(res))
	}
}
