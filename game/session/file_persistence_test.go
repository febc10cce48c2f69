package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wricardo/mcp-training/tilemerge/game/config"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

func newTestPersistence(t *testing.T) (*FilePersistence, string) {
	t.Helper()
	configManager, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	dir := t.TempDir()
	persistence, err := NewFilePersistence(dir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	return persistence, dir
}

func TestFilePersistence_SaveAndLoad(t *testing.T) {
	persistence, _ := newTestPersistence(t)
	manager := NewManagerWithPersistence(persistence)

	session, err := manager.Create("test1", "classic", config.Classic())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if !persistence.Exists("test1") {
		t.Fatal("Session file should exist after create")
	}

	for i := 0; i < 10; i++ {
		session.Engine.Move(engine.Directions[i%4])
	}
	session.ObserveScore()
	if err := manager.Save("test1"); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := persistence.Load("test1")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	want := session.Engine.GetState()
	got := loaded.Engine.GetState()
	if !got.Grid.Equal(want.Grid) {
		t.Errorf("Grid mismatch:\nwant\n%s\ngot\n%s", want.Grid, got.Grid)
	}
	if got.Score != want.Score || got.TurnCount != want.TurnCount {
		t.Errorf("Expected score %d turns %d, got %d and %d", want.Score, want.TurnCount, got.Score, got.TurnCount)
	}
	if len(got.Grids) != len(want.Grids) {
		t.Errorf("Expected %d recorded grids, got %d", len(want.Grids), len(got.Grids))
	}
	if loaded.ConfigID != "classic" || loaded.Profile.Name != "classic" {
		t.Errorf("Expected classic profile, got %s/%s", loaded.ConfigID, loaded.Profile.Name)
	}
	if loaded.BestScore != session.BestScore {
		t.Errorf("Expected best score %d, got %d", session.BestScore, loaded.BestScore)
	}
}

func TestFilePersistence_OverGameIsCleared(t *testing.T) {
	persistence, _ := newTestPersistence(t)
	manager := NewManagerWithPersistence(persistence)

	session, err := manager.Create("over", "classic", config.Classic())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	session.BestScore = 1234
	session.Engine.GetState().Over = true
	session.Engine.GetState().Score = 1234
	if err := manager.Save("over"); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := persistence.Load("over")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	state := loaded.Engine.GetState()
	if state.Over || state.Score != 0 {
		t.Errorf("Expected a fresh game, got over=%v score=%d", state.Over, state.Score)
	}
	if loaded.BestScore != 1234 {
		t.Errorf("Best score should survive a cleared game, got %d", loaded.BestScore)
	}
}

func TestFilePersistence_MalformedStateStartsFresh(t *testing.T) {
	persistence, dir := newTestPersistence(t)

	cases := map[string]string{
		"badgrid":   `{"id":"badgrid","config_name":"classic","game_state":{"grid":{"size":1,"cells":[]},"score":0}}`,
		"negative":  `{"id":"negative","config_name":"classic","game_state":{"grid":{"size":4,"cells":[[null,null,null,null],[null,null,null,null],[null,null,null,null],[null,null,null,null]]},"score":-4}}`,
		"wrongsize": `{"id":"wrongsize","config_name":"classic","game_state":{"grid":{"size":3,"cells":[[null,null,null],[null,null,null],[null,null,null]]},"score":8}}`,
		"nostate":   `{"id":"nostate","config_name":"classic"}`,
	}
	for id, content := range cases {
		if err := os.WriteFile(filepath.Join(dir, id+".json"), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	for id := range cases {
		t.Run(id, func(t *testing.T) {
			loaded, err := persistence.Load(id)
			if err != nil {
				t.Fatalf("Malformed state should not fail the load: %v", err)
			}
			state := loaded.Engine.GetState()
			if state.Score != 0 || state.TurnCount != 0 {
				t.Errorf("Expected a fresh game, got score=%d turns=%d", state.Score, state.TurnCount)
			}
			if state.Grid.Size() != 4 {
				t.Errorf("Expected a 4x4 grid, got %d", state.Grid.Size())
			}
		})
	}
}

func TestFilePersistence_Errors(t *testing.T) {
	persistence, dir := newTestPersistence(t)

	if _, err := persistence.Load("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := persistence.Delete("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := persistence.Save(nil); err == nil {
		t.Error("Expected error saving nil session")
	}

	if err := os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := persistence.Load("garbage"); err == nil {
		t.Error("Expected error for unreadable session file")
	}

	if err := os.WriteFile(filepath.Join(dir, "unknown.json"), []byte(`{"id":"unknown","config_name":"nope"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := persistence.Load("unknown"); !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestFilePersistence_ListAndDelete(t *testing.T) {
	persistence, dir := newTestPersistence(t)
	manager := NewManagerWithPersistence(persistence)

	for _, id := range []string{"one", "two"} {
		if _, err := manager.Create(id, "classic", config.Classic()); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	ids, err := persistence.ListAll()
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 persisted sessions, got %v", ids)
	}

	if err := manager.Delete("one"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if persistence.Exists("one") {
		t.Error("Deleted session file should be gone")
	}
}

func TestManager_LoadPersistedSessions(t *testing.T) {
	persistence, _ := newTestPersistence(t)
	first := NewManagerWithPersistence(persistence)
	for _, id := range []string{"a1", "b2"} {
		if _, err := first.Create(id, "classic", config.Classic()); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}
	if err := first.SaveAllSessions(); err != nil {
		t.Fatalf("SaveAllSessions failed: %v", err)
	}

	second := NewManagerWithPersistence(persistence)
	if err := second.LoadPersistedSessions(); err != nil {
		t.Fatalf("LoadPersistedSessions failed: %v", err)
	}
	if second.Count() != 2 {
		t.Errorf("Expected 2 loaded sessions, got %d", second.Count())
	}

	// Get falls back to persistence for sessions not yet in memory
	third := NewManagerWithPersistence(persistence)
	s, err := third.Get("a1")
	if err != nil {
		t.Fatalf("Get from persistence failed: %v", err)
	}
	if s.ID != "a1" {
		t.Errorf("Expected a1, got %s", s.ID)
	}
}
