package engine

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDirectionConstants(t *testing.T) {
	if Up != 0 || Right != 1 || Down != 2 || Left != 3 {
		t.Errorf("direction numbering changed: up=%d right=%d down=%d left=%d", Up, Right, Down, Left)
	}
	if NoDirection.Valid() {
		t.Error("NoDirection must not be valid")
	}
}

func TestDirectionVector(t *testing.T) {
	tests := map[Direction]Position{
		Up:    {X: 0, Y: -1},
		Right: {X: 1, Y: 0},
		Down:  {X: 0, Y: 1},
		Left:  {X: -1, Y: 0},
	}
	for dir, want := range tests {
		if got := dir.Vector(); got != want {
			t.Errorf("%s vector = %v, want %v", dir, got, want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{"up", Up, false},
		{"LEFT", Left, false},
		{" Down ", Down, false},
		{"1", Right, false},
		{"3", Left, false},
		{"4", NoDirection, true},
		{"north", NoDirection, true},
		{"", NoDirection, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDirection(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDirection) {
					t.Errorf("ParseDirection(%q) error = %v, want ErrInvalidDirection", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDirection(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDirection(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestDirectionString(t *testing.T) {
	if Left.String() != "left" || NoDirection.String() != "none" {
		t.Errorf("unexpected names %q %q", Left.String(), NoDirection.String())
	}
}

func TestGameStateTerminated(t *testing.T) {
	tests := []struct {
		name  string
		state GameState
		want  bool
	}{
		{"fresh", GameState{}, false},
		{"over", GameState{Over: true}, true},
		{"won", GameState{Won: true}, true},
		{"won keep playing", GameState{Won: true, KeepPlaying: true}, false},
		{"over keep playing", GameState{Over: true, KeepPlaying: true}, true},
	}
	for _, tt := range tests {
		if got := tt.state.Terminated(); got != tt.want {
			t.Errorf("%s: Terminated() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMoveResultJSONMarshaling(t *testing.T) {
	result := MoveResult{
		Moved:       true,
		Direction:   Left,
		ScoreGained: 12,
		Merges:      []int{4, 8},
		Spawned:     NewTile(Position{X: 3, Y: 1}, 2),
	}
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["score_gained"].(float64) != 12 {
		t.Errorf("score_gained = %v", decoded["score_gained"])
	}
	spawned := decoded["spawned"].(map[string]interface{})
	if spawned["x"].(float64) != 3 || spawned["value"].(float64) != 2 {
		t.Errorf("spawned = %v", spawned)
	}
}

func TestUtils(t *testing.T) {
	if Log2(0) != 0 || Log2(2) != 1 || Log2(2048) != 11 {
		t.Error("Log2 mismatch")
	}
	if !IsCorner(Position{X: 3, Y: 0}, 4) || IsCorner(Position{X: 1, Y: 0}, 4) {
		t.Error("IsCorner mismatch")
	}
	if !IsEdge(Position{X: 1, Y: 0}, 4) || IsEdge(Position{X: 1, Y: 1}, 4) {
		t.Error("IsEdge mismatch")
	}

	g := gridFromRows([][]int{
		{0, 0, 0, 0},
		{0, 64, 0, 0},
		{0, 0, 2, 0},
		{0, 0, 0, 2},
	})
	if d := CornerDistance(g); d != 2 {
		t.Errorf("CornerDistance = %d, want 2", d)
	}
	if n := CountValue(g, 2); n != 2 {
		t.Errorf("CountValue = %d, want 2", n)
	}
	if risk := AnalyzeBoardRisk(g); risk != "SAFE: plenty of room" {
		t.Errorf("AnalyzeBoardRisk = %q", risk)
	}
}
