package schedule

import (
	"reflect"
	"testing"
)

func TestNewGrid(t *testing.T) {
	g := NewGrid()
	if len(g) != len(Days) {
		t.Fatalf("NewGrid() has %d days, want %d", len(g), len(Days))
	}
	for _, day := range Days {
		cells, ok := g[day]
		if !ok {
			t.Fatalf("NewGrid() missing day %q", day)
		}
		if len(cells) != SlotsPerDay {
			t.Fatalf("NewGrid()[%q] has %d slots, want %d", day, len(cells), SlotsPerDay)
		}
		for slot, cell := range cells {
			if cell == nil || len(cell) != 0 {
				t.Errorf("NewGrid()[%q][%d] = %v, want empty non-nil cell", day, slot, cell)
			}
		}
	}
}

func TestValidDay(t *testing.T) {
	for _, day := range Days {
		if !ValidDay(day) {
			t.Errorf("ValidDay(%q) = false, want true", day)
		}
	}
	for _, day := range []Day{"", "funday", "Monday", "saturday"} {
		if ValidDay(day) {
			t.Errorf("ValidDay(%q) = true, want false", day)
		}
	}
}

func TestValidSlot(t *testing.T) {
	for slot := 0; slot < SlotsPerDay; slot++ {
		if !ValidSlot(slot) {
			t.Errorf("ValidSlot(%d) = false, want true", slot)
		}
	}
	for _, slot := range []int{-1, SlotsPerDay, 100} {
		if ValidSlot(slot) {
			t.Errorf("ValidSlot(%d) = true, want false", slot)
		}
	}
}

func TestGrid_Sessions(t *testing.T) {
	g := NewGrid()
	if got := g.Sessions(); got != 0 {
		t.Errorf("Sessions() = %d, want 0", got)
	}
	g[Monday][0] = []string{"s1", "s2"}
	g[Friday][4] = []string{"s1"}
	if got := g.Sessions(); got != 3 {
		t.Errorf("Sessions() = %d, want 3", got)
	}
}

func Test_dedupe(t *testing.T) {
	got := dedupe([]string{"s2", "s1", "s2", "s3", "s1"})
	want := []string{"s2", "s1", "s3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dedupe() = %v, want %v", got, want)
	}
}
