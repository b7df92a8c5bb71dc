package hotkeys

import (
	"sort"
	"testing"
)

func TestLockCombinations(t *testing.T) {
	got := lockCombinations([]uint16{2, 16, 128})
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	want := []uint16{0, 2, 16, 18, 128, 130, 144, 146}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestLockCombinations_CapsOnly(t *testing.T) {
	got := lockCombinations([]uint16{2})
	if len(got) != 2 {
		t.Fatalf("expected masks 0 and 2, got %v", got)
	}
}
