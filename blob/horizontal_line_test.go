package blob

import (
	"testing"
)

func TestRepairLines(t *testing.T) {
	lines := []HorizontalLine{
		{Y: 1, X0: 4, X1: 6},
		{Y: 0, X0: 0, X1: 1},
		{Y: 1, X0: 0, X1: 4},
		{Y: 1, X0: 9, X1: 9},
	}
	pixels := []byte{
		40, 50, 60,
		1, 2,
		10, 11, 12, 13, 14,
		90,
	}
	if !linesIllegal(lines) {
		t.Fatal("Lines should be reported as illegal")
	}
	gotLines, gotPixels := RepairLines(lines, pixels, 1)
	wantLines := []HorizontalLine{
		{Y: 0, X0: 0, X1: 1},
		{Y: 1, X0: 0, X1: 6},
		{Y: 1, X0: 9, X1: 9},
	}
	wantPixels := []byte{1, 2, 10, 11, 12, 13, 14, 50, 60, 90}
	if len(gotLines) != len(wantLines) {
		t.Fatalf("Wrong number of lines: %v", gotLines)
	}
	for i := range wantLines {
		if gotLines[i] != wantLines[i] {
			t.Errorf("Line %d: expected %v, got %v", i, wantLines[i], gotLines[i])
		}
	}
	if string(gotPixels) != string(wantPixels) {
		t.Errorf("Expected pixels %v, got %v", wantPixels, gotPixels)
	}
	if linesIllegal(gotLines) {
		t.Error("Repaired lines should be legal")
	}
	if lines[0] != (HorizontalLine{Y: 1, X0: 4, X1: 6}) {
		t.Error("Input lines should be left untouched")
	}
}

func TestRepairLinesTouching(t *testing.T) {
	got, _ := RepairLines([]HorizontalLine{{Y: 0, X0: 3, X1: 5}, {Y: 0, X0: 0, X1: 2}}, nil, 0)
	if len(got) != 1 || got[0] != (HorizontalLine{Y: 0, X0: 0, X1: 5}) {
		t.Errorf("Touching runs should be fused, got %v", got)
	}
}
