package domain

import "testing"

func TestStageMapIsBidirectional(t *testing.T) {
	expected := map[string][2]string{
		"inquiry":   {StatusInquiry, "Inquiry"},
		"proposal":  {StatusProposal, "Proposal"},
		"booked":    {StatusBooked, "Booked"},
		"completed": {StatusCompleted, "Completed"},
	}

	for board, want := range expected {
		stage, ok := StageForBoard(board)
		if !ok {
			t.Fatalf("board %q not mapped", board)
		}
		if stage.Status != want[0] || stage.Label != want[1] {
			t.Fatalf("board %q -> %+v, want status=%s label=%s", board, stage, want[0], want[1])
		}
		back, ok := StageForStatus(stage.Status)
		if !ok || back.BoardID != board {
			t.Fatalf("status %q does not map back to board %q", stage.Status, board)
		}
	}
	if len(Stages) != len(expected) {
		t.Fatalf("expected %d stages, got %d", len(expected), len(Stages))
	}
}

func TestStageForBoardRejectsUnknown(t *testing.T) {
	for _, board := range []string{"", "unknown", "Booked", "BOOKED", " booked", "archived"} {
		if _, ok := StageForBoard(board); ok {
			t.Fatalf("expected %q to be rejected", board)
		}
	}
}

func TestIsValidSaveStatus(t *testing.T) {
	if !IsValidSaveStatus(SaveStatusArchived) || IsValidSaveStatus("DELETED") {
		t.Fatal("unexpected save status validation")
	}
	if IsValidStatus(SaveStatusArchived) {
		t.Fatal("ARCHIVED must not be a pipeline status")
	}
}

func TestCouple(t *testing.T) {
	cases := map[[2]string]string{
		{"Anna", "Ben"}: "Anna & Ben",
		{" Anna ", ""}:  "Anna",
		{"", "Ben"}:     "Ben",
	}
	for in, want := range cases {
		if got := Couple(in[0], in[1]); got != want {
			t.Fatalf("Couple(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}
