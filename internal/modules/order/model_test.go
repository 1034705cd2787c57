// README: State machine transition-table tests.
package order

import "testing"

// TestCanTransition verifies the lifecycle diagram without any store.
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// happy-path forward transitions
		{StatusPending, StatusSearching, true},
		{StatusSearching, StatusAccepted, true},
		{StatusAccepted, StatusDriverArrived, true},
		{StatusDriverArrived, StatusPickedUp, true},
		{StatusPickedUp, StatusInTransit, true},
		{StatusInTransit, StatusCompleted, true},
		// cancel from every non-terminal state
		{StatusPending, StatusCancelled, true},
		{StatusSearching, StatusCancelled, true},
		{StatusAccepted, StatusCancelled, true},
		{StatusDriverArrived, StatusCancelled, true},
		{StatusPickedUp, StatusCancelled, true},
		{StatusInTransit, StatusCancelled, true},
		// terminal states have no outgoing transitions
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusSearching, false},
		{StatusCancelled, StatusSearching, false},
		{StatusCancelled, StatusCompleted, false},
		// skipping states is not allowed
		{StatusSearching, StatusPickedUp, false},
		{StatusSearching, StatusCompleted, false},
		{StatusAccepted, StatusPickedUp, false},
		{StatusDriverArrived, StatusInTransit, false},
		{StatusPickedUp, StatusCompleted, false},
		// no going backwards
		{StatusAccepted, StatusSearching, false},
		{StatusInTransit, StatusPickedUp, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusSearching, StatusAccepted, StatusDriverArrived, StatusPickedUp, StatusInTransit} {
		if IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = true, want false", s)
		}
	}
	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		if !IsTerminal(s) {
			t.Errorf("IsTerminal(%s) = false, want true", s)
		}
	}
}
