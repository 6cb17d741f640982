package position

import (
	"errors"
	"math/rand"
	"testing"
)

func TestAppend(t *testing.T) {
	for _, count := range []int{0, 1, 5} {
		if got := Append(count); got != count {
			t.Errorf("Append(%d) = %d, want %d", count, got, count)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		pos, count, want int
	}{
		{0, 5, 0},
		{4, 5, 4},
		{5, 5, 4},   // past the end clamps to last index
		{99, 5, 4},  // way past the end
		{End, 5, 4}, // bottom sentinel
		{-7, 5, 0},  // other negatives clamp to front
		{3, 0, 0},   // empty collection
		{End, 0, 0},
	}
	for _, tt := range tests {
		if got := Clamp(tt.pos, tt.count); got != tt.want {
			t.Errorf("Clamp(%d, %d) = %d, want %d", tt.pos, tt.count, got, tt.want)
		}
	}
}

func TestClampInsert(t *testing.T) {
	tests := []struct {
		pos, count, want int
	}{
		{0, 5, 0},
		{5, 5, 5}, // inserting after the last sibling is valid
		{9, 5, 5},
		{End, 5, 5},
		{End, 0, 0},
		{-3, 2, 0},
	}
	for _, tt := range tests {
		if got := ClampInsert(tt.pos, tt.count); got != tt.want {
			t.Errorf("ClampInsert(%d, %d) = %d, want %d", tt.pos, tt.count, got, tt.want)
		}
	}
}

func TestPlanMoveNoOp(t *testing.T) {
	shifts, final, err := PlanMove(2, 2, 5)
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}
	if len(shifts) != 0 {
		t.Errorf("expected no shifts for move-to-self, got %v", shifts)
	}
	if final != 2 {
		t.Errorf("final = %d, want 2", final)
	}
}

func TestPlanMoveOutOfRange(t *testing.T) {
	if _, _, err := PlanMove(5, 0, 5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if _, _, err := PlanMove(-1, 0, 5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestPlanMoveDown(t *testing.T) {
	// Move item at 1 to 3 among 5 siblings: (1,3] shift down.
	shifts, final, err := PlanMove(1, 3, 5)
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}
	if final != 3 {
		t.Errorf("final = %d, want 3", final)
	}

	// Siblings at 0,2,3,4 (the moved item at 1 excluded).
	got := Apply([]int{0, 2, 3, 4}, shifts...)
	want := []int{0, 1, 2, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sibling positions after move = %v, want %v", got, want)
		}
	}
}

func TestPlanMoveUp(t *testing.T) {
	// Move item at 3 to 1 among 5 siblings: [1,3) shift up.
	shifts, final, err := PlanMove(3, 1, 5)
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}
	if final != 1 {
		t.Errorf("final = %d, want 1", final)
	}

	got := Apply([]int{0, 1, 2, 4}, shifts...)
	want := []int{0, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sibling positions after move = %v, want %v", got, want)
		}
	}
}

func TestPlanMoveClampsPastEnd(t *testing.T) {
	shifts, final, err := PlanMove(0, 99, 3)
	if err != nil {
		t.Fatalf("PlanMove: %v", err)
	}
	if final != 2 {
		t.Errorf("final = %d, want 2", final)
	}
	got := Apply([]int{1, 2}, shifts...)
	if got[0] != 0 || got[1] != 1 {
		t.Errorf("sibling positions = %v, want [0 1]", got)
	}
}

func TestPlanTransfer(t *testing.T) {
	src, dst, final := PlanTransfer(1, 0, 0)
	if final != 0 {
		t.Errorf("final = %d, want 0", final)
	}

	// Source list had positions 0,1,2; the moved card sat at 1.
	gotSrc := Apply([]int{0, 2}, src)
	if gotSrc[0] != 0 || gotSrc[1] != 1 {
		t.Errorf("source positions = %v, want [0 1]", gotSrc)
	}

	// Destination was empty, so the shift touches nothing.
	if got := Apply(nil, dst); len(got) != 0 {
		t.Errorf("empty destination changed: %v", got)
	}
}

func TestPlanTransferEndSentinel(t *testing.T) {
	_, dst, final := PlanTransfer(0, 3, End)
	if final != 3 {
		t.Errorf("final = %d, want 3 (append to end)", final)
	}
	// No existing sibling sits at >= 3, so nothing moves.
	got := Apply([]int{0, 1, 2}, dst)
	for i, want := range []int{0, 1, 2} {
		if got[i] != want {
			t.Fatalf("destination positions = %v, want [0 1 2]", got)
		}
	}
}

func TestPlanRemove(t *testing.T) {
	shift := PlanRemove(1)
	got := Apply([]int{0, 2, 3}, shift)
	want := []int{0, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("positions after remove = %v, want %v", got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate([]int{2, 0, 1}); err != nil {
		t.Errorf("valid dense set rejected: %v", err)
	}
	if err := Validate(nil); err != nil {
		t.Errorf("empty set rejected: %v", err)
	}
	if err := Validate([]int{0, 2}); err == nil {
		t.Error("gap not detected")
	}
	if err := Validate([]int{0, 0}); err == nil {
		t.Error("duplicate not detected")
	}
}

// TestRandomOperationSequences drives two collections through random
// append/move/transfer/remove sequences and checks the dense invariant and
// total conservation after every step.
func TestRandomOperationSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := range 50 {
		// Two collections of item positions.
		cols := [2][]int{{}, {}}
		total := 0

		for step := range 200 {
			op := rng.Intn(4)
			c := rng.Intn(2)
			switch op {
			case 0: // append
				cols[c] = append(cols[c], Append(len(cols[c])))
				total++

			case 1: // move within
				n := len(cols[c])
				if n == 0 {
					continue
				}
				i := rng.Intn(n)
				target := rng.Intn(n+3) - 1 // includes End and past-the-end values
				shifts, final, err := PlanMove(cols[c][i], target, n)
				if err != nil {
					t.Fatalf("trial %d step %d: PlanMove: %v", trial, step, err)
				}
				rest := append(append([]int{}, cols[c][:i]...), cols[c][i+1:]...)
				rest = Apply(rest, shifts...)
				cols[c] = append(rest, final)

			case 2: // transfer across
				src, dstIdx := c, 1-c
				n := len(cols[src])
				if n == 0 {
					continue
				}
				i := rng.Intn(n)
				target := rng.Intn(len(cols[dstIdx])+3) - 1
				srcShift, dstShift, final := PlanTransfer(cols[src][i], len(cols[dstIdx]), target)

				rest := append(append([]int{}, cols[src][:i]...), cols[src][i+1:]...)
				cols[src] = Apply(rest, srcShift)
				cols[dstIdx] = append(Apply(cols[dstIdx], dstShift), final)

			case 3: // remove
				n := len(cols[c])
				if n == 0 {
					continue
				}
				i := rng.Intn(n)
				shift := PlanRemove(cols[c][i])
				rest := append(append([]int{}, cols[c][:i]...), cols[c][i+1:]...)
				cols[c] = Apply(rest, shift)
				total--
			}

			for ci, col := range cols {
				if err := Validate(col); err != nil {
					t.Fatalf("trial %d step %d: collection %d violates invariant: %v (%v)", trial, step, ci, err, col)
				}
			}
			if len(cols[0])+len(cols[1]) != total {
				t.Fatalf("trial %d step %d: item count not conserved: %d+%d != %d",
					trial, step, len(cols[0]), len(cols[1]), total)
			}
		}
	}
}
