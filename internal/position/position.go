// Package position maintains the dense 0-based ordering invariant for
// sibling collections (cards in a list, lists on a board).
//
// The invariant: at all times the set of positions among N siblings is
// exactly {0..N-1}, no gaps, no duplicates. The package is pure - it plans
// the bulk shifts an operation requires, and the storage layer applies a
// whole plan inside one transaction so concurrent movers never observe
// partial shifts.
package position

import (
	"errors"
	"fmt"
	"math"
)

// End is the caller-facing sentinel for "bottom of the collection".
// Natural-language commands like "move it to the bottom" encode as End.
const End = -1

// Unbounded marks a shift that extends through the last sibling.
const Unbounded = math.MaxInt

// ErrOutOfRange signals a source position outside the collection bounds.
var ErrOutOfRange = errors.New("position out of range")

// Shift is a bulk adjustment of sibling positions: every sibling whose
// position lies in [Lo, Hi] moves by Delta. Hi == Unbounded means "through
// the end".
type Shift struct {
	Lo    int
	Hi    int
	Delta int
}

// Covers reports whether the shift applies to a sibling at pos.
func (s Shift) Covers(pos int) bool {
	return pos >= s.Lo && (s.Hi == Unbounded || pos <= s.Hi)
}

// Append returns the position for a newly appended item: the sibling count
// before insertion. No renumbering of existing siblings is needed.
func Append(count int) int {
	return count
}

// Clamp resolves a requested target position against a collection of count
// items. End and anything past the last valid index resolve to the last
// index (append-to-end semantics); other negatives resolve to 0.
func Clamp(pos, count int) int {
	last := count - 1
	if last < 0 {
		return 0
	}
	if pos == End || pos > last {
		return last
	}
	if pos < 0 {
		return 0
	}
	return pos
}

// ClampInsert resolves a requested insertion slot in a collection that
// currently holds count items. Unlike Clamp, count itself is valid here
// (insert after the current last sibling).
func ClampInsert(pos, count int) int {
	if pos == End || pos > count {
		return count
	}
	if pos < 0 {
		return 0
	}
	return pos
}

// PlanMove plans an in-collection move from oldPos to a requested newPos
// among count siblings. The returned shifts exclude the moved item itself;
// final is the moved item's resulting position. A move to the current
// position yields no shifts.
func PlanMove(oldPos, newPos, count int) (shifts []Shift, final int, err error) {
	if oldPos < 0 || oldPos >= count {
		return nil, 0, fmt.Errorf("move from %d in collection of %d: %w", oldPos, count, ErrOutOfRange)
	}

	final = Clamp(newPos, count)
	switch {
	case final == oldPos:
		return nil, final, nil
	case final > oldPos:
		// Siblings in (oldPos, final] slide down to close the gap.
		shifts = []Shift{{Lo: oldPos + 1, Hi: final, Delta: -1}}
	default:
		// Siblings in [final, oldPos) slide up to open the slot.
		shifts = []Shift{{Lo: final, Hi: oldPos - 1, Delta: +1}}
	}
	return shifts, final, nil
}

// PlanTransfer plans a cross-collection move: remove from the source at
// oldPos, insert into a destination currently holding destCount items at a
// requested newPos. src closes the gap left behind, dst opens the slot, and
// final is the moved item's position in the destination.
func PlanTransfer(oldPos, destCount, newPos int) (src, dst Shift, final int) {
	src = Shift{Lo: oldPos + 1, Hi: Unbounded, Delta: -1}
	final = ClampInsert(newPos, destCount)
	dst = Shift{Lo: final, Hi: Unbounded, Delta: +1}
	return src, dst, final
}

// PlanRemove plans the compaction after deleting the item at pos: the
// source-side half of a transfer, with no destination pass.
func PlanRemove(pos int) Shift {
	return Shift{Lo: pos + 1, Hi: Unbounded, Delta: -1}
}

// Apply applies shifts to an in-memory position slice, in order.
// Used by tests and by callers that reorder loaded snapshots.
func Apply(positions []int, shifts ...Shift) []int {
	out := make([]int, len(positions))
	copy(out, positions)
	for _, s := range shifts {
		for i, p := range out {
			if s.Covers(p) {
				out[i] = p + s.Delta
			}
		}
	}
	return out
}

// Validate checks the dense invariant: positions must be exactly {0..N-1}.
func Validate(positions []int) error {
	seen := make([]bool, len(positions))
	for _, p := range positions {
		if p < 0 || p >= len(positions) {
			return fmt.Errorf("position %d outside [0,%d): %w", p, len(positions), ErrOutOfRange)
		}
		if seen[p] {
			return fmt.Errorf("duplicate position %d", p)
		}
		seen[p] = true
	}
	return nil
}
