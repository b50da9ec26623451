package domain

// Navigation helpers are pure functions over an ordered id sequence plus an
// eligibility predicate. The store's transaction layer supplies the predicate
// (a tab is eligible when its config marks it reorderable).

// NextActiveAfterRemove selects the replacement active id after the tab at
// removedIndex has been spliced out of ids. The scan runs forward from the
// removed position to the end, then backward toward the start, returning the
// first eligible id. The second return is false when no tab is eligible.
func NextActiveAfterRemove(ids []string, removedIndex int, eligible func(string) bool) (string, bool) {
	if len(ids) == 0 {
		return "", false
	}
	if removedIndex < 0 {
		removedIndex = 0
	}
	for i := removedIndex; i < len(ids); i++ {
		if eligible(ids[i]) {
			return ids[i], true
		}
	}
	for i := min(removedIndex, len(ids)) - 1; i >= 0; i-- {
		if eligible(ids[i]) {
			return ids[i], true
		}
	}
	return "", false
}

// StepActive computes the id reached by stepping from current in the given
// direction, wrapping modulo len(ids) and skipping ineligible tabs, bounded
// by one full cycle. It returns current unchanged (ok=false) when current is
// absent from ids or no eligible candidate exists within a full cycle.
func StepActive(ids []string, current string, direction Direction, eligible func(string) bool) (string, bool) {
	n := len(ids)
	if n == 0 {
		return current, false
	}
	start := indexOf(ids, current)
	if start < 0 {
		return current, false
	}
	step := 1
	if direction == DirectionPrevious {
		step = -1
	}
	idx := start
	for taken := 0; taken < n; taken++ {
		idx = (idx + step + n) % n
		if eligible(ids[idx]) {
			return ids[idx], true
		}
	}
	return current, false
}

// ClampIndex bounds a requested display index to the valid range for a
// sequence of length n. Deterministic: out-of-range values clamp, they do not
// wrap.
func ClampIndex(index, n int) int {
	if index < 0 {
		return 0
	}
	if index >= n {
		return n - 1
	}
	return index
}

func indexOf(ids []string, id string) int {
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}
