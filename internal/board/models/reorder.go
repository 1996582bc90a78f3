package models

import (
	"fmt"
	"sort"

	dErrors "taskboard/pkg/domain-errors"
)

// positioned is an entity holding a 1-based slot in an ordered container:
// a column in its board or a card in its column.
type positioned interface {
	comparable
	slot() int
	setSlot(int)
}

// reposition moves target to newSlot inside items and shifts the entities in
// between so the slots stay a dense permutation of 1..len(items).
//
// A newSlot beyond the end is clamped to len(items). Callers reject
// newSlot < 1 before calling.
func reposition[T positioned](items []T, target T, newSlot int) {
	n := len(items)
	if newSlot > n {
		newSlot = n
	}
	current := target.slot()
	if newSlot == current {
		return
	}

	for _, item := range items {
		if item == target {
			continue
		}
		s := item.slot()
		switch {
		case newSlot < current && s >= newSlot && s < current:
			item.setSlot(s + 1)
		case newSlot > current && s > current && s <= newSlot:
			item.setSlot(s - 1)
		}
	}
	target.setSlot(newSlot)
}

// closeGap shifts every entity after a removed slot one step earlier.
func closeGap[T positioned](items []T, removed int) {
	for _, item := range items {
		if s := item.slot(); s > removed {
			item.setSlot(s - 1)
		}
	}
}

// checkDense verifies the slots of items are exactly 1..len(items).
func checkDense[T positioned](items []T, what string) error {
	seen := make([]bool, len(items)+1)
	for _, item := range items {
		s := item.slot()
		if s < 1 || s > len(items) || seen[s] {
			return dErrors.New(dErrors.CodeInvalidRange,
				fmt.Sprintf("%s are not a dense sequence from 1 to %d", what, len(items)))
		}
		seen[s] = true
	}
	return nil
}

// sortedBySlot returns a copy of items ordered by slot.
func sortedBySlot[T positioned](items []T) []T {
	out := append([]T(nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].slot() < out[j].slot() })
	return out
}
