// Package ordering provides pure list operations for ordered sequences.
//
// Every function returns a new slice and leaves its input untouched. Index
// arguments outside the list are clamped or ignored, never a panic.
package ordering

// Sequenced is an element that carries its own position.
type Sequenced[T any] interface {
	WithOrder(order int) T
}

// Reindex returns a copy of items where each element's order equals its index.
func Reindex[T Sequenced[T]](items []T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = item.WithOrder(i)
	}
	return out
}

// Insert places item at index at, clamped to [0, len(items)].
func Insert[T any](items []T, at int, item T) []T {
	at = clamp(at, 0, len(items))
	out := make([]T, 0, len(items)+1)
	out = append(out, items[:at]...)
	out = append(out, item)
	return append(out, items[at:]...)
}

// RemoveAt drops the element at index i. Out-of-range indexes return a copy.
func RemoveAt[T any](items []T, i int) []T {
	if i < 0 || i >= len(items) {
		return clone(items)
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

// RemoveFunc drops every element for which match returns true.
func RemoveFunc[T any](items []T, match func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !match(item) {
			out = append(out, item)
		}
	}
	return out
}

// IndexFunc returns the index of the first element matching, or -1.
func IndexFunc[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

// MoveUp swaps the element at i with its predecessor. The first element stays put.
func MoveUp[T any](items []T, i int) []T {
	if i <= 0 || i >= len(items) {
		return clone(items)
	}
	return Move(items, i, i-1)
}

// MoveDown swaps the element at i with its successor. The last element stays put.
func MoveDown[T any](items []T, i int) []T {
	if i < 0 || i >= len(items)-1 {
		return clone(items)
	}
	return Move(items, i, i+1)
}

// Move takes the element at from and reinserts it at to, as a drag and drop would.
// to is clamped to the list bounds.
func Move[T any](items []T, from, to int) []T {
	if from < 0 || from >= len(items) {
		return clone(items)
	}
	to = clamp(to, 0, len(items)-1)
	if from == to {
		return clone(items)
	}
	item := items[from]
	return Insert(RemoveAt(items, from), to, item)
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
