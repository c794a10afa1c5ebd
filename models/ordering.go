package models

import "github.com/google/uuid"

// ClampIndex bounds a placement index to [0, n].
func ClampIndex(index, n int) int {
	if index < 0 {
		return 0
	}
	if index > n {
		return n
	}
	return index
}

// RemoveFromBucket returns bucket without id, preserving order.
func RemoveFromBucket(bucket []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(bucket))
	for _, v := range bucket {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// PlaceInBucket removes id from bucket and re-inserts it at index, clamped to
// the bucket's bounds. The position of an element in the result is its new order.
func PlaceInBucket(bucket []uuid.UUID, id uuid.UUID, index int) ([]uuid.UUID, int) {
	rest := RemoveFromBucket(bucket, id)
	index = ClampIndex(index, len(rest))

	out := make([]uuid.UUID, 0, len(rest)+1)
	out = append(out, rest[:index]...)
	out = append(out, id)
	out = append(out, rest[index:]...)
	return out, index
}
