package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPlaceInBucket(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	testCases := []struct {
		name      string
		bucket    []uuid.UUID
		id        uuid.UUID
		index     int
		want      []uuid.UUID
		wantIndex int
	}{
		{"move last to front", []uuid.UUID{a, b, c}, c, 0, []uuid.UUID{c, a, b}, 0},
		{"move first to middle", []uuid.UUID{a, b, c}, a, 1, []uuid.UUID{b, a, c}, 1},
		{"index past end clamps", []uuid.UUID{a, b, c}, a, 10, []uuid.UUID{b, c, a}, 2},
		{"negative index clamps", []uuid.UUID{a, b}, b, -3, []uuid.UUID{b, a}, 0},
		{"insert from another bucket", []uuid.UUID{a, b}, c, 1, []uuid.UUID{a, c, b}, 1},
		{"empty bucket", nil, a, 5, []uuid.UUID{a}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, idx := PlaceInBucket(tc.bucket, tc.id, tc.index)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantIndex, idx)
		})
	}
}

func TestRemoveFromBucket(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, []uuid.UUID{b}, RemoveFromBucket([]uuid.UUID{a, b}, a))
	assert.Equal(t, []uuid.UUID{a, b}, RemoveFromBucket([]uuid.UUID{a, b}, uuid.New()))
}
