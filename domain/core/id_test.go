package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Fatalf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Fatalf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
	assert.Len(t, ids, numIDs)
}

func TestParseSnapshotID(t *testing.T) {
	id := NewSnapshotID()
	parsed, err := ParseSnapshotID(" " + id.String() + " ")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseSnapshotID("")
	assert.Error(t, err)

	_, err = ParseSnapshotID("not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFingerprintIgnoresMapOrder(t *testing.T) {
	a := Fingerprint(map[string]interface{}{"age_min": 20, "age_max": 60, "city": "All"})
	b := Fingerprint(map[string]interface{}{"city": "All", "age_max": 60, "age_min": 20})
	c := Fingerprint(map[string]interface{}{"city": "Tokyo", "age_max": 60, "age_min": 20})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a.Short(), 12)
}

func TestValidationErrorsMatchSentinel(t *testing.T) {
	assert.True(t, IsValidationError(ErrInvalidAgeRange))
	assert.True(t, IsValidationError(NewValidationError("top_n", "must be positive")))
	assert.False(t, IsValidationError(ErrSnapshotNotFound))
	assert.True(t, IsNotFoundError(ErrSnapshotNotFound))
}
