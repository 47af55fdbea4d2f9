package audit

import (
	"math"
	"testing"
	"time"

	"github.com/ecelabs/lims-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffCreate(t *testing.T) {
	after := map[string]any{"status": "RECEIVED", "matrix": "water"}

	changes := Diff(nil, after)

	require.Len(t, changes, 2)
	assert.Nil(t, changes["status"].Old)
	assert.Equal(t, "RECEIVED", changes["status"].New)
	assert.Nil(t, changes["matrix"].Old)
	assert.Equal(t, "water", changes["matrix"].New)
}

func TestDiffDelete(t *testing.T) {
	before := map[string]any{"status": "RECEIVED"}

	changes := Diff(before, nil)

	require.Len(t, changes, 1)
	assert.Equal(t, "RECEIVED", changes["status"].Old)
	assert.Nil(t, changes["status"].New)
}

func TestDiffUpdateOnlyChangedFields(t *testing.T) {
	before := map[string]any{"status": "RECEIVED", "matrix": "water", "description": "inlet"}
	after := map[string]any{"status": "IN_ANALYSIS", "matrix": "water", "description": "inlet"}

	changes := Diff(before, after)

	require.Len(t, changes, 1)
	assert.Equal(t, models.FieldChange{Old: "RECEIVED", New: "IN_ANALYSIS"}, changes["status"])
}

func TestDiffNoOpUpdateIsEmpty(t *testing.T) {
	fields := map[string]any{"status": "RECEIVED", "matrix": "water"}

	assert.Empty(t, Diff(fields, fields))
}

func TestDiffFieldAddedAndRemoved(t *testing.T) {
	before := map[string]any{"a": 1, "gone": "x"}
	after := map[string]any{"a": 1, "added": "y"}

	changes := Diff(before, after)

	require.Len(t, changes, 2)
	assert.Equal(t, models.FieldChange{Old: "x", New: nil}, changes["gone"])
	assert.Equal(t, models.FieldChange{Old: nil, New: "y"}, changes["added"])
}

func TestDiffNormalizesTimestamps(t *testing.T) {
	utc := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	local := utc.In(time.FixedZone("UTC+3", 3*60*60))

	// Same instant in different zones is not a change.
	assert.Empty(t, Diff(
		map[string]any{"received_at": utc},
		map[string]any{"received_at": local},
	))

	// A different instant still is.
	assert.Len(t, Diff(
		map[string]any{"received_at": utc},
		map[string]any{"received_at": utc.Add(time.Minute)},
	), 1)
}

func TestDiffNormalizesNumericWidths(t *testing.T) {
	assert.Empty(t, Diff(
		map[string]any{"count": int64(3), "ratio": float32(1.5)},
		map[string]any{"count": int(3), "ratio": float64(1.5)},
	))
	assert.Len(t, Diff(
		map[string]any{"count": int64(3)},
		map[string]any{"count": int64(4)},
	), 1)
}

func TestDiffDistinguishesLargeIntegers(t *testing.T) {
	// Adjacent int64 values above 2^53 are indistinguishable as float64;
	// they must still register as a change.
	changes := Diff(
		map[string]any{"counter": int64(1 << 60)},
		map[string]any{"counter": int64(1<<60 + 1)},
	)
	require.Len(t, changes, 1)
	assert.Equal(t, models.FieldChange{Old: int64(1 << 60), New: int64(1<<60 + 1)}, changes["counter"])

	assert.Len(t, Diff(
		map[string]any{"counter": uint64(math.MaxUint64)},
		map[string]any{"counter": uint64(math.MaxUint64 - 1)},
	), 1)

	// Equal magnitudes across signedness are still not a change.
	assert.Empty(t, Diff(
		map[string]any{"counter": int64(1 << 60)},
		map[string]any{"counter": uint64(1 << 60)},
	))
}

func TestDiffMixedIntegerAndFloat(t *testing.T) {
	assert.Empty(t, Diff(
		map[string]any{"n": int64(3)},
		map[string]any{"n": float64(3)},
	))
	assert.Len(t, Diff(
		map[string]any{"n": int64(1<<60 + 1)},
		map[string]any{"n": float64(1 << 60)},
	), 1)
	assert.Len(t, Diff(
		map[string]any{"n": int64(3)},
		map[string]any{"n": float64(3.5)},
	), 1)
}

func TestDiffNormalizesTypedStrings(t *testing.T) {
	assert.Empty(t, Diff(
		map[string]any{"status": models.SampleReceived},
		map[string]any{"status": "received"},
	))
	assert.Len(t, Diff(
		map[string]any{"status": models.SampleReceived},
		map[string]any{"status": models.SampleInTesting},
	), 1)
}

func TestDiffNormalizesBytesAndPointers(t *testing.T) {
	s := "payload"
	assert.Empty(t, Diff(
		map[string]any{"blob": []byte("payload"), "note": &s},
		map[string]any{"blob": "payload", "note": "payload"},
	))

	var nilStr *string
	var nilTime *time.Time
	assert.Empty(t, Diff(
		map[string]any{"note": nilStr, "at": nilTime},
		map[string]any{"note": nil, "at": nil},
	))
}

func TestDiffBothNil(t *testing.T) {
	assert.Empty(t, Diff(nil, nil))
}

func TestDiffRoundTrip(t *testing.T) {
	before := map[string]any{"status": "received", "matrix": "water", "description": "inlet"}
	after := map[string]any{"status": "in_testing", "matrix": "soil", "description": "inlet"}

	changes := Diff(before, after)

	// Applying the recorded new values onto before reproduces after.
	rebuilt := map[string]any{}
	for k, v := range before {
		rebuilt[k] = v
	}
	for k, ch := range changes {
		rebuilt[k] = ch.New
	}
	assert.Equal(t, after, rebuilt)
}
