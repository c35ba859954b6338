package ledger

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkExclusivity(t *testing.T) {
	led := New()

	led.MarkValidated("a")
	led.MarkRejected("a")
	assert.False(t, led.IsValidated("a"))
	assert.True(t, led.IsRejected("a"))

	led.MarkValidated("a")
	assert.True(t, led.IsValidated("a"))
	assert.False(t, led.IsRejected("a"))
}

func TestMarkIdempotent(t *testing.T) {
	led := New()

	led.MarkValidated("a")
	led.MarkValidated("a")
	led.MarkRejected("b")
	led.MarkRejected("b")

	snap := led.Snapshot()
	assert.Equal(t, []string{"a"}, snap.Validated)
	assert.Equal(t, []string{"b"}, snap.Rejected)
}

func TestExclusivityUnderRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ids := []string{"a", "b", "c", "d"}
	led := New()

	for i := 0; i < 500; i++ {
		id := ids[rng.Intn(len(ids))]
		if rng.Intn(2) == 0 {
			led.MarkValidated(id)
		} else {
			led.MarkRejected(id)
		}
	}

	for _, id := range ids {
		if led.IsValidated(id) && led.IsRejected(id) {
			t.Fatalf("id %q present in both sets", id)
		}
	}
}

func TestFromSnapshotCollapsesDuplicates(t *testing.T) {
	led := FromSnapshot(Snapshot{
		Validated: []string{"a", "a", "b"},
		Rejected:  []string{"c", "c"},
	})

	snap := led.Snapshot()
	assert.Equal(t, []string{"a", "b"}, snap.Validated)
	assert.Equal(t, []string{"c"}, snap.Rejected)
}

func TestMergeIsSetUnion(t *testing.T) {
	led := FromSnapshot(Snapshot{
		Validated: []string{"a"},
		Rejected:  []string{"b"},
	})

	led.Merge(Snapshot{
		Validated: []string{"a", "c"},
		Rejected:  []string{"b", "d"},
	})

	snap := led.Snapshot()
	assert.Equal(t, []string{"a", "c"}, snap.Validated)
	assert.Equal(t, []string{"b", "d"}, snap.Rejected)
}

func TestMergeIdempotent(t *testing.T) {
	remote := Snapshot{Validated: []string{"a", "b"}, Rejected: []string{"c"}}

	led := FromSnapshot(Snapshot{Validated: []string{"a"}})
	led.Merge(remote)
	first := led.Snapshot()

	led.Merge(remote)
	second := led.Snapshot()

	require.True(t, reflect.DeepEqual(first.Validated, second.Validated))
	require.True(t, reflect.DeepEqual(first.Rejected, second.Rejected))
}

func TestMergeLocalRejectionWins(t *testing.T) {
	led := New()
	led.MarkRejected("a")

	led.Merge(Snapshot{Validated: []string{"a"}})

	assert.True(t, led.IsRejected("a"))
	assert.False(t, led.IsValidated("a"))
}

func TestEmptyIDsIgnored(t *testing.T) {
	led := New()
	led.MarkValidated("")
	led.MarkRejected("")

	snap := led.Snapshot()
	assert.Empty(t, snap.Validated)
	assert.Empty(t, snap.Rejected)
}
