package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffGrowsAndResets(t *testing.T) {
	t.Parallel()
	b := &Backoff{Min: 100 * time.Millisecond, Max: 400 * time.Millisecond, K: 2}

	// first delay is always 0
	assert.Equal(t, time.Duration(0), b.DelayBefore())

	b.Failure()
	d1 := b.DelayBefore()
	assert.True(t, d1 > 0 && d1 <= 100*time.Millisecond, "d1=%s", d1)

	b.Failure()
	b.Failure()
	b.Failure()
	dmax := b.DelayBefore()
	assert.True(t, dmax <= 400*time.Millisecond, "dmax=%s", dmax)

	b.Reset()
	b.last.Set(0) // pretend Min elapsed since last attempt
	assert.Equal(t, time.Duration(0), b.DelayBefore())
}

func TestFoldErrors(t *testing.T) {
	t.Parallel()
	assert.NoError(t, FoldErrors(nil))
	assert.NoError(t, FoldErrors([]error{nil, nil}))
	err := FoldErrors([]error{nil, assert.AnError})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), assert.AnError.Error())
}
