package crossing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_Roll(t *testing.T) {
	t.Run("activates below probability", func(t *testing.T) {
		d := NewDispatcher(DefaultConfig(), NewScriptedRandom([]float64{0.05}, []int{3}))

		direction, ok := d.Roll()

		assert.True(t, ok)
		assert.Equal(t, West, direction)
		assert.Equal(t, EmergencyStatus{Active: true, Direction: West, Remaining: 30}, d.Status())
	})

	t.Run("stays idle at or above probability", func(t *testing.T) {
		d := NewDispatcher(DefaultConfig(), NewScriptedRandom([]float64{0.1}, []int{3}))

		_, ok := d.Roll()

		assert.False(t, ok)
		assert.False(t, d.Status().Active)
	})

	t.Run("ignores a re-trigger while active", func(t *testing.T) {
		rnd := NewScriptedRandom([]float64{0.0, 0.0}, []int{1, 2})
		d := NewDispatcher(DefaultConfig(), rnd)

		d.Roll()
		d.Advance()
		_, ok := d.Roll()

		assert.False(t, ok)
		assert.Equal(t, EmergencyStatus{Active: true, Direction: South, Remaining: 29}, d.Status())
		floats, ints := rnd.Remaining()
		assert.Equal(t, 1, floats, "no randomness is consumed by an ignored roll")
		assert.Equal(t, 1, ints)
	})
}

func TestDispatcher_ExpiresExactlyOnce(t *testing.T) {
	d := NewDispatcher(DefaultConfig(), NewScriptedRandom([]float64{0.0}, []int{0}))
	d.Roll()

	for i := 0; i < 29; i++ {
		_, expired := d.Advance()
		assert.False(t, expired, "tick %d", i)
	}

	direction, expired := d.Advance()
	assert.True(t, expired)
	assert.Equal(t, North, direction)
	assert.Equal(t, EmergencyStatus{}, d.Status())

	_, expired = d.Advance()
	assert.False(t, expired)
}

func TestDispatcher_Cancel(t *testing.T) {
	d := NewDispatcher(DefaultConfig(), NewScriptedRandom([]float64{0.0}, []int{2}))

	_, cancelled := d.Cancel()
	assert.False(t, cancelled, "nothing to cancel")

	d.Roll()
	direction, cancelled := d.Cancel()
	assert.True(t, cancelled)
	assert.Equal(t, East, direction)

	_, expired := d.Advance()
	assert.False(t, expired, "a cancelled emergency never expires")
}
