package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	to, ok := Next(ScreenHome, TriggerStartInput)
	assert.True(t, ok)
	assert.Equal(t, ScreenInput, to)

	to, ok = Next(ScreenLoading, TriggerFetchFailure)
	assert.True(t, ok)
	assert.Equal(t, ScreenError, to)

	_, ok = Next(ScreenHome, TriggerRetry)
	assert.False(t, ok)
	_, ok = Next(ScreenLoading, TriggerSubmit)
	assert.False(t, ok)
}

func TestTransitions_EveryScreenReachable(t *testing.T) {
	reached := map[Screen]bool{ScreenHome: true}
	for _, tr := range Transitions {
		reached[tr.To] = true
	}
	for _, s := range Screens {
		assert.True(t, reached[s], "screen %s unreachable", s)
	}
}
