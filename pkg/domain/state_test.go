package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestNavigationState_Invariants(t *testing.T) {
	s := domain.NewNavigationState()
	assert.Equal(t, domain.ScreenHome, s.Screen)
	assert.NoError(t, s.CheckInvariants())

	s.Screen = domain.ScreenResult
	assert.Error(t, s.CheckInvariants())

	s.LastResult = &domain.FortuneResult{Name: "富山県"}
	assert.NoError(t, s.CheckInvariants())

	s.IsRequestInFlight = true
	assert.Error(t, s.CheckInvariants())
}

func TestNavigationState_SnapshotIsolation(t *testing.T) {
	s := domain.NewNavigationState()
	s.Screen = domain.ScreenResult
	s.LastResult = &domain.FortuneResult{Name: "富山県", CitizenDay: &domain.MonthDay{Month: 5, Day: 9}}
	s.Validation = &domain.ValidationError{Field: "name"}

	snap := s.Snapshot("sess-1", 3)
	snap.LastResult.Name = "changed"
	snap.LastResult.CitizenDay.Day = 1
	snap.Validation.Field = "changed"

	assert.Equal(t, "富山県", s.LastResult.Name)
	assert.Equal(t, 9, s.LastResult.CitizenDay.Day)
	assert.Equal(t, "name", s.Validation.Field)
	assert.Equal(t, uint64(3), snap.Version)
	assert.Equal(t, "sess-1", snap.SessionID)
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{OnTransition: func(context.Context, *domain.TransitionEvent) { order = append(order, "a") }}
	b := domain.LifecycleHooks{
		OnTransition: func(context.Context, *domain.TransitionEvent) { order = append(order, "b") },
		OnPersist:    func(context.Context, *domain.PersistEvent) { order = append(order, "persist") },
	}
	merged := a.Merge(b)
	merged.OnTransition(context.Background(), &domain.TransitionEvent{})
	merged.OnPersist(context.Background(), &domain.PersistEvent{})
	assert.Nil(t, merged.OnFetchStart)
	assert.Equal(t, []string{"a", "b", "persist"}, order)
}
