package handedness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/soar/VRPawn/internal/xr"
)

func TestResolverSwapsWhenFirstIsLeftAtZero(t *testing.T) {
	r := NewResolver(nil)
	a := r.Observe([]xr.SourceEvent{
		{Index: 0, Handedness: xr.HandednessLeft},
		{Index: 1, Handedness: xr.HandednessRight},
	})
	assert.Equal(t, 1, a.RIndex)
	assert.Equal(t, 0, a.LIndex)
	assert.True(t, r.Resolved())
}

func TestResolverKeepsDefault(t *testing.T) {
	cases := map[string][]xr.SourceEvent{
		"right at zero":   {{Index: 0, Handedness: xr.HandednessRight}},
		"unknown at zero": {{Index: 0, Handedness: xr.HandednessUnknown}},
		"left at one":     {{Index: 1, Handedness: xr.HandednessLeft}, {Index: 0, Handedness: xr.HandednessLeft}},
	}
	for name, events := range cases {
		t.Run(name, func(t *testing.T) {
			a := NewResolver(nil).Observe(events)
			assert.Equal(t, DefaultAssignment(), a)
		})
	}
}

func TestResolverOnlyFirstEventCounts(t *testing.T) {
	r := NewResolver(nil)
	r.Observe([]xr.SourceEvent{{Index: 0, Handedness: xr.HandednessRight}})

	// a later reconnect reporting left at 0 does not swap
	a := r.Observe([]xr.SourceEvent{{Index: 0, Handedness: xr.HandednessLeft}})
	assert.Equal(t, 0, a.RIndex)
	assert.Equal(t, 1, a.LIndex)

	r.Reset()
	assert.False(t, r.Resolved())
	a = r.Observe([]xr.SourceEvent{{Index: 0, Handedness: xr.HandednessLeft}})
	assert.Equal(t, 1, a.RIndex)
}

func TestResolverIgnoresEmptyBatch(t *testing.T) {
	r := NewResolver(nil)
	r.Observe(nil)
	assert.False(t, r.Resolved())
}

func TestAssignmentRoleOf(t *testing.T) {
	a := Assignment{RIndex: 1, LIndex: 0}

	role, ok := a.RoleOf(1)
	assert.True(t, ok)
	assert.Equal(t, xr.Right, role)

	role, ok = a.RoleOf(0)
	assert.True(t, ok)
	assert.Equal(t, xr.Left, role)

	_, ok = a.RoleOf(2)
	assert.False(t, ok)

	assert.Equal(t, 0, a.IndexOf(xr.Left))
	assert.Equal(t, 1, a.IndexOf(xr.Right))
}

func TestAssignmentConflictPanics(t *testing.T) {
	assert.PanicsWithValue(t, ConflictError{Assignment: Assignment{RIndex: 0, LIndex: 0}}, func() {
		Assignment{RIndex: 0, LIndex: 0}.mustValid()
	})
}

func TestResolverLogsResolution(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewResolver(zap.New(core))
	r.Observe([]xr.SourceEvent{{Index: 0, Handedness: xr.HandednessLeft}})

	entries := logs.FilterMessage("controller roles resolved").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, int64(1), entries[0].ContextMap()["right_index"])
	}
}
