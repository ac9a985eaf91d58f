package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestBox2_InsertPoint(t *testing.T) {
	box := EmptyBox2()
	assert.True(t, box.IsEmpty())

	box.InsertPoint(mgl32.Vec2{2, 3})
	box.InsertPoint(mgl32.Vec2{-1, 5})
	assert.False(t, box.IsEmpty())
	assert.Equal(t, mgl32.Vec2{-1, 3}, box.Min)
	assert.Equal(t, mgl32.Vec2{2, 5}, box.Max)
	assert.Equal(t, mgl32.Vec2{3, 2}, box.Extent())
	assert.Equal(t, float32(6), box.Area())
}

func TestBox2_InsertBox(t *testing.T) {
	box := NewBox2(0, 0, 1, 1)
	box.InsertBox(NewBox2(2, -1, 3, 0.5))
	assert.Equal(t, NewBox2(0, -1, 3, 1), box)
}

func TestBox2_PointsAboveOne(t *testing.T) {
	// Points far from the origin must not be clipped by the initial bounds
	box := NewBox2FromPoints(mgl32.Vec2{10, 10}, mgl32.Vec2{12, 11})
	assert.Equal(t, mgl32.Vec2{10, 10}, box.Min)
	assert.Equal(t, mgl32.Vec2{12, 11}, box.Max)
}

func TestBox2_Overlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Box2
		expected bool
	}{
		{"disjoint", NewBox2(0, 0, 1, 1), NewBox2(2, 2, 3, 3), false},
		{"touching edges", NewBox2(0, 0, 1, 1), NewBox2(1, 0, 2, 1), false},
		{"overlapping", NewBox2(0, 0, 2, 2), NewBox2(1, 1, 3, 3), true},
		{"contained", NewBox2(0, 0, 4, 4), NewBox2(1, 1, 2, 2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.expected, tt.b.Overlaps(tt.a))
		})
	}
}
