package scifi

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()
	cat := DefaultCatalog()

	require.Len(t, cat.Layers, 16)
	require.Len(t, cat.Groups, 2)
	assert.Equal(t, 2360, cat.NChannels())
	assert.Equal(t, LeftHelical, cat.Layers[2].Family)
	assert.Equal(t, RightHelical, cat.Layers[6].Family)
	assert.Greater(t, cat.Layers[2].Pitch, 0.0)
	assert.Less(t, cat.Layers[6].Pitch, 0.0)
	assert.Zero(t, cat.Layers[0].Pitch)
	assert.False(t, cat.Layers[0].IsSecond)
	assert.True(t, cat.Layers[1].IsSecond)

	for _, g := range cat.Groups {
		assert.Equal(t, FamilySet(0).With(LeftHelical).With(RightHelical).With(Transverse), g.Families)
		assert.InDelta(t, 325.4, g.Lead, 1e-9)
	}
	assert.InDelta(t, 51.3, cat.Groups[0].Radius, 1e-9)
	assert.InDelta(t, 65.7, cat.Groups[1].Radius, 1e-9)
}

func TestLayerOf(t *testing.T) {
	t.Parallel()
	cat := DefaultCatalog()

	tests := []struct {
		channel int32
		layer   int
	}{
		{0, 0},
		{139, 0},
		{140, 1},
		{280, 2},
		{2359, 15},
	}
	for _, tt := range tests {
		layer, err := cat.LayerOf(tt.channel)
		require.NoError(t, err)
		assert.Equal(t, tt.layer, layer.ID, "channel %d", tt.channel)
	}

	for _, channel := range []int32{-1, 2360} {
		_, err := cat.LayerOf(channel)
		var unknown *ErrUnknownChannel
		require.True(t, errors.As(err, &unknown), "channel %d", channel)
		assert.Equal(t, channel, unknown.ChannelID)
	}
}

func TestLayerFraction(t *testing.T) {
	t.Parallel()
	first := FiberLayer{Family: Transverse, Radius: 10, FirstChannel: 100, LastChannel: 199}
	second := first
	second.IsSecond = true

	assert.Equal(t, 100, first.NChannels())
	assert.InDelta(t, 0.0, first.Fraction(100), 1e-12)
	assert.InDelta(t, 0.25, first.Fraction(125), 1e-12)
	assert.InDelta(t, 0.005, second.Fraction(100), 1e-12)
	assert.InDelta(t, 0.995, second.Fraction(199), 1e-12)
	assert.Zero(t, first.Lead())
}

func TestNewCatalogValidation(t *testing.T) {
	t.Parallel()
	pitch := math.Atan(100 / (2 * math.Pi * 50))
	valid := func() []FiberLayer {
		return []FiberLayer{
			{ID: 0, Family: LeftHelical, Radius: 50, FirstChannel: 0, LastChannel: 99},
			{ID: 1, Family: RightHelical, Radius: 50, FirstChannel: 100, LastChannel: 199},
			{ID: 2, Family: Transverse, Radius: 50, FirstChannel: 200, LastChannel: 299},
		}
	}

	tests := []struct {
		name        string
		fiberLength float64
		modify      func(layers []FiberLayer)
		groups      [][]int
	}{
		{
			name:        "overlapping channels",
			fiberLength: 100,
			modify:      func(l []FiberLayer) { l[1].FirstChannel = 99 },
			groups:      [][]int{{0, 1, 2}},
		},
		{
			name:        "empty channel range",
			fiberLength: 100,
			modify:      func(l []FiberLayer) { l[2].LastChannel = 150 },
			groups:      [][]int{{0, 1, 2}},
		},
		{
			name:        "layer in two groups",
			fiberLength: 100,
			groups:      [][]int{{0, 1, 2}, {2}},
		},
		{
			name:        "layer in no group",
			fiberLength: 100,
			groups:      [][]int{{0, 1}},
		},
		{
			name:        "unknown layer in group",
			fiberLength: 100,
			groups:      [][]int{{0, 1, 2, 3}},
		},
		{
			name:        "wrong pitch sign",
			fiberLength: 100,
			modify:      func(l []FiberLayer) { l[1].Pitch = pitch },
			groups:      [][]int{{0, 1, 2}},
		},
		{
			name:        "transverse with pitch",
			fiberLength: 100,
			modify:      func(l []FiberLayer) { l[2].Pitch = 0.1 },
			groups:      [][]int{{0, 1, 2}},
		},
		{
			name:   "no pitch and no fiber length",
			groups: [][]int{{0, 1, 2}},
		},
		{
			name:        "mixed leads",
			fiberLength: 100,
			modify:      func(l []FiberLayer) { l[0].Pitch = 2 * pitch },
			groups:      [][]int{{0, 1, 2}},
		},
		{
			name:        "non-positive radius",
			fiberLength: 100,
			modify:      func(l []FiberLayer) { l[0].Radius = 0 },
			groups:      [][]int{{0, 1, 2}},
		},
		{
			name:        "IDs out of order",
			fiberLength: 100,
			modify:      func(l []FiberLayer) { l[0].ID = 5 },
			groups:      [][]int{{0, 1, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			layers := valid()
			if tt.modify != nil {
				tt.modify(layers)
			}
			_, err := NewCatalog(tt.fiberLength, layers, tt.groups)
			var invalid *ErrInvalidCatalog
			assert.True(t, errors.As(err, &invalid), "got %v", err)
		})
	}

	cat, err := NewCatalog(100, valid(), [][]int{{0, 1, 2}})
	require.NoError(t, err)
	assert.InDelta(t, pitch, cat.Layers[0].Pitch, 1e-12)
	assert.InDelta(t, -pitch, cat.Layers[1].Pitch, 1e-12)
	assert.InDelta(t, 100, cat.Groups[0].Lead, 1e-9)
}

func TestParseFamily(t *testing.T) {
	t.Parallel()
	for _, f := range []Family{LeftHelical, RightHelical, Transverse} {
		parsed, err := ParseFamily(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}
	_, err := ParseFamily("Diagonal")
	assert.Error(t, err)
}

func TestFamilySet(t *testing.T) {
	t.Parallel()
	s := FamilySet(0).With(LeftHelical).With(Transverse)
	assert.True(t, s.Has(LeftHelical))
	assert.False(t, s.Has(RightHelical))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "LHelical+Transverse", s.String())
}
