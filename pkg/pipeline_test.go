package scifi

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructThreeFamilies(t *testing.T) {
	t.Parallel()
	reco, err := NewReconstructor(testCatalog(t), testParams())
	require.NoError(t, err)

	var raw []RawPulse
	raw = append(raw, arrivals(9, 230, 5.05, 10)...)
	raw = append(raw, arrivals(9, 25, 5.0, 10)...)
	raw = append(raw, arrivals(9, 140, 5.1, 10)...)

	ev, err := reco.Reconstruct(9, raw)
	require.NoError(t, err)
	assert.Equal(t, int32(9), ev.ID)
	assert.Len(t, ev.Pulses, 3)
	assert.Len(t, ev.Clusters, 3)
	require.Len(t, ev.HitGroups, 1)
	assert.Equal(t, 3, ev.HitGroups[0].Families().Len())
	require.Len(t, ev.SpacePoints, 1)

	p := ev.SpacePoints[0]
	assert.Equal(t, int32(9), p.EventID)
	assert.False(t, p.Ambiguous)
	assert.InDelta(t, 5.05, p.Time, 1e-12)
	assert.InDelta(t, 7.5, p.Position.Z, 1e-9)
}

func TestReconstructStereoAmbiguity(t *testing.T) {
	t.Parallel()
	reco, err := NewReconstructor(testCatalog(t), testParams())
	require.NoError(t, err)

	raw := append(arrivals(2, 25, 5.0, 10), arrivals(2, 140, 5.1, 10)...)
	ev, err := reco.Reconstruct(2, raw)
	require.NoError(t, err)
	require.Len(t, ev.SpacePoints, 2)
	assert.InDelta(t, 7.5, ev.SpacePoints[0].Position.Z, 1e-9)
	assert.InDelta(t, -42.5, ev.SpacePoints[1].Position.Z, 1e-9)
}

func TestReconstructIsDeterministic(t *testing.T) {
	t.Parallel()
	params := testParams()
	params.ParallelChannels = true
	reco, err := NewReconstructor(testCatalog(t), params)
	require.NoError(t, err)

	var raw []RawPulse
	for i, ch := range []int32{20, 22, 140, 160, 230, 241, 60, 175, 290} {
		raw = append(raw, arrivals(4, ch, float64(i%3)*0.3, 5)...)
	}

	first, err := reco.Reconstruct(4, raw)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := reco.Reconstruct(4, raw)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("reconstruction differs between runs (-first +again):\n%s", diff)
		}
	}
}

func TestReconstructEmptyEvent(t *testing.T) {
	t.Parallel()
	reco, err := NewReconstructor(testCatalog(t), testParams())
	require.NoError(t, err)

	ev, err := reco.Reconstruct(1, nil)
	require.NoError(t, err)
	assert.Empty(t, ev.Pulses)
	assert.Empty(t, ev.SpacePoints)
}

func TestReconstructUnknownChannel(t *testing.T) {
	t.Parallel()
	reco, err := NewReconstructor(testCatalog(t), testParams())
	require.NoError(t, err)

	_, err = reco.Reconstruct(1, arrivals(1, 5000, 1, 3))
	var unknown *ErrUnknownChannel
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, int32(5000), unknown.ChannelID)
}

func TestNewReconstructorValidation(t *testing.T) {
	t.Parallel()
	_, err := NewReconstructor(nil, DefaultParams())
	var invalidCatalog *ErrInvalidCatalog
	assert.True(t, errors.As(err, &invalidCatalog))

	params := DefaultParams()
	params.Discriminator.Threshold = 0
	_, err = NewReconstructor(testCatalog(t), params)
	var invalidParams *ErrInvalidParams
	require.True(t, errors.As(err, &invalidParams))
	assert.Equal(t, "threshold", invalidParams.Param)

	reco, err := NewReconstructor(testCatalog(t), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, DefaultParams(), reco.Params())
	assert.NotNil(t, reco.Catalog())
}
