package scifi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByEvent(t *testing.T) {
	t.Parallel()
	raw := []RawPulse{
		{EventID: 4, ChannelID: 1, Time: 1},
		{EventID: 4, ChannelID: 2, Time: 2},
		{EventID: 7, ChannelID: 3, Time: 3},
		{EventID: 8, ChannelID: 4, Time: 4},
		{EventID: 8, ChannelID: 5, Time: 5},
	}

	events := GroupByEvent(raw)
	require.Len(t, events, 3)
	assert.Equal(t, int32(4), events[0].ID)
	assert.Len(t, events[0].Pulses, 2)
	assert.Equal(t, int32(7), events[1].ID)
	assert.Len(t, events[1].Pulses, 1)
	assert.Equal(t, int32(8), events[2].ID)
	assert.Len(t, events[2].Pulses, 2)

	assert.Empty(t, GroupByEvent(nil))
}

func TestHitGroupFamilies(t *testing.T) {
	t.Parallel()
	hg := NewHitGroup(1)
	assert.Zero(t, hg.Families().Len())

	hg.Clusters[RightHelical] = 3
	hg.Clusters[Transverse] = 0
	assert.False(t, hg.Has(LeftHelical))
	assert.True(t, hg.Has(Transverse))
	assert.Equal(t, FamilySet(0).With(RightHelical).With(Transverse), hg.Families())
}

func TestParamsValidate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.Match.DeltaTime = math.Inf(1)
	assert.NoError(t, p.Validate())

	tests := []struct {
		param  string
		modify func(p *Params)
	}{
		{"threshold", func(p *Params) { p.Discriminator.Threshold = 0 }},
		{"time_window", func(p *Params) { p.Discriminator.TimeWindow = 0 }},
		{"dead_time", func(p *Params) { p.Discriminator.DeadTime = -1 }},
		{"cluster_length", func(p *Params) { p.Cluster.ClusterLength = -1 }},
		{"delta_time", func(p *Params) { p.Match.DeltaTime = math.NaN() }},
		{"match_tolerance", func(p *Params) { p.Match.Tolerance = -0.5 }},
		{"search_limit", func(p *Params) { p.Match.SearchLimit = -1 }},
	}
	for _, tt := range tests {
		p := DefaultParams()
		tt.modify(&p)
		err := p.Validate()
		var invalid *ErrInvalidParams
		require.ErrorAs(t, err, &invalid, tt.param)
		assert.Equal(t, tt.param, invalid.Param)
	}
}
