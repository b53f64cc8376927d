package scifi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testCatalog is a single group of three 100-fiber layers at radius 50
// whose helical lead equals the fiber length of 100.
func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	layers, err := BuildLayers(
		[]Family{LeftHelical, RightHelical, Transverse},
		[]float64{50, 50, 50},
		[]int{100, 100, 100},
		[]bool{false, false, false},
	)
	require.NoError(t, err)
	catalog, err := NewCatalog(100, layers, [][]int{{0, 1, 2}})
	require.NoError(t, err)
	return catalog
}

// testParams integrates every arrival of a channel into one pulse.
func testParams() Params {
	p := DefaultParams()
	p.Discriminator.Threshold = 1
	p.Cluster.DeltaTime = 1
	p.Match.DeltaTime = 1
	return p
}

// clusterPerPulse turns every pulse of the event into its own cluster.
func clusterPerPulse(t *testing.T, cat *Catalog, pulses []DigitizedPulse) *Event {
	t.Helper()
	ev := &Event{ID: 1, Pulses: pulses}
	ev.Clusters = make([]Cluster, len(pulses))
	for i := range pulses {
		ev.Clusters[i] = NewCluster(ev, cat, []PulseIndex{PulseIndex(i)}, PulseIndex(i))
		require.True(t, ev.Clusters[i].Valid)
	}
	return ev
}

func pulse(channel int32, time float64, count int) DigitizedPulse {
	return DigitizedPulse{EventID: 1, ChannelID: channel, Time: time, PhotonCount: count}
}

// arrivals repeats one photon arrival count times.
func arrivals(eventID int32, channel int32, time float64, count int) []RawPulse {
	raw := make([]RawPulse, count)
	for i := range raw {
		raw[i] = RawPulse{EventID: eventID, ChannelID: channel, Time: time}
	}
	return raw
}
