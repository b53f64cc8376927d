package scifi

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

type pulseView struct {
	index  PulseIndex
	pulse  DigitizedPulse
	layer  *FiberLayer
	group  int
	offset int
}

// BuildClusters groups the digitized pulses of an event into clusters of
// one physical light pulse. Two pulses are linked when they are closer
// than DeltaTime, sit in layers of the same family and reconstruction
// group, and their local channel offsets differ by at most ClusterLength.
func BuildClusters(ev *Event, cat *Catalog, p ClusterParams) ([]Cluster, error) {
	views := make([]pulseView, len(ev.Pulses))
	for i, pulse := range ev.Pulses {
		layer, err := cat.LayerOf(pulse.ChannelID)
		if err != nil {
			return nil, err
		}
		views[i] = pulseView{
			index:  PulseIndex(i),
			pulse:  pulse,
			layer:  layer,
			group:  cat.GroupOf(layer.ID),
			offset: layer.LocalOffset(pulse.ChannelID),
		}
	}

	swept := Sweep(views, SweepStrategy[pulseView]{
		Less: func(a, b pulseView) bool {
			if a.pulse.ChannelID != b.pulse.ChannelID {
				return a.pulse.ChannelID < b.pulse.ChannelID
			}
			return a.pulse.Time < b.pulse.Time
		},
		Linked: func(a, b pulseView) bool {
			return math.Abs(a.pulse.Time-b.pulse.Time) < p.DeltaTime &&
				a.group == b.group &&
				a.layer.Family == b.layer.Family &&
				absInt(a.offset-b.offset) <= p.ClusterLength
		},
		Better: func(a, b pulseView) bool {
			if a.pulse.PhotonCount != b.pulse.PhotonCount {
				return a.pulse.PhotonCount > b.pulse.PhotonCount
			}
			if a.pulse.Time != b.pulse.Time {
				return a.pulse.Time < b.pulse.Time
			}
			return a.pulse.ChannelID < b.pulse.ChannelID
		},
	})

	clusters := make([]Cluster, len(swept))
	for i, c := range swept {
		members := make([]PulseIndex, len(c.Members))
		for j, m := range c.Members {
			members[j] = views[m].index
		}
		clusters[i] = NewCluster(ev, cat, members, views[c.Representative].index)
	}

	if verbosity > 2 {
		message := fmt.Sprintf("Event %d: %d pulses in %d clusters", ev.ID, len(ev.Pulses), len(clusters))
		logger.Info(message, "cluster")
	}
	return clusters, nil
}

// NewCluster builds a cluster from pulses of one family and group. Its
// layer, family and group are those of the seed pulse. Members must map to
// catalog layers; an unknown channel here is a programming error.
func NewCluster(ev *Event, cat *Catalog, members []PulseIndex, seed PulseIndex) Cluster {
	seedLayer, err := cat.LayerOf(ev.Pulse(seed).ChannelID)
	if err != nil {
		panic(err)
	}
	cluster := Cluster{
		Members: members,
		Seed:    seed,
		Layer:   seedLayer.ID,
		Family:  seedLayer.Family,
		Group:   cat.GroupOf(seedLayer.ID),
	}

	// Fractions are unwrapped around the seed so that clusters straddling
	// channel zero average correctly.
	seedFraction := seedLayer.Fraction(ev.Pulse(seed).ChannelID)
	offsets := make([]float64, len(members))
	times := make([]float64, len(members))
	weights := make([]float64, len(members))
	total := 0
	for i, m := range members {
		pulse := ev.Pulse(m)
		layer, err := cat.LayerOf(pulse.ChannelID)
		if err != nil {
			panic(err)
		}
		if layer.Family != cluster.Family || cat.GroupOf(layer.ID) != cluster.Group {
			panic(fmt.Sprintf("cluster mixes layer %d with seed layer %d", layer.ID, seedLayer.ID))
		}
		offsets[i] = wrapHalf(layer.Fraction(pulse.ChannelID) - seedFraction)
		times[i] = pulse.Time
		weights[i] = float64(pulse.PhotonCount)
		total += pulse.PhotonCount
	}
	if total <= 0 {
		if verbosity > 1 {
			message := fmt.Sprintf("Event %d: dropping cluster seeded by channel %d with no photons",
				ev.ID, ev.Pulse(seed).ChannelID)
			logger.Info(message, "cluster")
		}
		return cluster
	}

	fraction := mod1(seedFraction + stat.Mean(offsets, weights))
	n := seedLayer.NChannels()
	cluster.Summary = ClusterSummary{
		Coordinate:  fraction * float64(n),
		Fraction:    fraction,
		Time:        stat.Mean(times, weights),
		PhotonCount: total,
		NChannels:   n,
	}
	cluster.Valid = true
	return cluster
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
