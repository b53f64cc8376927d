package scifi

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type RawPulse struct {
	EventID   int32
	ChannelID int32
	Time      float64
}

type DigitizedPulse struct {
	EventID     int32
	ChannelID   int32
	Time        float64
	PhotonCount int
}

// PulseIndex and ClusterIndex are handles into the arenas of one Event.
type PulseIndex int
type ClusterIndex int

const NoCluster ClusterIndex = -1

// ClusterSummary holds the photon-count weighted quantities used by the
// matcher and the position reconstruction.
type ClusterSummary struct {
	// Coordinate is the weighted local coordinate in channels of the seed layer.
	Coordinate float64
	// Fraction is Coordinate over the seed layer channel count, in [0, 1).
	Fraction    float64
	Time        float64
	PhotonCount int
	NChannels   int
}

type Cluster struct {
	Members []PulseIndex
	Seed    PulseIndex
	Layer   int
	Family  Family
	Group   int
	Summary ClusterSummary
	// Valid is false when the members carry no photons.
	Valid bool
}

type HitGroup struct {
	Group    int
	Clusters [NumFamilies]ClusterIndex
}

func NewHitGroup(group int) HitGroup {
	return HitGroup{
		Group:    group,
		Clusters: [NumFamilies]ClusterIndex{NoCluster, NoCluster, NoCluster},
	}
}

func (h HitGroup) Has(f Family) bool {
	return h.Clusters[f] != NoCluster
}

func (h HitGroup) Families() FamilySet {
	var s FamilySet
	for f := LeftHelical; f <= Transverse; f++ {
		if h.Has(f) {
			s = s.With(f)
		}
	}
	return s
}

type SpacePoint struct {
	EventID  int32
	Time     float64
	Position r3.Vec
	Group    int
	Families FamilySet
	// Ambiguous marks the two mirror solutions of a stereo pair.
	Ambiguous bool
}

// Azimuth in (-π, π].
func (p SpacePoint) Azimuth() float64 {
	return math.Atan2(p.Position.Y, p.Position.X)
}

// Event owns every object created while reconstructing one event. Clusters
// and hit groups refer to pulses and clusters by index.
type Event struct {
	ID          int32
	Pulses      []DigitizedPulse
	Clusters    []Cluster
	HitGroups   []HitGroup
	SpacePoints []SpacePoint
}

func (ev *Event) Pulse(i PulseIndex) *DigitizedPulse {
	return &ev.Pulses[i]
}

func (ev *Event) Cluster(i ClusterIndex) *Cluster {
	return &ev.Clusters[i]
}

// EventPulses is the raw input of one event.
type EventPulses struct {
	ID     int32
	Pulses []RawPulse
}

// GroupByEvent splits a raw pulse stream into events. Pulses of one event
// are expected to be consecutive, as written by the digitization.
func GroupByEvent(raw []RawPulse) []EventPulses {
	events := make([]EventPulses, 0)
	for start := 0; start < len(raw); {
		end := start + 1
		for end < len(raw) && raw[end].EventID == raw[start].EventID {
			end++
		}
		events = append(events, EventPulses{ID: raw[start].EventID, Pulses: raw[start:end]})
		start = end
	}
	return events
}
