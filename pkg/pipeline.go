package scifi

import "fmt"

// Reconstructor runs the four reconstruction stages on single events. It
// holds no per-event state and may be shared by concurrent workers.
type Reconstructor struct {
	catalog *Catalog
	params  Params
}

func NewReconstructor(catalog *Catalog, params Params) (*Reconstructor, error) {
	if catalog == nil {
		return nil, invalidCatalog("no catalog")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Reconstructor{catalog: catalog, params: params}, nil
}

func (r *Reconstructor) Catalog() *Catalog {
	return r.catalog
}

func (r *Reconstructor) Params() Params {
	return r.params
}

// Reconstruct processes the raw pulses of one event. The only error is
// *ErrUnknownChannel, meaning the catalog does not describe the input.
func (r *Reconstructor) Reconstruct(eventID int32, raw []RawPulse) (*Event, error) {
	ev := &Event{ID: eventID}
	ev.Pulses = DiscriminateEvent(eventID, raw, r.params.Discriminator, r.params.ParallelChannels)

	clusters, err := BuildClusters(ev, r.catalog, r.params.Cluster)
	if err != nil {
		return nil, fmt.Errorf("event %d: %w", eventID, err)
	}
	ev.Clusters = clusters
	ev.HitGroups = MatchClusters(ev, r.catalog, r.params.Match)

	ev.SpacePoints = make([]SpacePoint, 0, len(ev.HitGroups))
	for _, hg := range ev.HitGroups {
		ev.SpacePoints = append(ev.SpacePoints, ReconstructPosition(ev, r.catalog, hg, r.params.Position)...)
	}

	if verbosity > 1 {
		message := fmt.Sprintf("Event %d: %d pulses, %d clusters, %d hit groups, %d space points",
			eventID, len(ev.Pulses), len(ev.Clusters), len(ev.HitGroups), len(ev.SpacePoints))
		logger.Info(message, "reconstruction")
	}
	return ev, nil
}
