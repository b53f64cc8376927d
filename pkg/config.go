package scifi

import "math"

type Configuration struct {
	MaxEvents        int    `json:"max_events"`
	Skip             int    `json:"skip"`
	Verbosity        int    `json:"verbosity"`
	FileIn           string `json:"file_in"`
	FileOut          string `json:"file_out"`
	CatalogSource    string `json:"catalog_source"`
	CatalogFile      string `json:"catalog_file"`
	RunNumber        int    `json:"run_number"`
	DBDriver         string `json:"db_driver"`
	DSN              string `json:"dsn"`
	Host             string `json:"host"`
	User             string `json:"user"`
	Passwd           string `json:"pass"`
	DBName           string `json:"dbname"`
	NumWorkers       int    `json:"num_workers"`
	ParallelChannels bool   `json:"parallel_channels"`
	Discard          bool   `json:"discard"`
	WriteData        bool   `json:"write_data"`
	CompressionLevel int    `json:"compression_level"`

	Threshold        int     `json:"threshold"`
	ThresholdTime    float64 `json:"threshold_time"`
	TimeWindow       float64 `json:"time_window"`
	DeadTime         float64 `json:"dead_time"`
	ClusterLength    int     `json:"cluster_length"`
	DeltaTime        float64 `json:"delta_time"`
	MatchTolerance   float64 `json:"match_tolerance"`
	RootTieTolerance float64 `json:"root_tie_tolerance"`
	SearchLimit      int     `json:"search_limit"`
}

const (
	CatalogDefault  = "default"
	CatalogYAML     = "yaml"
	CatalogDatabase = "db"
)

type DiscriminatorParams struct {
	// Threshold is the number of photons needed to arm the discriminator.
	Threshold     int
	ThresholdTime float64
	TimeWindow    float64
	DeadTime      float64
}

type ClusterParams struct {
	ClusterLength int
	DeltaTime     float64
}

type MatchParams struct {
	DeltaTime float64
	// Tolerance is measured in channels of the transverse layer.
	Tolerance float64
	// SearchLimit bounds the number of nodes visited while looking for the
	// largest set of disjoint triples in one component, 0 for no limit. A
	// limited search may miss the largest set.
	SearchLimit int
}

type PositionParams struct {
	// RootTieTolerance is the circular distance (in revolutions) below which
	// both stereo roots are considered equally close to the transverse view.
	RootTieTolerance float64
}

type Params struct {
	Discriminator    DiscriminatorParams
	Cluster          ClusterParams
	Match            MatchParams
	Position         PositionParams
	ParallelChannels bool
}

func DefaultParams() Params {
	return Params{
		Discriminator: DiscriminatorParams{
			Threshold:     2,
			ThresholdTime: 10,
			TimeWindow:    10,
			DeadTime:      10,
		},
		Cluster: ClusterParams{
			ClusterLength: 3,
			DeltaTime:     10,
		},
		Match: MatchParams{
			DeltaTime:   10,
			Tolerance:   5,
			SearchLimit: 0,
		},
		Position: PositionParams{
			RootTieTolerance: 1e-9,
		},
	}
}

func (c Configuration) Params() Params {
	return Params{
		Discriminator: DiscriminatorParams{
			Threshold:     c.Threshold,
			ThresholdTime: c.ThresholdTime,
			TimeWindow:    c.TimeWindow,
			DeadTime:      c.DeadTime,
		},
		Cluster: ClusterParams{
			ClusterLength: c.ClusterLength,
			DeltaTime:     c.DeltaTime,
		},
		Match: MatchParams{
			DeltaTime:   c.DeltaTime,
			Tolerance:   c.MatchTolerance,
			SearchLimit: c.SearchLimit,
		},
		Position: PositionParams{
			RootTieTolerance: c.RootTieTolerance,
		},
		ParallelChannels: c.ParallelChannels,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Discriminator.Threshold < 1:
		return &ErrInvalidParams{Param: "threshold", Value: p.Discriminator.Threshold}
	case p.Discriminator.ThresholdTime <= 0 || math.IsNaN(p.Discriminator.ThresholdTime):
		return &ErrInvalidParams{Param: "threshold_time", Value: p.Discriminator.ThresholdTime}
	case p.Discriminator.TimeWindow <= 0 || math.IsNaN(p.Discriminator.TimeWindow):
		return &ErrInvalidParams{Param: "time_window", Value: p.Discriminator.TimeWindow}
	case p.Discriminator.DeadTime < 0 || math.IsNaN(p.Discriminator.DeadTime):
		return &ErrInvalidParams{Param: "dead_time", Value: p.Discriminator.DeadTime}
	case p.Cluster.ClusterLength < 0:
		return &ErrInvalidParams{Param: "cluster_length", Value: p.Cluster.ClusterLength}
	case p.Cluster.DeltaTime <= 0 || math.IsNaN(p.Cluster.DeltaTime):
		return &ErrInvalidParams{Param: "delta_time", Value: p.Cluster.DeltaTime}
	case p.Match.DeltaTime <= 0 || math.IsNaN(p.Match.DeltaTime):
		return &ErrInvalidParams{Param: "delta_time", Value: p.Match.DeltaTime}
	case p.Match.Tolerance < 0 || math.IsNaN(p.Match.Tolerance):
		return &ErrInvalidParams{Param: "match_tolerance", Value: p.Match.Tolerance}
	case p.Match.SearchLimit < 0:
		return &ErrInvalidParams{Param: "search_limit", Value: p.Match.SearchLimit}
	case p.Position.RootTieTolerance < 0 || math.IsNaN(p.Position.RootTieTolerance):
		return &ErrInvalidParams{Param: "root_tie_tolerance", Value: p.Position.RootTieTolerance}
	}
	return nil
}
