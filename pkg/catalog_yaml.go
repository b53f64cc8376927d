package scifi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Description is the SciFiTracker section of a detector description file.
// Key names follow the simulation description so the same file can be used.
type Description struct {
	FiberLength        float64   `yaml:"FiberLength"`
	LayerNumber        int       `yaml:"LayerNumber"`
	LayerType          []string  `yaml:"LayerType"`
	LayerRadius        []float64 `yaml:"LayerRadius"`
	FiberNumberALayer  []int     `yaml:"FiberNumberALayer"`
	LayerPitch         []float64 `yaml:"LayerPitch,omitempty"`
	IsSecond           []bool    `yaml:"IsSecond,omitempty"`
	CombinationOfLayer [][]int   `yaml:"CombinationOfLayer"`

	SiPMOpticalPhotonCountThreshold *int     `yaml:"SiPMOpticalPhotonCountThreshold,omitempty"`
	ClusterLength                   *int     `yaml:"ClusterLength,omitempty"`
	SiPMOptPhoThresholdTime         *float64 `yaml:"SiPMOptPhoThresholdTime,omitempty"`
	SiPMTimeWindow                  *float64 `yaml:"SiPMTimeWindow,omitempty"`
	SiPMDeadTime                    *float64 `yaml:"SiPMDeadTime,omitempty"`
}

type descriptionFile struct {
	SciFiTracker *Description `yaml:"SciFiTracker"`
}

func DefaultDescription() Description {
	types := make([]string, len(defaultLayerTypes))
	for i, f := range defaultLayerTypes {
		types[i] = f.String()
	}
	groups := make([][]int, len(defaultGroups))
	for i, g := range defaultGroups {
		groups[i] = append([]int(nil), g...)
	}
	return Description{
		FiberLength:        defaultFiberLength,
		LayerNumber:        len(defaultLayerTypes),
		LayerType:          types,
		LayerRadius:        append([]float64(nil), defaultLayerRadius...),
		FiberNumberALayer:  append([]int(nil), defaultFibersPerLayer...),
		CombinationOfLayer: groups,
	}
}

func LoadDescription(filename string) (Description, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Description{}, &ErrOpenFile{Filename: filename, Err: err}
	}
	return ParseDescription(data)
}

// ParseDescription accepts either a document with a SciFiTracker section or
// the bare section.
func ParseDescription(data []byte) (Description, error) {
	var file descriptionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Description{}, fmt.Errorf("error parsing detector description: %w", err)
	}
	if file.SciFiTracker != nil {
		return *file.SciFiTracker, nil
	}
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Description{}, fmt.Errorf("error parsing detector description: %w", err)
	}
	return d, nil
}

func (d Description) Marshal() ([]byte, error) {
	return yaml.Marshal(descriptionFile{SciFiTracker: &d})
}

func (d Description) Catalog() (*Catalog, error) {
	if d.LayerNumber != len(d.LayerType) {
		return nil, invalidCatalog("LayerNumber is %d but %d layer types are given", d.LayerNumber, len(d.LayerType))
	}
	families := make([]Family, len(d.LayerType))
	for i, s := range d.LayerType {
		f, err := ParseFamily(s)
		if err != nil {
			return nil, invalidCatalog("layer %d: %v", i, err)
		}
		families[i] = f
	}
	layers, err := BuildLayers(families, d.LayerRadius, d.FiberNumberALayer, d.IsSecond)
	if err != nil {
		return nil, err
	}
	if d.LayerPitch != nil {
		if len(d.LayerPitch) != len(layers) {
			return nil, invalidCatalog("LayerPitch has %d entries for %d layers", len(d.LayerPitch), len(layers))
		}
		for i := range layers {
			layers[i].Pitch = d.LayerPitch[i]
		}
	}
	return NewCatalog(d.FiberLength, layers, d.CombinationOfLayer)
}

// ApplyTo overrides the reconstruction parameters present in the description.
func (d Description) ApplyTo(p *Params) {
	if d.SiPMOpticalPhotonCountThreshold != nil {
		p.Discriminator.Threshold = *d.SiPMOpticalPhotonCountThreshold
	}
	if d.ClusterLength != nil {
		p.Cluster.ClusterLength = *d.ClusterLength
	}
	if d.SiPMOptPhoThresholdTime != nil {
		p.Discriminator.ThresholdTime = *d.SiPMOptPhoThresholdTime
	}
	if d.SiPMTimeWindow != nil {
		p.Discriminator.TimeWindow = *d.SiPMTimeWindow
	}
	if d.SiPMDeadTime != nil {
		p.Discriminator.DeadTime = *d.SiPMDeadTime
	}
}
