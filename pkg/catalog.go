package scifi

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type Family int

const (
	LeftHelical Family = iota
	RightHelical
	Transverse
)

const NumFamilies = 3

var familyStrings = []string{
	"LHelical",
	"RHelical",
	"Transverse",
}

func (f Family) String() string {
	if f < LeftHelical || f > Transverse {
		return "Unknown"
	}
	return familyStrings[f]
}

// Sign is the direction in which the azimuth advances with z along a fiber
// of this family.
func (f Family) Sign() float64 {
	switch f {
	case LeftHelical:
		return 1
	case RightHelical:
		return -1
	default:
		return 0
	}
}

func (f Family) IsHelical() bool {
	return f == LeftHelical || f == RightHelical
}

func ParseFamily(s string) (Family, error) {
	for i, v := range familyStrings {
		if strings.EqualFold(v, s) {
			return Family(i), nil
		}
	}
	switch strings.ToLower(s) {
	case "lefthelical", "left":
		return LeftHelical, nil
	case "righthelical", "right":
		return RightHelical, nil
	}
	return 0, fmt.Errorf("unknown fiber family: %q", s)
}

// FamilySet is a bit set of fiber families.
type FamilySet uint8

func (s FamilySet) Has(f Family) bool {
	return s&(1<<uint(f)) != 0
}

func (s FamilySet) With(f Family) FamilySet {
	return s | 1<<uint(f)
}

func (s FamilySet) Len() int {
	n := 0
	for f := LeftHelical; f <= Transverse; f++ {
		if s.Has(f) {
			n++
		}
	}
	return n
}

func (s FamilySet) String() string {
	names := make([]string, 0, NumFamilies)
	for f := LeftHelical; f <= Transverse; f++ {
		if s.Has(f) {
			names = append(names, f.String())
		}
	}
	return strings.Join(names, "+")
}

type FiberLayer struct {
	ID     int
	Family Family
	Radius float64
	// Pitch is the signed winding angle in radians: positive for left
	// helical layers, negative for right helical ones, zero for transverse.
	Pitch        float64
	FirstChannel int32
	LastChannel  int32
	// IsSecond layers are rotated by half a fiber width.
	IsSecond bool
}

func (l *FiberLayer) NChannels() int {
	return int(l.LastChannel-l.FirstChannel) + 1
}

func (l *FiberLayer) Contains(channelID int32) bool {
	return channelID >= l.FirstChannel && channelID <= l.LastChannel
}

func (l *FiberLayer) LocalOffset(channelID int32) int {
	return int(channelID - l.FirstChannel)
}

func (l *FiberLayer) LocalCoordinate(channelID int32) float64 {
	local := float64(l.LocalOffset(channelID))
	if l.IsSecond {
		local += 0.5
	}
	return local
}

// Fraction maps a channel to its azimuthal fraction of one revolution.
func (l *FiberLayer) Fraction(channelID int32) float64 {
	return mod1(l.LocalCoordinate(channelID) / float64(l.NChannels()))
}

// Lead is the axial advance of one full helical turn.
func (l *FiberLayer) Lead() float64 {
	if !l.Family.IsHelical() {
		return 0
	}
	return 2 * math.Pi * l.Radius * math.Tan(math.Abs(l.Pitch))
}

type ReconstructionGroup struct {
	ID     int
	Layers []int
	// Radius is the mean radius of the member layers.
	Radius float64
	// Lead is shared by every helical layer of the group.
	Lead     float64
	Families FamilySet
}

// Catalog is the immutable description of the tracker layers. It is built
// once with NewCatalog and shared read-only by every event.
type Catalog struct {
	FiberLength float64
	Layers      []FiberLayer
	Groups      []ReconstructionGroup

	firstChannels []int32
	groupOfLayer  []int
}

const leadTolerance = 1e-6

func NewCatalog(fiberLength float64, layers []FiberLayer, groups [][]int) (*Catalog, error) {
	if len(layers) == 0 {
		return nil, invalidCatalog("no layers")
	}
	if len(groups) == 0 {
		return nil, invalidCatalog("no reconstruction groups")
	}

	c := &Catalog{
		FiberLength:   fiberLength,
		Layers:        make([]FiberLayer, len(layers)),
		Groups:        make([]ReconstructionGroup, len(groups)),
		firstChannels: make([]int32, len(layers)),
		groupOfLayer:  make([]int, len(layers)),
	}
	copy(c.Layers, layers)

	for i := range c.Layers {
		layer := &c.Layers[i]
		if layer.ID != i {
			return nil, invalidCatalog("layer at position %d has ID %d", i, layer.ID)
		}
		if layer.Family < LeftHelical || layer.Family > Transverse {
			return nil, invalidCatalog("layer %d has unknown family %d", i, layer.Family)
		}
		if layer.Radius <= 0 {
			return nil, invalidCatalog("layer %d has non-positive radius %v", i, layer.Radius)
		}
		if layer.LastChannel < layer.FirstChannel {
			return nil, invalidCatalog("layer %d has empty channel range [%d, %d]",
				i, layer.FirstChannel, layer.LastChannel)
		}
		if i > 0 && layer.FirstChannel <= c.Layers[i-1].LastChannel {
			return nil, invalidCatalog("layer %d channel range overlaps or precedes layer %d", i, i-1)
		}
		switch {
		case layer.Family.IsHelical() && layer.Pitch == 0:
			if fiberLength <= 0 {
				return nil, invalidCatalog("helical layer %d has no pitch and no fiber length", i)
			}
			layer.Pitch = layer.Family.Sign() * math.Atan(fiberLength/(2*math.Pi*layer.Radius))
		case layer.Family.IsHelical() && math.Signbit(layer.Pitch) != (layer.Family == RightHelical):
			return nil, invalidCatalog("layer %d pitch %v has the wrong sign for %v", i, layer.Pitch, layer.Family)
		case layer.Family == Transverse && layer.Pitch != 0:
			return nil, invalidCatalog("transverse layer %d has pitch %v", i, layer.Pitch)
		}
		c.firstChannels[i] = layer.FirstChannel
		c.groupOfLayer[i] = -1
	}

	for g, members := range groups {
		if len(members) == 0 {
			return nil, invalidCatalog("group %d is empty", g)
		}
		group := ReconstructionGroup{ID: g, Layers: append([]int(nil), members...)}
		for _, id := range members {
			if id < 0 || id >= len(c.Layers) {
				return nil, invalidCatalog("group %d references unknown layer %d", g, id)
			}
			if c.groupOfLayer[id] != -1 {
				return nil, invalidCatalog("layer %d belongs to groups %d and %d", id, c.groupOfLayer[id], g)
			}
			c.groupOfLayer[id] = g
			layer := &c.Layers[id]
			group.Radius += layer.Radius
			group.Families = group.Families.With(layer.Family)
			if layer.Family.IsHelical() {
				lead := layer.Lead()
				if group.Lead == 0 {
					group.Lead = lead
				} else if math.Abs(lead-group.Lead) > leadTolerance*group.Lead {
					return nil, invalidCatalog("group %d mixes helical leads %v and %v", g, group.Lead, lead)
				}
			}
		}
		group.Radius /= float64(len(members))
		c.Groups[g] = group
	}

	for id, g := range c.groupOfLayer {
		if g == -1 {
			return nil, invalidCatalog("layer %d is not in any reconstruction group", id)
		}
	}
	return c, nil
}

// LayerOf returns the layer owning the channel.
func (c *Catalog) LayerOf(channelID int32) (*FiberLayer, error) {
	i := sort.Search(len(c.firstChannels), func(i int) bool {
		return c.firstChannels[i] > channelID
	}) - 1
	if i < 0 || !c.Layers[i].Contains(channelID) {
		return nil, &ErrUnknownChannel{ChannelID: channelID}
	}
	return &c.Layers[i], nil
}

func (c *Catalog) GroupOf(layerID int) int {
	return c.groupOfLayer[layerID]
}

// Group panics on an unknown ID: groups are only ever referenced through
// layers of a validated catalog.
func (c *Catalog) Group(id int) *ReconstructionGroup {
	if id < 0 || id >= len(c.Groups) {
		panic(fmt.Sprintf("reconstruction group %d does not exist", id))
	}
	return &c.Groups[id]
}

func (c *Catalog) NChannels() int {
	n := 0
	for i := range c.Layers {
		n += c.Layers[i].NChannels()
	}
	return n
}

// Default detector description of the phase-I tracker.
var (
	defaultFiberLength = 325.4
	defaultLayerTypes  = []Family{
		Transverse, Transverse, LeftHelical, LeftHelical, Transverse, Transverse, RightHelical, RightHelical,
		Transverse, Transverse, LeftHelical, LeftHelical, Transverse, Transverse, RightHelical, RightHelical,
	}
	defaultLayerRadius = []float64{
		45, 46.8, 48.6, 50.4, 52.2, 54, 55.8, 57.6,
		59.4, 61.2, 63, 64.8, 66.6, 68.4, 70.2, 72,
	}
	defaultFibersPerLayer = []int{
		140, 140, 120, 120, 160, 160, 120, 120,
		180, 180, 140, 140, 180, 180, 140, 140,
	}
	defaultGroups = [][]int{
		{0, 1, 2, 3, 4, 5, 6, 7},
		{8, 9, 10, 11, 12, 13, 14, 15},
	}
)

// BuildLayers numbers the channels of consecutive layers contiguously from
// zero. Pitch is left at zero so NewCatalog derives it from the fiber length.
func BuildLayers(families []Family, radius []float64, fibers []int, isSecond []bool) ([]FiberLayer, error) {
	if len(radius) != len(families) || len(fibers) != len(families) {
		return nil, invalidCatalog("layer tables have different lengths: %d types, %d radii, %d fiber counts",
			len(families), len(radius), len(fibers))
	}
	if isSecond != nil && len(isSecond) != len(families) {
		return nil, invalidCatalog("IsSecond has %d entries for %d layers", len(isSecond), len(families))
	}
	layers := make([]FiberLayer, len(families))
	var current int32
	for i := range families {
		if fibers[i] <= 0 {
			return nil, invalidCatalog("layer %d has %d fibers", i, fibers[i])
		}
		second := i%2 == 1
		if isSecond != nil {
			second = isSecond[i]
		}
		layers[i] = FiberLayer{
			ID:           i,
			Family:       families[i],
			Radius:       radius[i],
			FirstChannel: current,
			LastChannel:  current + int32(fibers[i]) - 1,
			IsSecond:     second,
		}
		current += int32(fibers[i])
	}
	return layers, nil
}

func DefaultCatalog() *Catalog {
	layers, err := BuildLayers(defaultLayerTypes, defaultLayerRadius, defaultFibersPerLayer, nil)
	if err != nil {
		panic(err)
	}
	catalog, err := NewCatalog(defaultFiberLength, layers, defaultGroups)
	if err != nil {
		panic(err)
	}
	return catalog
}
