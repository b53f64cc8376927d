package hdf5io

import (
	"errors"
	"fmt"

	"github.com/jmbenlloch/go-hdf5"
	scifi "github.com/next-exp/scifi_go/pkg"
)

type Writer struct {
	File             *hdf5.File
	Filename         string
	RunGroup         *hdf5.Group
	SciFiGroup       *hdf5.Group
	ConfigGroup      *hdf5.Group
	EventTable       *table
	RunInfoTable     *table
	SpacePointsTable *table
	LayersTable      *table
	EvtCounter       int
}

func NewWriter(filename string, compressionLevel int) (*Writer, error) {
	writer := &Writer{Filename: filename}
	var err error
	if writer.File, err = createFile(filename); err != nil {
		return nil, err
	}
	// Whatever was created is released if a later step fails
	defer func() {
		if err != nil {
			writer.Close()
		}
	}()

	if writer.RunGroup, err = createGroup(writer.File, "Run"); err != nil {
		return nil, err
	}
	if writer.SciFiGroup, err = createGroup(writer.File, "SciFi"); err != nil {
		return nil, err
	}
	if writer.ConfigGroup, err = createGroup(writer.File, "Config"); err != nil {
		return nil, err
	}
	if writer.EventTable, err = newTable(writer.RunGroup, "events", EventDataHDF5{}, compressionLevel); err != nil {
		return nil, err
	}
	if writer.RunInfoTable, err = newTable(writer.RunGroup, "runInfo", RunInfoHDF5{}, compressionLevel); err != nil {
		return nil, err
	}
	if writer.SpacePointsTable, err = newTable(writer.SciFiGroup, "spacepoints", SpacePointHDF5{}, compressionLevel); err != nil {
		return nil, err
	}
	if writer.LayersTable, err = newTable(writer.ConfigGroup, "layers", LayerHDF5{}, compressionLevel); err != nil {
		return nil, err
	}
	return writer, nil
}

func (w *Writer) WriteRunInfo(runNumber int) error {
	return appendEntry(w.RunInfoTable, RunInfoHDF5{run_number: int32(runNumber)})
}

// WriteCatalog dumps the layer catalog used for the reconstruction.
func (w *Writer) WriteCatalog(catalog *scifi.Catalog) error {
	// The array MUST be allocated at creation, if not, HDF5 will panic
	layers := make([]LayerHDF5, len(catalog.Layers))
	for i, layer := range catalog.Layers {
		layers[i] = LayerHDF5{
			layer_id:      int32(layer.ID),
			group:         int32(catalog.GroupOf(layer.ID)),
			family:        convertToHdf5String(layer.Family.String()),
			radius:        layer.Radius,
			pitch:         layer.Pitch,
			first_channel: layer.FirstChannel,
			last_channel:  layer.LastChannel,
			is_second:     boolToUint8(layer.IsSecond),
		}
	}
	return appendArray(w.LayersTable, layers)
}

func (w *Writer) WriteEvent(event *scifi.Event) error {
	evtData := EventDataHDF5{
		evt_number:    event.ID,
		n_pulses:      int32(len(event.Pulses)),
		n_clusters:    int32(len(event.Clusters)),
		n_hitgroups:   int32(len(event.HitGroups)),
		n_spacepoints: int32(len(event.SpacePoints)),
	}
	if err := appendEntry(w.EventTable, evtData); err != nil {
		return err
	}

	points := make([]SpacePointHDF5, len(event.SpacePoints))
	for i, p := range event.SpacePoints {
		points[i] = SpacePointHDF5{
			evt_id:    p.EventID,
			group:     int32(p.Group),
			families:  uint8(p.Families),
			ambiguous: boolToUint8(p.Ambiguous),
			t:         p.Time,
			x:         p.Position.X,
			y:         p.Position.Y,
			z:         p.Position.Z,
		}
	}
	if err := appendArray(w.SpacePointsTable, points); err != nil {
		return err
	}
	w.EvtCounter++
	return nil
}

func (w *Writer) Close() error {
	var errs []error

	for _, t := range []*table{w.EventTable, w.RunInfoTable, w.SpacePointsTable, w.LayersTable} {
		if t == nil {
			continue
		}
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if w.RunGroup != nil {
		if err := w.RunGroup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing run group: %w", err))
		}
	}
	if w.SciFiGroup != nil {
		if err := w.SciFiGroup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing SciFi group: %w", err))
		}
	}
	if w.ConfigGroup != nil {
		if err := w.ConfigGroup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing config group: %w", err))
		}
	}
	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
