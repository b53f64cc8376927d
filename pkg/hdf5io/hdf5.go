package hdf5io

import (
	"fmt"

	"github.com/jmbenlloch/go-hdf5"
	scifi "github.com/next-exp/scifi_go/pkg"
)

type RawHitHDF5 struct {
	evt_id  int32
	sipm_id int32
	t       float64
}

type EventDataHDF5 struct {
	evt_number    int32
	n_pulses      int32
	n_clusters    int32
	n_hitgroups   int32
	n_spacepoints int32
}

type RunInfoHDF5 struct {
	run_number int32
}

// Booleans are stored as uint8, HDF5 compound types have no bool.
type SpacePointHDF5 struct {
	evt_id    int32
	group     int32
	families  uint8
	ambiguous uint8
	t         float64
	x         float64
	y         float64
	z         float64
}

type LayerHDF5 struct {
	layer_id      int32
	group         int32
	family        [STRLEN]byte
	radius        float64
	pitch         float64
	first_channel int32
	last_channel  int32
	is_second     uint8
}

const STRLEN = 20

const (
	rawHitsPath = "/SciFi/rawhits"
	chunkSize   = 32768
)

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func createFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &scifi.ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &scifi.ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

func createTable(group *hdf5.Group, name string, datatype interface{}, compressionLevel int) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &scifi.ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &scifi.ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	chunks := []uint{chunkSize}
	plist.SetChunk(chunks)
	if compressionLevel > 0 {
		plist.SetDeflate(compressionLevel)
	}

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &scifi.ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &scifi.ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

// table is an extendable one-dimensional compound dataset together with the
// number of rows already written.
type table struct {
	name string
	dset *hdf5.Dataset
	rows int
}

func newTable(group *hdf5.Group, name string, datatype interface{}, compressionLevel int) (*table, error) {
	dset, err := createTable(group, name, datatype, compressionLevel)
	if err != nil {
		return nil, err
	}
	return &table{name: name, dset: dset}, nil
}

func (t *table) Close() error {
	if err := t.dset.Close(); err != nil {
		return fmt.Errorf("error closing %s table: %w", t.name, err)
	}
	return nil
}

func appendEntry[T any](t *table, data T) error {
	array := []T{data}
	return appendArray(t, array)
}

func appendArray[T any](t *table, data []T) error {
	if len(data) == 0 {
		return nil
	}
	length := uint(len(data))
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return fmt.Errorf("error creating dataspace for %s: %w", t.name, err)
	}
	defer dataspace.Close()

	// extend
	rowsInFile := uint(t.rows)
	newsize := []uint{rowsInFile + length}
	if err := t.dset.Resize(newsize); err != nil {
		return fmt.Errorf("error extending %s: %w", t.name, err)
	}
	filespace := t.dset.Space()
	defer filespace.Close()

	start := []uint{rowsInFile}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return fmt.Errorf("error selecting rows of %s: %w", t.name, err)
	}

	if err := t.dset.WriteSubset(&data, dataspace, filespace); err != nil {
		return fmt.Errorf("error writing %s: %w", t.name, err)
	}
	t.rows += len(data)
	return nil
}

func readTable[T any](file *hdf5.File, path string) ([]T, error) {
	dset, err := file.OpenDataset(path)
	if err != nil {
		return nil, fmt.Errorf("error opening dataset %s: %w", path, err)
	}
	defer dset.Close()

	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, fmt.Errorf("error reading size of %s: %w", path, err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("dataset %s has %d dimensions, expected a table", path, len(dims))
	}

	// The slice MUST have its final length before reading
	data := make([]T, dims[0])
	if len(data) == 0 {
		return data, nil
	}
	if err := dset.Read(&data); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return data, nil
}
