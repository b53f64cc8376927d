package hdf5io

import (
	"errors"
	"fmt"

	"github.com/jmbenlloch/go-hdf5"
	scifi "github.com/next-exp/scifi_go/pkg"
)

// ReadRawPulses loads the whole raw hit table of a simulation file.
func ReadRawPulses(filename string) ([]scifi.RawPulse, error) {
	file, err := hdf5.OpenFile(filename, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &scifi.ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	rows, err := readTable[RawHitHDF5](file, rawHitsPath)
	if err != nil {
		return nil, err
	}
	pulses := make([]scifi.RawPulse, len(rows))
	for i, row := range rows {
		pulses[i] = scifi.RawPulse{
			EventID:   row.evt_id,
			ChannelID: row.sipm_id,
			Time:      row.t,
		}
	}
	return pulses, nil
}

// WriteRawPulses stores pulses in the layout read by ReadRawPulses.
func WriteRawPulses(filename string, pulses []scifi.RawPulse, compressionLevel int) (err error) {
	file, err := createFile(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("error closing file: %w", cerr))
		}
	}()

	group, err := createGroup(file, "SciFi")
	if err != nil {
		return err
	}
	defer group.Close()

	hits, err := newTable(group, "rawhits", RawHitHDF5{}, compressionLevel)
	if err != nil {
		return err
	}
	defer hits.Close()

	rows := make([]RawHitHDF5, len(pulses))
	for i, p := range pulses {
		rows[i] = RawHitHDF5{evt_id: p.EventID, sipm_id: p.ChannelID, t: p.Time}
	}
	return appendArray(hits, rows)
}

// ReadSpacePoints loads the reconstructed space points of an output file.
func ReadSpacePoints(filename string) ([]scifi.SpacePoint, error) {
	file, err := hdf5.OpenFile(filename, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &scifi.ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	rows, err := readTable[SpacePointHDF5](file, "/SciFi/spacepoints")
	if err != nil {
		return nil, err
	}
	points := make([]scifi.SpacePoint, len(rows))
	for i, row := range rows {
		points[i] = scifi.SpacePoint{
			EventID:   row.evt_id,
			Time:      row.t,
			Group:     int(row.group),
			Families:  scifi.FamilySet(row.families),
			Ambiguous: row.ambiguous != 0,
		}
		points[i].Position.X = row.x
		points[i].Position.Y = row.y
		points[i].Position.Z = row.z
	}
	return points, nil
}
