package scifi

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// OpenDatabase connects with an explicit driver and DSN, for example a
// local sqlite copy of the run database.
func OpenDatabase(driver string, dsn string) (*sqlx.DB, error) {
	return sqlx.Connect(driver, dsn)
}

type LayerEntry struct {
	LayerID      int     `db:"LayerID"`
	LayerType    string  `db:"LayerType"`
	Radius       float64 `db:"Radius"`
	Pitch        float64 `db:"Pitch"`
	FirstChannel int32   `db:"FirstChannel"`
	LastChannel  int32   `db:"LastChannel"`
	IsSecond     bool    `db:"IsSecond"`
}

type GroupEntry struct {
	GroupID int `db:"GroupID"`
	LayerID int `db:"LayerID"`
}

const (
	layersQuery = "SELECT LayerID, LayerType, Radius, Pitch, FirstChannel, LastChannel, IsSecond " +
		"FROM SciFiLayers WHERE MinRun <= ? and MaxRun >= ? ORDER BY LayerID"
	groupsQuery = "SELECT GroupID, LayerID FROM SciFiGroups WHERE MinRun <= ? and MaxRun >= ? ORDER BY GroupID, LayerID"
)

// LoadCatalogFromDB reads the layer catalog valid for a run. Pitches are
// taken from the database as stored.
func LoadCatalogFromDB(db *sqlx.DB, runNumber int) (*Catalog, error) {
	if verbosity > 0 {
		message := fmt.Sprintf("Reading SciFi layer catalog for run %d from database", runNumber)
		logger.Info(message, "database")
	}

	layers, err := getLayersFromDB(db, runNumber)
	if err != nil {
		return nil, err
	}
	groups, err := getGroupsFromDB(db, runNumber)
	if err != nil {
		return nil, err
	}
	return NewCatalog(0, layers, groups)
}

func getLayersFromDB(db *sqlx.DB, runNumber int) ([]FiberLayer, error) {
	if verbosity > 2 {
		message := fmt.Sprintf("Query: %s", layersQuery)
		logger.Info(message, "database")
	}
	rows, err := db.Queryx(db.Rebind(layersQuery), runNumber, runNumber)
	if err != nil {
		return nil, &ErrQueryDatabase{Table: "SciFiLayers", Err: err}
	}
	defer rows.Close()

	layers := make([]FiberLayer, 0)
	for rows.Next() {
		result := LayerEntry{}
		if err := rows.StructScan(&result); err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, &ErrQueryDatabase{Table: "SciFiLayers", Err: errMessage}
		}
		family, err := ParseFamily(result.LayerType)
		if err != nil {
			return nil, invalidCatalog("layer %d: %v", result.LayerID, err)
		}
		layers = append(layers, FiberLayer{
			ID:           result.LayerID,
			Family:       family,
			Radius:       result.Radius,
			Pitch:        result.Pitch,
			FirstChannel: result.FirstChannel,
			LastChannel:  result.LastChannel,
			IsSecond:     result.IsSecond,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &ErrQueryDatabase{Table: "SciFiLayers", Err: err}
	}
	return layers, nil
}

func getGroupsFromDB(db *sqlx.DB, runNumber int) ([][]int, error) {
	if verbosity > 2 {
		message := fmt.Sprintf("Query: %s", groupsQuery)
		logger.Info(message, "database")
	}
	rows, err := db.Queryx(db.Rebind(groupsQuery), runNumber, runNumber)
	if err != nil {
		return nil, &ErrQueryDatabase{Table: "SciFiGroups", Err: err}
	}
	defer rows.Close()

	groups := make([][]int, 0)
	for rows.Next() {
		result := GroupEntry{}
		if err := rows.StructScan(&result); err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, &ErrQueryDatabase{Table: "SciFiGroups", Err: errMessage}
		}
		if result.GroupID != len(groups)-1 {
			if result.GroupID != len(groups) {
				return nil, invalidCatalog("group IDs are not consecutive: got %d after %d", result.GroupID, len(groups)-1)
			}
			groups = append(groups, nil)
		}
		groups[result.GroupID] = append(groups[result.GroupID], result.LayerID)
	}
	if err := rows.Err(); err != nil {
		return nil, &ErrQueryDatabase{Table: "SciFiGroups", Err: err}
	}
	return groups, nil
}
