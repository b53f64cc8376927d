package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	sqlx "github.com/jmoiron/sqlx"
	scifi "github.com/next-exp/scifi_go/pkg"
	"github.com/next-exp/scifi_go/pkg/hdf5io"
	_ "modernc.org/sqlite"
)

var configuration scifi.Configuration

var (
	logger         Logger
	VerbosityLevel int
	DiscardErrors  bool
)

func init() {
	logger = NewLogger(os.Stdout, os.Stderr)
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	if err := run(*configFilename); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(configFilename string) error {
	var err error
	configuration, err = LoadConfiguration(configFilename)
	if err != nil {
		return fmt.Errorf("error reading configuration file: %w", err)
	}
	scifi.SetLogger(logger)
	scifi.SetVerbosity(configuration.Verbosity)

	VerbosityLevel = configuration.Verbosity
	DiscardErrors = configuration.Discard
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	params := configuration.Params()
	catalog, err := loadCatalog(configuration, &params)
	if err != nil {
		return fmt.Errorf("error loading layer catalog: %w", err)
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Layer catalog: %d layers, %d groups, %d channels",
			len(catalog.Layers), len(catalog.Groups), catalog.NChannels())
		logger.Info(message, "main")
	}

	reco, err := scifi.NewReconstructor(catalog, params)
	if err != nil {
		return err
	}

	start := time.Now()
	raw, err := hdf5io.ReadRawPulses(configuration.FileIn)
	if err != nil {
		return err
	}
	events := scifi.GroupByEvent(raw)
	evtsToRead := numberOfEventsToProcess(len(events), configuration.Skip, configuration.MaxEvents)
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of events: %d, to process: %d", len(events), evtsToRead)
		logger.Info(message, "main")
	}

	var writer *hdf5io.Writer
	if configuration.WriteData {
		writer, err = hdf5io.NewWriter(configuration.FileOut, configuration.CompressionLevel)
		if err != nil {
			return err
		}
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error(err.Error())
			}
		}()
		if err := writer.WriteRunInfo(configuration.RunNumber); err != nil {
			return err
		}
		if err := writer.WriteCatalog(catalog); err != nil {
			return err
		}
	}

	reader := NewEventReader(events, configuration.Skip, configuration.MaxEvents)
	written, err := runWorkers(context.Background(), reco, reader, writer, configuration.NumWorkers)
	if err != nil {
		return err
	}

	duration := time.Since(start)
	message := fmt.Sprintf("Events processed: %d/%d in %d ms", written, evtsToRead, duration.Milliseconds())
	logger.Info(message, "main")
	return nil
}

// loadCatalog builds the layer catalog from the configured source. A YAML
// description may also override the reconstruction parameters.
func loadCatalog(config scifi.Configuration, params *scifi.Params) (*scifi.Catalog, error) {
	switch config.CatalogSource {
	case scifi.CatalogDefault, "":
		return scifi.DefaultCatalog(), nil

	case scifi.CatalogYAML:
		description, err := scifi.LoadDescription(config.CatalogFile)
		if err != nil {
			return nil, err
		}
		description.ApplyTo(params)
		return description.Catalog()

	case scifi.CatalogDatabase:
		dbConn, err := connectDatabase(config)
		if err != nil {
			return nil, fmt.Errorf("error connecting to database: %w", err)
		}
		defer dbConn.Close()
		return scifi.LoadCatalogFromDB(dbConn, config.RunNumber)
	}
	return nil, fmt.Errorf("unknown catalog source %q", config.CatalogSource)
}

func connectDatabase(config scifi.Configuration) (*sqlx.DB, error) {
	if config.DBDriver == "mysql" && config.DSN == "" {
		return scifi.ConnectToDatabase(config.User, config.Passwd, config.Host, config.DBName)
	}
	return scifi.OpenDatabase(config.DBDriver, config.DSN)
}
