package main

import (
	"encoding/json"
	"fmt"
	"os"

	scifi "github.com/next-exp/scifi_go/pkg"
)

func LoadConfiguration(filename string) (scifi.Configuration, error) {
	var config scifi.Configuration

	// Set default values
	params := scifi.DefaultParams()
	config.MaxEvents = 1000000000
	config.Verbosity = 0
	config.Skip = 0
	config.CatalogSource = scifi.CatalogDefault
	config.DBDriver = "mysql"
	config.Host = "next.ific.uv.es"
	config.User = "nextreader"
	config.Passwd = "readonly"
	config.DBName = "NEXT100"
	config.NumWorkers = 1
	config.ParallelChannels = false
	config.Discard = true
	config.WriteData = true
	config.CompressionLevel = 4
	config.Threshold = params.Discriminator.Threshold
	config.ThresholdTime = params.Discriminator.ThresholdTime
	config.TimeWindow = params.Discriminator.TimeWindow
	config.DeadTime = params.Discriminator.DeadTime
	config.ClusterLength = params.Cluster.ClusterLength
	config.DeltaTime = params.Match.DeltaTime
	config.MatchTolerance = params.Match.Tolerance
	config.RootTieTolerance = params.Position.RootTieTolerance
	config.SearchLimit = params.Match.SearchLimit

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config scifi.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Catalog source: %s", config.CatalogSource), "config")
	logger.Info(fmt.Sprintf("Catalog file: %s", config.CatalogFile), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("DB driver: %s", config.DBDriver), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Discard: %t", config.Discard), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Parallel channels: %t", config.ParallelChannels), "config")
	logger.Info(fmt.Sprintf("Threshold: %d", config.Threshold), "config")
	logger.Info(fmt.Sprintf("Threshold time: %g", config.ThresholdTime), "config")
	logger.Info(fmt.Sprintf("Time window: %g", config.TimeWindow), "config")
	logger.Info(fmt.Sprintf("Dead time: %g", config.DeadTime), "config")
	logger.Info(fmt.Sprintf("Cluster length: %d", config.ClusterLength), "config")
	logger.Info(fmt.Sprintf("Delta time: %g", config.DeltaTime), "config")
	logger.Info(fmt.Sprintf("Match tolerance: %g", config.MatchTolerance), "config")
	logger.Info(fmt.Sprintf("Root tie tolerance: %g", config.RootTieTolerance), "config")
	logger.Info(fmt.Sprintf("Search limit: %d", config.SearchLimit), "config")
}
