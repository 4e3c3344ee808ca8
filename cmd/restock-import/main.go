// Command restock-import loads a consumption workbook into the store
// without starting the server.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"restock/internal/config"
	"restock/internal/importer"
	"restock/internal/logger"
	"restock/internal/parser"
	"restock/internal/service/calendar"
	"restock/internal/store"
)

func main() {
	var (
		file    = flag.String("file", "", "xlsx workbook to import")
		year    = flag.Int("year", 0, "ISO year the ratios belong to (default: current)")
		week    = flag.Int("week", 0, "ISO week the ratios belong to (default: current)")
		dataDir = flag.String("dataDir", "", "data directory (overrides the config file)")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: restock-import -file conso.xlsx [-year 2024 -week 51]")
		os.Exit(2)
	}
	if *year == 0 || *week == 0 {
		*year, *week = calendar.CurrentWeek(time.Now())
	}

	cfg, _, err := config.LoadConfigWithInfo()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stderr"})

	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Error("failed to prepare data directory", "error", err)
		os.Exit(1)
	}

	var st *store.Store
	if dsn := cfg.Database.DSN; dsn == "" {
		st, err = store.New(filepath.Join(dir, "restock.db"))
	} else {
		st, err = store.Open(cfg.Database.Driver, dsn)
	}
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer func() { _ = st.Close() }()

	coord := importer.NewCoordinator(st, parser.Columns{
		DestinationCode: cfg.Import.DestinationCodeColumn,
		Reference:       cfg.Import.ReferenceColumn,
		Name:            cfg.Import.NameColumn,
		StockUnit:       cfg.Import.StockUnitColumn,
		Consumption:     cfg.Import.ConsumptionColumn,
	}, log)

	failed := false
	for evt := range coord.Import(importer.ImportOptions{
		FilePath: *file,
		Filename: filepath.Base(*file),
		Year:     *year,
		Week:     *week,
	}) {
		fmt.Printf("[%s] %s\n", evt.Type, evt.Message)
		if evt.Type == importer.EventError {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}
