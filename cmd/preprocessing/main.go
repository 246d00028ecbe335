package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime/pprof"
	"sync"
	"syscall"

	"github.com/lintang-b-s/offlinenav/pkg/config"
	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
	"github.com/lintang-b-s/offlinenav/pkg/kv"
	"github.com/lintang-b-s/offlinenav/pkg/logger"
	"github.com/lintang-b-s/offlinenav/pkg/osmparser"
	"github.com/lintang-b-s/offlinenav/pkg/store"
	"go.uber.org/zap"
)

var (
	mapFile    = flag.String("f", "hyd.osm.pbf", "openstreetmap file (.osm.pbf or .osm) for the road network graph & addresses")
	outFile    = flag.String("out", "offlinenav.graph", "output road graph file")
	tileDir    = flag.String("tiledir", "", "optional {z}/{x}/{y} tile directory imported into the tiles table")
	simplify   = flag.Bool("simplify", false, "merge way nodes between junctions into one edge")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if *cpuprofile != "" {
		// https://go.dev/blog/pprof
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("cannot create cpu profile", zap.Error(err))
		}
		defer f.Close()

		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("preprocessing failed", zap.Error(err))
		return
	}
	log.Info("preprocessing done", zap.String("graph", *outFile))
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("reading osm file...", zap.String("file", *mapFile))
	osmParser := osmparser.NewOSMParser(log, cfg.DefaultCity, *simplify)
	result, err := osmParser.ParseFile(ctx, *mapFile)
	if err != nil {
		return err
	}

	// fail before writing anything when the parsed graph is not routable.
	if _, _, err := result.Graph.Build(); err != nil {
		return err
	}

	badgerDB, err := kv.OpenBadger(cfg.KVDir)
	if err != nil {
		return err
	}
	kvDB := kv.NewKVDB(badgerDB, log, cfg.Workers)
	defer kvDB.Close()

	db, err := store.Open(ctx, cfg.DBPath, log)
	if err != nil {
		return err
	}
	defer db.Close()

	var (
		wg       sync.WaitGroup
		kvErr    error
		dbErr    error
		graphErr error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		kvErr = kvDB.SaveEdgeMetadata(ctx, result.Graph.Metadata)
	}()
	go func() {
		defer wg.Done()
		log.Info("saving road graph to a file...", zap.String("file", *outFile))
		graphErr = datastructure.WriteGraphFile(*outFile, result.Graph)
	}()
	go func() {
		defer wg.Done()
		dbErr = importAddressesAndTiles(ctx, db, cfg, log, result.Addresses)
	}()
	wg.Wait()

	for _, err := range []error{graphErr, kvErr, dbErr} {
		if err != nil {
			return err
		}
	}
	return nil
}

func importAddressesAndTiles(ctx context.Context, db *store.DB, cfg *config.Config, log *zap.Logger,
	addresses []store.Address) error {
	addressStore := store.NewAddressStore(db, log, cfg.DefaultCity)
	n, err := addressStore.BulkUpsert(ctx, addresses)
	if err != nil {
		return err
	}
	log.Info("addresses imported", zap.Int("addresses", n))

	if *tileDir == "" {
		return nil
	}
	tileStore, err := store.NewTileStore(db, log, 0)
	if err != nil {
		return err
	}
	written, err := tileStore.ImportTileDir(ctx, *tileDir)
	if err != nil {
		return err
	}
	log.Info("tiles imported", zap.Int("tiles", written))
	return nil
}
