package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lintang-b-s/offlinenav/docs"
	"github.com/lintang-b-s/offlinenav/pkg/config"
	"github.com/lintang-b-s/offlinenav/pkg/datastructure"
	"github.com/lintang-b-s/offlinenav/pkg/engine/routing"
	"github.com/lintang-b-s/offlinenav/pkg/geocoder"
	"github.com/lintang-b-s/offlinenav/pkg/kv"
	"github.com/lintang-b-s/offlinenav/pkg/logger"
	"github.com/lintang-b-s/offlinenav/pkg/server"
	"github.com/lintang-b-s/offlinenav/pkg/server/rest"
	"github.com/lintang-b-s/offlinenav/pkg/server/rest/service"
	"github.com/lintang-b-s/offlinenav/pkg/snap"
	"github.com/lintang-b-s/offlinenav/pkg/store"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

//	@title			offlinenav lintangbs API
//	@version		1.0
//	@description	offline openstreetmap routing, geocoding & tile server in go

//	@contact.name	lintang birda saputra
//	@description 	offline openstreetmap routing, geocoding & tile server in go. Dijkstra / A* over a csr road graph, r-tree snapping, sqlite address & mbtiles tables

//	@license.name	GNU Affero General Public License v3.0
//	@license.url	https://www.gnu.org/licenses/gpl-3.0.en.html

// @host		localhost:5000
// @BasePath	/api
// @schemes	http
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("loading road graph...", zap.String("file", cfg.GraphFile))
	graph, metadata, err := datastructure.LoadGraph(cfg.GraphFile)
	if err != nil {
		log.Fatal("cannot load road graph", zap.Error(err))
	}
	log.Info("road graph loaded", zap.Int("nodes", graph.NumNodes()), zap.Int("edges", graph.NumEdges()),
		zap.Int("components", graph.Components().Count()), zap.Bool("a*", graph.HeuristicSafe()))

	rt := datastructure.NewRtreeBulk(graph.RtreeEntries(), cfg.RtreeMinChild, cfg.RtreeMaxChild)
	routingEngine := routing.NewEngine(log, graph, snap.NewNodeSnapper(rt), cfg.MaxSettledNodes)

	badgerDB, err := kv.OpenBadger(cfg.KVDir)
	if err != nil {
		log.Fatal("cannot open key-value db", zap.Error(err))
	}
	kvDB := kv.NewKVDB(badgerDB, log, cfg.Workers)
	defer kvDB.Close()

	if err := syncEdgeMetadata(ctx, kvDB, metadata, log); err != nil {
		log.Fatal("cannot save edge metadata", zap.Error(err))
	}

	db, err := store.Open(ctx, cfg.DBPath, log)
	if err != nil {
		log.Fatal("cannot open address & tile db", zap.Error(err))
	}
	defer db.Close()

	addressStore := store.NewAddressStore(db, log, cfg.DefaultCity)
	tileStore, err := store.NewTileStore(db, log, cfg.TileCacheSize)
	if err != nil {
		log.Fatal("cannot create tile store", zap.Error(err))
	}

	gc, err := geocoder.NewGeocoder(ctx, log, addressStore)
	if err != nil {
		log.Fatal("cannot build reverse geocoder", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(rest.RequestLogger(log))
	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(rest.RequestTimeout(cfg.RequestTimeout))

	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), //The url pointing to API definition
	))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := db.Ping(req.Context()); err != nil {
			render.Render(w, req, rest.ErrorRenderer(server.WrapErrorf(err, server.ErrUnavailable, "address & tile db unavailable")))
			return
		}
		render.JSON(w, req, map[string]string{"status": "ok"})
	})

	navigatorSvc := service.NewNavigationService(log, routingEngine, kvDB, gc, cfg.Workers)
	geocodingSvc := service.NewGeocodingService(gc, addressStore)
	tileSvc := service.NewTileService(tileStore)

	rest.NavigatorRouter(r, navigatorSvc, m)
	rest.GeocodingRouter(r, geocodingSvc)
	rest.TileRouter(r, tileSvc)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info("shutting down server...", zap.String("signal", sig.String()))
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shut down", zap.Error(err))
	}
	log.Info("offlinenav server stopped")
}

// syncEdgeMetadata writes the metadata of a graphml/json graph into the kv db unless it already holds
// the same number of edges. native .graph files carry no metadata.
func syncEdgeMetadata(ctx context.Context, kvDB *kv.KVDB, metadata *datastructure.GraphMetadata, log *zap.Logger) error {
	if metadata.Len() == 0 {
		return nil
	}
	count, err := kvDB.EdgeCount()
	if err != nil {
		return err
	}
	if count == metadata.Len() {
		log.Info("edge metadata already in key-value db", zap.Int("edges", count))
		return nil
	}
	return kvDB.SaveEdgeMetadata(ctx, metadata.Edges)
}
