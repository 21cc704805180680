// ccsd - Cluster Configuration Service Daemon
//
// ccsd loads a node's cluster.conf, applies the logging policy it carries,
// records every installed version locally and announces it to the other
// nodes over MQTT so that a node left behind knows an update is required.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/nerrad567/ccsd/migrations"

	"github.com/nerrad567/ccsd/internal/api"
	"github.com/nerrad567/ccsd/internal/clusterconf"
	"github.com/nerrad567/ccsd/internal/daemon"
	"github.com/nerrad567/ccsd/internal/history"
	"github.com/nerrad567/ccsd/internal/infrastructure/config"
	"github.com/nerrad567/ccsd/internal/infrastructure/database"
	"github.com/nerrad567/ccsd/internal/infrastructure/influxdb"
	"github.com/nerrad567/ccsd/internal/infrastructure/logging"
	"github.com/nerrad567/ccsd/internal/infrastructure/metrics"
	"github.com/nerrad567/ccsd/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/ccsd.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting ccsd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	sys := log.System()
	policy := clusterconf.LoggingPolicy{
		Subsystem:       logging.DefaultSubsystem,
		DefaultFacility: logging.DefaultFacility,
		DefaultPriority: logging.DefaultPriority,
	}
	if cfg.Debug {
		sys.SetPriority(logging.PriorityDebug)
		policy.Debug = true
	}
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
		"debug", cfg.Debug,
	)
	ccsLog := log.Subsystem(logging.DefaultSubsystem)

	// Database
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	state := daemon.NewState()
	collector := metrics.NewCollector(cfg.Metrics.Namespace, nil)
	historyRepo := history.NewSQLiteRepository(db.DB)

	opts := daemon.LoaderOptions{
		State:       state,
		NodeName:    cfg.Cluster.NodeName,
		MaxFileSize: cfg.Cluster.MaxFileSize,
		LogSystem:   sys,
		Policy:      policy,
		Logger:      ccsLog,
		History:     historyRepo,
		Metrics:     collector,
	}

	// MQTT (optional). Without a broker the node has no peers to disagree
	// with and counts itself quorate.
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = connectMQTT(ctx, cfg, state, collector, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		opts.Publisher = mqttClient
	} else {
		log.Info("MQTT disabled")
		state.SetQuorate(true)
		collector.SetQuorate(true)
	}

	// InfluxDB (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		opts.Telemetry = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	loader := daemon.NewLoader(opts)
	reload := &reloader{
		loader: loader,
		path:   cfg.Cluster.ConfigFile,
		announcements: &announcementFollower{
			client: mqttClient,
			loader: loader,
			qos:    byte(cfg.MQTT.QoS),
			log:    log,
		},
	}

	// The first load must succeed: without a master there is nothing to serve.
	result, err := reload.Reload(ctx)
	if err != nil {
		return fmt.Errorf("loading %s: %w", cfg.Cluster.ConfigFile, err)
	}

	// HTTP status API and metrics endpoint (optional)
	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer, err = startAPI(ctx, cfg, api.Deps{
			Logger:         log,
			NodeName:       cfg.Cluster.NodeName,
			State:          state,
			History:        historyRepo,
			Reloader:       reload,
			LogSystem:      sys,
			MetricsHandler: collector.Handler(),
			Version:        version,
		})
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API disabled")
	}

	if cfg.Cluster.Watch {
		watcher, watchErr := daemon.NewWatcher(daemon.WatcherOptions{
			Path:     cfg.Cluster.ConfigFile,
			Debounce: cfg.GetDebounce(),
			Logger:   ccsLog,
		})
		if watchErr != nil {
			return fmt.Errorf("creating watcher: %w", watchErr)
		}
		watchDone := make(chan struct{})
		go func() {
			defer close(watchDone)
			runErr := watcher.Run(ctx, func() {
				// Failures are logged by the loader; the master stays as it was.
				_, _ = reload.Reload(ctx)
			})
			if runErr != nil {
				log.Error("cluster.conf watcher failed", "error", runErr)
			}
		}()
		defer func() { <-watchDone }()
	}

	if err := healthCheck(ctx, db, mqttClient, apiServer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal",
		"cluster", result.Snapshot.ClusterName,
		"config_version", result.Snapshot.Version,
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CCSD_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CCSD_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// connectMQTT connects to the broker and ties quorum to broker connectivity.
func connectMQTT(ctx context.Context, cfg *config.Config, state *daemon.State, collector *metrics.Collector, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(ctx, cfg.MQTT, cfg.Cluster.NodeName)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log)

	setQuorate := func(quorate bool) {
		state.SetQuorate(quorate)
		collector.SetQuorate(quorate)
	}
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
		setQuorate(true)
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
		setQuorate(false)
	})
	setQuorate(client.IsConnected())

	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"node", cfg.Cluster.NodeName,
	)
	return client, nil
}

// announcementFollower keeps the announcement subscription on the cluster
// named by the installed master.
type announcementFollower struct {
	client *mqtt.Client
	loader *daemon.Loader
	qos    byte
	log    *logging.Logger

	mu    sync.Mutex
	topic string
}

// follow (re)subscribes when cluster differs from the followed one.
func (a *announcementFollower) follow(cluster string) {
	if a.client == nil || !mqtt.ValidSegment(cluster) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	topic := mqtt.Topics{}.AllNodeConfigs(cluster)
	if topic == a.topic {
		return
	}

	if a.topic != "" {
		if err := a.client.Unsubscribe(a.topic); err != nil {
			a.log.Warn("unsubscribing from announcements failed", "topic", a.topic, "error", err)
		}
	}
	if err := a.client.Subscribe(topic, a.qos, a.loader.HandleAnnouncement); err != nil {
		a.log.Error("subscribing to announcements failed", "topic", topic, "error", err)
		a.topic = ""
		return
	}
	a.topic = topic
	a.log.Info("following config announcements", "topic", topic)
}

// startAPI creates and starts the status API. The metrics endpoint is
// mounted on it when enabled.
func startAPI(ctx context.Context, cfg *config.Config, deps api.Deps) (*api.Server, error) {
	deps.Config = cfg.API
	deps.Metrics = cfg.Metrics

	srv, err := api.New(deps)
	if err != nil {
		return nil, fmt.Errorf("creating API server: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting API server: %w", err)
	}
	return srv, nil
}

// reloader loads cluster.conf and keeps the announcement subscription on
// the installed cluster. It backs the watcher and POST /api/v1/reload.
type reloader struct {
	loader        *daemon.Loader
	path          string
	announcements *announcementFollower
}

// Reload implements api.Reloader.
func (r *reloader) Reload(ctx context.Context) (*daemon.LoadResult, error) {
	result, err := r.loader.Load(ctx, r.path)
	if err != nil {
		return nil, err
	}
	r.announcements.follow(result.Snapshot.ClusterName)
	return result, nil
}

// healthCheck verifies the infrastructure connections are healthy.
// mqttClient and apiServer may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, apiServer *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if apiServer != nil {
		if err := apiServer.HealthCheck(ctx); err != nil {
			return fmt.Errorf("api: %w", err)
		}
	}
	return nil
}
