package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "github.com/berfenger/dyson2mqtt/internal/adapter/actor"
	"github.com/berfenger/dyson2mqtt/internal/adapter/cloud"
	"github.com/berfenger/dyson2mqtt/internal/adapter/resolver"
	"github.com/berfenger/dyson2mqtt/internal/config"
	"github.com/berfenger/dyson2mqtt/internal/core/actor"
	"github.com/berfenger/dyson2mqtt/internal/core/service"
	"github.com/berfenger/dyson2mqtt/internal/server"
	"github.com/berfenger/dyson2mqtt/internal/util/actorutil"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	logger.Info("starting dyson2mqtt", zap.String("version", versioninfo.Short()))

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	defer logger.Sync()

	eventStream := &eventstream.EventStream{}
	sessionFactory := actor.SessionFactory(ctx, cfg, actor.DeviceLinkProvider(cfg, logger), eventStream, logger)
	orchestrator := service.NewOrchestrator(
		cloud.NewClient(cfg.Cloud.ApiHost, logger),
		resolver.NewResolver(cfg.Hosts, logger),
		sessionFactory,
		logger,
	)

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg, orchestrator, eventStream, mqttActorProvider(cfg, logger), logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		return
	}

	server := server.NewServer(*cfg, ctx, pid, orchestrator, logger)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	orchestrator.DisconnectAll()
	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => DYSON2MQTT_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("DYSON2MQTT_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("dyson2mqtt")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := config.CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return nil, errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	cfg.Hosts = config.NormalizeHosts(cfg.Hosts)

	// check bounds
	if cfg.Link.ConnectTimeoutMillis < 1000 {
		return nil, errors.New("config param link.connect_timeout_millis should be >= 1000")
	}
	if cfg.Link.ReconnectBaseDelayMillis == 0 || cfg.Link.ReconnectMaxDelayMillis < cfg.Link.ReconnectBaseDelayMillis {
		return nil, errors.New("config param link.reconnect_max_delay_millis must be >= link.reconnect_base_delay_millis > 0")
	}
	if cfg.Link.RequestTimeoutMillis < 100 {
		return nil, errors.New("config param link.request_timeout_millis should be >= 100")
	}
	if cfg.Session.PowerOnDebounceMillis > 5000 {
		return nil, errors.New("config param session.power_on_debounce_millis should be <= 5000")
	}
	if cfg.Cloud.Enable && cfg.Cloud.Token == "" {
		return nil, errors.New("config param cloud.token is required when cloud.enable is set")
	}
	for i, d := range cfg.Devices {
		if d.Serial == "" || d.ProductType == "" {
			return nil, fmt.Errorf("config param devices[%d] needs serial and product_type", i)
		}
	}

	return &cfg, nil
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func() *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("mqtt.ha_discovery_enable", false)
	viper.SetDefault("mqtt.base_topic", "dyson")
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("link.port", 1883)
	viper.SetDefault("link.connect_timeout_millis", 10000)
	viper.SetDefault("link.keep_alive_seconds", 30)
	viper.SetDefault("link.auto_reconnect", true)
	viper.SetDefault("link.reconnect_base_delay_millis", 1000)
	viper.SetDefault("link.reconnect_max_delay_millis", 30000)
	viper.SetDefault("link.max_reconnect_attempts", 5)
	viper.SetDefault("link.request_timeout_millis", 5000)
	viper.SetDefault("session.poll_interval_seconds", 60)
	viper.SetDefault("session.power_on_debounce_millis", 50)
	viper.SetDefault("session.connect_timeout_millis", 15000)
	viper.SetDefault("cloud.enable", false)
	viper.SetDefault("cloud.country", "US")
	viper.SetDefault("cloud.api_host", cloud.DefaultApiHost)
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	cfg.Cloud.Token = "*redacted*"
	devices := make([]config.DeviceConfig, len(cfg.Devices))
	for i, d := range cfg.Devices {
		d.Credential = "*redacted*"
		devices[i] = d
	}
	cfg.Devices = devices
	slog.Info("Using", "config", cfg)
}
