package di

import (
	"context"
	"fmt"

	"FxPilot/internal/domain/repository"
	domsvc "FxPilot/internal/domain/service"
	"FxPilot/internal/handler/api"
	mid "FxPilot/internal/middleware"
	internalrepo "FxPilot/internal/repository"
	"FxPilot/internal/service/quotes"
	"FxPilot/internal/service/ratelimit"
	"FxPilot/internal/services/bridge"
	"FxPilot/internal/services/synth"
	"FxPilot/internal/usecase"
	"FxPilot/pkg/cache"
	pkgch "FxPilot/pkg/clickhouse"
	"FxPilot/pkg/config"
	xhttp "FxPilot/pkg/http"
	pkgkafka "FxPilot/pkg/kafka"
	applogger "FxPilot/pkg/logger"
	"FxPilot/pkg/metrics"
	"FxPilot/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry shared by every collector.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideClickHouseClient connects to ClickHouse when enabled and prepares the
// bar tables.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ClickHouse.DialTimeout+cfg.ClickHouse.ReadTimeout)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if cfg.ClickHouse.InitSchema {
		if err := client.InitSchema(ctx, internalrepo.BarSchema(cfg.ClickHouse.Database)); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
	}
	l.Info("clickhouse ready", applogger.String("database", cfg.ClickHouse.Database))

	return client, func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}, nil
}

// ProvideKafkaProducer creates a Kafka producer when Kafka is enabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithProducerRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher publishes to Kafka, or discards events when Kafka is
// off. The publisher owns the producer.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer, l *applogger.Logger) (repository.EventPublisher, func()) {
	if producer == nil {
		return internalrepo.NopPublisher{}, func() {}
	}
	pub := internalrepo.NewKafkaPublisher(producer, cfg.Kafka.SignalTopic, cfg.Kafka.ExecutionTopic)
	return pub, func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}
}

// ProvideCache returns a Redis-backed layered cache when Redis is enabled and
// a process-local cache otherwise.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	var svc cache.Service
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(context.Background(),
			cache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
			cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		svc = cache.NewLayeredCache(rc, cfg.Redis.LocalTTL)
		l.Info("redis cache ready", applogger.String("host", cfg.Redis.Host), applogger.Int("port", cfg.Redis.Port))
	} else {
		svc = cache.NewMemoryCache()
	}
	return svc, func() {
		if err := svc.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}, nil
}

// ProvideBridgeClient returns nil when no bridge URL is configured.
func ProvideBridgeClient(cfg *config.Config) *bridge.Client {
	return bridge.NewClient(bridge.Config{
		BaseURL: cfg.Bridge.BaseURL,
		APIKey:  cfg.Bridge.APIKey,
		Timeout: cfg.Bridge.Timeout,
		Retries: cfg.Bridge.Retries,
	})
}

func ProvideExecutor(c *bridge.Client) repository.Executor {
	return bridge.NewExecutor(c)
}

func ProvideBroker(c *bridge.Client) repository.Broker {
	return bridge.NewBroker(c)
}

func ProvideBarAggregator(cfg *config.Config) *usecase.BarAggregator {
	return usecase.NewBarAggregator(repository.NormalizeTimeframe(cfg.Market.Timeframe), cfg.Market.MaxBars)
}

// ProvideTickPipeline throttles ticks into the aggregator.
func ProvideTickPipeline(cfg *config.Config, agg *usecase.BarAggregator, m repository.Metrics) *mid.TickPipeline {
	return mid.NewTickPipeline(agg, m, mid.WithMaxRPS(cfg.Stream.MaxRPS))
}

// ProvideMarketSource selects the market collaborator from market.source. A
// nil source makes every signal synthetic.
func ProvideMarketSource(
	cfg *config.Config,
	c *bridge.Client,
	ch *pkgch.Client,
	agg *usecase.BarAggregator,
	l *applogger.Logger,
) repository.MarketSignalSource {
	tf := repository.NormalizeTimeframe(cfg.Market.Timeframe)
	switch cfg.Market.Source {
	case config.SourceBridge:
		return bridge.NewMarketSource(c)
	case config.SourceClickHouse:
		return usecase.NewBarSignalSource(internalrepo.NewCHBarStore(ch.DB(), cfg.ClickHouse.Database, l), tf)
	case config.SourceStream, config.SourceKafka:
		return usecase.NewBarSignalSource(agg, tf)
	default:
		return nil
	}
}

func ProvideSynthesizer(cfg *config.Config) domsvc.BarSynthesizer {
	opts := []synth.Option{synth.WithLength(cfg.Fallback.Bars)}
	if cfg.Fallback.Seed != 0 {
		opts = append(opts, synth.WithSeed(cfg.Fallback.Seed))
	}
	return synth.New(opts...)
}

func ProvideStrategyStore(cfg *config.Config) (*usecase.StrategyStore, error) {
	return usecase.NewStrategyStore(cfg.Strategy)
}

func ProvideSignalProvider(
	cfg *config.Config,
	market repository.MarketSignalSource,
	s domsvc.BarSynthesizer,
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SignalProvider {
	return usecase.NewSignalProvider(market, s, c, cfg.Market.CacheTTL, m, l)
}

func ProvideExecutionService(
	cfg *config.Config,
	executor repository.Executor,
	pub repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ExecutionService {
	limiter := ratelimit.New(cfg.Execution.RateCapacity, cfg.Execution.RatePerSecond)
	return usecase.NewExecutionService(executor, limiter, pub, m, l, cfg.Autopilot.JournalSize)
}

func ProvideAutopilot(
	cfg *config.Config,
	store *usecase.StrategyStore,
	signals *usecase.SignalProvider,
	exec *usecase.ExecutionService,
	account *usecase.AccountService,
	locks cache.Service,
	pub repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Autopilot {
	return usecase.NewAutopilot(usecase.AutopilotConfig{
		Symbols:            cfg.Autopilot.Symbols,
		Interval:           cfg.Autopilot.Interval,
		ExecutionThreshold: cfg.Autopilot.ExecutionThreshold,
		CycleTimeout:       cfg.Autopilot.CycleTimeout,
	}, store, signals, exec, account, locks, pub, m, l)
}

// ProvideMonitor returns nil when monitoring is disabled.
func ProvideMonitor(cfg *config.Config, account *usecase.AccountService, m repository.Metrics, l *applogger.Logger) *usecase.Monitor {
	if !cfg.Monitor.Enabled {
		return nil
	}
	return usecase.NewMonitor(usecase.MonitorConfig{
		MetricsInterval: cfg.Monitor.MetricsInterval,
		TradesInterval:  cfg.Monitor.TradesInterval,
		StatusInterval:  cfg.Monitor.StatusInterval,
	}, account, m, l)
}

// ProvideTickCollector returns nil unless market.source is stream.
func ProvideTickCollector(cfg *config.Config, pipe *mid.TickPipeline, m repository.Metrics, l *applogger.Logger) *usecase.TickCollector {
	if cfg.Market.Source != config.SourceStream {
		return nil
	}
	stream := quotes.NewStream(quotes.Config{
		URL:            cfg.Stream.URL,
		APIKey:         cfg.Stream.APIKey,
		Symbols:        cfg.Stream.Symbols,
		ReconnectDelay: cfg.Stream.ReconnectDelay,
		PingInterval:   cfg.Stream.PingInterval,
	}, l)
	return usecase.NewTickCollector(stream, pipe, m, l)
}

// ProvideKafkaConsumer returns nil unless market.source is kafka.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if cfg.Market.Source != config.SourceKafka {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaTicksHandler consumes the tick topic into the pipeline.
func ProvideKafkaTicksHandler(cfg *config.Config, pipe *mid.TickPipeline, m repository.Metrics) *usecase.KafkaTicksHandler {
	return usecase.NewKafkaTicksHandler(cfg.Kafka.TickTopic, pipe, m)
}

// ProvideHTTPServer builds the echo server around the API handler.
func ProvideHTTPServer(cfg *config.Config, h *api.Handler, l *applogger.Logger, reg *prometheus.Registry) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(cfg.Server.AllowOrigins),
	}
	path := ""
	if cfg.Metrics.Enabled {
		path = cfg.Metrics.Path
	}
	opts = append(opts, xhttp.WithMetrics(path, reg, reg))
	return xhttp.NewServer(h, l, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	autopilot *usecase.Autopilot,
	monitor *usecase.Monitor,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaTicksHandler,
) *server.App {
	return server.New(cfg, l, httpServer, autopilot, monitor, collector, consumer, kh)
}
