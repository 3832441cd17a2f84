package di

import (
	"context"
	"fmt"
	"time"

	"PairPull/internal/domain/repository"
	"PairPull/internal/handler/api"
	internalrepo "PairPull/internal/repository"
	"PairPull/internal/service/alpaca"
	icache "PairPull/internal/service/cache"
	"PairPull/internal/service/stream"
	"PairPull/internal/services/features"
	"PairPull/internal/services/strategy"
	"PairPull/internal/usecase"
	pkgch "PairPull/pkg/clickhouse"
	"PairPull/pkg/config"
	xhttp "PairPull/pkg/http"
	pkgkafka "PairPull/pkg/kafka"
	applogger "PairPull/pkg/logger"
	"PairPull/pkg/metrics"
	"PairPull/pkg/queue"
	"PairPull/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client and prepares the
// journal schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.JournalSchema); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer. Nil when the journal
// backend does not publish.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Journal.Backend != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML. Nil
// when the journal backend writes to ClickHouse directly.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Journal.Backend != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRedisClient creates a shared redis client for caching and the
// alert queue. Nil when caching is disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Cache.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideBroker creates the Alpaca trading client.
func ProvideBroker(cfg *config.Config) repository.Broker {
	return alpaca.NewClient(cfg)
}

// ProvideMarketData creates the Alpaca daily-bars client behind a
// short-lived history cache: redis when enabled, in-process otherwise.
func ProvideMarketData(cfg *config.Config, rdb *redis.Client) repository.MarketData {
	md := alpaca.NewMarketData(cfg)
	var bc icache.BytesCache = icache.NewTTLCache()
	if rdb != nil {
		bc = icache.NewRedisCacheWith(rdb)
	}
	return icache.NewHistoryCache(md, bc, cfg.Cache.HistoryTTL)
}

// ProvideJournalStore creates the ClickHouse journal store.
func ProvideJournalStore(chClient *pkgch.Client, l *applogger.Logger) *internalrepo.CHJournal {
	store := internalrepo.NewCHJournal(chClient)
	store.SetLogger(l)
	return store
}

// ProvideEventPublisher creates the Kafka journal publisher. Nil for the
// clickhouse backend.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.TradesTopic, cfg.Kafka.ActionsTopic)
}

// ProvideJournal routes journal writes to the configured backend.
func ProvideJournal(
	pub repository.EventPublisher,
	store *internalrepo.CHJournal,
	m repository.Metrics,
	cfg *config.Config,
) repository.Journal {
	return usecase.NewJournalRecorder(pub, store, m, cfg.Journal.Backend)
}

// ProvideKafkaHandlers registers the journal ingest handlers. Empty for
// the clickhouse backend.
func ProvideKafkaHandlers(store *internalrepo.CHJournal, m repository.Metrics, cfg *config.Config) []pkgkafka.MessageHandler {
	if cfg.Journal.Backend != "kafka" {
		return nil
	}
	return []pkgkafka.MessageHandler{
		usecase.NewKafkaTradesHandler(cfg.Kafka.TradesTopic, store, m),
		usecase.NewKafkaActionsHandler(cfg.Kafka.ActionsTopic, store, m),
	}
}

// ProvideParams maps strategy config onto evaluation parameters.
func ProvideParams(cfg *config.Config) strategy.Params {
	return strategy.Params{
		Capital:          cfg.Strategy.Capital,
		GapThreshold:     cfg.Strategy.GapThreshold,
		VolumeMultiplier: cfg.Strategy.VolumeMultiplier,
		ZScoreThreshold:  cfg.Strategy.ZScoreThreshold,
		UseVolSizing:     cfg.Strategy.UseVolSizing,
		MaxLeverage:      cfg.Strategy.MaxLeverage,
	}
}

// ProvideEngine creates the rolling feature engine.
func ProvideEngine(cfg *config.Config) *features.Engine {
	return features.NewEngine(cfg.Strategy.Lookback)
}

// ProvideEvaluator creates the entry-signal evaluator.
func ProvideEvaluator(p strategy.Params) *strategy.Evaluator {
	return strategy.NewEvaluator(p)
}

// ProvideSizer creates the position sizer.
func ProvideSizer(p strategy.Params) *strategy.Sizer {
	return strategy.NewSizer(p)
}

// ProvideLifecycle creates the daily trading cycle use case.
func ProvideLifecycle(
	market repository.MarketData,
	broker repository.Broker,
	journal repository.Journal,
	m repository.Metrics,
	engine *features.Engine,
	eval *strategy.Evaluator,
	sizer *strategy.Sizer,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.Lifecycle {
	return usecase.NewLifecycle(market, broker, journal, m, engine, eval, sizer,
		usecase.LifecycleConfig{
			Lead:     cfg.Strategy.Lead,
			Lag:      cfg.Strategy.Lag,
			HoldDays: cfg.Strategy.HoldDays,
		}, l)
}

// ProvideStatus creates the read-only API use case.
func ProvideStatus(
	market repository.MarketData,
	broker repository.Broker,
	journal repository.Journal,
	engine *features.Engine,
	eval *strategy.Evaluator,
	cfg *config.Config,
) *usecase.Status {
	return usecase.NewStatus(market, broker, journal, engine, eval, cfg.Strategy.Lead, cfg.Strategy.Lag)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(l *applogger.Logger, status *usecase.Status) xhttp.Handler {
	return api.NewTradingEchoHandler(l, status)
}

// ProvideQuoteMonitor creates the live quote monitor. Nil when streaming
// is disabled.
func ProvideQuoteMonitor(cfg *config.Config, m repository.Metrics) *usecase.QuoteMonitor {
	if !cfg.Alpaca.StreamEnabled {
		return nil
	}
	qs := stream.New(
		cfg.Alpaca.APIKey,
		cfg.Alpaca.SecretKey,
		cfg.Alpaca.StreamURL,
		[]string{cfg.Strategy.Lead, cfg.Strategy.Lag},
		cfg.Alpaca.ReconnectDelay,
		cfg.Alpaca.PingInterval,
	)
	return usecase.NewQuoteMonitor(qs, m)
}

// ProvideAlertQueue creates the redis incident queue. Nil without redis.
func ProvideAlertQueue(l *applogger.Logger, rdb *redis.Client, m repository.Metrics, store *internalrepo.CHJournal) *queue.RedisQueue {
	if rdb == nil {
		return nil
	}
	q := queue.NewRedisQueue(l, &queue.QueueConfig{Workers: 1, RetryLimit: 3}, rdb,
		queue.ModeProducerConsumer, queue.WithKeyPrefix("pairpull:queue"))
	q.RegisterJob(usecase.NewIncidentJob(l, m))
	q.RegisterJob(usecase.NewSystemLogJob(store))

	// Aggregate repeated error logs onto the queue alongside incidents.
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          "system-logs",
		Publisher:      q,
	})
	return q
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	lifecycle *usecase.Lifecycle,
	monitor *usecase.QuoteMonitor,
	consumer *pkgkafka.Consumer,
	handlers []pkgkafka.MessageHandler,
	journal repository.Journal,
	chClient *pkgch.Client,
	alerts *queue.RedisQueue,
	httpHandler xhttp.Handler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, l, lifecycle, monitor, consumer, handlers, journal, chClient, alerts)
	app.SetHTTPHandler(httpHandler)
	return app
}
