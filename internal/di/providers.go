package di

import (
	"context"
	"fmt"
	"time"

	"SignalFuse/internal/domain/repository"
	"SignalFuse/internal/domain/service"
	"SignalFuse/internal/handler/api"
	internalrepo "SignalFuse/internal/repository"
	"SignalFuse/internal/service/binance"
	"SignalFuse/internal/service/onchain"
	"SignalFuse/internal/service/sentiment"
	"SignalFuse/internal/services/analyst"
	"SignalFuse/internal/usecase"
	"SignalFuse/pkg/cache"
	pkgch "SignalFuse/pkg/clickhouse"
	"SignalFuse/pkg/config"
	xhttp "SignalFuse/pkg/http"
	pkgkafka "SignalFuse/pkg/kafka"
	applogger "SignalFuse/pkg/logger"
	"SignalFuse/pkg/metrics"
	"SignalFuse/pkg/server"
)

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger creates the app logger, attaching the Kafka log
// collector when a log topic is configured.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	level := cfg.Logging.Level
	if level == "" {
		level = "info"
	}
	format := cfg.Logging.Format
	if format == "" {
		format = "console"
	}
	output := cfg.Logging.Output
	if output == "" {
		output = "stdout"
	}

	l, err := applogger.New(&applogger.Config{Level: level, Format: format, Output: output})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	if producer != nil && cfg.Kafka.LogTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogTopic,
			Publisher:      internalrepo.NewLogPublisher(producer),
		})
	}
	return l, nil
}

// ProvideCacheService creates the cache backend: Redis when enabled
// (optionally fronted by an in-process L1), in-process memory otherwise.
func ProvideCacheService(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	if cfg.Redis.Layered {
		opts := []cache.LayeredOption{}
		if cfg.Redis.MemoryMaxSize > 0 {
			opts = append(opts, cache.WithLayeredMemorySize(cfg.Redis.MemoryMaxSize))
		}
		return cache.NewLayeredCache(redisCache, opts...), nil
	}
	return redisCache, nil
}

// ProvideAside wraps the cache backend with get-or-compute semantics.
func ProvideAside(svc cache.Service, l *applogger.Logger, m repository.Metrics) *cache.Aside {
	return cache.NewAside(svc,
		cache.WithAsideObserve(m.RecordCacheOp),
		cache.WithAsideWarn(func(op, key string, err error) {
			m.RecordError("cache")
			l.Warn("cache store degraded",
				applogger.String("op", op),
				applogger.String("key", key),
				applogger.Error(err))
		}))
}

// ProvideHTTPClient creates the shared outbound HTTP client.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	timeout := cfg.Binance.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return xhttp.NewClient(xhttp.WithTimeout(timeout))
}

// ProvideMarketData creates the Binance REST client.
func ProvideMarketData(cfg *config.Config, hc *xhttp.Client, aside *cache.Aside, l *applogger.Logger) repository.MarketData {
	opts := []binance.Option{}
	if cfg.Binance.BaseURL != "" {
		opts = append(opts, binance.WithBaseURL(cfg.Binance.BaseURL))
	}
	return binance.NewClient(hc, aside, l, opts...)
}

// ProvideMarketStream creates the Binance WebSocket stream, or nil when
// streaming is disabled.
func ProvideMarketStream(cfg *config.Config, l *applogger.Logger) repository.MarketStream {
	if !cfg.Binance.StreamEnabled {
		return nil
	}
	streamURL := cfg.Binance.StreamURL
	if streamURL == "" {
		streamURL = binance.DefaultStreamURL
	}
	reconnect := cfg.Binance.ReconnectDelay
	if reconnect <= 0 {
		reconnect = 5 * time.Second
	}
	ping := cfg.Binance.PingInterval
	if ping <= 0 {
		ping = 30 * time.Second
	}
	return binance.NewStream(streamURL, cfg.Binance.Symbols, reconnect, ping, l)
}

// ProvidePriceCollector creates the live price collector, or nil when
// there is no stream.
func ProvidePriceCollector(stream repository.MarketStream, m repository.Metrics, l *applogger.Logger) *usecase.PriceCollector {
	if stream == nil {
		return nil
	}
	return usecase.NewPriceCollector(stream, m, l)
}

// ProvideOnChainProvider creates the CoinGecko on-chain client.
func ProvideOnChainProvider(cfg *config.Config, hc *xhttp.Client, l *applogger.Logger) repository.OnChainProvider {
	opts := []onchain.Option{}
	if cfg.OnChain.BaseURL != "" {
		opts = append(opts, onchain.WithBaseURL(cfg.OnChain.BaseURL))
	}
	if cfg.OnChain.APIKey != "" {
		opts = append(opts, onchain.WithAPIKey(cfg.OnChain.APIKey))
	}
	return onchain.NewCoinGeckoClient(hc, l, opts...)
}

// ProvideSentimentProviders creates the configured sentiment providers.
func ProvideSentimentProviders(cfg *config.Config, hc *xhttp.Client) []repository.SentimentProvider {
	providers := make([]repository.SentimentProvider, 0, len(cfg.Sentiment.Providers))
	for _, spec := range cfg.Sentiment.Providers {
		providers = append(providers, sentiment.NewHTTPProvider(sentiment.ProviderSpec{
			Name:      spec.Name,
			URL:       spec.URL,
			APIKey:    spec.APIKey,
			KeyHeader: spec.KeyHeader,
		}, hc))
	}
	return providers
}

// ProvideTrendSource creates the multi-timeframe trend source.
func ProvideTrendSource(market repository.MarketData, l *applogger.Logger, m repository.Metrics) *usecase.TrendSource {
	return usecase.NewTrendSource(market, l, m)
}

// ProvideOnChainSource creates the on-chain signal source.
func ProvideOnChainSource(provider repository.OnChainProvider, aside *cache.Aside, l *applogger.Logger, m repository.Metrics) *usecase.OnChainSource {
	return usecase.NewOnChainSource(provider, aside, l, m)
}

// ProvideSentimentSource creates the sentiment signal source.
func ProvideSentimentSource(providers []repository.SentimentProvider, aside *cache.Aside, l *applogger.Logger, m repository.Metrics) *usecase.SentimentSource {
	return usecase.NewSentimentSource(providers, aside, l, m)
}

// Analysts bundles the two analyst personas so wire can tell them apart.
type Analysts struct {
	Technical service.Analyst
	Risk      service.Analyst
}

// ProvideAnalysts creates both analyst agents.
func ProvideAnalysts(cfg *config.Config, l *applogger.Logger) Analysts {
	return Analysts{
		Technical: analyst.NewTechnicalAnalyst(analyst.Config(cfg.Analyst.Technical), l),
		Risk:      analyst.NewRiskAnalyst(analyst.Config(cfg.Analyst.Risk), l),
	}
}

// ProvideAnalysisStore creates the ClickHouse history store, or nil when
// ClickHouse is disabled.
func ProvideAnalysisStore(cfg *config.Config, l *applogger.Logger) (repository.AnalysisStore, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
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
	store, err := internalrepo.NewCHAnalysisStore(ctx, client, l)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return store, nil
}

// ProvidePublisher creates the consensus event publisher, or nil without
// a producer.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil || cfg.Kafka.Topic == "" {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideEnsemble creates the analysis orchestrator.
func ProvideEnsemble(
	analysts Analysts,
	trend *usecase.TrendSource,
	onchainSrc *usecase.OnChainSource,
	sentimentSrc *usecase.SentimentSource,
	aside *cache.Aside,
	store repository.AnalysisStore,
	publisher repository.Publisher,
	l *applogger.Logger,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.Ensemble {
	return usecase.NewEnsemble(
		analysts.Technical, analysts.Risk,
		trend, onchainSrc, sentimentSrc,
		aside, store, publisher, l, m,
		usecase.EnsembleConfig{
			TechnicalWeight: cfg.Ensemble.TechnicalWeight,
			RiskWeight:      cfg.Ensemble.RiskWeight,
			CacheTTL:        cfg.Ensemble.CacheTTL,
		},
	)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(
	l *applogger.Logger,
	ensemble *usecase.Ensemble,
	trend *usecase.TrendSource,
	onchainSrc *usecase.OnChainSource,
	sentimentSrc *usecase.SentimentSource,
	market repository.MarketData,
	collector *usecase.PriceCollector,
	store repository.AnalysisStore,
) xhttp.Handler {
	return api.NewEnsembleHandler(l, ensemble, trend, onchainSrc, sentimentSrc, market, collector, store)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	collector *usecase.PriceCollector,
	store repository.AnalysisStore,
	producer *pkgkafka.Producer,
	cacheSvc cache.Service,
) *server.App {
	var cacheClose func() error
	if closer, ok := cacheSvc.(interface{ Close() error }); ok {
		cacheClose = closer.Close
	}
	return server.New(cfg, l, handler, collector, store, producer, cacheClose)
}
