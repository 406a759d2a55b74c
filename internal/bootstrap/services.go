package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/target/mmk-event-browser/config"
	"github.com/target/mmk-event-browser/internal/adapters/eventapi"
	"github.com/target/mmk-event-browser/internal/adapters/memory"
	redisadapter "github.com/target/mmk-event-browser/internal/adapters/redis"
	"github.com/target/mmk-event-browser/internal/adapters/terminal"
	domainauth "github.com/target/mmk-event-browser/internal/domain/auth"
	"github.com/target/mmk-event-browser/internal/observability/statsd"
	"github.com/target/mmk-event-browser/internal/ports"
	"github.com/target/mmk-event-browser/internal/query"
	"github.com/target/mmk-event-browser/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Client    *eventapi.Client
	Sessions  *service.SessionService
	Browser   *service.Browser
	Inspector *service.Inspector
	Triggers  *service.Triggers
	View      *terminal.View
	REPL      *terminal.REPL
	Metrics   *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient // Optional: required when the session store is redis
	Logger      *slog.Logger
	Out         io.Writer
}

// buildMetrics configures the StatsD sink. Failures disable metrics instead of
// blocking startup.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

// buildCredentialStore picks the in-process or Redis-backed credential store.
//
//nolint:ireturn // the store implementation is chosen by configuration.
func buildCredentialStore(cfg config.SessionConfig, client redis.UniversalClient, logger *slog.Logger) (ports.CredentialStore, error) {
	if cfg.Store != config.SessionStoreRedis {
		return memory.NewCredentialStore(), nil
	}
	if client == nil {
		return nil, errors.New("redis session store requires a redis client")
	}
	sessionID := cfg.ID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	store, err := redisadapter.NewCredentialStore(redisadapter.CredentialStoreOptions{
		Client:    client,
		SessionID: sessionID,
		TTL:       cfg.TTL,
		Encryptor: CreateEncryptor(cfg.EncryptionKey, logger),
	})
	if err != nil {
		return nil, fmt.Errorf("create redis credential store: %w", err)
	}
	logger.Info("using shared redis session", "key", store.Key())
	return store, nil
}

// NewServices wires the browser. A configured token is adopted as the session
// credential.
func NewServices(ctx context.Context, deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service config is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := deps.Out
	if out == nil {
		out = io.Discard
	}

	metricsClient := buildMetrics(logger, cfg.Observability.Metrics)
	// A nil *statsd.Client is a no-op sink.
	var sink statsd.Sink = metricsClient

	store, err := buildCredentialStore(cfg.Session, deps.RedisClient, logger)
	if err != nil {
		return nil, err
	}

	if cfg.API.EmbedCredentialInExportLinks {
		logger.Warn("export links will carry the session credential as a query parameter; " +
			"set EVENTBROWSER_EXPORT_EMBED_CREDENTIAL=false to keep it out of URLs")
	}

	limits := query.Limits{PageSize: cfg.Browser.PageSize, ExportLimit: cfg.Browser.ExportLimit}

	// The client reports rejected credentials to the session service, which is
	// built after it.
	var sessions *service.SessionService
	client, err := eventapi.New(eventapi.Options{
		BaseURL:         cfg.API.BaseURL,
		Timeout:         cfg.API.Timeout,
		Credentials:     store,
		OnAuthExpired:   func(ctx context.Context) { sessions.Expire(ctx) },
		Logger:          logger,
		Limits:          limits,
		EmbedCredential: cfg.API.EmbedCredentialInExportLinks,
	})
	if err != nil {
		return nil, fmt.Errorf("create event store client: %w", err)
	}
	sessions = service.NewSessionService(service.SessionServiceOptions{
		Store:  store,
		Prober: client,
		Config: service.SessionConfig{
			Scheme:  domainauth.ParseScheme(cfg.API.AuthScheme),
			TTL:     cfg.Session.TTL,
			Metrics: sink,
			Logger:  logger,
		},
	})

	view := terminal.NewView(out, cfg.Browser.ViewportRows)
	browser := service.NewBrowser(service.BrowserOptions{
		Source: client,
		Config: service.BrowserConfig{
			Limits:   limits,
			Renderer: service.NewRowRenderer(cfg.Browser.PreviewRunes),
		},
		Observers: service.BrowserObservers{Listener: view, Metrics: sink, Logger: logger},
	})
	inspector := service.NewInspector(service.InspectorOptions{
		Source: client,
		Config: service.InspectorConfig{
			CacheSize: cfg.Browser.DetailCacheSize,
			CacheTTL:  cfg.Browser.DetailCacheTTL,
			Format:    service.DetailFormat(cfg.Browser.DetailFormat),
		},
		Observers: service.InspectorObservers{Presenter: view, Metrics: sink, Logger: logger},
	})
	triggers := service.NewTriggers(service.TriggersOptions{
		Browser:   browser,
		Inspector: inspector,
		Config: service.TriggerConfig{
			Debounce:        cfg.Browser.Debounce,
			ScrollThreshold: cfg.Browser.ScrollThreshold,
			Logger:          logger,
		},
	})
	repl := terminal.NewREPL(terminal.REPLOptions{
		Services: terminal.Services{
			Triggers:  triggers,
			Browser:   browser,
			Inspector: inspector,
			Session:   sessions,
			Exporter:  client,
		},
		View:   view,
		Logger: logger,
	})
	sessions.SetAuthExpiredHandler(repl)

	if cfg.API.Token != "" {
		if err := sessions.Adopt(ctx, cfg.API.Token); err != nil {
			return nil, fmt.Errorf("adopt configured token: %w", err)
		}
	}

	return &ServiceContainer{
		Client:    client,
		Sessions:  sessions,
		Browser:   browser,
		Inspector: inspector,
		Triggers:  triggers,
		View:      view,
		REPL:      repl,
		Metrics:   metricsClient,
	}, nil
}

// Close releases the metrics connection and pending triggers.
func (c *ServiceContainer) Close() error {
	c.Triggers.Close()
	if err := c.Metrics.Close(); err != nil {
		return fmt.Errorf("close metrics: %w", err)
	}
	return nil
}

// RunBrowser loads the first page when a session exists and then serves commands
// from in until the user quits, input ends, or ctx is cancelled.
func RunBrowser(ctx context.Context, c *ServiceContainer, in io.Reader) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		if c.Sessions.LoggedIn(gctx) {
			if err := c.REPL.Execute(gctx, "reload"); err != nil {
				return err
			}
		} else {
			c.View.Printf("Not logged in. Use: login <user> <password>\n")
		}
		err := c.REPL.Run(gctx, in)
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		c.Triggers.Close()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
