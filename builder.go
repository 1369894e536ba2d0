package authkit

import (
	"errors"
	"log"

	"github.com/alperenkbd/authkit/credentials"
	"github.com/alperenkbd/authkit/internal/rate"
	"github.com/alperenkbd/authkit/kv"
	"github.com/alperenkbd/authkit/provider"
)

// Builder assembles a [Client]. Configure it during initialization and
// call Build exactly once; the resulting client is safe for concurrent
// use.
type Builder struct {
	config    Config
	store     kv.Store
	provider  provider.Provider
	auditSink AuditSink
	logger    *log.Logger

	built bool
}

// New returns a Builder carrying the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the key-value store holding attempt counters and
// credentials. Use [kv.Open] to build the device storage stack.
func (b *Builder) WithStore(store kv.Store) *Builder {
	b.store = store
	return b
}

// WithProvider sets the identity provider.
func (b *Builder) WithProvider(p provider.Provider) *Builder {
	b.provider = p
	return b
}

// WithAuditSink sets the sink receiving audit events. Audit must also
// be enabled in the configuration.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the diagnostic logger. Defaults to log.Default.
func (b *Builder) WithLogger(logger *log.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles the counter registry.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.store == nil {
		return nil, errors.New("kv store required")
	}
	if b.provider == nil {
		return nil, errors.New("identity provider required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = log.Default()
	}

	client := &Client{
		config:   cfg,
		provider: b.provider,
		store:    b.store,
		logger:   logger,
		state:    newStateMachine(),
		metrics:  NewMetrics(cfg.Metrics),
		audit:    newAuditDispatcher(cfg.Audit, b.auditSink),
	}

	client.creds = credentials.NewStore(b.store, cfg.Storage.Namespace, logger)
	client.tracker = rate.New(b.store, cfg.Storage.Namespace, rate.Config{
		MaxLoginAttempts:    cfg.Security.MaxLoginAttempts,
		MaxRegisterAttempts: cfg.Security.MaxRegisterAttempts,
		Cooldown:            cfg.Security.Cooldown,
		BackoffBase:         cfg.Security.BackoffBase,
		BackoffMax:          cfg.Security.BackoffMax,
	}, logger)

	b.built = true

	return client, nil
}
