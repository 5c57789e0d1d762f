package aajourney

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/zmrishh/aajourney/internal/rate"
	"github.com/zmrishh/aajourney/snapshot"
	"github.com/zmrishh/aajourney/token"
)

// Builder defines a public type used by aajourney APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	client Client
	redis  redis.UniversalClient

	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithClient sets the AA network client the journey orchestrates.
func (b *Builder) WithClient(client Client) *Builder {
	b.client = client
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Journey, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.client == nil {
		return nil, errors.New("journey requires an AA client")
	}
	if b.redis == nil {
		if cfg.Snapshot.Enabled {
			return nil, errors.New("snapshot persistence requires redis client")
		}
		if cfg.OTP.ThrottleEnabled {
			return nil, errors.New("OTP throttle requires redis client")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	j := &Journey{
		config:  cfg,
		client:  b.client,
		state:   initialState(),
		metrics: NewMetrics(cfg.Metrics),
	}

	if cfg.OTP.ThrottleEnabled {
		j.limiter = rate.New(b.redis, rate.Config{
			MaxAttempts: cfg.OTP.MaxAttempts,
			Window:      cfg.OTP.AttemptWindow,
		})
	}

	if cfg.Snapshot.Enabled {
		j.snapshots = snapshot.NewStore(b.redis, cfg.Snapshot.RedisPrefix, cfg.Snapshot.TTL)
	}

	if cfg.Resume.Enabled {
		manager, err := token.NewManager(token.Config{
			TTL:           cfg.Resume.TokenTTL,
			SigningMethod: token.SigningMethod(cfg.Resume.SigningMethod),
			PrivateKey:    cfg.Resume.PrivateKey,
			PublicKey:     cfg.Resume.PublicKey,
			Issuer:        "aajourney",
		})
		if err != nil {
			return nil, err
		}
		j.tokens = manager
	}

	if cfg.Audit.Enabled {
		sink := b.auditSink
		if sink == nil {
			sink = NoOpSink{}
		}
		j.audit = newAuditDispatcher(cfg.Audit, sink)
	}

	b.built = true
	return j, nil
}
