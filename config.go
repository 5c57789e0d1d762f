package aajourney

import (
	"errors"
	"time"
)

// Config defines a public type used by aajourney APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Client   ClientConfig
	OTP      OTPConfig
	Snapshot SnapshotConfig
	Resume   ResumeConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig defines a public type used by aajourney APIs.
//
// The throttle is off by default so a journey builds without Redis; enabling
// it makes Redis a hard requirement of [Builder.Build].
type OTPConfig struct {
	Digits          int
	ThrottleEnabled bool
	MaxAttempts     int
	AttemptWindow   time.Duration
}

/*
====================================
SNAPSHOT CONFIG
====================================
*/

// SnapshotConfig controls persistence of journey state to Redis. When
// enabled, every successful transition is written under RedisPrefix keyed by
// journey ID; writes are best-effort and never block the journey.
type SnapshotConfig struct {
	Enabled     bool
	RedisPrefix string
	TTL         time.Duration
}

/*
====================================
RESUME CONFIG
====================================
*/

// ResumeConfig controls signed resume tokens. Resume requires snapshots:
// the token only proves the caller may load the stored state.
type ResumeConfig struct {
	Enabled       bool
	TokenTTL      time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by aajourney APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by aajourney APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Client: ClientConfig{
			Timeout: 30 * time.Second,
		},
		OTP: OTPConfig{
			Digits:          6,
			ThrottleEnabled: false,
			MaxAttempts:     5,
			AttemptWindow:   15 * time.Minute,
		},
		Snapshot: SnapshotConfig{
			Enabled:     false,
			RedisPrefix: "ajs",
			TTL:         30 * time.Minute,
		},
		Resume: ResumeConfig{
			Enabled:       false,
			TokenTTL:      30 * time.Minute,
			SigningMethod: "hs256",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Resume.PrivateKey = cloneBytes(cfg.Resume.PrivateKey)
	out.Resume.PublicKey = cloneBytes(cfg.Resume.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate checks hard bounds on the configuration. It is called by
// [Builder.Build]; a Config that fails validation never reaches a Journey.
func (c *Config) Validate() error {
	if c.OTP.Digits < 4 || c.OTP.Digits > 8 {
		return errors.New("OTP digits must be between 4 and 8")
	}
	if c.OTP.ThrottleEnabled {
		if c.OTP.MaxAttempts <= 0 {
			return errors.New("OTP throttle requires MaxAttempts > 0")
		}
		if c.OTP.AttemptWindow <= 0 {
			return errors.New("OTP throttle requires AttemptWindow > 0")
		}
	}
	if c.Snapshot.Enabled {
		if c.Snapshot.RedisPrefix == "" {
			return errors.New("snapshot requires RedisPrefix")
		}
		if c.Snapshot.TTL <= 0 {
			return errors.New("snapshot requires TTL > 0")
		}
	}
	if c.Resume.Enabled {
		if !c.Snapshot.Enabled {
			return errors.New("resume requires snapshots to be enabled")
		}
		if c.Resume.TokenTTL <= 0 {
			return errors.New("resume requires TokenTTL > 0")
		}
		switch c.Resume.SigningMethod {
		case "hs256":
			if len(c.Resume.PrivateKey) == 0 {
				return errors.New("resume hs256 requires private key")
			}
		case "ed25519":
			if len(c.Resume.PrivateKey) == 0 || len(c.Resume.PublicKey) == 0 {
				return errors.New("resume ed25519 requires key pair")
			}
		default:
			return errors.New("unsupported resume signing method")
		}
	}
	if c.Client.Timeout < 0 {
		return errors.New("client timeout must not be negative")
	}
	return nil
}
