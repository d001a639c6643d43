package config

import (
	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/cruciblehq/greenhouse/internal/image"
)

// Build daemon settings, a subset of buildkitd.toml.
type Daemon struct {
	Debug                bool                `toml:"debug,omitempty"`
	Registry             map[string]Registry `toml:"registry,omitempty"` // Keyed by registry host.
	Worker               map[string]Worker   `toml:"worker,omitempty"`   // Keyed by worker name, e.g. "oci".
	InsecureEntitlements []string            `toml:"insecure-entitlements,omitempty"`
}

// How to reach one registry host.
type Registry struct {
	Mirrors  []string `toml:"mirrors,omitempty"`  // Hosts tried before the registry itself.
	HTTP     bool     `toml:"http,omitempty"`     // Plain HTTP.
	Insecure bool     `toml:"insecure,omitempty"` // Skip TLS verification.
}

// Limits of one worker.
type Worker struct {
	MaxParallelism int `toml:"max-parallelism,omitempty"`
}

// Checks values the TOML types alone cannot.
func (d Daemon) Validate() error {
	for host, r := range d.Registry {
		if host == "" {
			return failure.Wrapf(failure.ErrValidation, "registry with empty host")
		}
		for _, m := range r.Mirrors {
			if m == "" {
				return failure.Wrapf(failure.ErrValidation, "registry %s has an empty mirror", host)
			}
		}
	}
	for name, w := range d.Worker {
		if w.MaxParallelism < 0 {
			return failure.Wrapf(failure.ErrValidation, "worker %s: max-parallelism %d is negative", name, w.MaxParallelism)
		}
	}
	return nil
}

// Returns the registry settings in the form the image locker takes.
func (d Daemon) Registries() map[string]image.Registry {
	out := make(map[string]image.Registry, len(d.Registry))
	for host, r := range d.Registry {
		out[host] = image.Registry{Mirrors: r.Mirrors, HTTP: r.HTTP, Insecure: r.Insecure}
	}
	return out
}
