package image

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/containerd/v2/core/remotes"
	"github.com/containerd/containerd/v2/core/remotes/docker"
	"github.com/containerd/errdefs"
	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/distribution/reference"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Resolves a reference to its digest-pinned form.
type Locker interface {
	Lock(ctx context.Context, ref Ref) (Ref, error)
}

// Per-host registry settings.
type Registry struct {
	Mirrors  []string // Hosts tried before the registry itself.
	HTTP     bool     // Talk plain HTTP instead of HTTPS.
	Insecure bool     // Skip TLS certificate verification.
}

// A [Locker] that asks the registry which manifest a tag points to.
type RegistryLocker struct {
	resolver remotes.Resolver
}

// Creates a locker using the given per-host settings. Hosts without an entry
// use the registry defaults (HTTPS, plain HTTP for localhost).
func NewRegistryLocker(registries map[string]Registry) *RegistryLocker {
	return &RegistryLocker{
		resolver: docker.NewResolver(docker.ResolverOptions{
			Hosts: registryHosts(registries),
		}),
	}
}

// Returns ref pinned to the digest its tag currently resolves to.
//
// Already locked references are returned unchanged. A reference without a
// tag resolves "latest".
func (l *RegistryLocker) Lock(ctx context.Context, ref Ref) (Ref, error) {
	if ref.Locked() {
		return ref, nil
	}

	named, err := ref.Named()
	if err != nil {
		return Ref{}, err
	}
	name := reference.TagNameOnly(named).String()

	_, desc, err := l.resolver.Resolve(ctx, name)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return Ref{}, failure.Wrapf(failure.ErrUnavailable, "image %s not found: %w", name, err)
		}
		return Ref{}, failure.Wrapf(failure.ErrUnavailable, "resolving %s: %w", name, err)
	}

	index, err := isIndex(desc)
	if err != nil {
		return Ref{}, failure.Wrapf(failure.ErrUnavailable, "%w: %s is %s", ErrMediaType, name, err)
	}

	slog.Debug("image locked",
		"image", name,
		"digest", desc.Digest.String(),
		"index", index,
	)

	return ref.Lock(desc.Digest.String())
}

// Reports whether desc points at a multi-platform index rather than a single
// manifest. Fails for anything that is neither.
func isIndex(desc ocispec.Descriptor) (bool, error) {
	switch desc.MediaType {
	case ocispec.MediaTypeImageIndex, images.MediaTypeDockerSchema2ManifestList:
		return true, nil
	case ocispec.MediaTypeImageManifest, images.MediaTypeDockerSchema2Manifest:
		return false, nil
	}
	return false, fmt.Errorf("media type %q", desc.MediaType)
}

// Builds the resolver's host lookup: configured mirrors first, then the
// registry itself.
func registryHosts(registries map[string]Registry) docker.RegistryHosts {
	return func(host string) ([]docker.RegistryHost, error) {
		cfg := registries[host]

		client := &http.Client{Transport: transport(cfg.Insecure)}
		authorizer := docker.NewDockerAuthorizer(docker.WithAuthClient(client))

		scheme := "https"
		if cfg.HTTP {
			scheme = "http"
		}

		hosts := make([]docker.RegistryHost, 0, len(cfg.Mirrors)+1)
		for _, mirror := range cfg.Mirrors {
			hosts = append(hosts, docker.RegistryHost{
				Client:       client,
				Authorizer:   authorizer,
				Host:         mirror,
				Scheme:       scheme,
				Path:         "/v2",
				Capabilities: docker.HostCapabilityPull | docker.HostCapabilityResolve,
			})
		}

		defaults, err := docker.ConfigureDefaultRegistries(
			docker.WithClient(client),
			docker.WithAuthorizer(authorizer),
			docker.WithPlainHTTP(func(h string) (bool, error) {
				if cfg.HTTP {
					return true, nil
				}
				return docker.MatchLocalhost(h)
			}),
		)(host)
		if err != nil {
			return nil, err
		}

		return append(hosts, defaults...), nil
	}
}

// Returns an HTTP transport, optionally skipping certificate verification.
func transport(insecure bool) http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return t
}
