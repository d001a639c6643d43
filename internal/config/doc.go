// Package config reads and writes greenhouse settings documents.
//
// Documents are TOML. Unknown keys are rejected so a misspelt option never
// goes unnoticed, and encoding omits every empty, false or default field, so
// a document survives a decode/encode round trip unchanged. Image references
// are validated while decoding.
//
// A complete settings file looks like:
//
//	syntax = "docker-image://docker.io/docker/dockerfile:1"
//	base-image = "docker-image://docker.io/library/debian:12-slim"
//
//	[cache]
//	cache-from-images = ["docker-image://ghcr.io/acme/cache:main"]
//
//	[add]
//	apt = ["libssl-dev", "pkg-config"]
//
//	[daemon]
//	debug = true
//	insecure-entitlements = ["network.host"]
//
//	[daemon.registry."docker.io"]
//	mirrors = ["mirror.gcr.io"]
//
//	[daemon.worker.oci]
//	max-parallelism = 4
//
// Example usage:
//
//	settings, err := config.Load(paths.Settings())
//	if err != nil {
//	    return err
//	}
//
//	locker := image.NewRegistryLocker(settings.Daemon.Registries())
package config
