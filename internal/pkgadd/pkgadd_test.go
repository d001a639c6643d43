package pkgadd

import (
	"errors"
	"strings"
	"testing"

	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/cruciblehq/greenhouse/internal/stage"
)

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want bool
	}{
		{"zero", Spec{}, true},
		{"empty slices", Spec{Apk: []string{}, Apt: []string{}, AptGet: []string{}}, true},
		{"apk", Spec{Apk: []string{"musl-dev"}}, false},
		{"apt", Spec{Apt: []string{"libssl-dev"}}, false},
		{"apt-get", Spec{AptGet: []string{"pkg-config"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.IsEmpty(); got != tt.want {
				t.Fatalf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	spec := Spec{Apt: []string{"libssl-dev", "pkg-config"}}
	res := spec.Build(DefaultInstaller, "rust-base")

	if res.Name() != "rust-base-pkgadd" {
		t.Fatalf("Name() = %q, want %q", res.Name(), "rust-base-pkgadd")
	}
	if res.Stage.Network != stage.Default {
		t.Fatalf("Network = %v, want %v", res.Stage.Network, stage.Default)
	}

	for _, want := range []string{
		"FROM docker.io/tonistiigi/xx:1.6.1 AS rust-base-xx\n\nFROM rust-base AS rust-base-pkgadd\n",
		"RUN --network=default \\\n",
		"  --mount=from=rust-base-xx,source=/usr/bin/xx-apt-get,target=/usr/bin/xx-apt-get,ro \\\n",
		"  --mount=from=rust-base-xx,source=/usr/bin/xx-c++,target=/usr/bin/xx-c++,ro \\\n",
		"then set -- libssl-dev pkg-config;",
	} {
		if !strings.Contains(res.Block, want) {
			t.Fatalf("Block missing %q:\n%s", want, res.Block)
		}
	}

	apk := strings.Index(res.Block, "command -v apk ")
	apt := strings.Index(res.Block, "command -v apt ")
	aptGet := strings.Index(res.Block, "command -v apt-get ")
	if !(apk >= 0 && apk < apt && apt < aptGet) {
		t.Fatalf("managers not checked in order apk, apt, apt-get:\n%s", res.Block)
	}
}

func TestBuildPlaceholder(t *testing.T) {
	res := Spec{}.Build(DefaultInstaller, "rust-base")

	if got := strings.Count(res.Block, "set -- "+Placeholder+";"); got != 3 {
		t.Fatalf("placeholder rendered %d times, want 3:\n%s", got, res.Block)
	}
	if strings.Contains(res.Block, `set -- ;`) || strings.Contains(res.Block, `""`) {
		t.Fatalf("Block renders an empty list:\n%s", res.Block)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		ok   bool
	}{
		{"empty", Spec{}, true},
		{"plain", Spec{Apt: []string{"libssl-dev", "pkg-config"}}, true},
		{"versioned", Spec{Apt: []string{"libssl-dev=3.0.11-1~deb12u2", "g++"}, Apk: []string{"musl-dev"}}, true},
		{"arch qualified", Spec{AptGet: []string{"libc6:arm64"}}, true},
		{"command separator", Spec{Apt: []string{"foo;rm -rf /"}}, false},
		{"space", Spec{Apk: []string{"musl dev"}}, false},
		{"substitution", Spec{AptGet: []string{"$(id)"}}, false},
		{"quote", Spec{Apt: []string{"a'b"}}, false},
		{"leading dash", Spec{Apt: []string{"--allow-unauthenticated"}}, false},
		{"empty name", Spec{Apt: []string{""}}, false},
		{"placeholder", Spec{Apk: []string{Placeholder}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.ok {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidPackage) {
				t.Fatalf("Validate() = %v, want %v", err, ErrInvalidPackage)
			}
			if !errors.Is(err, failure.ErrValidation) {
				t.Fatalf("Validate() = %v, want %v", err, failure.ErrValidation)
			}
		})
	}
}
