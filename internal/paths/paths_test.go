package paths

import (
	"path/filepath"
	"testing"
)

func TestSettings(t *testing.T) {
	p := Settings()
	if !filepath.IsAbs(p) {
		t.Fatalf("Settings() = %q, want an absolute path", p)
	}
	if got, want := filepath.Base(filepath.Dir(p)), appName; got != want {
		t.Fatalf("Settings() directory = %q, want %q", got, want)
	}
}

func TestCargoHome(t *testing.T) {
	if got := filepath.Base(CargoHome()); got != ".cargo" {
		t.Fatalf("CargoHome() = %q, want a .cargo directory", CargoHome())
	}
}
