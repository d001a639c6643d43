package virtual

import (
	"sync"
	"testing"
)

const realIndex = "index.crates.io-1949cf8c6b5b557f"

func TestVirtualizeRoundTrip(t *testing.T) {
	c := New("/home/u/proj/target/", "/home/u/.cargo")

	paths := []string{
		"/home/u/proj/target/debug/deps/libfoo-abc.rlib",
		"/home/u/proj/target",
		"--out-dir /home/u/proj/target/debug/deps -L dependency=/home/u/proj/target/debug/deps",
	}

	for _, p := range paths {
		v := c.Virtualize(p)
		if v == p {
			t.Fatalf("Virtualize(%q) did not change the path", p)
		}
		if back := c.Unvirtualize(v); back != p {
			t.Fatalf("Unvirtualize(Virtualize(%q)) = %q", p, back)
		}
	}

	if got := c.Virtualize("/home/u/proj/target/debug"); got != OutputRoot+"/debug" {
		t.Fatalf("Virtualize = %q, want %q", got, OutputRoot+"/debug")
	}
}

func TestVirtualizeDisabled(t *testing.T) {
	c := New("", "")
	p := "/home/u/proj/target/debug"
	if c.Virtualize(p) != p || c.Unvirtualize(OutputRoot) != OutputRoot {
		t.Fatal("virtualization should be identity without an output root")
	}
}

func TestHideRoundTrip(t *testing.T) {
	c := New("", "")

	text := "/home/u/.cargo/registry/src/" + realIndex + "/pico-args-0.5.0/src/lib.rs"
	if c.Unhide(text) != text {
		t.Fatal("Unhide should be identity before any observation")
	}

	hidden := c.Hide(text)
	want := "/home/u/.cargo/registry/src/" + Index + "/pico-args-0.5.0/src/lib.rs"
	if hidden != want {
		t.Fatalf("Hide = %q, want %q", hidden, want)
	}
	if back := c.Unhide(hidden); back != text {
		t.Fatalf("Unhide(Hide(x)) = %q, want %q", back, text)
	}

	got, ok := c.RealIndex()
	if !ok || got != realIndex {
		t.Fatalf("RealIndex = (%q, %v), want (%q, true)", got, ok, realIndex)
	}
}

func TestHideFirstWriterWins(t *testing.T) {
	c := New("", "")
	other := "index.crates.io-6f17d22bba15001f"

	c.Hide("/a/" + realIndex + "/b")
	if got := c.Hide("/a/" + other + "/b"); got != "/a/"+Index+"/b" {
		t.Fatalf("Hide = %q, second index not hidden", got)
	}
	if got, _ := c.RealIndex(); got != realIndex {
		t.Fatalf("RealIndex = %q, want first observed %q", got, realIndex)
	}
}

func TestHideIgnoresPlaceholder(t *testing.T) {
	c := New("", "")
	c.Hide("/a/" + Index + "/b")
	if _, ok := c.RealIndex(); ok {
		t.Fatal("placeholder recorded as real index")
	}
}

func TestIndexOfConcurrent(t *testing.T) {
	c := New("", "")

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IndexOf("/h/.cargo/registry/src/" + realIndex + "/x-1.0.0")
		}()
	}
	wg.Wait()

	if got, ok := c.RealIndex(); !ok || got != realIndex {
		t.Fatalf("RealIndex = (%q, %v)", got, ok)
	}
	if _, ok := New("", "").IndexOf("/no/index/here"); ok {
		t.Fatal("IndexOf found an index in a path without one")
	}
}

func TestIsIndex(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{realIndex, true},
		{Index, false},
		{"index.crates.io-1949cf8c6b5b557", false},
		{"x" + realIndex, false},
		{realIndex + "/pico-args-0.5.0", false},
		{"github.com-1ecc6299db9ec823", false},
	}

	for _, tt := range tests {
		if got := IsIndex(tt.name); got != tt.want {
			t.Fatalf("IsIndex(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
