package image

import (
	_ "crypto/sha256"
	"fmt"
	"strings"

	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/distribution/reference"
	"github.com/opencontainers/go-digest"
)

const (

	// Prefix every reference carries.
	Scheme = "docker-image://"

	// Reference of the default Dockerfile syntax frontend.
	defaultRef = Scheme + "docker.io/docker/dockerfile:1"
)

// The default syntax frontend image.
var Default = Ref{s: defaultRef}

// A validated container image reference.
//
// The zero value behaves as [Default]. Other values come from [New] or
// [Ref.Lock].
type Ref struct {
	s string
}

// Validates s and returns it as a reference.
//
// s must carry no surrounding whitespace, start with [Scheme], contain no
// spaces or quotes, and name a well-formed repository.
func New(s string) (Ref, error) {
	if s != strings.TrimSpace(s) {
		return Ref{}, invalid(s, "surrounding whitespace")
	}
	if !strings.HasPrefix(s, Scheme) {
		return Ref{}, invalid(s, "missing "+Scheme+" prefix")
	}
	if strings.ContainsAny(s, " \"'") {
		return Ref{}, invalid(s, "contains a space or quote")
	}

	path := strings.TrimPrefix(s, Scheme)
	if _, err := reference.ParseNormalizedNamed(path); err != nil {
		return Ref{}, invalid(s, err.Error())
	}

	return Ref{s: s}, nil
}

// Like [New] but panics on error. For references known at compile time.
func MustNew(s string) Ref {
	r, err := New(s)
	if err != nil {
		panic(err)
	}
	return r
}

func invalid(s, reason string) error {
	return failure.Wrapf(failure.ErrValidation, "%w %q: %s", ErrInvalidReference, s, reason)
}

// Returns the full reference, scheme included.
func (r Ref) String() string {
	if r.s == "" {
		return defaultRef
	}
	return r.s
}

// Returns the reference without its scheme, as used in FROM and --mount=from.
func (r Ref) Path() string {
	return strings.TrimPrefix(r.String(), Scheme)
}

// Reports whether the reference carries a digest.
func (r Ref) Locked() bool {
	return strings.Contains(r.Path(), "@")
}

// Reports whether the path has exactly the colons of a tagged reference in
// its lock state: one when unlocked, two when locked.
func (r Ref) Tagged() bool {
	want := 1
	if r.Locked() {
		want = 2
	}
	return strings.Count(r.Path(), ":") == want
}

// Returns the reference pinned to d.
//
// The reference must be unlocked and d must be exactly "sha256:" followed by
// 64 hex characters.
func (r Ref) Lock(d string) (Ref, error) {
	if r.Locked() {
		return Ref{}, failure.Wrapf(failure.ErrValidation, "%w: %s", ErrAlreadyLocked, r)
	}

	parsed, err := digest.Parse(d)
	if err != nil || parsed.Algorithm() != digest.SHA256 || parsed.String() != d {
		return Ref{}, failure.Wrapf(failure.ErrValidation, "%w: %q", ErrInvalidDigest, d)
	}

	return Ref{s: r.String() + "@" + d}, nil
}

// Returns the reference with its digest removed. Panics if r is unlocked.
func (r Ref) Unlocked() Ref {
	s := r.String()
	i := strings.IndexByte(s, '@')
	if i < 0 {
		panic(fmt.Sprintf("image: Unlocked called on unlocked reference %s", s))
	}
	return Ref{s: s[:i]}
}

// Returns the reference's digest. Panics if r is unlocked.
func (r Ref) Digest() digest.Digest {
	s := r.String()
	i := strings.IndexByte(s, '@')
	if i < 0 {
		panic(fmt.Sprintf("image: Digest called on unlocked reference %s", s))
	}
	return digest.Digest(s[i+1:])
}

// Splits an unlocked reference into repository path and tag. The tag is
// empty when there is none. Panics if r is locked.
func (r Ref) PathAndTag() (path, tag string) {
	if r.Locked() {
		panic(fmt.Sprintf("image: PathAndTag called on locked reference %s", r))
	}

	p := r.Path()
	i := strings.LastIndexByte(p, ':')
	if i < 0 || strings.IndexByte(p[i:], '/') >= 0 {
		return p, ""
	}
	return p[:i], p[i+1:]
}

// Returns the reference as a normalized repository name.
func (r Ref) Named() (reference.Named, error) {
	named, err := reference.ParseNormalizedNamed(r.Path())
	if err != nil {
		return nil, invalid(r.String(), err.Error())
	}
	return named, nil
}

// Implements [encoding.TextMarshaler].
func (r Ref) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Implements [encoding.TextUnmarshaler].
func (r *Ref) UnmarshalText(text []byte) error {
	v, err := New(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
