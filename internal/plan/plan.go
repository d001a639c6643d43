package plan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/containerd/platforms"
	"github.com/cruciblehq/greenhouse/internal/failure"
	"github.com/cruciblehq/greenhouse/internal/image"
	"github.com/cruciblehq/greenhouse/internal/pkgadd"
	"github.com/cruciblehq/greenhouse/internal/source"
	"github.com/cruciblehq/greenhouse/internal/stage"
	"github.com/cruciblehq/greenhouse/internal/toolchain"
	"golang.org/x/sync/errgroup"
)

// Controls plan construction.
type Options struct {
	Syntax    image.Ref           // Dockerfile frontend.
	Toolchain toolchain.Toolchain // Stage providing the compiler.
	Add       pkgadd.Spec         // Extra packages installed on top of the toolchain.
	Installer image.Ref           // Image providing the xx helpers. Only used when Add is not empty.
	Sources   []source.Source     // Sources in emission order.
	CacheFrom []image.Ref         // Images the build imports cache from.
	CacheTo   []image.Ref         // Images the build exports cache to.
	Locker    image.Locker        // Pins image references. Nil leaves them as configured.
}

// A complete build description.
type Plan struct {
	Dockerfile string          // Rendered Dockerfile.
	Stages     []stage.Result  // Every emitted stage, in emission order.
	Contexts   []stage.Context // Named build contexts the engine must be given.
	Platform   string          // Platform the plan was built on, e.g. "linux/amd64".
	CacheFrom  []image.Ref
	CacheTo    []image.Ref
}

// Builds the plan.
func Build(ctx context.Context, env source.Env, opts Options) (*Plan, error) {
	if opts.Toolchain == nil {
		return nil, failure.Wrapf(failure.ErrBug, "%w: no toolchain", ErrPlan)
	}

	if err := opts.Add.Validate(); err != nil {
		return nil, err
	}

	slog.Info("building plan", "sources", len(opts.Sources), "packages", !opts.Add.IsEmpty())

	if err := lockImages(ctx, &opts); err != nil {
		return nil, err
	}

	results, err := buildSources(ctx, env, opts.Sources)
	if err != nil {
		return nil, err
	}

	base, err := opts.Toolchain.Block()
	if err != nil {
		return nil, failure.Wrap(ErrPlan, err)
	}

	head := []stage.Result{{
		Stage: stage.Stage{Name: opts.Toolchain.Name(), Network: stage.Default},
		Mount: "/",
		Block: base,
	}}
	if !opts.Add.IsEmpty() {
		head = append(head, opts.Add.Build(opts.Installer, opts.Toolchain.Name()))
	}

	return assemble(opts, append(head, results...))
}

// Pins every image reference the plan renders, once each.
func lockImages(ctx context.Context, opts *Options) error {
	if opts.Locker == nil {
		return nil
	}

	lock := func(ref image.Ref) (image.Ref, error) {
		if ref.Locked() {
			return ref, nil
		}
		locked, err := opts.Locker.Lock(ctx, ref)
		if err != nil {
			return image.Ref{}, failure.Wrap(ErrPlan, err)
		}
		slog.Debug("image locked", "ref", ref.String(), "digest", locked.Digest().String())
		return locked, nil
	}

	syntax, err := lock(opts.Syntax)
	if err != nil {
		return err
	}
	opts.Syntax = syntax

	base, err := lock(opts.Toolchain.Base())
	if err != nil {
		return err
	}
	opts.Toolchain = opts.Toolchain.WithBase(base)

	if !opts.Add.IsEmpty() {
		installer, err := lock(opts.Installer)
		if err != nil {
			return err
		}
		opts.Installer = installer
	}

	return nil
}

// Builds every source concurrently. Results keep the input order.
func buildSources(ctx context.Context, env source.Env, sources []source.Source) ([]stage.Result, error) {
	results := make([]stage.Result, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			res, err := src.Build(ctx, env)
			if err != nil {
				return failure.Wrapf(ErrPlan, "source %d (%T): %w", i+1, src, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Renders the Dockerfile from the ordered results.
//
// A stage name may appear more than once only with identical text.
func assemble(opts Options, results []stage.Result) (*Plan, error) {
	p := &Plan{
		Platform:  platforms.Format(platforms.DefaultSpec()),
		CacheFrom: opts.CacheFrom,
		CacheTo:   opts.CacheTo,
	}

	seen := make(map[stage.Name]string, len(results))
	blocks := make([]string, 0, len(results))

	for _, res := range results {
		block := stage.Trim(res.Block)
		if prev, ok := seen[res.Name()]; ok {
			if prev != block {
				return nil, failure.Wrapf(failure.ErrBug, "%w: %s", ErrConflict, res.Name())
			}
			continue
		}
		seen[res.Name()] = block

		p.Stages = append(p.Stages, res)
		if res.Stage.Context != nil {
			p.Contexts = append(p.Contexts, *res.Stage.Context)
		}
		if block != "" {
			blocks = append(blocks, block)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# syntax=%s\n", opts.Syntax.Path())
	for _, block := range blocks {
		b.WriteString("\n")
		b.WriteString(block)
	}
	p.Dockerfile = b.String()

	slog.Info("plan built", "stages", len(p.Stages), "contexts", len(p.Contexts), "platform", p.Platform)

	return p, nil
}

// Returns the build engine flags the plan needs besides the Dockerfile:
// one per named context, then cache imports and exports.
func (p *Plan) BuildArgs() []string {
	args := make([]string, 0, len(p.Contexts)+len(p.CacheFrom)+len(p.CacheTo))
	for _, c := range p.Contexts {
		args = append(args, c.Flag())
	}
	for _, ref := range p.CacheFrom {
		args = append(args, "--cache-from=type=registry,ref="+ref.Path())
	}
	for _, ref := range p.CacheTo {
		args = append(args, "--cache-to=type=registry,ref="+ref.Path()+",mode=max")
	}
	return args
}
