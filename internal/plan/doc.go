// Package plan assembles the complete multi-stage Dockerfile for one build.
//
// A plan starts from a toolchain, optional extra packages and any number of
// sources. Image references are locked to digests first, once per plan, so
// the text does not change when an upstream tag moves. Sources are then built
// concurrently; the first failure cancels the rest and no partial plan is
// returned. Blocks are emitted in a fixed order regardless of which source
// finished first: the toolchain, the package stage, then sources in input
// order. Sources that resolve to the same stage are emitted once.
//
// Example usage:
//
//	p, err := plan.Build(ctx, env, plan.Options{
//	    Syntax:    settings.SyntaxImage(),
//	    Toolchain: desc,
//	    Sources:   []source.Source{source.Workspace{Root: root}},
//	    Locker:    image.NewRegistryLocker(settings.Daemon.Registries()),
//	})
//	if err != nil {
//	    return err
//	}
//
//	fmt.Print(p.Dockerfile)
package plan
