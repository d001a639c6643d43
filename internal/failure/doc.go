// Package failure defines the error kinds shared by every stage builder.
//
// Each kind is a sentinel. Builders wrap the underlying cause with the kind
// that describes it, so the orchestrator can branch with [errors.Is] while
// the message still carries the path, command line or raw text that produced
// the failure:
//
//	data, err := os.ReadFile(path)
//	if err != nil {
//	    return failure.Wrap(failure.ErrUnavailable, err)
//	}
//
// [ErrBug] marks a broken internal assumption (an environment this tool was
// not designed for) rather than a user mistake.
package failure
