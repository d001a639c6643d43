package stage

// Network isolation applied to a stage's RUN instructions.
type Network int

const (
	None    Network = iota // No network access. Most stages run isolated.
	Default                // The build engine's default network, needed to fetch packages.
)

// Returns the value used in "--network=<value>".
func (n Network) String() string {
	switch n {
	case None:
		return "none"
	case Default:
		return "default"
	default:
		return "unknown"
	}
}

// Returns the "--network=" RUN flag for this policy.
func (n Network) Flag() string {
	return "--network=" + n.String()
}
