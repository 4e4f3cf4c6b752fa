package pack

import "fmt"

// ConfigError reports an invalid engine or sampler configuration.
// It is returned eagerly at construction, never at sample time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Reason
}

// InfeasibleError reports that the attempt budget was exhausted before
// the requested circle count was reached. It carries the last rejected
// candidate so the failing configuration can be replayed from the same
// seed.
type InfeasibleError struct {
	Target   int     // requested primary circle count
	Placed   int     // primaries placed before giving up
	Attempts int     // attempts spent on the failing circle
	Radius   float64 // last candidate radius
	CX, CY   float64 // last candidate center
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf(
		"packing infeasible: placed %d/%d circles, gave up after %d attempts (last candidate r=%g at (%g, %g))",
		e.Placed, e.Target, e.Attempts, e.Radius, e.CX, e.CY)
}
