// Package topology resolves a deployment mode to the compose file that
// defines the service set for that mode.
package topology

// Mode selector tokens. Anything that is not the production token resolves
// to development — resolution is a bare equality test, so a typo like
// "porduction" silently selects the development topology. That matches the
// stack's historical behavior and stays until the command surface grows
// real selector validation.
const (
	ModeDevelopment = "dev"
	ModeProduction  = "prod"

	// ModeProductionLong is accepted as an alias for ModeProduction.
	ModeProductionLong = "production"
)

// Topology holds the two compose file references known to the system.
// Both are fixed for the process lifetime.
type Topology struct {
	DevFile  string
	ProdFile string
}

// IsProduction reports whether the selector names the production mode.
func IsProduction(mode string) bool {
	return mode == ModeProduction || mode == ModeProductionLong
}

// Resolve returns the compose file for the given mode selector.
func (t Topology) Resolve(mode string) string {
	if IsProduction(mode) {
		return t.ProdFile
	}
	return t.DevFile
}

// Normalize collapses a selector to its canonical token.
func Normalize(mode string) string {
	if IsProduction(mode) {
		return ModeProduction
	}
	return ModeDevelopment
}
