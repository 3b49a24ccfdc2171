package cook

// Particle attribute names differ between the host and the cook engine.
// hostToEngine is used when host particle data is fed into the engine as
// geometry input; engineToHost is used when particle output is synced into
// the host. The two tables are inverses of each other.
var (
	hostToEngine = map[string]string{
		"position":        "P",
		"velocity":        "v",
		"acceleration":    "force",
		"rgbPP":           "Cd",
		"opacityPP":       "Alpha",
		"radiusPP":        "pscale",
		"finalLifespanPP": "life",
	}
	engineToHost = invert(hostToEngine)
)

// ToEngine maps a host particle attribute name to the engine name. Unmapped
// names pass through unchanged. It serves the geometry-input direction, where
// host particles are marshalled into the engine.
func ToEngine(hostName string) string {
	if n, ok := hostToEngine[hostName]; ok {
		return n
	}
	return hostName
}

// ToHost maps an engine particle attribute name to the host name. Unmapped
// names pass through unchanged.
func ToHost(engineName string) string {
	if n, ok := engineToHost[engineName]; ok {
		return n
	}
	return engineName
}

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
