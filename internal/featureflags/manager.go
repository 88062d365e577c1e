// Package featureflags evaluates runtime feature toggles defined in
// configuration.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flag names.
const (
	FlagRegistration = "registration"
	FlagImageUploads = "image_uploads"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "registration=on,image_uploads=off,markdown_tables=25%"
//
// Percentage rollouts are deterministic per username, so a given author
// keeps the same answer across requests.
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled reports whether a flag is on for the given username. A flag that
// is not configured falls back to def, so features ship default-on and the
// config acts as a kill switch.
//
// Supported values: on/true/1, off/false/0, or N% for a deterministic
// per-username rollout.
func (m *Manager) Enabled(name, username string, def bool) bool {
	if m == nil {
		return def
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return def
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	if strings.HasSuffix(value, "%") {
		pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
		if err != nil || pct < 0 {
			return def
		}
		if pct >= 100 {
			return true
		}
		return bucket(name, username) < uint32(pct)
	}

	return def
}

// bucket maps flag+username to a stable value in [0,100).
func bucket(name, username string) uint32 {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%s", normalize(name), username)
	return h.Sum32() % 100
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
