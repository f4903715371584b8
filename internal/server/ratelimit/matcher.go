package ratelimit

import "strings"

// MatchEndpoint returns the rule for a request, or nil when the default
// applies. Exact paths win over prefix rules (paths ending in "/"). The
// health check is never limited.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method || !strings.HasSuffix(c.Path, "/") || !strings.HasPrefix(path, c.Path) {
			continue
		}
		if best == nil || len(c.Path) > len(best.Path) {
			best = c
		}
	}
	return best
}

// key is the bucket key for path under this rule. Prefix rules share one
// bucket for every path they cover.
func (c *EndpointConfig) key(path string) string {
	if c.Path == "" {
		return path
	}
	return c.Path
}
