package ratelimit

import (
	"strings"
)

// MatchEndpoint matches a request path and method to an endpoint
// configuration. Prefix patterns (paths ending in "/" or "-") cover
// parameterized routes like /resumes/{id} and the /ai-rewrite-* pair.
// Returns nil when no configuration matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// Health checks are never limited.
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method != method {
			continue
		}
		if strings.HasSuffix(config.Path, "/") || strings.HasSuffix(config.Path, "-") {
			if strings.HasPrefix(path, config.Path) {
				return config
			}
		}
	}

	return nil
}
