package goapicache

import "net/url"

// Key derives the cache key for a resource path and an optional parameter
// set. Parameters are encoded as name=value pairs sorted by name, so two
// requests with the same parameters in a different order share a key.
func Key(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}

	return path + "?" + params.Encode()
}
