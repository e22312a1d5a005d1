package cache

import "fmt"

// Key builds a cache key from a prefix and any number of parts.
func Key(prefix string, parts ...interface{}) string {
	key := prefix
	for _, part := range parts {
		key = fmt.Sprintf("%s:%v", key, part)
	}
	return key
}
