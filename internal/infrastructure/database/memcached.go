package database

import (
	"github.com/bradfitz/gomemcache/memcache"
)

// NewMemcached builds the client backing the adopter email directory
// cache. Optional; callers skip it when no server is configured.
func NewMemcached(server string) *memcache.Client {
	return memcache.New(server)
}
