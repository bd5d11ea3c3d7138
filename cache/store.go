package cache

import "log"

// NewStore picks the redis store when an address is configured and falls
// back to the in-memory store otherwise. A redis connection failure also
// falls back; the cache is an optimization, not a dependency.
func NewStore(redisAddr string) Store {
	if redisAddr == "" {
		log.Println("[CACHE] REDIS_ADDR not set, using in-memory cache store")
		return NewMemoryStore()
	}
	store, err := NewRedisStore(redisAddr)
	if err != nil {
		log.Printf("[CACHE] redis unavailable (%v), using in-memory cache store", err)
		return NewMemoryStore()
	}
	log.Printf("[CACHE] connected to redis at %s", redisAddr)
	return store
}
