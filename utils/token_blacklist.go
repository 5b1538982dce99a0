package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Logout revokes a JWT before its natural expiry by blacklisting its hash.
// Redis is preferred; a memory map covers setups without one.

var (
	blacklist   = map[string]time.Time{}
	blacklistMu sync.Mutex
)

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "jwt:blacklist:" + hex.EncodeToString(sum[:])
}

// BlacklistToken marks a token as revoked until it would have expired anyway.
func BlacklistToken(token string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, blacklistKey(token), "1", ttl).Err(); err == nil {
			return
		}
	}
	blacklistMu.Lock()
	blacklist[blacklistKey(token)] = time.Now().Add(ttl)
	blacklistMu.Unlock()
}

// IsTokenBlacklisted reports whether a token was revoked.
func IsTokenBlacklisted(token string) bool {
	key := blacklistKey(token)
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if n, err := rc.Exists(ctx, key).Result(); err == nil {
			return n > 0
		}
	}
	blacklistMu.Lock()
	defer blacklistMu.Unlock()
	until, ok := blacklist[key]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(blacklist, key)
		return false
	}
	return true
}
