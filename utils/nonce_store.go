package utils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Login nonces are single-use challenges a wallet signs to prove ownership.
// Redis is preferred; a mutex-guarded map keeps local development working
// without one.

type nonceEntry struct {
	nonce     string
	expiresAt time.Time
}

var (
	nonceStore   = map[string]nonceEntry{}
	nonceStoreMu sync.Mutex
)

// GenerateLoginNonce creates a random hex nonce for a wallet challenge.
func GenerateLoginNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func nonceKey(wallet string) string {
	return "login:nonce:" + wallet
}

// SaveLoginNonce stores a nonce for a wallet with TTL. Prefer Redis; fallback to memory.
func SaveLoginNonce(wallet, nonce string, ttl time.Duration) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, nonceKey(wallet), nonce, ttl).Err(); err == nil {
			return
		}
	}
	nonceStoreMu.Lock()
	nonceStore[wallet] = nonceEntry{nonce: nonce, expiresAt: time.Now().Add(ttl)}
	nonceStoreMu.Unlock()
}

// ConsumeLoginNonce checks a nonce and consumes it if valid, so a captured
// signature cannot be replayed. Prefer Redis; fallback to memory.
func ConsumeLoginNonce(wallet, nonce string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		key := nonceKey(wallet)
		// GETDEL keeps check-and-consume atomic (Redis >= 6.2)
		if val, err := rc.GetDel(ctx, key).Result(); err == nil {
			return val == nonce
		}
		// Fallback to atomic Lua: GET then DEL
		script := `local v=redis.call('GET', KEYS[1]); if v then redis.call('DEL', KEYS[1]); end; return v`
		if res, err := rc.Eval(ctx, script, []string{key}).Result(); err == nil {
			if s, ok := res.(string); ok {
				return s == nonce
			}
			return false
		}
		// On Redis error (e.g., network), fall through to memory fallback
	}
	nonceStoreMu.Lock()
	defer nonceStoreMu.Unlock()
	entry, ok := nonceStore[wallet]
	if !ok {
		return false
	}
	delete(nonceStore, wallet)
	if time.Now().After(entry.expiresAt) {
		return false
	}
	return entry.nonce == nonce
}
