package geocode

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
)

// Cache stores search answers by query key. Empty answers are cached too so
// repeated misses do not spend rate-limited requests.
type Cache interface {
	Get(ctx context.Context, key string) ([]Place, bool, error)
	Set(ctx context.Context, key string, places []Place) error
}

// CacheKey returns the SHA-256 hex of the normalized query.
func CacheKey(q Query) string {
	norm := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	raw := fmt.Sprintf("%s|%s|%s|%s", norm(q.Street), norm(q.City), norm(q.CountryCode), norm(q.Text))
	return fmt.Sprintf("%x", sha256.Sum256([]byte(raw)))
}

func keyPrefix(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
