package orm

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"gorm.io/gorm"
)

// APICache stores cached upstream API responses keyed by request hash.
type APICache struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
}

// CacheKey derives a stable cache key from a provider name and the
// request's identifying parts.
func CacheKey(provider string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(provider))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return provider + ":" + hex.EncodeToString(h.Sum(nil))[:32]
}

// GetCacheEntry retrieves a valid cache entry
func GetCacheEntry(db *gorm.DB, key string) (*APICache, error) {
	var entry APICache
	err := db.Where("key = ? AND expires_at > ?", key, time.Now()).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetCacheEntry upserts a cache entry
func SetCacheEntry(db *gorm.DB, key string, value []byte, ttl time.Duration) error {
	entry := APICache{
		Key:       key,
		Value:     value,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	return db.Save(&entry).Error
}

// CleanupCache removes expired entries
func CleanupCache(db *gorm.DB) error {
	return db.Where("expires_at < ?", time.Now()).Delete(&APICache{}).Error
}
