package memory

import (
	"time"

	"chat-guardian-be/pkg/guardian"

	"github.com/patrickmn/go-cache"
)

const settingsCacheKey = "guardian_settings"

// SettingsCache keeps the last loaded settings snapshot so every chat turn
// does not hit the database for one row.
type SettingsCache struct {
	cache *cache.Cache
}

func NewSettingsCache(ttl time.Duration) *SettingsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c := cache.New(ttl, 10*time.Minute)
	return &SettingsCache{
		cache: c,
	}
}

func (s *SettingsCache) Set(settings guardian.Settings) {
	s.cache.Set(settingsCacheKey, settings, cache.DefaultExpiration)
}

func (s *SettingsCache) Get() (guardian.Settings, bool) {
	if x, found := s.cache.Get(settingsCacheKey); found {
		return x.(guardian.Settings), true
	}
	return guardian.Settings{}, false
}

// Invalidate drops the snapshot, forcing the next read to reload from the
// database. Called after an admin update.
func (s *SettingsCache) Invalidate() {
	s.cache.Delete(settingsCacheKey)
}
