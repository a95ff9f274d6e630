package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// PersonStatisticsKey returns the cache key for a person's cross-school statistics
func (r *CacheKeyStruct) PersonStatisticsKey(personID string) string {
	return fmt.Sprintf("person:%s:statistics", personID)
}

// PersonStatisticsVersionKey returns the key of the counter bumped on every statistics invalidation
func (r *CacheKeyStruct) PersonStatisticsVersionKey(personID string) string {
	return fmt.Sprintf("person:%s:statistics:version", personID)
}

var CacheKey = NewCacheKeyStruct()
