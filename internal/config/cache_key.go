package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// InterviewSnapshotKey returns the cache key for an interview's latest state snapshot
func (r *CacheKeyStruct) InterviewSnapshotKey(sessionID string) string {
	return fmt.Sprintf("interview:%s:snapshot", sessionID)
}

// InterviewViewChannel returns the Redis PubSub channel name for an interview's live view
func (r *CacheKeyStruct) InterviewViewChannel(sessionID string) string {
	return fmt.Sprintf("interview:%s:view", sessionID)
}

var CacheKey = NewCacheKeyStruct()
