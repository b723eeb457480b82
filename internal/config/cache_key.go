package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// LoginSessionKey returns the cache key holding the active token id of a principal.
// kind is the token type ("student" or "teacher").
func (r *CacheKeyStruct) LoginSessionKey(kind, userID string) string {
	return fmt.Sprintf("login:%s:%s", kind, userID)
}

// ClassLiveChannel returns the PubSub channel carrying live attendance events for a class.
func (r *CacheKeyStruct) ClassLiveChannel(classID string) string {
	return fmt.Sprintf("class:%s:live", classID)
}

var CacheKey = NewCacheKeyStruct()
