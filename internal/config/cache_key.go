package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's active session JTI.
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:student:%d", studentID)
}

// PollDetailKey returns the cache key for the student-facing detail payload
// of an active poll.
func (r *CacheKeyStruct) PollDetailKey(code string) string {
	return fmt.Sprintf("poll:%s:detail", code)
}

var CacheKey = NewCacheKeyStruct()
