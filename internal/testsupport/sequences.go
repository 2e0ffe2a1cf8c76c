package testsupport

import (
	"fmt"
	"sync/atomic"
	"time"
)

// sequence starts from the clock so reruns against the same database do not
// collide with rows a previous run left behind
var sequence atomic.Uint64

func init() {
	sequence.Store(uint64(time.Now().UnixNano() % 1_000_000))
}

func next() uint64 {
	return sequence.Add(1)
}

// UniqueName returns prefix with a unique numeric suffix, e.g. "Alice_123457"
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, next())
}

// UniqueUsername returns a unique Telegram username that is already normalized
func UniqueUsername() string {
	return fmt.Sprintf("user_%d", next())
}

// UniqueChatID returns a unique Telegram chat id
func UniqueChatID() int64 {
	return 100_000_000 + int64(next()%900_000_000)
}
