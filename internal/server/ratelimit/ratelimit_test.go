package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frozen pins the limiter's clock so bucket arithmetic is exact.
func frozen(l *Limiter, at time.Time) *time.Time {
	now := at
	l.now = func() time.Time { return now }
	return &now
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()
	frozen(limiter, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/employees", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/employees", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, info.RetryAfter, 6*time.Second)
}

func TestLimiter_Refill(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})
	defer limiter.Stop()
	now := frozen(limiter, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 60; i++ {
		limiter.Allow("c", "/employees", "GET")
	}
	allowed, _ := limiter.Allow("c", "/employees", "GET")
	require.False(t, allowed)

	*now = now.Add(time.Second)
	allowed, _ = limiter.Allow("c", "/employees", "GET")
	assert.True(t, allowed, "one token refills per second")
	allowed, _ = limiter.Allow("c", "/employees", "GET")
	assert.False(t, allowed)
}

func TestLimiter_ResetTime(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: 10 * time.Second})
	defer limiter.Stop()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	frozen(limiter, start)

	for i := 0; i < 5; i++ {
		limiter.Allow("c", "/x", "GET")
	}
	_, info := limiter.Allow("c", "/x", "GET")
	assert.Equal(t, 4, info.Remaining)
	assert.Equal(t, start.Add(6*time.Second), info.ResetTime)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := limiter.Allow("10.0.0.1", "/employees", "GET")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}

	allowed, _ := limiter.Allow("10.0.0.2", "/health", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/employees", "POST")
		assert.True(t, allowed)
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/employees/", Method: "DELETE", Limit: 2, Window: time.Hour},
		},
	})
	defer limiter.Stop()
	frozen(limiter, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 2; i++ {
		allowed, info := limiter.Allow("c", "/employees/abc", "DELETE")
		require.True(t, allowed)
		assert.Equal(t, 2, info.Limit)
	}
	allowed, _ := limiter.Allow("c", "/employees/abc", "DELETE")
	assert.False(t, allowed)

	allowed, info := limiter.Allow("c", "/employees/abc", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 100, info.Limit)
}

func TestLimiter_PrefixEntrySharedAcrossIDs(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/employees/", Method: "DELETE", Limit: 2, Window: time.Hour},
		},
	})
	defer limiter.Stop()
	frozen(limiter, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	allowedCount := 0
	for i := 0; i < 50; i++ {
		if allowed, _ := limiter.Allow("c", fmt.Sprintf("/employees/id%d", i), "DELETE"); allowed {
			allowedCount++
		}
	}
	assert.Equal(t, 2, allowedCount)

	allowed, _ := limiter.Allow("other", "/employees/id0", "DELETE")
	assert.True(t, allowed, "buckets stay per client")
}

func TestLimiter_DefaultBucketSharedAcrossIDs(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 3, DefaultWindow: time.Hour})
	defer limiter.Stop()
	frozen(limiter, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	for _, path := range []string{"/employees", "/employees/a", "/employees/b"} {
		allowed, _ := limiter.Allow("c", path, "GET")
		require.True(t, allowed, path)
	}
	allowed, _ := limiter.Allow("c", "/employees/c", "GET")
	assert.False(t, allowed)

	allowed, _ = limiter.Allow("c", "/dashboard", "GET")
	assert.True(t, allowed, "other routes keep their own bucket")
}

func TestLimiter_Burst(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/employees", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		},
	})
	defer limiter.Stop()
	frozen(limiter, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow("c", "/employees", "POST")
		require.True(t, allowed, "burst request %d", i+1)
	}
	allowed, _ := limiter.Allow("c", "/employees", "POST")
	assert.False(t, allowed)
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})
	defer limiter.Stop()
	frozen(limiter, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	var allowedCount atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("c", "/employees", "GET"); allowed {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), allowedCount.Load())
}

func TestLimiter_CleanupDropsIdleBuckets(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, IdleTimeout: time.Minute})
	defer limiter.Stop()
	now := frozen(limiter, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 4; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i), "/employees", "GET")
	}
	*now = now.Add(2 * time.Minute)
	limiter.Allow("10.0.0.0", "/employees", "GET")

	limiter.cleanupBuckets()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.buckets, 1)
	assert.Contains(t, limiter.buckets, "10.0.0.0:/employees:GET")
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Millisecond})
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/employees", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		name      string
		path      string
		method    string
		wantLimit int
		wantNil   bool
	}{
		{name: "health unlimited", path: "/health", method: "GET", wantLimit: 0},
		{name: "metrics unlimited", path: "/metrics", method: "GET", wantLimit: 0},
		{name: "create exact", path: "/employees", method: "POST", wantLimit: 100},
		{name: "delete by prefix", path: "/employees/abc", method: "DELETE", wantLimit: 100},
		{name: "profile by prefix", path: "/employees/abc/profile", method: "PUT", wantLimit: 100},
		{name: "dashboard", path: "/dashboard", method: "GET", wantLimit: 120},
		{name: "list uses default", path: "/employees", method: "GET", wantNil: true},
		{name: "get uses default", path: "/employees/abc", method: "GET", wantNil: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.NotEmpty(t, cfg.EndpointConfigs)
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().DefaultLimit, cfg.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.DefaultWindow)
	assert.Equal(t, time.Hour, cfg.IdleTimeout)
	assert.Empty(t, cfg.Blacklist)
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "soon")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "failed to parse rate limit environment")
}
