package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "CALL_TOKEN_TTL", "CALL_PATH", "WAIT_POLL_INTERVAL", "REDIS_DB"} {
		t.Setenv(key, "")
	}
	Load()

	assert.Equal(t, 8088, ServerPort)
	assert.Equal(t, time.Hour, CallTokenTTL)
	assert.Equal(t, "/call", CallPath)
	assert.Equal(t, 5*time.Second, WaitPollInterval)
	assert.Equal(t, 0, RedisDB)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CALL_TOKEN_TTL", "15m")
	t.Setenv("SCHEDULE_PATH", "/later")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("SESSION_MAX_IDLE", "-5m")
	Load()

	assert.Equal(t, 9000, ServerPort)
	assert.Equal(t, 15*time.Minute, CallTokenTTL)
	assert.Equal(t, "/later", SchedulePath)
	assert.Equal(t, 0, RedisDB)
	assert.Equal(t, 10*time.Minute, SessionMaxIdle)
}
