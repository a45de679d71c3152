package config

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default("test")
	require.NoError(t, cfg.Validate())
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Default("test")
	cfg.Port = "0"
	cfg.LockTTL = 5 * time.Second
	cfg.DefaultCurrency = "yen"
	cfg.StoreMaxAttempts = 0

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{"Port", "LockTTL", "DefaultCurrency", "StoreMaxAttempts"} {
		assert.True(t, strings.Contains(msg, want), "expected %q in %q", want, msg)
	}
	assert.Contains(t, msg, "  1. ")
}

func TestValidate_PaymentTimeoutBoundByLockTTL(t *testing.T) {
	cfg := Default("test")
	cfg.LockTTL = time.Minute
	cfg.PaymentTimeout = 2 * time.Minute

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PaymentTimeout")
}

func TestValidate_MemoryBackendSkipsMongo(t *testing.T) {
	cfg := Default("test")
	cfg.StoreBackend = StoreBackendMemory
	cfg.MongoURI = ""

	assert.NoError(t, cfg.Validate())
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv(EnvStoreBackend, StoreBackendMemory)
	t.Setenv(EnvLockTTL, "2m")
	t.Setenv(EnvDefaultMultiAnimalRate, "1.25")
	t.Setenv(EnvEventsEnabled, "false")
	t.Setenv(EnvDefaultTimeZone, "UTC")

	cfg := Load("test")

	assert.Equal(t, StoreBackendMemory, cfg.StoreBackend)
	assert.Equal(t, 2*time.Minute, cfg.LockTTL)
	assert.InDelta(t, 1.25, cfg.DefaultMultiAnimalRate, 1e-9)
	assert.Equal(t, "UTC", cfg.DefaultTimeZone)
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:secret@db:27017")
	assert.Equal(t, "mongodb://***:***@db:27017", got)
}
