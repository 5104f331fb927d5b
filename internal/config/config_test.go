package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDSNCarriesStatementTimeout(t *testing.T) {
	cfg := &Config{
		DBHost:             "db.internal",
		DBPort:             "5432",
		DBUser:             "scamradar",
		DBPassword:         "secret",
		DBName:             "scamradar_db",
		DBSSLMode:          "require",
		DBStatementTimeout: 30 * time.Second,
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "sslmode=require")
	assert.Contains(t, dsn, "statement_timeout=30000")
}

func TestParseCSVNormalizes(t *testing.T) {
	assert.Equal(t, []string{"jpg", "png"}, parseCSV(" JPG , png ,"))
	assert.Nil(t, parseCSV(""))
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, 30*time.Second, parseDuration("not-a-duration", 30*time.Second))
	assert.Equal(t, 2*time.Minute, parseDuration("2m", time.Second))
}
