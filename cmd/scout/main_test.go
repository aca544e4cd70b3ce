package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bkyoung/secret-scout/internal/adapter/httpx"
)

func TestLogFormatExplicitSetting(t *testing.T) {
	assert.Equal(t, httpx.LogFormatHuman, logFormat("human"))
	assert.Equal(t, httpx.LogFormatJSON, logFormat("json"))
}

func TestLogFormatAutoDetectInTests(t *testing.T) {
	// Test processes run without a terminal on stderr.
	assert.Equal(t, httpx.LogFormatJSON, logFormat(""))
}
