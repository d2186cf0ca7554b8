package main

import (
	"testing"

	"github.com/VirajsNexus/HireVoid/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationConfig(t *testing.T) {
	cfg := generationConfig()

	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, llm.DefaultTemperature, *cfg.Temperature, 1e-6)
	assert.Equal(t, int32(llm.DefaultMaxOutputTokens), cfg.MaxOutputTokens)
}
