// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDefaults_ZeroDisables(t *testing.T) {
	cfg := ConversionConfig{}.WithDefaults()
	assert.Zero(t, cfg.MaxRetries)
	assert.Zero(t, cfg.MinChunkBytes)
	assert.Equal(t, DefaultMaxChunkBytes, cfg.MaxChunkBytes)
	assert.Equal(t, DefaultModel, cfg.Model)
}

func TestWithDefaults_NegativeValues(t *testing.T) {
	cfg := ConversionConfig{
		HTTPConfig:    HTTPConfig{MaxRetries: -1},
		MinChunkBytes: -5,
	}.WithDefaults()
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Zero(t, cfg.MinChunkBytes)
}

func TestWithDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := ConversionConfig{
		HTTPConfig:    HTTPConfig{MaxRetries: 7},
		MinChunkBytes: 10,
		MaxChunkBytes: 100,
	}.WithDefaults()
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.Equal(t, int64(10), cfg.MinChunkBytes)
	assert.Equal(t, int64(100), cfg.MaxChunkBytes)
}
