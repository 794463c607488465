package config

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, CreateLogger(false, false))
	assert.NotNil(t, CreateLogger(true, false))
	assert.NotNil(t, CreateLogger(false, true))
	// debug wins over quiet
	assert.NotNil(t, CreateLogger(true, true))
}
