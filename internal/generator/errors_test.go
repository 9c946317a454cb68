package generator_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planfill/internal/generator"
)

func TestRateLimitError_DefaultsRetryAfter(t *testing.T) {
	err := generator.NewRateLimitError("deepseek", errors.New("429"), 0)

	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.Equal(t, "deepseek", err.Provider)
}

func TestRateLimitError_Unwrap(t *testing.T) {
	base := errors.New("too many requests")
	err := generator.NewRateLimitError("openai", base, 30)

	wrapped := fmt.Errorf("generate: %w", err)

	var rlErr *generator.RateLimitError
	require.ErrorAs(t, wrapped, &rlErr)
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 120, generator.ParseRetryAfterHeader("120"))
	assert.Equal(t, 0, generator.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, generator.ParseRetryAfterHeader("Wed, 21 Oct 2015 07:28:00 GMT"))
}
