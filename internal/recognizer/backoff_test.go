package recognizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryDelayDoublesFromOneSecond(t *testing.T) {
	assert.Equal(t, 1*time.Second, RetryDelay(1))
	assert.Equal(t, 2*time.Second, RetryDelay(2))
	assert.Equal(t, 4*time.Second, RetryDelay(3))
	assert.Equal(t, 8*time.Second, RetryDelay(4))
	assert.Equal(t, 16*time.Second, RetryDelay(5))
	assert.Equal(t, 32*time.Second, RetryDelay(6))
}

func TestRetryDelayCapsAtSixtySeconds(t *testing.T) {
	assert.Equal(t, 60*time.Second, RetryDelay(7))
	assert.Equal(t, 60*time.Second, RetryDelay(8))
	assert.Equal(t, 60*time.Second, RetryDelay(100))
}

func TestRetryDelayClampsInvalidAttempt(t *testing.T) {
	assert.Equal(t, 1*time.Second, RetryDelay(0))
	assert.Equal(t, 1*time.Second, RetryDelay(-3))
}
