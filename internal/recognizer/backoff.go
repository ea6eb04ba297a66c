package recognizer

import "time"

const (
	initialRetryDelay = 1 * time.Second
	maxRetryDelay     = 60 * time.Second
)

// RetryDelay returns the delay to sleep after the given failed attempt
// (1-based) before retrying: exponential starting at one second, doubling
// each attempt, capped at sixty seconds.
func RetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := initialRetryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}
