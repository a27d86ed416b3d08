package github

import (
	"log"
	"strings"
	"time"
)

const (
	defaultMaxRetries   = 5
	defaultInitialDelay = 1 * time.Second
)

// retryWithBackoff executes a function with exponential backoff retry for
// transient network failures. Permanent errors fail immediately.
func retryWithBackoff(fn func() error) error {
	return retryWithBackoffCustom(defaultMaxRetries, defaultInitialDelay, fn)
}

// retryWithBackoffCustom allows custom retry configuration
func retryWithBackoffCustom(maxRetries int, initialDelay time.Duration, fn func() error) error {
	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[Retry] Attempt %d/%d after %v delay", attempt+1, maxRetries+1, delay)
			time.Sleep(delay)
			delay *= 2
		}

		lastErr = fn()
		if lastErr == nil {
			if attempt > 0 {
				log.Printf("[Retry] Succeeded on attempt %d/%d", attempt+1, maxRetries+1)
			}
			return nil
		}

		if !isRetryableError(lastErr) {
			log.Printf("[Retry] Non-retryable error, failing immediately: %v", lastErr)
			return lastErr
		}

		if attempt < maxRetries {
			log.Printf("[Retry] Retryable error on attempt %d/%d: %v", attempt+1, maxRetries+1, lastErr)
		}
	}

	log.Printf("[Retry] All %d attempts failed, giving up", maxRetries+1)
	return lastErr
}

// isRetryableError reports whether an error looks like a transient
// network failure worth retrying.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"eof",
		"timeout",
		"connection refused",
		"temporary failure",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
