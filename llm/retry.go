package llm

import "time"

// RetryStrategy decides whether a failed request is attempted again and how
// long to wait before doing so.
type RetryStrategy interface {
	ShouldRetry(err error) bool
	NextDelay() time.Duration
	Reset()
}

// BackoffRetryStrategy retries retryable errors with exponential backoff.
type BackoffRetryStrategy struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	attempts    int
}

// NewBackoffRetryStrategy doubles the wait after every attempt, capped at
// 32 times the initial wait.
func NewBackoffRetryStrategy(maxRetries int, initialWait time.Duration) *BackoffRetryStrategy {
	return &BackoffRetryStrategy{
		MaxRetries:  maxRetries,
		InitialWait: initialWait,
		MaxWait:     32 * initialWait,
	}
}

func (s *BackoffRetryStrategy) ShouldRetry(err error) bool {
	if s.attempts >= s.MaxRetries {
		return false
	}
	return IsRetryable(err)
}

const maxShiftAmount = 30

func (s *BackoffRetryStrategy) NextDelay() time.Duration {
	s.attempts++
	shift := min(s.attempts-1, maxShiftAmount)
	delay := s.InitialWait * time.Duration(1<<shift)
	if delay > s.MaxWait {
		delay = s.MaxWait
	}
	return delay
}

func (s *BackoffRetryStrategy) Reset() {
	s.attempts = 0
}
