package auth

import "time"

// SetClock replaces the service clock in tests.
func (s *TokenService) SetClock(now func() time.Time) {
	s.now = now
}
