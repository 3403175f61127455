package service

import (
	"time"

	"github.com/vidfetch/vidfetch/caching"
)

const (
	maxLoginFailures   = 5
	loginFailureWindow = 15 * time.Minute
)

// LoginLimiter blocks a client after too many failed logins.
type LoginLimiter struct {
	failures *caching.Cache
	max      int
}

func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{
		failures: caching.NewCache(loginFailureWindow),
		max:      maxLoginFailures,
	}
}

// Blocked reports whether ip must wait, and for how long.
func (l *LoginLimiter) Blocked(ip string) (bool, time.Duration) {
	if l.failures.Count(ip) < l.max {
		return false, 0
	}
	wait := time.Until(l.failures.Expires(ip))
	if wait < 0 {
		wait = 0
	}
	return true, wait
}

// Fail records a failed attempt from ip.
func (l *LoginLimiter) Fail(ip string) int {
	return l.failures.Hit(ip)
}

// Reset clears ip's failures after a successful login.
func (l *LoginLimiter) Reset(ip string) {
	l.failures.Forget(ip)
}
