package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"storefront/internal/catalog"
)

const sessionToken = "token"

// token returns the bearer token, falling back to the session cookie.
func token(c *gin.Context) string {
	if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
	}
	if v, ok := sessions.Default(c).Get(sessionToken).(string); ok {
		return v
	}
	return ""
}

// requireAdmin lets the request through only with the current admin token.
func (s *Server) requireAdmin(c *gin.Context) {
	if err := s.auth.Authenticate(c.Request.Context(), token(c)); err != nil {
		s.fail(c, err)
		return
	}
	c.Next()
}

func (s *Server) rateLimit(c *gin.Context) {
	if !s.limiter.allow(c.ClientIP(), time.Now()) {
		s.fail(c, &catalog.Error{Status: http.StatusTooManyRequests, Message: "too many requests"})
		return
	}
	c.Next()
}

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// limiter keeps one token bucket per client IP. Buckets idle for longer than
// idle are dropped on the next sweep.
type limiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

func newLimiter(requests int, window time.Duration) *limiter {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &limiter{
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    requests,
		idle:     3 * window,
		visitors: make(map[string]*visitor),
	}
}

func (l *limiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.idle {
		for k, v := range l.visitors {
			if now.Sub(v.seen) > l.idle {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.seen = now
	return v.lim.AllowN(now, 1)
}

func (l *limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}
