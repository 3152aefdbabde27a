// Access logging with PII scrubbing.
//
// Webhook payloads carry customer emails and phone numbers, and the HMAC
// signature header is a secret derivative; none of that may reach the
// access log. RedactingLogger logs request metadata only (never bodies),
// masks sensitive headers outright, and pattern-scrubs identifiers from
// query strings and remaining header values.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions extends the built-in header mask set.
//
// MaskHeaders lists extra header names (case-insensitive) whose values are
// replaced wholesale with "[REDACTED]". Authorization, Cookie, and
// Set-Cookie are always masked; the router adds the webhook signature
// header here.
type RedactOptions struct {
	MaskHeaders []string
}

// RedactingLogger logs one structured line per request: method, path,
// scrubbed query, status, size, latency, and scrubbed headers. Severity
// follows the response class (info, warn for 4xx, error for 5xx).
//
// Scrub order is UUID, then email, then phone. The phone pattern is the
// loosest and must run last or it eats digit runs inside the other two.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	uuidRE := regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE := regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Matches "+1 212-555-1212", "212 555 1212", "(212) 555-1212".
	phoneRE := regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)

	scrub := func(s string) string {
		if s == "" {
			return s
		}
		s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
		s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
		return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
	}

	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		safeQuery := scrub(c.Request.URL.RawQuery)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, hide := masked[strings.ToLower(k)]; hide {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = scrub(strings.Join(vv, ", "))
		}

		c.Next()

		status := c.Writer.Status()
		reqID := c.Writer.Header().Get("X-Request-ID")
		if reqID == "" {
			reqID = c.GetHeader("X-Request-ID")
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
