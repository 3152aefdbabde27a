// Hardening headers for the JSON surface.
//
// The service exposes two kinds of routes: the webhook ingestion endpoint,
// hit by a machine sender, and the operator read API, which may be called
// from a browser-based dashboard. SecurityHeaders applies a conservative
// header set that is correct for both. There is no CSP here; nothing in
// this service serves HTML.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures the header set emitted by SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security, but only on requests that
	// actually arrived over HTTPS (directly or per X-Forwarded-Proto).
	// Leave off unless the proxy-to-app hop is also TLS.
	EnableHSTS bool
	// HSTSMaxAge is the HSTS lifetime; <= 0 falls back to 180 days.
	HSTSMaxAge time.Duration
	// NoStore adds Cache-Control: no-store plus the legacy Pragma/Expires
	// pair, for responses that expose delivery payloads or customer data.
	NoStore bool
	// EnablePolicy adds Permissions-Policy and
	// X-Permitted-Cross-Domain-Policies. Browser-only semantics; inert for
	// the webhook sender.
	EnablePolicy bool
}

// SecurityHeaders attaches the configured security headers to every
// response. Always sets nosniff, frame denial, and no-referrer; everything
// else is opt-in via SecurityOptions. When an X-Request-ID response header
// exists it is additionally listed in Access-Control-Expose-Headers so
// browser clients can read the correlation id.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		// Never advertise HSTS on a plain-HTTP request.
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security",
				"max-age="+strconv.Itoa(maxAge)+"; includeSubDomains; preload")
		}

		if rid := h.Get("X-Request-ID"); rid != "" {
			const hdr = "Access-Control-Expose-Headers"
			switch cur := h.Get(hdr); {
			case cur == "":
				h.Set(hdr, "X-Request-ID")
			case !strings.Contains(cur, "X-Request-ID"):
				h.Set(hdr, cur+", X-Request-ID")
			}
		}

		c.Next()
	}
}

// isHTTPS reports whether the request arrived over TLS, either terminated
// here or at a proxy that set X-Forwarded-Proto.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
