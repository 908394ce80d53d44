package middleware

import (
	"net/url"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/andressep95/auth-portal/internal/config"
	"github.com/andressep95/auth-portal/internal/metrics"
)

type Decision int

const (
	Allow Decision = iota
	RedirectHome
	RedirectLogin
)

func (d Decision) String() string {
	switch d {
	case RedirectHome:
		return "redirect_home"
	case RedirectLogin:
		return "redirect_login"
	default:
		return "allow"
	}
}

// Decide maps the two request facts to the guard outcome. Signed-in users are
// kept out of the auth pages; anonymous users are kept out of everything else.
func Decide(isAuthPage, hasToken bool) Decision {
	switch {
	case isAuthPage && hasToken:
		return RedirectHome
	case !isAuthPage && !hasToken:
		return RedirectLogin
	default:
		return Allow
	}
}

// RouteGuard gates page navigation on the presence of verified claims. It
// must run after Authenticate.
type RouteGuard struct {
	authPrefix string
	loginPath  string
	homePath   string
	exclude    []string
	recorder   metrics.Recorder
}

func NewRouteGuard(cfg config.GuardConfig, recorder metrics.Recorder) *RouteGuard {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &RouteGuard{
		authPrefix: cfg.AuthPrefix,
		loginPath:  cfg.LoginPath,
		homePath:   cfg.HomePath,
		exclude:    cfg.Exclude,
		recorder:   recorder,
	}
}

// Excluded reports whether p bypasses the guard entirely.
func (g *RouteGuard) Excluded(p string) bool {
	for _, pattern := range g.exclude {
		if strings.ContainsAny(pattern, "*?[") {
			if ok, _ := path.Match(pattern, p); ok {
				return true
			}
			continue
		}
		if hasSegmentPrefix(p, pattern) {
			return true
		}
	}
	return false
}

func (g *RouteGuard) IsAuthPage(p string) bool {
	return hasSegmentPrefix(p, g.authPrefix)
}

// Handler returns the fiber middleware.
func (g *RouteGuard) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := c.Path()
		if g.Excluded(p) {
			return c.Next()
		}

		decision := Decide(g.IsAuthPage(p), Claims(c) != nil)
		g.recorder.RecordGuardDecision(decision.String())

		switch decision {
		case RedirectHome:
			return c.Redirect(g.homePath, fiber.StatusFound)
		case RedirectLogin:
			return c.Redirect(g.loginURL(c.OriginalURL()), fiber.StatusFound)
		default:
			return c.Next()
		}
	}
}

// loginURL carries the original request target as callbackUrl. Slashes stay
// literal, which is valid inside a query component.
func (g *RouteGuard) loginURL(original string) string {
	callback := strings.ReplaceAll(url.QueryEscape(original), "%2F", "/")
	sep := "?"
	if strings.Contains(g.loginPath, "?") {
		sep = "&"
	}
	return g.loginPath + sep + "callbackUrl=" + callback
}

// hasSegmentPrefix reports whether p equals prefix or continues it at a path
// segment boundary, so "/auth" matches "/auth/login" but not "/authors".
func hasSegmentPrefix(p, prefix string) bool {
	if prefix == "" {
		return false
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return true
	}
	if !strings.HasPrefix(p, prefix) {
		return false
	}
	return len(p) == len(prefix) || p[len(prefix)] == '/'
}
