package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/age-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/age-service/internal/platform/config"
)

const (
	// ContextKeyClaims is the gin context key for storing extracted claims.
	ContextKeyClaims = "claims"

	// Default header names if not configured.
	defaultSubjectHeader = "X-User-ID"
	defaultRolesHeader   = "X-User-Roles"
	defaultScopesHeader  = "X-User-Scopes"
)

// Claims represents user claims extracted from gateway headers.
// The gateway validates the JWT and forwards the claims as headers.
type Claims struct {
	// Subject is the user ID (sub claim).
	Subject string

	// Roles is the list of roles assigned to the user.
	Roles []string

	// Scopes is the list of OAuth2 scopes granted.
	Scopes []string
}

// HasRole checks if the user has the specified role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasScope checks if the user has the specified scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// ExtractClaims extracts user claims from request headers.
// Header names are configurable via AuthConfig.
func ExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	subjectHeader := defaultSubjectHeader
	rolesHeader := defaultRolesHeader
	scopesHeader := defaultScopesHeader

	if cfg != nil {
		if cfg.SubjectHeader != "" {
			subjectHeader = cfg.SubjectHeader
		}

		if cfg.RolesHeader != "" {
			rolesHeader = cfg.RolesHeader
		}

		if cfg.ScopesHeader != "" {
			scopesHeader = cfg.ScopesHeader
		}
	}

	claims := &Claims{
		Subject: strings.TrimSpace(c.GetHeader(subjectHeader)),
	}

	// Roles are comma-separated.
	if rolesStr := c.GetHeader(rolesHeader); rolesStr != "" {
		claims.Roles = parseCommaSeparated(rolesStr)
	}

	// Scopes are space-separated, as in OAuth2.
	if scopesStr := c.GetHeader(scopesHeader); scopesStr != "" {
		claims.Scopes = strings.Fields(scopesStr)
	}

	return claims
}

// GetClaims retrieves claims from the gin context.
// Returns nil if claims are not present.
func GetClaims(c *gin.Context) *Claims {
	if claims, exists := c.Get(ContextKeyClaims); exists {
		if cl, ok := claims.(*Claims); ok {
			return cl
		}
	}

	return nil
}

// RequireAuth returns middleware that rejects requests without a subject
// with 401.
func RequireAuth(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ExtractClaims(c, cfg)

		if claims.Subject == "" {
			dto.AbortWithErrorCode(c, dto.ErrorCodeUnauthorized, "authentication required")
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireAny returns middleware that answers 403 unless ANY of the checks
// pass.
func RequireAny(cfg *config.AuthConfig, checks ...func(*Claims) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := getOrExtractClaims(c, cfg)

		if slices.ContainsFunc(checks, func(check func(*Claims) bool) bool { return check(claims) }) {
			c.Next()
			return
		}

		dto.AbortWithErrorCode(c, dto.ErrorCodeForbidden, "insufficient permissions")
	}
}

// HasScope is a RequireAny check for scope.
func HasScope(scope string) func(*Claims) bool {
	return func(c *Claims) bool { return c.HasScope(scope) }
}

// HasRole is a RequireAny check for role.
func HasRole(role string) func(*Claims) bool {
	return func(c *Claims) bool { return c.HasRole(role) }
}

// getOrExtractClaims gets claims from context or extracts them.
func getOrExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	if claims := GetClaims(c); claims != nil {
		return claims
	}

	claims := ExtractClaims(c, cfg)
	c.Set(ContextKeyClaims, claims)

	return claims
}

// parseCommaSeparated splits a comma-separated string into trimmed values.
func parseCommaSeparated(s string) []string {
	parts := strings.Split(s, ",")

	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
