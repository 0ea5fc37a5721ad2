package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"aceves/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ClaimsKey = "claims"

	supabaseAudience = "authenticated"
)

// SupabaseClaims are the claims of an access token issued by Supabase Auth.
// We only verify tokens; sessions are owned by Supabase.
type SupabaseClaims struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	AppMetadata struct {
		Provider string `json:"provider"`
		Role     string `json:"role"`
	} `json:"app_metadata"`
	jwt.RegisteredClaims
}

// UserID parses the subject as the Supabase user UUID.
func (c *SupabaseClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Authenticator verifies bearer tokens and decides who is an admin.
type Authenticator struct {
	secret      []byte
	adminEmails map[string]bool
}

func NewAuthenticator(secret string, adminEmails []string) *Authenticator {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &Authenticator{secret: []byte(secret), adminEmails: admins}
}

func (a *Authenticator) parse(header string) (*SupabaseClaims, bool) {
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")
	claims := &SupabaseClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	}, jwt.WithAudience(supabaseAudience))
	if err != nil || !token.Valid {
		return nil, false
	}
	if _, err := claims.UserID(); err != nil {
		return nil, false
	}
	return claims, true
}

// IsAdmin reports whether the claims belong to a store administrator.
func (a *Authenticator) IsAdmin(c *SupabaseClaims) bool {
	if c == nil {
		return false
	}
	return c.AppMetadata.Role == "admin" || a.adminEmails[strings.ToLower(c.Email)]
}

// JWTAuth validates the Bearer token on every protected route.
func (a *Authenticator) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.parse(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticación requerida"))
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid token is sent and lets anonymous
// requests through otherwise.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := a.parse(c.GetHeader("Authorization")); ok {
			c.Set(ClaimsKey, claims)
		}
		c.Next()
	}
}

// RequireAdmin must run after JWTAuth.
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.IsAdmin(GetClaims(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// InternalKey protects server-to-server endpoints (post-payment hooks) with a
// shared secret sent in X-Internal-Key.
func InternalKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Internal-Key")
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Clave interna inválida"))
			return
		}
		c.Next()
	}
}

// GetClaims returns the verified claims or nil for anonymous requests.
func GetClaims(c *gin.Context) *SupabaseClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*SupabaseClaims)
	return claims
}
