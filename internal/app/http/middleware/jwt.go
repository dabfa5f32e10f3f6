package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

// Principal is the authenticated caller as asserted by the access token.
type Principal struct {
	UserID         string
	OrganizationID string
	Role           string
	Email          string
}

// TokenVerifier turns a bearer token into a Principal.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (Principal, error)
}

var errInvalidClaims = errors.New("invalid token claims")

// HMACVerifier checks tokens signed with a shared secret.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(_ context.Context, raw string) (Principal, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return Principal{}, errInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, errInvalidClaims
	}
	p := Principal{
		UserID:         stringClaim(claims["user_id"]),
		OrganizationID: stringClaim(claims["organization_id"]),
		Role:           stringClaim(claims["role"]),
		Email:          stringClaim(claims["email"]),
	}
	if p.UserID == "" {
		p.UserID = stringClaim(claims["sub"])
	}
	if p.UserID == "" {
		return Principal{}, errInvalidClaims
	}
	return p, nil
}

// user_id is numeric in older tokens.
func stringClaim(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// OIDCVerifier checks ID tokens issued by an external identity provider.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc issuer: %w", err)
	}
	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, raw string) (Principal, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return Principal{}, err
	}
	var claims struct {
		Email          string `json:"email"`
		OrganizationID string `json:"organization_id"`
		Role           string `json:"role"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Principal{}, fmt.Errorf("%w: %w", errInvalidClaims, err)
	}
	return Principal{
		UserID:         idToken.Subject,
		OrganizationID: claims.OrganizationID,
		Role:           claims.Role,
		Email:          claims.Email,
	}, nil
}

func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == authHeader || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token malformed"})
			return
		}

		p, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(principalKey, p)
		c.Set("user_id", p.UserID)
		c.Set("role", p.Role)
		c.Set("email", p.Email)
		c.Next()
	}
}

// CurrentPrincipal returns the caller set by AuthMiddleware.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, exists := CurrentPrincipal(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role not found in token"})
			return
		}
		if p.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
