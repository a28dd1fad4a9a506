package http

import (
	"fmt"
	"strings"

	"souvlaki/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	RoleOperator = "operator"
	RoleCustomer = "customer"

	principalKey     = "principal"
	accessTokenQuery = "access_token"
)

// Claims are the token claims issued by the identity provider. The subject of a
// customer token is the customer id.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller.
type Principal struct {
	Subject    string
	CustomerID kernel.ID
	Role       string
}

func (p Principal) IsOperator() bool {
	return p.Role == RoleOperator
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

// NewAuthenticator creates an authenticator. An empty issuer disables the issuer check.
func NewAuthenticator(secret []byte, issuer string) *Authenticator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &Authenticator{
		secret: secret,
		parser: jwt.NewParser(opts...),
	}
}

// Authenticate parses a raw token into a principal.
func (a *Authenticator) Authenticate(raw string) (Principal, error) {
	var claims Claims
	_, err := a.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	p := Principal{Subject: claims.Subject, Role: claims.Role}
	switch claims.Role {
	case RoleOperator:
	case RoleCustomer:
		id, err := kernel.ParseID(claims.Subject)
		if err != nil {
			return Principal{}, fmt.Errorf("%w: customer token without customer id", ErrUnauthorized)
		}
		p.CustomerID = id
	default:
		return Principal{}, fmt.Errorf("%w: unknown role %q", ErrUnauthorized, claims.Role)
	}

	return p, nil
}

// Middleware authenticates every request. The token is taken from the Authorization
// header, or from the access_token query parameter for clients that cannot set
// headers (EventSource, browser WebSocket).
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return respondError(c, fmt.Errorf("%w: missing bearer token", ErrUnauthorized))
			}

			p, err := a.Authenticate(raw)
			if err != nil {
				return respondError(c, err)
			}

			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// RequireRole lets only principals with one of roles through.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := principalFrom(c)
			if !ok {
				return respondError(c, ErrUnauthorized)
			}
			for _, role := range roles {
				if p.Role == role {
					return next(c)
				}
			}
			return respondError(c, fmt.Errorf("%w: %s role cannot do this", ErrForbidden, p.Role))
		}
	}
}

func principalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return c.QueryParam(accessTokenQuery)
}
