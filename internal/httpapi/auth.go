package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

const contextKeyToken = "user"

// Claims are the JWT claims issued on login.
type Claims struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	CustomerID *int64 `json:"customer_id,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token was issued to an ADMIN user.
func (c *Claims) IsAdmin() bool {
	return catalog.Role(c.Role) == catalog.RoleAdmin
}

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (i tokenIssuer) issue(user catalog.User) (string, error) {
	now := i.now()

	claims := &Claims{
		Username:   user.Username,
		Role:       string(user.Role),
		CustomerID: user.CustomerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i tokenIssuer) middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: i.secret,
		ContextKey: contextKeyToken,
		NewClaimsFunc: func(_ echo.Context) jwt.Claims {
			return new(Claims)
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return c.JSON(http.StatusUnauthorized, errorBody("missing or invalid token"))
		},
	})
}

func claimsFrom(c echo.Context) (*Claims, bool) {
	token, ok := c.Get(contextKeyToken).(*jwt.Token)
	if !ok {
		return nil, false
	}

	claims, ok := token.Claims.(*Claims)

	return claims, ok
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := claimsFrom(c)
		if !ok || !claims.IsAdmin() {
			return c.JSON(http.StatusForbidden, errorBody("admin role required"))
		}

		return next(c)
	}
}
