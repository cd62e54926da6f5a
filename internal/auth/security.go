package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	limiterpkg "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// InternalTokenHeader authenticates calls from other services.
const InternalTokenHeader = "X-Internal-Token"

// NewRateLimiter builds an in-memory per-key limiter from a formatted rate
// such as "60-M".
func NewRateLimiter(formatted string) (*limiterpkg.Limiter, error) {
	rate, err := limiterpkg.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}
	return limiterpkg.New(memory.NewStore(), rate), nil
}

// RateLimitMiddleware limits requests per client IP.
func RateLimitMiddleware(l *limiterpkg.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			context, err := l.Get(c.Request().Context(), ip)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "rate limit error",
				})
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(context.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(context.Remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(context.Reset, 10))

			if context.Reached {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded",
				})
			}

			return next(c)
		}
	}
}

// InternalTokenMiddleware admits requests carrying the shared internal token.
func InternalTokenMiddleware(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			given := c.Request().Header.Get(InternalTokenHeader)
			if given == "" || subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid internal token"})
			}
			return next(c)
		}
	}
}

const secretCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateSecret returns a random alphanumeric string suitable for
// JWT_SECRET or INTERNAL_API_TOKEN.
func GenerateSecret(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be greater than 0")
	}

	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(secretCharset)))

	for i := range result {
		randomIndex, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = secretCharset[randomIndex.Int64()]
	}

	return string(result), nil
}
