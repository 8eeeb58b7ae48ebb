package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"derby-shop-api/internal/dto"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimit allows limit requests per window for each authenticated user (client IP otherwise),
// counted in redis. A nil client disables the limiter. Redis errors let the request through.
func RateLimit(rdb *redis.Client, prefix string, limit int64, window time.Duration, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if rdb == nil || limit <= 0 {
			return next
		}

		return func(c echo.Context) error {
			subject, _ := c.Get(ContextUserID).(string)
			if subject == "" {
				subject = c.RealIP()
			}
			ctx := c.Request().Context()
			key := fmt.Sprintf("ratelimit:%s:%s", prefix, subject)

			pipe := rdb.TxPipeline()
			// the first request of a window creates the counter with its expiry
			pipe.SetNX(ctx, key, 0, window)
			incr := pipe.Incr(ctx, key)
			if _, err := pipe.Exec(ctx); err != nil {
				logger.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
				return next(c)
			}

			count := incr.Val()
			remaining := limit - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > limit {
				ttl := rdb.TTL(ctx, key).Val()
				if ttl > 0 {
					c.Response().Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
				}
				return c.JSON(http.StatusTooManyRequests, dto.Response{
					Status: http.StatusTooManyRequests,
					Msg:    "Too many requests, try again later",
				})
			}

			return next(c)
		}
	}
}
