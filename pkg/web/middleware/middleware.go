package middleware

import (
	"context"
	"fmt"
	"regexp"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	hzte "github.com/cloudwego/hertz/pkg/common/errors"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"github.com/hertz-contrib/cors"

	"account-service/pkg/common/config"
	apperrors "account-service/pkg/common/errors"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestIDMiddleware propagates X-Request-ID, minting one when absent.
func RequestIDMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		id := string(ctx.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(requestIDKey, id)
		ctx.Header(RequestIDHeader, id)
		ctx.Next(c)
	}
}

// RequestID returns the id assigned by RequestIDMiddleware.
func RequestID(ctx *app.RequestContext) string {
	return ctx.GetString(requestIDKey)
}

// LoggerMiddleware writes one line per request plus the private errors the
// handlers recorded.
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		latency := time.Since(start)

		hlog.CtxInfof(c, "| %3d | %13v | %15s | %-7s | %s | rid=%s",
			ctx.Response.StatusCode(),
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
			RequestID(ctx),
		)

		for _, err := range ctx.Errors {
			if err.IsType(hzte.ErrorTypePrivate) {
				hlog.CtxErrorf(c, "rid=%s kind=%s: %v", RequestID(ctx), apperrors.KindOf(err), err)
			} else {
				hlog.CtxDebugf(c, "rid=%s kind=%s: %v", RequestID(ctx), apperrors.KindOf(err), err)
			}
		}
	}
}

// RecoveryMiddleware turns a panic into a 500. The stack is only returned to
// the client outside production.
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())

				hlog.CtxErrorf(c, "[PANIC RECOVERED] %v\n%s", err, stack)

				if cfg.IsProd() {
					ctx.AbortWithStatusJSON(consts.StatusInternalServerError, map[string]interface{}{
						"message": apperrors.MsgServerError,
					})
				} else {
					ctx.AbortWithStatusJSON(consts.StatusInternalServerError, map[string]interface{}{
						"message": apperrors.MsgServerError,
						"error":   fmt.Sprintf("%v", err),
						"stack":   strings.Split(stack, "\n"),
					})
				}
			}
		}()
		ctx.Next(c)
	}
}

// CORSMiddleware allows the configured origins plus any origin ending in one
// of the trusted domains.
func CORSMiddleware(corsConfig config.CORSConfig) app.HandlerFunc {
	return cors.New(
		cors.Config{
			AllowOrigins:     corsConfig.AllowOrigins,
			AllowMethods:     corsConfig.AllowMethods,
			AllowHeaders:     corsConfig.AllowHeaders,
			ExposeHeaders:    corsConfig.ExposeHeaders,
			AllowCredentials: corsConfig.AllowCredentials,
			MaxAge:           corsConfig.MaxAge,
			AllowOriginFunc: func(origin string) bool {
				for _, domain := range corsConfig.TrustedDomains {
					if strings.HasSuffix(origin, domain) {
						return true
					}
				}
				return false
			},
		},
	)
}

// RateLimitMiddleware token bucket limiter shared by all requests.
func RateLimitMiddleware(limiter *TokenBucket) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if !limiter.Allow() {
			hlog.CtxInfof(c, "[RATE LIMIT] path=%s", ctx.Path())
			ctx.AbortWithStatusJSON(consts.StatusTooManyRequests, map[string]interface{}{
				"message": "too many requests",
			})
			return
		}
		ctx.Next(c)
	}
}

// TokenBucket holds up to capacity tokens and regains one per interval.
type TokenBucket struct {
	tokens   chan struct{}
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
}

// NewTokenBucket starts full. Close stops the refill goroutine.
func NewTokenBucket(capacity int, interval time.Duration) *TokenBucket {
	tb := &TokenBucket{
		tokens:   make(chan struct{}, capacity),
		interval: interval,
		stop:     make(chan struct{}),
	}
	for i := 0; i < capacity; i++ {
		tb.tokens <- struct{}{}
	}

	go func() {
		ticker := time.NewTicker(tb.interval)
		defer ticker.Stop()
		for {
			select {
			case <-tb.stop:
				return
			case <-ticker.C:
				select {
				case tb.tokens <- struct{}{}:
				default:
				}
			}
		}
	}()
	return tb
}

func (tb *TokenBucket) Allow() bool {
	select {
	case <-tb.tokens:
		return true
	default:
		return false
	}
}

func (tb *TokenBucket) Close() {
	tb.once.Do(func() { close(tb.stop) })
}

// SecurityCheckMiddleware rejects oversized bodies, disallowed methods,
// missing user agents (when required) and query/form values that look like
// script or SQL injection. Pagination parameters are exempt: they are parsed
// as integers and anything else falls back to the default.
func SecurityCheckMiddleware(sc config.SecurityConfig) app.HandlerFunc {
	xssRegex := regexp.MustCompile(`(?i)<script.*?>|</script>|alert\(|onerror=`)
	sqlInjectRegex := regexp.MustCompile(`(?i)\b(union|select|drop|delete|insert)\b`)

	allowed := make(map[string]bool, len(sc.AllowedMethods))
	for _, m := range sc.AllowedMethods {
		allowed[strings.ToUpper(m)] = true
	}

	return func(c context.Context, ctx *app.RequestContext) {
		if sc.RequireUserAgent && len(ctx.GetHeader("User-Agent")) == 0 {
			securityResponse(c, ctx, consts.StatusBadRequest, "missing required header: User-Agent")
			return
		}

		if sc.MaxBodySize > 0 && int64(ctx.Request.Header.ContentLength()) > sc.MaxBodySize {
			securityResponse(c, ctx, consts.StatusRequestEntityTooLarge, "request body exceeds max size")
			return
		}

		if hasMaliciousContent(ctx, xssRegex, sqlInjectRegex) {
			securityResponse(c, ctx, consts.StatusUnprocessableEntity, "request contains invalid characters")
			return
		}

		if len(allowed) > 0 && !allowed[string(ctx.Method())] {
			securityResponse(c, ctx, consts.StatusMethodNotAllowed, "method not allowed")
			return
		}

		ctx.Next(c)
	}
}

var paginationParams = map[string]bool{"page": true, "limit": true}

func hasMaliciousContent(ctx *app.RequestContext, xss *regexp.Regexp, sql *regexp.Regexp) bool {
	found := false

	visitor := func(key, value []byte) {
		if found || paginationParams[string(key)] {
			return
		}
		if xss.Match(key) || xss.Match(value) || sql.Match(key) || sql.Match(value) {
			found = true
		}
	}

	ctx.QueryArgs().VisitAll(visitor)
	if found {
		return true
	}

	ctx.PostArgs().VisitAll(visitor)
	return found
}

func securityResponse(c context.Context, ctx *app.RequestContext, status int, msg string) {
	hlog.CtxWarnf(c, "SecurityAlert[status=%d] path=%s: %s", status, ctx.Path(), msg)
	ctx.AbortWithStatusJSON(status, map[string]interface{}{
		"message": msg,
	})
}
