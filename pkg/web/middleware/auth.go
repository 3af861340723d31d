package middleware

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	apperrors "account-service/pkg/common/errors"
	"account-service/pkg/core/auth"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware lets a request through only with a valid token in the
// Authorization header. The header value is verified as-is, without a
// "Bearer " prefix. Verified claims are not passed on to the handler.
func AuthMiddleware(tokens TokenVerifier) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		token := string(ctx.GetHeader(consts.HeaderAuthorization))
		if token == "" {
			deny(c, ctx, "missing token")
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil || claims == nil {
			deny(c, ctx, fmt.Sprintf("invalid token: %v", err))
			return
		}

		ctx.Next(c)
	}
}

func deny(c context.Context, ctx *app.RequestContext, reason string) {
	hlog.CtxDebugf(c, "auth rejected path=%s: %s", ctx.Path(), reason)
	ctx.Error(apperrors.ErrAccessDenied)
	ctx.AbortWithStatusJSON(consts.StatusUnauthorized, map[string]interface{}{
		"message": apperrors.MsgAccessDenied,
	})
}
