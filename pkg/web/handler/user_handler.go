// ----------- pkg/web/handler/user_handler.go -----------
package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	apperrors "account-service/pkg/common/errors"
	"account-service/pkg/core/user/service"
	"account-service/pkg/web/model"
)

// UserHandler serves the account routes. Login failures answer 401, every
// other failure 409.
type UserHandler struct {
	users service.UserService
}

func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Login(ctx context.Context, c *app.RequestContext) {
	var req model.LoginReq
	if err := c.BindAndValidate(&req); err != nil {
		respondError(c, consts.StatusUnauthorized, apperrors.Wrap(apperrors.KindInvalidInput, err))
		return
	}

	token, err := h.users.Login(ctx, req.Keyword, req.Password)
	if err != nil {
		respondError(c, consts.StatusUnauthorized, err)
		return
	}

	c.JSON(consts.StatusOK, token)
}

func (h *UserHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req model.AccountReq
	if err := c.BindAndValidate(&req); err != nil {
		respondError(c, consts.StatusConflict, apperrors.Wrap(apperrors.KindInvalidInput, err))
		return
	}

	user, err := h.users.Register(ctx, req.Username, req.Password, req.Email)
	if err != nil {
		respondError(c, consts.StatusConflict, err)
		return
	}

	c.JSON(consts.StatusOK, user)
}

// List serves both the open and the protected listing.
func (h *UserHandler) List(ctx context.Context, c *app.RequestContext) {
	page := model.ParsePositive(c.Query("page"), model.DefaultPage)
	limit := model.ParsePositive(c.Query("limit"), model.DefaultLimit)

	result, err := h.users.List(ctx, page, limit)
	if err != nil {
		respondError(c, consts.StatusConflict, err)
		return
	}

	c.JSON(consts.StatusOK, model.NewPageRes(result))
}

func (h *UserHandler) Get(ctx context.Context, c *app.RequestContext) {
	user, err := h.users.Get(ctx, pathID(c))
	if err != nil {
		respondError(c, consts.StatusConflict, err)
		return
	}

	c.JSON(consts.StatusOK, user)
}

// Update answers with the affected row count, not the updated record.
func (h *UserHandler) Update(ctx context.Context, c *app.RequestContext) {
	var req model.AccountReq
	if err := c.BindAndValidate(&req); err != nil {
		respondError(c, consts.StatusConflict, apperrors.Wrap(apperrors.KindInvalidInput, err))
		return
	}

	affected, err := h.users.Update(ctx, pathID(c), req.Username, req.Password, req.Email)
	if err != nil {
		respondError(c, consts.StatusConflict, err)
		return
	}

	c.JSON(consts.StatusOK, affected)
}

func (h *UserHandler) Delete(ctx context.Context, c *app.RequestContext) {
	affected, err := h.users.Delete(ctx, pathID(c))
	if err != nil {
		respondError(c, consts.StatusConflict, err)
		return
	}

	c.JSON(consts.StatusOK, affected)
}

// pathID reads :id. Ids start at 1, so an unparsable id becomes 0 and simply
// matches no row.
func pathID(c *app.RequestContext) int64 {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0
	}
	return id
}

// respondError records err on the request for the logger and writes the
// client visible message.
func respondError(c *app.RequestContext, status int, err error) {
	c.Error(err)
	c.JSON(status, model.MessageRes{Message: apperrors.PublicMessage(err)})
}
