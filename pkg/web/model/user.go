package model

import (
	"strconv"

	usermodel "account-service/pkg/core/user/model"
	"account-service/pkg/core/user/service"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5
)

// Request/response payloads
type (
	// AccountReq is the body of registration and update.
	AccountReq struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}

	LoginReq struct {
		Keyword  string `json:"keyword"`
		Password string `json:"password"`
	}

	MessageRes struct {
		Message string `json:"message"`
	}

	// PageRes is the pagination envelope of user listings.
	PageRes struct {
		CurrentPage  int              `json:"current_page"`
		NextPage     *int             `json:"next_page"`
		PrevPage     *int             `json:"prev_page"`
		Limit        int              `json:"limit"`
		TotalRecords int64            `json:"total_records"`
		TotalPage    int64            `json:"total_page"`
		Data         []usermodel.User `json:"data"`
	}
)

// NewPageRes builds the envelope. next_page is null once the page reaches the
// last one; prev_page is null on the first page.
func NewPageRes(p service.Page) PageRes {
	var totalPage int64
	if p.Total > 0 {
		totalPage = (p.Total-1)/int64(p.Limit) + 1
	}

	res := PageRes{
		CurrentPage:  p.Page,
		Limit:        p.Limit,
		TotalRecords: p.Total,
		TotalPage:    totalPage,
		Data:         p.Users,
	}
	if res.Data == nil {
		res.Data = []usermodel.User{}
	}
	if totalPage > int64(p.Page) {
		next := p.Page + 1
		res.NextPage = &next
	}
	if p.Page > 1 {
		prev := p.Page - 1
		res.PrevPage = &prev
	}
	return res
}

// ParsePositive parses a page or limit query value, falling back to def when
// it is absent, not a number, or not positive.
func ParsePositive(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
