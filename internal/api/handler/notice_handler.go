package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/superdelivery/storefront/internal/core/domain"
)

// NoticeSource hands out pending notices exactly once.
type NoticeSource interface {
	Drain() []domain.Notice
}

type NoticeHandler struct {
	notices NoticeSource
}

func NewNoticeHandler(notices NoticeSource) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

// Drain returns and clears the pending notices.
func (h *NoticeHandler) Drain(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]domain.Notice{"notices": h.notices.Drain()})
}
