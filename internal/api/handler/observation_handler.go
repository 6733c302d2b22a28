package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/superdelivery/storefront/internal/core/domain"
	"github.com/superdelivery/storefront/internal/core/ports"
)

type ObservationHandler struct {
	repo ports.ObservationRepository
}

// NewObservationHandler serves the status audit log. repo is nil when
// recording is disabled.
func NewObservationHandler(repo ports.ObservationRepository) *ObservationHandler {
	return &ObservationHandler{repo: repo}
}

// History lists the statuses this client has seen for an order, oldest first.
//
// @Summary      Observed status history
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "Order ID"
// @Success      200  {object}  map[string][]domain.StatusObservation
// @Failure      404  {object}  map[string]string
// @Router       /v1/orders/{id}/history [get]
func (h *ObservationHandler) History(c echo.Context) error {
	if h.repo == nil {
		return echo.NewHTTPError(http.StatusNotFound, "status history is not recorded")
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	obs, err := h.repo.ListByOrder(c.Request().Context(), orderID)
	if err != nil {
		return err
	}
	if obs == nil {
		obs = []domain.StatusObservation{}
	}
	return c.JSON(http.StatusOK, map[string][]domain.StatusObservation{"observations": obs})
}
