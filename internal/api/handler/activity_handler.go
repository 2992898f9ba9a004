package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/parkingapp/auth-service/internal/core/ports"
)

// ActivityHandler exposes the audit trail to administrators.
type ActivityHandler struct {
	store ports.ActivityStore
}

func NewActivityHandler(store ports.ActivityStore) *ActivityHandler {
	return &ActivityHandler{store: store}
}

// List returns recent auth activity, newest first.
//
// @Summary      Recent auth activity
// @Tags         activity
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "maximum events to return"
// @Success      200    {array}   activityResponse
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /auth/activity [get]
func (h *ActivityHandler) List(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	events, err := h.store.ListActivity(c.Request().Context(), limit)
	if err != nil {
		return err
	}

	out := make([]activityResponse, 0, len(events))
	for _, e := range events {
		out = append(out, activityResponse{
			Username:  e.Username,
			Kind:      string(e.Kind),
			Timestamp: e.Timestamp,
			Detail:    e.Detail,
		})
	}
	return c.JSON(http.StatusOK, out)
}
