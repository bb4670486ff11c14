package handler

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shinyyama/takeout-backend/internal/notify"
	"github.com/shinyyama/takeout-backend/internal/service"
)

// OpsHandler is the staff-facing operational API: fulfillment progress
// reports and announcement multicasts.
type OpsHandler struct {
	svc      service.OrderService
	notifier notify.Notifier
}

func NewOpsHandler(svc service.OrderService, notifier notify.Notifier) *OpsHandler {
	return &OpsHandler{svc: svc, notifier: notifier}
}

// NotifyOrderDeliveryState accepts a fulfillment progress report. The caller
// is an external system of record that only understands the code envelope,
// so every internal outcome maps to HTTP 200 with 0000 or 9999.
func (h *OpsHandler) NotifyOrderDeliveryState(c echo.Context) error {
	var body struct {
		OrderID       string `json:"orderId"`
		DeliveryState string `json:"deliveryState"`
	}
	if err := c.Bind(&body); err != nil {
		log.Printf("[ops] stage=bad_body err=%v", err)
		return c.JSON(http.StatusOK, opsFailed)
	}
	if err := h.svc.AdvanceDeliveryState(c.Request().Context(), body.OrderID, body.DeliveryState); err != nil {
		log.Printf("[ops] stage=advance_fail order=%s state=%s err=%v", body.OrderID, body.DeliveryState, err)
		return c.JSON(http.StatusOK, opsFailed)
	}
	return c.JSON(http.StatusOK, opsSuccess)
}

func (h *OpsHandler) SendMulticastMessage(c echo.Context) error {
	var body struct {
		UserIDs []string `json:"userIds"`
		Message struct {
			Title string `json:"title"`
			Body  string `json:"body"`
		} `json:"message"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	if len(body.UserIDs) == 0 || body.Message.Title == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "userIds and message.title are required"))
	}
	if err := h.notifier.Multicast(c.Request().Context(), body.UserIDs, body.Message.Title, body.Message.Body); err != nil {
		log.Printf("[ops] stage=multicast_fail users=%d err=%v", len(body.UserIDs), err)
		return c.JSON(http.StatusBadRequest, NewErrorResponse("multicast_failed", "could not deliver message"))
	}
	return c.JSON(http.StatusOK, OpsResult{Code: "OK", Message: "Success"})
}
