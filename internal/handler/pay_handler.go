package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shinyyama/takeout-backend/internal/service"
)

// PayHandler receives the pay gateway's callbacks. The confirm endpoint is
// called by the gateway redirect, not by the user, so failure signalling is
// plain status codes the gateway understands.
type PayHandler struct {
	svc service.OrderService
}

func NewPayHandler(svc service.OrderService) *PayHandler {
	return &PayHandler{svc: svc}
}

func (h *PayHandler) Confirm(c echo.Context) error {
	orderID := c.QueryParam("orderId")
	transactionID := c.QueryParam("transactionId")
	if orderID == "" || transactionID == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "orderId and transactionId are required"))
	}
	var shippingFee *int64
	if v := c.QueryParam("shippingFeeAmount"); v != "" {
		fee, err := strconv.ParseInt(v, 10, 64)
		if err != nil || fee < 0 {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid shippingFeeAmount"))
		}
		shippingFee = &fee
	}
	shippingMethodID := c.QueryParam("shippingMethodId")

	_, err := h.svc.ConfirmPayment(c.Request().Context(), orderID, transactionID, shippingMethodID, shippingFee)
	if err != nil {
		// 500 tells the gateway the callback did not complete; it may retry
		log.Printf("[pay] stage=callback_fail order=%s tx=%s err=%v", orderID, transactionID, err)
		return c.String(http.StatusInternalServerError, "NG")
	}
	return c.String(http.StatusOK, "OK")
}

func (h *PayHandler) Cancel(c echo.Context) error {
	log.Printf("[pay] stage=cancelled order=%s tx=%s", c.QueryParam("orderId"), c.QueryParam("transactionId"))
	return c.String(http.StatusOK, "OK")
}

type shippingMethodsResponse struct {
	ReturnCode    string `json:"returnCode"`
	ReturnMessage string `json:"returnMessage"`
	Info          struct {
		ShippingMethods []service.ShippingMethod `json:"shippingMethods"`
	} `json:"info"`
}

// ShippingMethods answers the gateway's shipping-fee inquiry with the fixed
// method catalog and today's delivery date.
func (h *PayHandler) ShippingMethods(c echo.Context) error {
	resp := shippingMethodsResponse{
		ReturnCode:    "0000",
		ReturnMessage: "OK",
	}
	resp.Info.ShippingMethods = service.ShippingMethods(time.Now())
	return c.JSON(http.StatusOK, resp)
}
