package handler

import (
	"io"
	"net/http"

	"shpfusion-api/internal/dto"
	"shpfusion-api/internal/service"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	orderService service.OrderService
}

func NewCheckoutHandler(orderService service.OrderService) *CheckoutHandler {
	return &CheckoutHandler{orderService: orderService}
}

// Checkout accepts the custom-request form and creates a payment_pending
// order, returning the payment-selection URL.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	input := &dto.CheckoutInput{
		ProductID:    c.FormValue("productId"),
		ProductTitle: c.FormValue("productTitle"),
		ProductPrice: c.FormValue("productPrice"),
		UserName:     c.FormValue("userName"),
		UserEmail:    c.FormValue("userEmail"),
		Requirement:  c.FormValue("requirement"),
		Additional:   c.FormValue("additional"),
	}

	fileHeader, err := c.FormFile("file")
	if err == nil && fileHeader != nil && fileHeader.Size > 0 {
		// size is checked before the file is read or the order persisted
		if fileHeader.Size > service.MaxUploadSize {
			return fail(c, http.StatusBadRequest, "File size too large. Maximum 10MB allowed")
		}

		src, err := fileHeader.Open()
		if err != nil {
			return fail(c, http.StatusBadRequest, "File processing failed")
		}
		defer src.Close()

		content, err := io.ReadAll(io.LimitReader(src, service.MaxUploadSize+1))
		if err != nil {
			return fail(c, http.StatusBadRequest, "File processing failed")
		}

		input.FileName = fileHeader.Filename
		input.FileType = fileHeader.Header.Get("Content-Type")
		input.FileContent = content
	}

	resp, err := h.orderService.CreateOrder(ctx, input)
	if err != nil {
		return writeServiceError(c, err, "Checkout process failed. Please try again.")
	}

	return c.JSON(http.StatusOK, resp)
}

// PaymentSelect returns the order summary shown on the payment-method page.
func (h *CheckoutHandler) PaymentSelect(c echo.Context) error {
	ctx := c.Request().Context()

	selection, err := h.orderService.GetPaymentSelection(ctx, c.QueryParam("orderId"))
	if err != nil {
		return writeServiceError(c, err, "Failed to load order")
	}

	return c.JSON(http.StatusOK, selection)
}

// ConfirmOrder is called once by the success page; the server-side guard in
// the order service keeps repeated calls from re-sending emails.
func (h *CheckoutHandler) ConfirmOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ConfirmOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.orderService.Confirm(ctx, req.SessionID, req.OrderID)
	if err != nil {
		return writeServiceError(c, err, "Order confirmation failed")
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) DownloadFile(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.DownloadFileRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Valid order ID is required")
	}

	resp, err := h.orderService.DownloadFile(ctx, req.OrderID)
	if err != nil {
		return writeServiceError(c, err, "Internal server error")
	}

	return c.JSON(http.StatusOK, resp)
}
