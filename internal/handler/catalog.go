package handler

import (
	"context"
	"net/http"

	"shpfusion-api/internal/dto"
	"shpfusion-api/internal/model"
	"shpfusion-api/internal/service"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService      service.CatalogService
	subscriptionService service.SubscriptionService
	emailService        service.EmailService
}

func NewCatalogHandler(
	catalogService service.CatalogService,
	subscriptionService service.SubscriptionService,
	emailService service.EmailService,
) *CatalogHandler {
	return &CatalogHandler{
		catalogService:      catalogService,
		subscriptionService: subscriptionService,
		emailService:        emailService,
	}
}

// FetchStreamGraphics refreshes the stream-graphics mirror from the CMS.
// With ?id= it short-circuits to a single locally stored product.
func (h *CatalogHandler) FetchStreamGraphics(c echo.Context) error {
	return h.fetch(c, h.catalogService.SyncStreamGraphics)
}

func (h *CatalogHandler) FetchCharacterDesigns(c echo.Context) error {
	return h.fetch(c, h.catalogService.SyncCharacterDesigns)
}

func (h *CatalogHandler) fetch(c echo.Context, sync func(context.Context) ([]*model.Product, error)) error {
	ctx := c.Request().Context()

	if id := c.QueryParam("id"); id != "" {
		product, err := h.catalogService.GetProductBySanityID(ctx, id)
		if err != nil {
			return writeServiceError(c, err, "Failed to load product")
		}
		return c.JSON(http.StatusOK, product)
	}

	products, err := sync(ctx)
	if err != nil {
		return writeServiceError(c, err, "Failed to fetch catalog")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Catalog fetched and stored successfully",
		"count":    len(products),
		"products": products,
	})
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.catalogService.GetProduct(ctx, c.Param("id"))
	if err != nil {
		return writeServiceError(c, err, "Failed to load product")
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.EmailRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := h.subscriptionService.Subscribe(ctx, req.Email); err != nil {
		return writeServiceError(c, err, "Server error")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

func (h *CatalogHandler) Contact(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ContactRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Message == "" {
		return fail(c, http.StatusBadRequest, "Missing required fields.")
	}

	if err := h.emailService.SendContactMessage(ctx, &req); err != nil {
		return fail(c, http.StatusInternalServerError, "Something went wrong")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Message sent",
	})
}
