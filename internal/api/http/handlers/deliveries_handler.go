package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/logistics-kit/delivery-service/internal/api/dto"
	"github.com/logistics-kit/delivery-service/internal/auth"
	"github.com/logistics-kit/delivery-service/internal/domain"
	"github.com/logistics-kit/delivery-service/internal/service"
	apperrors "github.com/logistics-kit/delivery-service/pkg/util"
)

// DeliveriesHandler exposes the delivery lifecycle endpoints.
type DeliveriesHandler struct {
	deliveries  *service.DeliveryService
	assignments *service.AssignmentService
}

// NewDeliveriesHandler constructs handler.
func NewDeliveriesHandler(deliveryService *service.DeliveryService, assignmentService *service.AssignmentService) *DeliveriesHandler {
	return &DeliveriesHandler{deliveries: deliveryService, assignments: assignmentService}
}

// CreateDelivery POST /deliveries.
func (h *DeliveriesHandler) CreateDelivery(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateDeliveryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	delivery, err := h.deliveries.CreateDelivery(c.Context(), principal.Caller(), service.DeliveryCreateInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		PickupAddress: req.PickupAddress,
		DropAddress:   req.DropAddress,
		Weight:        req.Weight,
		Priority:      req.Priority,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": deliveryResponse(delivery)})
}

// ListDeliveries GET /deliveries.
func (h *DeliveriesHandler) ListDeliveries(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter := service.DeliveryListFilter{
		UnassignedOnly: c.QueryBool("unassigned"),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.DeliveryStatus(strings.TrimSpace(part)))
		}
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	deliveries, err := h.deliveries.ListForCaller(c.Context(), principal.Caller(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.DeliveryResponse, 0, len(deliveries))
	for i := range deliveries {
		items = append(items, deliveryResponse(&deliveries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetDelivery GET /deliveries/:id.
func (h *DeliveriesHandler) GetDelivery(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	delivery, err := h.deliveries.GetForCaller(c.Context(), principal.Caller(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": deliveryResponse(delivery)})
}

// GetHistory GET /deliveries/:id/history.
func (h *DeliveriesHandler) GetHistory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 100)
	entries, err := h.deliveries.ListHistoryForCaller(c.Context(), principal.Caller(), c.Params("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.StatusHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.StatusHistoryResponse{
			ID:        entry.ID,
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
			ChangedBy: entry.ChangedBy,
			ChangedAt: entry.ChangedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// AssignDriver PUT /deliveries/:id/assign-driver/:driverId.
func (h *DeliveriesHandler) AssignDriver(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	delivery, err := h.assignments.AssignDriver(c.Context(), principal.Caller(), c.Params("id"), c.Params("driverId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": deliveryResponse(delivery)})
}

// UpdateStatus PUT /deliveries/:id/status.
func (h *DeliveriesHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.NewStatus == "" {
		return apperrors.NewValidationError("new_status required", nil)
	}

	delivery, err := h.deliveries.TransitionStatus(c.Context(), principal.Caller(), c.Params("id"), req.NewStatus, service.ActualsInput{
		ActualKm:   req.ActualKm,
		ActualCost: req.ActualCost,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": deliveryResponse(delivery)})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func deliveryResponse(delivery *domain.Delivery) dto.DeliveryResponse {
	return dto.DeliveryResponse{
		ID:            delivery.ID,
		OwnerID:       delivery.OwnerID,
		DriverID:      delivery.DriverID,
		CustomerName:  delivery.CustomerName,
		CustomerPhone: delivery.CustomerPhone,
		PickupAddress: delivery.PickupAddress,
		DropAddress:   delivery.DropAddress,
		Weight:        delivery.Weight,
		Priority:      delivery.Priority,
		Notes:         delivery.Notes,
		Status:        delivery.Status,
		EstimatedCost: delivery.EstimatedCost,
		ActualKm:      delivery.ActualKm,
		ActualCost:    delivery.ActualCost,
		CreatedAt:     delivery.CreatedAt,
		UpdatedAt:     delivery.UpdatedAt,
	}
}
