package handlers

import (
	"loyalty-rewards/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PointsHandler struct {
	pointsService *service.PointsService
	logger        *zap.Logger
}

func NewPointsHandler(pointsService *service.PointsService, logger *zap.Logger) *PointsHandler {
	return &PointsHandler{
		pointsService: pointsService,
		logger:        logger,
	}
}

// Balance godoc
// @Summary Get the user's points balance
// @Tags points
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.BalanceResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/points/balance [get]
func (h *PointsHandler) Balance(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	balance, err := h.pointsService.Balance(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get points balance", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get points balance",
		})
	}

	return c.JSON(balance)
}

// History godoc
// @Summary Get the user's points ledger history
// @Tags points
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {array} dto.PointsEntryResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/points/history [get]
func (h *PointsHandler) History(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	history, err := h.pointsService.History(c.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to get points history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get points history",
		})
	}

	return c.JSON(history)
}
