package handlers

import (
	"loyalty-rewards/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PromotionHandler struct {
	promoService *service.PromotionService
	logger       *zap.Logger
}

func NewPromotionHandler(promoService *service.PromotionService, logger *zap.Logger) *PromotionHandler {
	return &PromotionHandler{
		promoService: promoService,
		logger:       logger,
	}
}

// ListPromotions godoc
// @Summary List active promotions
// @Tags promotions
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.PromotionResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/promotions [get]
func (h *PromotionHandler) ListPromotions(c *fiber.Ctx) error {
	promotions, err := h.promoService.ListActive(c.Context())
	if err != nil {
		h.logger.Error("Failed to list promotions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list promotions",
		})
	}

	return c.JSON(promotions)
}
