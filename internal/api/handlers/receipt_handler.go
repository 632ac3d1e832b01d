package handlers

import (
	"fmt"
	"path/filepath"
	"strings"

	"loyalty-rewards/internal/dto"
	"loyalty-rewards/internal/service"
	"loyalty-rewards/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReceiptHandler struct {
	receiptService *service.ReceiptService
	storage        *storage.S3Storage
	logger         *zap.Logger
}

func NewReceiptHandler(receiptService *service.ReceiptService, storage *storage.S3Storage, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		storage:        storage,
		logger:         logger,
	}
}

// UploadReceipt godoc
// @Summary Upload a receipt image
// @Description Upload a receipt image and receive a storage key for submission
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt image (jpeg, png or webp)"
// @Security Bearer
// @Success 201 {object} dto.UploadReceiptResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/receipts/upload [post]
func (h *ReceiptHandler) UploadReceipt(c *fiber.Ctx) error {
	if _, err := getUserID(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	contentType := file.Header.Get("Content-Type")
	if !storage.IsAllowedImageType(contentType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Unsupported content type %q, expected one of: %s",
				contentType, strings.Join(storage.AllowedImageTypes, ", ")),
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	key := "receipts/" + uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
	if err := h.storage.Upload(c.Context(), key, src, contentType); err != nil {
		h.logger.Error("Failed to upload receipt image", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload receipt image",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.UploadReceiptResponse{StorageKey: key})
}

// SubmitReceipt godoc
// @Summary Submit an uploaded receipt for processing
// @Description Run OCR extraction, duplicate detection and point awarding for an uploaded receipt image
// @Tags receipts
// @Accept json
// @Produce json
// @Param request body dto.SubmitReceiptRequest true "Submission request"
// @Security Bearer
// @Success 200 {object} dto.SubmitReceiptResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/receipts [post]
func (h *ReceiptHandler) SubmitReceipt(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.SubmitReceiptRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.StorageKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "storage_key is required",
		})
	}

	resp, err := h.receiptService.SubmitReceipt(c.Context(), userID, req.StorageKey)
	if err != nil {
		h.logger.Error("Receipt submission failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to process receipt",
		})
	}

	return c.JSON(resp)
}

// ListReceipts godoc
// @Summary List user's receipts
// @Tags receipts
// @Produce json
// @Param limit query int false "Limit" default(10)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {array} dto.ReceiptResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/receipts [get]
func (h *ReceiptHandler) ListReceipts(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	limit := c.QueryInt("limit", 10)
	offset := c.QueryInt("offset", 0)

	receipts, err := h.receiptService.ListReceipts(c.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list receipts", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list receipts",
		})
	}

	return c.JSON(receipts)
}

// GetReceipt godoc
// @Summary Get a single receipt
// @Tags receipts
// @Produce json
// @Param id path string true "Receipt ID"
// @Security Bearer
// @Success 200 {object} dto.ReceiptResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/receipts/{id} [get]
func (h *ReceiptHandler) GetReceipt(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	receiptID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid receipt ID",
		})
	}

	receipt, err := h.receiptService.GetReceipt(c.Context(), userID, receiptID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Receipt not found",
		})
	}

	return c.JSON(receipt)
}

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals("userID").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}
