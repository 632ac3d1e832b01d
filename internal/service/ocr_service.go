package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"loyalty-rewards/pkg/config"

	"go.uber.org/zap"
)

// extractionPrompt pins the model to the exact JSON shape ParseExtraction
// expects. Enumerations are closed; unknown values are normalized away on
// our side regardless.
const extractionPrompt = `You are a receipt reading system. Analyze this purchase receipt image and respond ONLY with a valid JSON object containing exactly these fields:
"retailer_name" (string), "retailer_category" (one of: "fuel", "grocery", "restaurant", "pharmacy", "other"), "purchase_date" (string, YYYY-MM-DD), "total_amount" (number, the grand total), "currency" (ISO 4217 code, e.g. "PKR"), "invoice_number" (string, or omit if not printed), "payment_method" (one of: "cash", "card", "mobile-wallet", or omit if unclear), "card_last_four" (string, only if payment_method is "card"), "confidence" (number between 0 and 100 rating how clearly you could read the receipt), "items" (array of {"name": string, "price": number}, may be empty).
Do not include any explanations, markdown formatting, or extra text.`

// OCRService extracts structured receipt data through a hosted
// vision-language model. One submission costs one model call; there is no
// retry here, so a transient upstream failure fails the submission instead
// of billing twice.
type OCRService struct {
	httpClient *http.Client
	cfg        *config.OCRConfig
	logger     *zap.Logger
}

func NewOCRService(cfg *config.OCRConfig, logger *zap.Logger) *OCRService {
	return &OCRService{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// Provider names the OCR backend for persistence on receipt records.
func (s *OCRService) Provider() string {
	return "gemini/" + s.cfg.Model
}

// Extract downloads the image behind the presigned URL and asks the model
// for the structured receipt JSON.
func (s *OCRService) Extract(ctx context.Context, imageURL string) (*ExtractedReceipt, error) {
	imageData, mimeType, err := s.fetchImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	rawText, err := s.generateContent(ctx, imageData, mimeType)
	if err != nil {
		return nil, err
	}

	extracted, err := ParseExtraction(rawText)
	if err != nil {
		s.logger.Warn("Model returned unparseable extraction",
			zap.String("model", s.cfg.Model),
			zap.String("response", rawText),
		)
		return nil, err
	}

	s.logger.Info("Receipt extraction completed",
		zap.String("retailer", extracted.RetailerName),
		zap.String("category", string(extracted.Category)),
		zap.Int64("total_cents", extracted.TotalCents),
		zap.Float64("confidence", extracted.Confidence),
	)

	return extracted, nil
}

func (s *OCRService) fetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch receipt image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch receipt image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read receipt image: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	return data, mimeType, nil
}

func (s *OCRService) generateContent(ctx context.Context, imageData []byte, mimeType string) (string, error) {
	requestBody := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"text": extractionPrompt},
					{
						"inline_data": map[string]any{
							"mime_type": mimeType,
							"data":      base64.StdEncoding.EncodeToString(imageData),
						},
					},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature": 0.1,
		},
	}

	requestJSON, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.cfg.BaseURL, s.cfg.Model, s.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(requestJSON))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OCR API error: %s - %s", resp.Status, string(bodyBytes))
	}

	var modelResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&modelResp); err != nil {
		return "", fmt.Errorf("failed to decode OCR response: %w", err)
	}

	if len(modelResp.Candidates) == 0 || len(modelResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("OCR response contained no candidates")
	}

	return modelResp.Candidates[0].Content.Parts[0].Text, nil
}
