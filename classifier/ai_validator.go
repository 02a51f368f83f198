package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"

	"github.com/machinecraft/inventory_backend/config"
)

const validatorSystemPrompt = "You are an expert in industrial equipment and inventory management. " +
	"You validate and enrich inventory item records for a plastics machinery manufacturer. " +
	"Always answer with a single JSON object and nothing else."

// ValidationRequest is one item sent to the model for review.
type ValidationRequest struct {
	PartNumber  string          `json:"part_number"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	SourceFile  string          `json:"source_file"`
}

// ValidationResult is the model's corrected view of the item. Fields the
// model leaves empty keep their heuristic values.
type ValidationResult struct {
	PartNumber  string  `json:"part_number"`
	Description string  `json:"description"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Confidence  string  `json:"confidence"`
	Notes       string  `json:"notes"`
}

// Validator wraps the OpenAI chat API for item validation. Every failure
// path degrades to the heuristic classifier, so a dead or misconfigured
// endpoint can slow the pipeline down but never stop it.
type Validator struct {
	client     *openai.Client
	model      string
	timeout    time.Duration
	heuristics *Classifier
	categories map[string]bool
	failures   atomic.Int64
}

// NewValidator returns nil when no API key is configured; callers treat a
// nil validator as "heuristics only".
func NewValidator(settings *config.PipelineSettings, heuristics *Classifier) *Validator {
	if settings == nil || settings.OpenAIAPIKey == "" {
		return nil
	}
	clientConfig := openai.DefaultConfig(settings.OpenAIAPIKey)
	if settings.OpenAIBaseURL != "" {
		clientConfig.BaseURL = settings.OpenAIBaseURL
	}
	if heuristics == nil {
		heuristics = New(nil)
	}
	v := &Validator{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      settings.OpenAIModel,
		timeout:    settings.AITimeout,
		heuristics: heuristics,
		categories: map[string]bool{},
	}
	for _, name := range heuristics.Tables().CategoryNames() {
		v.categories[name] = true
	}
	return v
}

// FailureCount reports how many validations fell back to heuristics.
func (v *Validator) FailureCount() int64 {
	return v.failures.Load()
}

// Validate asks the model to review one item. On any failure it records the
// fallback and returns the heuristic classification with low confidence;
// the second return value reports whether the model's answer was used.
func (v *Validator) Validate(ctx context.Context, req ValidationRequest) (ValidationResult, bool) {
	result, err := v.callModel(ctx, req)
	if err != nil {
		v.failures.Add(1)
		logger := config.GetLogger()
		config.LogError(logger, "classifier", "Validate", "ai validation failed, using heuristics", req.PartNumber, err)
		return v.fallback(req), false
	}
	return *result, true
}

func (v *Validator) callModel(ctx context.Context, req ValidationRequest) (*ValidationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	userPrompt := fmt.Sprintf(
		"Validate this inventory item and respond with JSON containing part_number, description, brand, "+
			"price (number), category (one of: %s), confidence (high/medium/low) and notes:\n%s",
		strings.Join(v.heuristics.Tables().CategoryNames(), ", "), string(payload),
	)

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       v.model,
		Temperature: 0.1,
		MaxTokens:   1000,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: validatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty completion response")
	}

	result, err := parseValidationReply(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if !v.categories[result.Category] {
		return nil, fmt.Errorf("category %q not in taxonomy", result.Category)
	}
	if _, ok := ParseConfidence(result.Confidence); !ok {
		return nil, fmt.Errorf("confidence %q not recognized", result.Confidence)
	}
	return result, nil
}

// parseValidationReply extracts the JSON object from a completion. Models
// routinely wrap the object in prose or code fences, so everything outside
// the outermost braces is discarded.
func parseValidationReply(content string) (*ValidationResult, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply: %q", truncateForLog(content))
	}
	var result ValidationResult
	if err := json.Unmarshal([]byte(content[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return &result, nil
}

func (v *Validator) fallback(req ValidationRequest) ValidationResult {
	heuristic := v.heuristics.Classify(req.SourceFile, req.PartNumber, req.Description)
	price, _ := req.Price.Float64()
	return ValidationResult{
		PartNumber:  req.PartNumber,
		Description: req.Description,
		Brand:       heuristic.Brand,
		Price:       price,
		Category:    heuristic.Category,
		Confidence:  "low",
	}
}

// ParseConfidence reports whether s is one of the accepted confidence tags.
func ParseConfidence(s string) (string, bool) {
	switch s {
	case "high", "medium", "low":
		return s, true
	}
	return "", false
}

func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
