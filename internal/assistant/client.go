package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"
)

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("assistant not configured")

// Config holds assistant configuration.
type Config struct {
	APIKey string
	Model  string
}

// completionAPI is the slice of the OpenAI client the service uses.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service generates packing recommendations for a trip.
type Service struct {
	api    completionAPI
	model  string
	logger *slog.Logger
}

func NewService(cfg Config, logger *slog.Logger) *Service {
	s := &Service{
		model:  cfg.Model,
		logger: logger,
	}
	if s.model == "" {
		s.model = openai.GPT4oMini
	}
	if cfg.APIKey != "" {
		s.api = openai.NewClient(cfg.APIKey)
	}
	return s
}

// Enabled reports whether an API key was configured.
func (s *Service) Enabled() bool {
	return s.api != nil
}

// Recommend asks the model for packing suggestions and parses the reply into
// per-category sections. The returned markdown is what gets stored on the trip.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (*Recommendation, error) {
	if s.api == nil {
		return nil, ErrNotConfigured
	}

	requestID := uuid.NewString()
	prompt := buildPrompt(req)

	start := time.Now()
	var reply string
	backoff := retry.WithMaxRetries(2, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: 0.4,
		})
		if err != nil {
			var apiErr *openai.APIError
			if errors.As(err, &apiErr) && apiErr.HTTPStatusCode < 500 && apiErr.HTTPStatusCode != 429 {
				return err
			}
			return retry.RetryableError(err)
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty completion response")
		}
		reply = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		s.logger.Error("recommendation request failed",
			"request_id", requestID,
			"error", err)
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	rec := ParseRecommendation(reply, req.Categories)
	s.logger.Info("recommendation generated",
		"request_id", requestID,
		"trip", req.TripName,
		"sections", len(rec.Sections),
		"duration_ms", time.Since(start).Milliseconds())
	return rec, nil
}

const systemPrompt = `You are a packing assistant for outdoor trips. ` +
	`Given trip details and the user's gear inventory, suggest what to pack. ` +
	`Format your answer as markdown with one "### <Category>" heading per ` +
	`category you were given, and under each heading a bulleted list of ` +
	`items in the form "- <name> (qty <n>, weight <w> lbs)". If you have ` +
	`nothing to suggest for a category, write "No specific recommendations ` +
	`for this category." under its heading. Do not invent categories.`

func buildPrompt(req RecommendRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trip: %s\n", req.TripName)
	if req.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", req.Location)
	}
	if req.StartDate != "" {
		fmt.Fprintf(&b, "Dates: %s to %s\n", req.StartDate, req.EndDate)
	}
	if req.WeatherSummary != "" {
		fmt.Fprintf(&b, "Forecast: %s\n", req.WeatherSummary)
	}
	if len(req.Categories) > 0 {
		fmt.Fprintf(&b, "Categories: %s\n", strings.Join(req.Categories, ", "))
	}
	if len(req.Inventory) > 0 {
		b.WriteString("Owned gear:\n")
		for _, item := range req.Inventory {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	if len(req.PackedItems) > 0 {
		b.WriteString("Already on the checklist:\n")
		for _, item := range req.PackedItems {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	b.WriteString("Suggest what to pack.\n")
	return b.String()
}
