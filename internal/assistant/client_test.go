package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type fakeAPI struct {
	reply    string
	err      error
	prompts  []string
	failures int
}

func (f *fakeAPI) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.prompts = append(f.prompts, req.Messages[len(req.Messages)-1].Content)
	if f.failures > 0 {
		f.failures--
		return openai.ChatCompletionResponse{}, &openai.APIError{HTTPStatusCode: 500}
	}
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.reply}},
		},
	}, nil
}

func testService(api completionAPI) *Service {
	return &Service{
		api:    api,
		model:  openai.GPT4oMini,
		logger: slog.New(slog.DiscardHandler),
	}
}

func TestRecommendParsesReply(t *testing.T) {
	api := &fakeAPI{reply: "### Shelter\n- Tent (qty 1, weight 4.5 lbs)\n"}
	svc := testService(api)

	rec, err := svc.Recommend(context.Background(), RecommendRequest{
		TripName:   "Three Sisters Loop",
		Location:   "Bend, OR",
		StartDate:  "2026-07-10",
		EndDate:    "2026-07-13",
		Categories: []string{"Shelter"},
		Inventory:  []string{"Tent"},
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(rec.Sections) != 1 || rec.Sections[0].Items[0].Name != "Tent" {
		t.Errorf("sections = %+v", rec.Sections)
	}

	prompt := api.prompts[0]
	for _, want := range []string{"Three Sisters Loop", "Bend, OR", "2026-07-10", "Shelter"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestRecommendRetriesServerErrors(t *testing.T) {
	api := &fakeAPI{reply: "### Shelter\n- Tent\n", failures: 1}
	svc := testService(api)

	if _, err := svc.Recommend(context.Background(), RecommendRequest{Categories: []string{"Shelter"}}); err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(api.prompts) != 2 {
		t.Errorf("attempts = %d, want 2", len(api.prompts))
	}
}

func TestRecommendDoesNotRetryClientErrors(t *testing.T) {
	api := &fakeAPI{err: &openai.APIError{HTTPStatusCode: 400}}
	svc := testService(api)

	if _, err := svc.Recommend(context.Background(), RecommendRequest{}); err == nil {
		t.Fatal("expected error")
	}
	if len(api.prompts) != 1 {
		t.Errorf("attempts = %d, want 1", len(api.prompts))
	}
}

func TestRecommendUnconfigured(t *testing.T) {
	svc := NewService(Config{}, slog.New(slog.DiscardHandler))
	if svc.Enabled() {
		t.Error("Enabled() = true without API key")
	}
	if _, err := svc.Recommend(context.Background(), RecommendRequest{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}
