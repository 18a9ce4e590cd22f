package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/fitforge/fitkit/fitkit"
)

// GeminiLLM adapts Google Gemini models to the LLM contract via the
// Google GenAI SDK. Completion and streaming are supported; tool calling
// is not wired for this backend, so agents that execute tools should use
// the OpenAI adapter or the scripted model.
type GeminiLLM struct {
	client *genai.Client
	model  string
}

var _ LLM = (*GeminiLLM)(nil)

// NewGeminiLLM creates a Gemini adapter. The API key comes from the
// caller's configuration; it is never read from the environment here.
func NewGeminiLLM(ctx context.Context, apiKey, model string) (*GeminiLLM, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key required")
	}
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiLLM{client: client, model: model}, nil
}

// Model returns the model identifier.
func (g *GeminiLLM) Model() string {
	return g.model
}

// Complete generates a single completion from Gemini.
func (g *GeminiLLM) Complete(ctx context.Context, messages []*fitkit.Message, opts ...CallOption) (*fitkit.Message, error) {
	options := BuildCallOptions(opts...)

	model := g.client.GenerativeModel(g.model)
	g.configureModel(model, options)

	history, last := g.convertMessages(messages)
	session := model.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, last...)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}

	response := fitkit.NewMessage("assistant", extractGeminiText(resp))
	response.Metadata["model"] = g.model
	if resp.UsageMetadata != nil {
		response.Metadata["usage"] = map[string]interface{}{
			"prompt_tokens":     resp.UsageMetadata.PromptTokenCount,
			"completion_tokens": resp.UsageMetadata.CandidatesTokenCount,
			"total_tokens":      resp.UsageMetadata.TotalTokenCount,
		}
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != 0 {
		response.Metadata["finish_reason"] = resp.Candidates[0].FinishReason.String()
	}
	return response, nil
}

// Stream generates completion chunks from Gemini.
func (g *GeminiLLM) Stream(ctx context.Context, messages []*fitkit.Message, opts ...CallOption) (<-chan *fitkit.Message, error) {
	options := BuildCallOptions(opts...)

	model := g.client.GenerativeModel(g.model)
	g.configureModel(model, options)

	history, last := g.convertMessages(messages)
	session := model.StartChat()
	session.History = history

	iter := session.SendMessageStream(ctx, last...)
	out := make(chan *fitkit.Message)

	go func() {
		defer close(out)
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				errMsg := fitkit.NewMessage("assistant", "")
				errMsg.Metadata["error"] = err.Error()
				errMsg.Metadata["streaming"] = true
				out <- errMsg
				return
			}
			if content := extractGeminiText(resp); content != "" {
				chunk := fitkit.NewMessage("assistant", content)
				chunk.Metadata["streaming"] = true
				chunk.Metadata["model"] = g.model
				select {
				case out <- chunk:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (g *GeminiLLM) configureModel(model *genai.GenerativeModel, options *CallOptions) {
	if options.Temperature != nil {
		model.SetTemperature(float32(*options.Temperature))
	}
	if options.MaxTokens != nil {
		model.SetMaxOutputTokens(int32(*options.MaxTokens))
	}
	if options.TopP != nil {
		model.SetTopP(float32(*options.TopP))
	}
	if topK, ok := options.Extra["top_k"].(int); ok {
		model.SetTopK(int32(topK))
	}
}

// convertMessages maps fitkit messages onto the Gemini chat format.
// Gemini only knows "user" and "model" roles; system prompts and tool
// results are folded into user turns. Returns the history plus the parts
// of the final message to send.
func (g *GeminiLLM) convertMessages(messages []*fitkit.Message) ([]*genai.Content, []genai.Part) {
	if len(messages) == 0 {
		return nil, []genai.Part{genai.Text("")}
	}

	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	last := contents[len(contents)-1]
	return contents[:len(contents)-1], last.Parts
}

func extractGeminiText(resp *genai.GenerateContentResponse) string {
	var content string
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content += string(text)
			}
		}
	}
	return content
}

// Unwrap returns the underlying *genai.Client.
func (g *GeminiLLM) Unwrap() interface{} {
	return g.client
}

// Close releases the underlying client connection.
func (g *GeminiLLM) Close() error {
	return g.client.Close()
}
