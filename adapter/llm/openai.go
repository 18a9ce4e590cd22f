package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fitforge/fitkit/fitkit"
)

// OpenAILLM adapts OpenAI chat models to the ToolCallingLLM contract.
//
// Tool declarations bound with BindTools are sent as function tools on
// every request; tool calls in the response surface as fitkit.ToolCall
// records so the orchestration layer can execute them.
//
// Example:
//
//	model := NewOpenAILLM("sk-...", "gpt-4o").BindTools(registry.Specs())
//	response, err := model.Complete(ctx, history, WithTemperature(0.2))
type OpenAILLM struct {
	client *openai.Client
	model  string
	tools  []openai.Tool
}

var _ ToolCallingLLM = (*OpenAILLM)(nil)

// NewOpenAILLM creates an OpenAI adapter. The API key comes from the
// caller (normally the config package); the adapter never reads the
// process environment itself.
func NewOpenAILLM(apiKey, model string) *OpenAILLM {
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAILLM{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Model returns the model identifier.
func (o *OpenAILLM) Model() string {
	return o.model
}

// BindTools returns a copy of the adapter that declares the given tools
// on every request.
func (o *OpenAILLM) BindTools(specs []fitkit.ToolSpec) ToolCallingLLM {
	tools := make([]openai.Tool, 0, len(specs))
	for _, spec := range specs {
		params := spec.Parameters
		if params == nil {
			params = map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  params,
			},
		})
	}
	return &OpenAILLM{client: o.client, model: o.model, tools: tools}
}

// Complete generates a single completion, including any tool calls the
// model requests.
func (o *OpenAILLM) Complete(ctx context.Context, messages []*fitkit.Message, opts ...CallOption) (*fitkit.Message, error) {
	options := BuildCallOptions(opts...)

	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: o.convertMessages(messages),
		Tools:    o.tools,
	}
	applyOpenAIOptions(&req, options)

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	choice := resp.Choices[0]
	response := fitkit.NewMessage("assistant", choice.Message.Content)
	for _, tc := range choice.Message.ToolCalls {
		args := make(map[string]interface{})
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("openai tool call %q has malformed arguments: %w", tc.Function.Name, err)
			}
		}
		response.ToolCalls = append(response.ToolCalls, fitkit.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		})
	}

	response.Metadata["model"] = resp.Model
	response.Metadata["finish_reason"] = string(choice.FinishReason)
	response.Metadata["usage"] = map[string]interface{}{
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	}
	return response, nil
}

// Stream generates completion chunks. Tool calls are not surfaced on the
// streaming path; agents that execute tools use Complete.
func (o *OpenAILLM) Stream(ctx context.Context, messages []*fitkit.Message, opts ...CallOption) (<-chan *fitkit.Message, error) {
	options := BuildCallOptions(opts...)

	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: o.convertMessages(messages),
		Stream:   true,
	}
	applyOpenAIOptions(&req, options)

	stream, err := o.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai stream error: %w", err)
	}

	out := make(chan *fitkit.Message)
	go func() {
		defer close(out)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errMsg := fitkit.NewMessage("assistant", "")
				errMsg.Metadata["error"] = err.Error()
				errMsg.Metadata["streaming"] = true
				out <- errMsg
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			chunk := fitkit.NewMessage("assistant", resp.Choices[0].Delta.Content)
			chunk.Metadata["streaming"] = true
			chunk.Metadata["model"] = o.model
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func applyOpenAIOptions(req *openai.ChatCompletionRequest, options *CallOptions) {
	if options.Temperature != nil {
		req.Temperature = float32(*options.Temperature)
	}
	if options.MaxTokens != nil {
		req.MaxTokens = *options.MaxTokens
	}
	if options.TopP != nil {
		req.TopP = float32(*options.TopP)
	}
	if fp, ok := options.Extra["frequency_penalty"].(float64); ok {
		req.FrequencyPenalty = float32(fp)
	}
	if pp, ok := options.Extra["presence_penalty"].(float64); ok {
		req.PresencePenalty = float32(pp)
	}
	if stop, ok := options.Extra["stop"].([]string); ok {
		req.Stop = stop
	}
}

// convertMessages maps fitkit messages onto the OpenAI wire format,
// preserving tool calls and tool results.
func (o *OpenAILLM) convertMessages(messages []*fitkit.Message) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		oc := openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
		switch msg.Role {
		case "system", "user", "assistant":
		case "tool":
			oc.ToolCallID = msg.ToolCallID
			oc.Name = msg.Name
		default:
			oc.Role = "assistant"
		}
		for _, tc := range msg.ToolCalls {
			args, err := json.Marshal(tc.Args)
			if err != nil {
				args = []byte("{}")
			}
			oc.ToolCalls = append(oc.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(args),
				},
			})
		}
		converted = append(converted, oc)
	}
	return converted
}

// Unwrap returns the underlying *openai.Client.
func (o *OpenAILLM) Unwrap() interface{} {
	return o.client
}
