package llm

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/fitforge/fitkit/fitkit"
)

// BedrockLLM adapts Amazon Bedrock foundation models to the LLM contract
// using the Converse API. Credentials follow the standard AWS chain
// (explicit keys, profile, environment, IAM role) as configured by the
// caller.
type BedrockLLM struct {
	client  *bedrockruntime.Client
	modelID string
}

var _ LLM = (*BedrockLLM)(nil)

// BedrockConfig holds the settings for building a Bedrock adapter.
type BedrockConfig struct {
	// ModelID is the Bedrock model identifier.
	ModelID string

	// Region is the AWS region (default us-east-1).
	Region string

	// Profile selects an AWS shared-config profile (optional).
	Profile string

	// AccessKeyID / SecretAccessKey / SessionToken supply explicit
	// credentials (optional; the default chain applies otherwise).
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// EndpointURL overrides the service endpoint, e.g. for VPC endpoints.
	EndpointURL string
}

// NewBedrockLLM creates a Bedrock adapter from the given configuration.
func NewBedrockLLM(ctx context.Context, cfg BedrockConfig) (*BedrockLLM, error) {
	if cfg.ModelID == "" {
		cfg.ModelID = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	configOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Profile != "" {
		configOpts = append(configOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*bedrockruntime.Options)
	if cfg.EndpointURL != "" {
		clientOpts = append(clientOpts, func(o *bedrockruntime.Options) {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		})
	}

	return &BedrockLLM{
		client:  bedrockruntime.NewFromConfig(awsCfg, clientOpts...),
		modelID: cfg.ModelID,
	}, nil
}

// Model returns the Bedrock model identifier.
func (b *BedrockLLM) Model() string {
	return b.modelID
}

// Complete generates a single completion via the Converse API.
func (b *BedrockLLM) Complete(ctx context.Context, messages []*fitkit.Message, opts ...CallOption) (*fitkit.Message, error) {
	options := BuildCallOptions(opts...)
	bedrockMessages, systemPrompts := b.convertMessages(messages)

	input := &bedrockruntime.ConverseInput{
		ModelId:         aws.String(b.modelID),
		Messages:        bedrockMessages,
		InferenceConfig: buildInferenceConfig(options),
	}
	if len(systemPrompts) > 0 {
		input.System = systemPrompts
	}

	output, err := b.client.Converse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("bedrock api error: %w", err)
	}

	var content string
	if output.Output != nil {
		if msg, ok := output.Output.(*types.ConverseOutputMemberMessage); ok {
			for _, block := range msg.Value.Content {
				if text, ok := block.(*types.ContentBlockMemberText); ok {
					content += text.Value
				}
			}
		}
	}

	response := fitkit.NewMessage("assistant", content)
	response.Metadata["model"] = b.modelID
	if output.Usage != nil {
		response.Metadata["usage"] = map[string]interface{}{
			"prompt_tokens":     aws.ToInt32(output.Usage.InputTokens),
			"completion_tokens": aws.ToInt32(output.Usage.OutputTokens),
			"total_tokens":      aws.ToInt32(output.Usage.TotalTokens),
		}
	}
	if output.StopReason != "" {
		response.Metadata["stop_reason"] = string(output.StopReason)
	}
	return response, nil
}

// Stream generates completion chunks via the ConverseStream API.
func (b *BedrockLLM) Stream(ctx context.Context, messages []*fitkit.Message, opts ...CallOption) (<-chan *fitkit.Message, error) {
	options := BuildCallOptions(opts...)
	bedrockMessages, systemPrompts := b.convertMessages(messages)

	input := &bedrockruntime.ConverseStreamInput{
		ModelId:         aws.String(b.modelID),
		Messages:        bedrockMessages,
		InferenceConfig: buildInferenceConfig(options),
	}
	if len(systemPrompts) > 0 {
		input.System = systemPrompts
	}

	output, err := b.client.ConverseStream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("bedrock api error: %w", err)
	}

	out := make(chan *fitkit.Message)
	go func() {
		defer close(out)
		stream := output.GetStream()
		defer stream.Close()

		for event := range stream.Events() {
			delta, ok := event.(*types.ConverseStreamOutputMemberContentBlockDelta)
			if !ok || delta.Value.Delta == nil {
				continue
			}
			if text, ok := delta.Value.Delta.(*types.ContentBlockDeltaMemberText); ok {
				chunk := fitkit.NewMessage("assistant", text.Value)
				chunk.Metadata["streaming"] = true
				chunk.Metadata["model"] = b.modelID
				select {
				case out <- chunk:
				case <-ctx.Done():
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			errMsg := fitkit.NewMessage("assistant", "")
			errMsg.Metadata["error"] = err.Error()
			errMsg.Metadata["streaming"] = true
			out <- errMsg
		}
	}()
	return out, nil
}

func buildInferenceConfig(options *CallOptions) *types.InferenceConfiguration {
	cfg := &types.InferenceConfiguration{}
	if options.Temperature != nil {
		cfg.Temperature = aws.Float32(float32(*options.Temperature))
	}
	maxTokens := 4096
	if options.MaxTokens != nil {
		maxTokens = *options.MaxTokens
	}
	cfg.MaxTokens = aws.Int32(int32(maxTokens))
	if options.TopP != nil {
		cfg.TopP = aws.Float32(float32(*options.TopP))
	}
	if stop, ok := options.Extra["stop_sequences"].([]string); ok && len(stop) > 0 {
		cfg.StopSequences = stop
	}
	return cfg
}

// convertMessages maps fitkit messages onto the Converse format. System
// messages travel separately; tool results are folded into user turns
// since tool calling is not wired for this backend.
func (b *BedrockLLM) convertMessages(messages []*fitkit.Message) ([]types.Message, []types.SystemContentBlock) {
	var bedrockMessages []types.Message
	var systemPrompts []types.SystemContentBlock

	for _, msg := range messages {
		if msg.Role == "system" {
			systemPrompts = append(systemPrompts, &types.SystemContentBlockMemberText{Value: msg.Content})
			continue
		}
		role := types.ConversationRoleUser
		if msg.Role == "assistant" {
			role = types.ConversationRoleAssistant
		}
		bedrockMessages = append(bedrockMessages, types.Message{
			Role:    role,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: msg.Content}},
		})
	}
	return bedrockMessages, systemPrompts
}

// Unwrap returns the underlying *bedrockruntime.Client.
func (b *BedrockLLM) Unwrap() interface{} {
	return b.client
}
