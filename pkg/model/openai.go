package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	loggerpkg "github.com/xuanfeiren/ai-agents/pkg/logger"
	"github.com/xuanfeiren/ai-agents/pkg/session"
	"github.com/xuanfeiren/ai-agents/pkg/tools"
)

const DefaultMaxTokens = 8096

var (
	ErrEmptyChoices = errors.New("empty completion choices")
	ErrMissingModel = errors.New("model is not set")
)

// OpenAIConfig configures an OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Logger    loggerpkg.Logger
}

// OpenAI implements Caller over the chat completions API.
type OpenAI struct {
	client    openai.Client
	model     string
	maxTokens int
	logger    loggerpkg.Logger
}

// NewOpenAI builds a client. Extra request options are appended after the
// ones derived from cfg.
func NewOpenAI(cfg OpenAIConfig, extra ...option.RequestOption) (*OpenAI, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, ErrMissingModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Logger == nil {
		cfg.Logger = loggerpkg.NopLogger{}
	}

	opts := []option.RequestOption{}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	opts = append(opts, extra...)

	return &OpenAI{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
	}, nil
}

// Model returns the model name sent with every request.
func (o *OpenAI) Model() string {
	return o.model
}

func (o *OpenAI) Call(ctx context.Context, system string, turns []session.Turn, defs []tools.Definition) (Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(o.model),
		Messages:  convertTurns(system, turns),
		MaxTokens: openai.Int(int64(o.maxTokens)),
	}
	if len(defs) > 0 {
		params.Tools = convertDefinitions(defs)
	}

	loggerpkg.Debug(o.logger, "chat completion request", map[string]any{
		"model":    o.model,
		"messages": len(params.Messages),
		"tools":    len(params.Tools),
	})
	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Response{}, ErrEmptyChoices
	}

	choice := completion.Choices[0]
	resp := Response{
		Text:         choice.Message.Content,
		FinishReason: string(choice.FinishReason),
	}
	for _, call := range choice.Message.ToolCalls {
		resp.Invocations = append(resp.Invocations, session.ToolInvocation{
			CorrelationID: call.ID,
			ToolName:      call.Function.Name,
			RawArguments:  call.Function.Arguments,
		})
	}
	// A reply cut short (length, content_filter) may carry partial tool-call
	// arguments, so only an explicit tool_calls finish keeps the loop going.
	// Some compatible servers omit the finish reason entirely.
	resp.Terminal = len(resp.Invocations) == 0 ||
		(resp.FinishReason != "" && resp.FinishReason != "tool_calls")
	loggerpkg.Debug(o.logger, "chat completion response", map[string]any{
		"finish_reason": resp.FinishReason,
		"tool_calls":    len(resp.Invocations),
		"text_bytes":    len(resp.Text),
	})
	return resp, nil
}

func convertTurns(system string, turns []session.Turn) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, turn := range turns {
		switch turn.Role {
		case session.RoleUser:
			messages = append(messages, openai.UserMessage(turn.Content))
		case session.RoleAssistant:
			messages = append(messages, assistantMessage(turn))
		case session.RoleTool:
			if turn.Result == nil {
				continue
			}
			messages = append(messages, openai.ToolMessage(turn.Result.Output, turn.Result.CorrelationID))
		}
	}
	return messages
}

func assistantMessage(turn session.Turn) openai.ChatCompletionMessageParamUnion {
	if len(turn.Invocations) == 0 {
		return openai.AssistantMessage(turn.Content)
	}
	msg := openai.ChatCompletionAssistantMessageParam{}
	if turn.Content != "" {
		msg.Content.OfString = openai.String(turn.Content)
	}
	for _, inv := range turn.Invocations {
		msg.ToolCalls = append(msg.ToolCalls, openai.ChatCompletionMessageToolCallParam{
			ID: inv.CorrelationID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      inv.ToolName,
				Arguments: inv.RawArguments,
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &msg}
}

func convertDefinitions(defs []tools.Definition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  openai.FunctionParameters(def.Parameters),
			},
		})
	}
	return out
}
