package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// ToolDefinition describes one callable tool advertised to the
// assistant. Parameters is a JSON schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

const assistantInstructions = `You are an intelligent lead generation assistant with the personality of a knowledgeable, proactive colleague. You help manage lead research, email campaigns, and provide insights about the lead database.

Your capabilities include:
1. Querying and analyzing the lead database
2. Scheduling and managing email campaigns
3. Conducting research on leads
4. Providing strategic insights and recommendations
5. Tracking campaign performance

Always communicate in a professional but friendly manner, like a trusted team member. Proactively suggest improvements and highlight important information.`

// OpenAI adapts the OpenAI Assistants API to the RunAPI contract and
// doubles as the scheduler's natural-language-to-cron interpreter.
type OpenAI struct {
	client      openai.Client
	assistantID string
	model       shared.ChatModel
}

func NewOpenAI(apiKey, assistantID string) *OpenAI {
	return &OpenAI{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		assistantID: assistantID,
		model:       shared.ChatModel("gpt-4-turbo-preview"),
	}
}

// EnsureAssistant creates the assistant with the given tool surface
// when no assistant id was configured.
func (o *OpenAI) EnsureAssistant(ctx context.Context, name string, defs []ToolDefinition) error {
	if o.assistantID != "" {
		return nil
	}

	tools := make([]openai.AssistantToolUnionParam, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, openai.AssistantToolUnionParam{
			OfFunction: &openai.FunctionToolParam{
				Function: shared.FunctionDefinitionParam{
					Name:        d.Name,
					Description: openai.String(d.Description),
					Parameters:  shared.FunctionParameters(d.Parameters),
				},
			},
		})
	}

	a, err := o.client.Beta.Assistants.New(ctx, openai.BetaAssistantNewParams{
		Model:        o.model,
		Name:         openai.String(name),
		Instructions: openai.String(assistantInstructions),
		Tools:        tools,
	})
	if err != nil {
		return fmt.Errorf("create assistant: %w", err)
	}
	o.assistantID = a.ID
	return nil
}

func (o *OpenAI) CreateThread(ctx context.Context, userID string) (string, error) {
	t, err := o.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

func (o *OpenAI) AddMessage(ctx context.Context, threadID, text string) error {
	_, err := o.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRoleUser,
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(text),
		},
	})
	return err
}

func (o *OpenAI) CreateRun(ctx context.Context, threadID string) (string, error) {
	run, err := o.client.Beta.Threads.Runs.New(ctx, threadID, openai.BetaThreadRunNewParams{
		AssistantID: o.assistantID,
	})
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

func (o *OpenAI) GetRun(ctx context.Context, threadID, runID string) (RunState, error) {
	run, err := o.client.Beta.Threads.Runs.Get(ctx, threadID, runID)
	if err != nil {
		return RunState{}, err
	}

	state := RunState{Status: RunStatus(run.Status)}
	if run.LastError.Message != "" {
		state.FailureReason = run.LastError.Message
	}
	if run.Status == openai.RunStatusRequiresAction {
		for _, tc := range run.RequiredAction.SubmitToolOutputs.ToolCalls {
			state.ToolCalls = append(state.ToolCalls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: json.RawMessage(tc.Function.Arguments),
			})
		}
	}
	return state, nil
}

func (o *OpenAI) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) error {
	params := openai.BetaThreadRunSubmitToolOutputsParams{}
	for _, out := range outputs {
		params.ToolOutputs = append(params.ToolOutputs, openai.BetaThreadRunSubmitToolOutputsParamsToolOutput{
			ToolCallID: openai.String(out.ToolCallID),
			Output:     openai.String(out.Output),
		})
	}
	_, err := o.client.Beta.Threads.Runs.SubmitToolOutputs(ctx, threadID, runID, params)
	return err
}

func (o *OpenAI) LatestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	page, err := o.client.Beta.Threads.Messages.List(ctx, threadID, openai.BetaThreadMessageListParams{
		Limit: openai.Int(1),
		Order: openai.BetaThreadMessageListParamsOrderDesc,
	})
	if err != nil {
		return "", err
	}
	if len(page.Data) == 0 {
		return "", errors.New("thread has no messages")
	}

	var parts []string
	for _, c := range page.Data[0].Content {
		if c.Text.Value != "" {
			parts = append(parts, c.Text.Value)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// InterpretSchedule asks the model to translate free-form schedule
// text into a 5-field cron expression. The caller validates the
// result before trusting it.
func (o *OpenAI) InterpretSchedule(ctx context.Context, input string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("Convert the user's schedule description into a standard 5-field cron expression. Reply with the expression only, nothing else."),
			openai.UserMessage(input),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateInsight produces short briefing text from structured data,
// used by the send_report scheduled task.
func (o *OpenAI) GenerateInsight(ctx context.Context, data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a helpful colleague providing a morning briefing. Be concise, highlight important items, and suggest 2-3 actionable items for the day."),
			openai.UserMessage("Generate a brief, friendly morning update based on this data: " + string(raw)),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices")
	}
	return resp.Choices[0].Message.Content, nil
}
