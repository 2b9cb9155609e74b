// Package insight answers the open-ended questions a plan cannot: "what
// risks do you see in the expenses?". It holds a direct Gemini client and
// produces prose over the workspace summary rather than a computed number.
package insight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"intelligent_accountant/pkg/core/prompt"
	"intelligent_accountant/pkg/core/utils"
)

// Agent is a long-lived commentary agent with its own Gemini client.
type Agent struct {
	modelName    string
	client       *genai.Client
	systemPrompt string
}

// NewAgent creates the agent, failing fast when GEMINI_API_KEY is unset.
func NewAgent(ctx context.Context) (*Agent, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &Agent{
		modelName:    "gemini-2.0-flash",
		client:       client,
		systemPrompt: prompt.Get().SystemPromptOr("insight.commentary", defaultCommentaryPrompt),
	}, nil
}

// Close releases the underlying client.
func (a *Agent) Close() error {
	return a.client.Close()
}

// Comment generates qualitative commentary on the loaded data.
func (a *Agent) Comment(ctx context.Context, question string, dataInfo string) (string, error) {
	model := a.client.GenerativeModel(a.modelName)
	model.SetTemperature(0.7)

	fullPrompt := fmt.Sprintf("%s\n\nData Info:\n%s\n\nQuestion: %s", a.systemPrompt, dataInfo, question)

	resp, err := model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return "", fmt.Errorf("insight generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("insight model returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return utils.CleanExplanation(sb.String()), nil
}

const defaultCommentaryPrompt = `You are a seasoned accountant reviewing a client's financial statements.
Give a grounded, qualitative assessment based only on the data summary provided.
Point at specific line items and totals; quantify where the data allows.
Be direct about risks, anomalies, and concentrations. Format as plain Markdown.`
