package chat

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/maguenza/hackernews-ai-project/internal/cache"
	"github.com/maguenza/hackernews-ai-project/internal/db"
	"github.com/maguenza/hackernews-ai-project/pkg/config"
	"github.com/maguenza/hackernews-ai-project/pkg/logging"
	"github.com/maguenza/hackernews-ai-project/pkg/telemetry"
)

const systemPrompt = `You are an assistant for a HackerNews data warehouse. ` +
	`Answer questions about stored stories, comments, users, and job postings ` +
	`using the provided tools. Only state facts returned by the tools; if a ` +
	`tool returns nothing, say so rather than guessing.`

const (
	maxHistoryTurns = 20
	sessionTTL      = time.Hour
)

// storedTurn is one persisted conversation turn. Tool rounds are not
// persisted, only the user message and the final answer.
type storedTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Agent answers natural language questions over the stored data by
// running a bounded tool-calling loop against the Gemini API.
type Agent struct {
	client   *genai.Client
	cfg      *config.GeminiConfig
	tools    *Toolset
	sessions *cache.Cache
	logger   *zap.Logger
}

// NewAgent creates a new chat agent. sessions may be nil, in which case
// every request is answered statelessly.
func NewAgent(ctx context.Context, cfg *config.GeminiConfig, repo *db.Repository, sessions *cache.Cache) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	return &Agent{
		client:   client,
		cfg:      cfg,
		tools:    NewToolset(repo),
		sessions: sessions,
		logger:   logging.GetLogger().With(zap.String("component", "chat")),
	}, nil
}

// Chat answers one user message within the given session. The model may
// request tool calls for up to MaxRounds rounds; tool failures are fed
// back to the model as error strings instead of aborting the request.
func (a *Agent) Chat(ctx context.Context, sessionID, message string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "chat.request")
	defer span.End()

	if message == "" {
		return "", fmt.Errorf("message is empty")
	}

	history := a.loadHistory(sessionID)

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, genai.NewContentFromText(turn.Text, genai.Role(turn.Role)))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Tools: []*genai.Tool{
			{FunctionDeclarations: a.tools.Declarations()},
		},
	}

	for round := 0; round < a.cfg.MaxRounds; round++ {
		resp, err := a.client.Models.GenerateContent(ctx, a.cfg.Model, contents, genCfg)
		if err != nil {
			return "", fmt.Errorf("failed to generate content: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", fmt.Errorf("empty response from model")
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			answer := resp.Text()
			a.saveHistory(sessionID, history, message, answer)
			return answer, nil
		}

		contents = append(contents, resp.Candidates[0].Content)
		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			a.logger.Debug("Executing tool call",
				zap.String("tool", call.Name),
				zap.Int("round", round))

			result, err := a.tools.Execute(ctx, call.Name, call.Args)
			if err != nil {
				a.logger.Warn("Tool call failed",
					zap.String("tool", call.Name), zap.Error(err))
				result = map[string]any{"error": err.Error()}
			}
			parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, result))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}

	return "", fmt.Errorf("tool call budget exhausted after %d rounds", a.cfg.MaxRounds)
}

func (a *Agent) loadHistory(sessionID string) []storedTurn {
	if sessionID == "" {
		return nil
	}

	var history []storedTurn
	if err := a.sessions.GetJSON(sessionKey(sessionID), &history); err != nil {
		return nil
	}
	return history
}

func (a *Agent) saveHistory(sessionID string, history []storedTurn, message, answer string) {
	if sessionID == "" {
		return
	}

	history = append(history,
		storedTurn{Role: string(genai.RoleUser), Text: message},
		storedTurn{Role: string(genai.RoleModel), Text: answer})
	history = trimHistory(history, maxHistoryTurns)

	if err := a.sessions.SetJSON(sessionKey(sessionID), history, sessionTTL); err != nil && err != cache.ErrCacheDisabled {
		a.logger.Warn("Failed to persist chat session",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}

// trimHistory keeps the most recent turns up to max
func trimHistory(turns []storedTurn, max int) []storedTurn {
	if len(turns) <= max {
		return turns
	}
	return turns[len(turns)-max:]
}

func sessionKey(sessionID string) string {
	return "chat:" + sessionID
}
