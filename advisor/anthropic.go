package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const systemPrompt = "You advise the AI side of a turn-based territory control game on a grid map. " +
	"Territories border each other when they are orthogonal neighbors. " +
	"Reply with one or two short sentences of strategy. Name specific territories when useful " +
	"and say whether to attack the player, expand into neutral land, reinforce or defend."

var ErrMissingAPIKey = errors.New("advisor api key is not configured")

type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
	BaseURL   string // Empty uses the SDK default
}

// Anthropic asks a hosted language model for a strategy hint.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropic creates the advisor. The key must come from injected
// configuration; requests are never retried.
func NewAnthropic(cfg AnthropicConfig) (*Anthropic, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		return nil, errors.New("advisor model is not configured")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 256
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

func (a *Anthropic) Strategy(ctx context.Context, snapshot Snapshot) (string, error) {
	prompt, err := Prompt(snapshot)
	if err != nil {
		return "", err
	}

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to request strategy: %w", err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			parts = append(parts, strings.TrimSpace(block.Text))
		}
	}
	return strings.Join(parts, " "), nil
}

// Prompt renders the snapshot into the user message sent to the model.
func Prompt(snapshot Snapshot) (string, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "The AI holds %d territories with %d units. The player holds %d territories with %d units.\n",
		snapshot.Totals.AITerritories, snapshot.Totals.AIUnits,
		snapshot.Totals.PlayerTerritories, snapshot.Totals.PlayerUnits)
	sb.WriteString("Board state as JSON:\n")
	sb.Write(data)
	sb.WriteString("\nWhat should the AI do this turn?")
	return sb.String(), nil
}
