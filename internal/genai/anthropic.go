package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/desertthunder/aria/internal/shared"
)

const defaultModel = "claude-sonnet-4-20250514"

// AnthropicGenerator implements [TextGenerator] against the Anthropic
// Messages API.
type AnthropicGenerator struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicGenerator creates a generator. An empty model falls back to
// the package default.
func NewAnthropicGenerator(apiKey, model string) *AnthropicGenerator {
	if model == "" {
		model = defaultModel
	}
	return &AnthropicGenerator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

// GeneratePlaylistName asks for a short playlist name.
func (g *AnthropicGenerator) GeneratePlaylistName(ctx context.Context, req NameRequest) (string, error) {
	prompt := namePrompt(req)

	text, err := g.complete(ctx, prompt, 64)
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(strings.Trim(strings.TrimSpace(text), `"`))
	if name == "" {
		return "", fmt.Errorf("%w: empty name response", shared.ErrGeneratorFailed)
	}
	return name, nil
}

// GenerateSongList asks for newline-delimited "Artist - Title" candidates.
func (g *AnthropicGenerator) GenerateSongList(ctx context.Context, req SongListRequest) (string, error) {
	prompt := songListPrompt(req)

	text, err := g.complete(ctx, prompt, 1024)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty song list response", shared.ErrGeneratorFailed)
	}
	return text, nil
}

// complete runs one Messages request and concatenates the text blocks.
func (g *AnthropicGenerator) complete(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrGeneratorFailed, err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

func namePrompt(req NameRequest) string {
	var sb strings.Builder
	sb.WriteString("Suggest one short, catchy playlist name for this vibe: ")
	sb.WriteString(req.Vibe)
	writeConstraint(&sb, "artists", req.Artists)
	writeConstraint(&sb, "era", req.Era)
	writeConstraint(&sb, "instrument", req.Instrument)
	writeConstraint(&sb, "language", req.Language)
	sb.WriteString("\nReply with the name only, no quotes or commentary.")
	return sb.String()
}

func songListPrompt(req SongListRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "List %d real songs matching this vibe: %s", req.NumSongs, req.Vibe)
	writeConstraint(&sb, "artists", req.Artists)
	writeConstraint(&sb, "era", req.Era)
	writeConstraint(&sb, "instrument", req.Instrument)
	writeConstraint(&sb, "language", req.Language)
	if req.MaxSongsPerArtist > 0 {
		fmt.Fprintf(&sb, "\nAt most %d songs per artist.", req.MaxSongsPerArtist)
	}
	sb.WriteString("\nReply with one song per line in the exact format: Artist - Title")
	return sb.String()
}

func writeConstraint(sb *strings.Builder, label, value string) {
	if strings.TrimSpace(value) != "" {
		fmt.Fprintf(sb, "\nPreferred %s: %s.", label, value)
	}
}
