// Package synth turns acquired raw content into a schema-conformant
// recipe record via two stateless, single-shot calls to a generative
// completion service. A response that fails schema validation is a hard
// failure; the synthesizer never repairs or fabricates output.
package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/SquizAI/recipies01/internal/models"
)

// Content is the joined acquisition result fed into recipe extraction.
type Content struct {
	Text       string
	Transcript *string
	SourceURL  string
}

// Synthesizer drives the completion service.
type Synthesizer struct {
	model llms.Model
	log   *slog.Logger
}

// New builds a Synthesizer over any langchaingo model.
func New(model llms.Model, log *slog.Logger) *Synthesizer {
	return &Synthesizer{model: model, log: log}
}

// ExtractRecipe performs the schema-constrained recipe call. The returned
// recipe is validated, normalized, and stamped with the source URL and
// transcript; its shopping list and thumbnail start empty.
func (s *Synthesizer) ExtractRecipe(ctx context.Context, content Content) (*models.Recipe, error) {
	if strings.TrimSpace(content.Text) == "" && content.Transcript == nil {
		return nil, fmt.Errorf("no content to synthesize from")
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Post URL: %s\n\nPost text:\n%s\n", content.SourceURL, content.Text)
	if content.Transcript != nil {
		fmt.Fprintf(&user, "\nVideo transcription:\n%s\n", *content.Transcript)
	}

	raw, err := s.complete(ctx, recipeSystemPrompt, user.String())
	if err != nil {
		return nil, fmt.Errorf("recipe extraction call: %w", err)
	}

	var recipe models.Recipe
	if err := json.Unmarshal([]byte(stripFence(raw)), &recipe); err != nil {
		return nil, &models.SchemaValidationError{Field: "recipe", Reason: fmt.Sprintf("response is not valid JSON: %v", err)}
	}

	recipe.SourceURL = &content.SourceURL
	recipe.VideoTranscription = content.Transcript
	recipe.ShoppingList = nil
	recipe.ThumbnailURL = nil
	recipe.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	recipe.Normalize()

	if err := recipe.Validate(); err != nil {
		return nil, err
	}

	s.log.Info("recipe synthesized", "title", recipe.Title, "ingredients", len(recipe.Ingredients), "steps", len(recipe.Steps))
	return &recipe, nil
}

// shoppingResponse is the wire shape of the shopping-list call.
type shoppingResponse struct {
	Items []models.ShoppingItem `json:"items"`
}

// BuildShoppingList derives a categorized shopping list from the
// recipe's ingredients and collapses duplicates deterministically.
func (s *Synthesizer) BuildShoppingList(ctx context.Context, recipe *models.Recipe) ([]models.ShoppingItem, error) {
	payload, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("marshal ingredients: %w", err)
	}

	raw, err := s.complete(ctx, shoppingSystemPrompt, string(payload))
	if err != nil {
		return nil, fmt.Errorf("shopping list call: %w", err)
	}

	var resp shoppingResponse
	if err := json.Unmarshal([]byte(stripFence(raw)), &resp); err != nil {
		return nil, &models.SchemaValidationError{Field: "shopping_list", Reason: fmt.Sprintf("response is not valid JSON: %v", err)}
	}
	for i, item := range resp.Items {
		if item.Name == "" || item.Amount <= 0 || item.Unit == "" {
			return nil, &models.SchemaValidationError{
				Field:  fmt.Sprintf("shopping_list[%d]", i),
				Reason: "missing name, unit, or positive amount",
			}
		}
	}

	return MergeItems(resp.Items), nil
}

// MergeItems collapses items that share a normalized name (lowercased,
// trimmed) and a case-insensitive unit into one row with summed amount;
// the first occurrence's category and store section win. Items with the
// same name but different units stay distinct. First-seen order is
// preserved.
func MergeItems(items []models.ShoppingItem) []models.ShoppingItem {
	type key struct{ name, unit string }
	index := make(map[key]int)
	merged := make([]models.ShoppingItem, 0, len(items))

	for _, item := range items {
		k := key{
			name: strings.ToLower(strings.TrimSpace(item.Name)),
			unit: strings.ToLower(strings.TrimSpace(item.Unit)),
		}
		if i, ok := index[k]; ok {
			merged[i].Amount += item.Amount
			continue
		}
		index[k] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// complete issues one JSON-mode call and returns the first choice.
func (s *Synthesizer) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := s.model.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(schema.ChatMessageTypeSystem, system),
			llms.TextParts(schema.ChatMessageTypeHuman, user),
		},
		llms.WithJSONMode(),
		llms.WithTemperature(0.2),
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion service returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
