package categorize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/tally-dev/tally/internal/merchant"
	"github.com/tally-dev/tally/internal/model"
)

// GeminiSuggester suggests categories via a single Gemini call per batch.
// Credentials come from the environment (GEMINI_API_KEY, or the Vertex AI
// variables when GOOGLE_GENAI_USE_VERTEXAI is set).
type GeminiSuggester struct {
	client    *genai.Client
	modelName string
}

// NewGeminiSuggester creates a suggester backed by the named Gemini model.
func NewGeminiSuggester(ctx context.Context, modelName string) (*GeminiSuggester, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GeminiSuggester{client: client, modelName: modelName}, nil
}

// SuggestBatch sends every merchant and the full category list in one
// request and parses the strict-JSON response into key -> code.
func (g *GeminiSuggester) SuggestBatch(ctx context.Context, merchants []Merchant, cats []model.Category) (map[string]string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildPrompt(merchants, cats)},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generating suggestions: %w", err)
	}

	return parseSuggestions(resp.Text())
}

// buildPrompt renders the batched categorization request: the full category
// list plus every distinct unknown merchant, so the model can make mutually
// consistent choices in one pass.
func buildPrompt(merchants []Merchant, cats []model.Category) string {
	var b strings.Builder
	b.WriteString("Categorize these bank transactions into the best matching category.\n\n")

	b.WriteString("Available categories:\n")
	for _, c := range cats {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", c.Code, c.Name, c.Type)
	}

	b.WriteString("\nTransactions to categorize:\n")
	for i, m := range merchants {
		kind := "expense"
		if m.Amount.IsPositive() {
			kind = "income"
		}
		fmt.Fprintf(&b, "%d. [%s] %s | $%s (%s)\n",
			i+1, m.Date.Format("2006-01-02"), m.Description, m.Amount.Abs().StringFixed(2), kind)
	}

	b.WriteString("\nRespond with ONLY a JSON object mapping each transaction's ")
	b.WriteString("description, exactly as given, to a category code:\n")
	b.WriteString(`{"<description>": "<code>", ...}` + "\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Use only the category codes listed above.\n")
	b.WriteString("- Income transactions must use an income category.\n")
	b.WriteString("- Return raw JSON with no code fences or commentary.\n")
	b.WriteString("- Output must begin with \"{\" and end with \"}\".\n")

	return b.String()
}

// parseSuggestions validates the model output against a strict schema: one
// JSON object of string to string. Anything else is a provider failure for
// the whole batch. Keys are normalized to merchant keys; codes are checked
// against the category list by the engine.
func parseSuggestions(text string) (map[string]string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var raw map[string]string
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	out := make(map[string]string, len(raw))
	for desc, code := range raw {
		out[merchant.Key(desc)] = strings.TrimSpace(code)
	}
	return out, nil
}
