package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini implements the extraction and suggestion oracles against the Gemini
// API. One client serves all three roles.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates the shared Gemini client. Credentials come from the
// environment (GEMINI_API_KEY or application default credentials).
func NewGemini(ctx context.Context, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGemini: create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// ExtractStatement sends the PDF inline to the model and shapes its strict
// JSON answer into raw ledger rows. Any malformed response maps to
// ErrDocumentUnreadable.
func (g *Gemini) ExtractStatement(ctx context.Context, pdfBytes []byte) (*ExtractionResult, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: extractionPrompt()},
				{
					InlineData: &genai.Blob{
						MIMEType: "application/pdf",
						Data:     pdfBytes,
					},
				},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("ExtractStatement: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("ExtractStatement: empty model response: %w", ErrDocumentUnreadable)
	}

	clean := cleanModelJSON(rawText)

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, fmt.Errorf("ExtractStatement: unmarshal model JSON: %v: %w", err, ErrDocumentUnreadable)
	}

	return transformExtraction(payload)
}

// CorrectDate asks the model for the canonical form of an invalid date
// string. Best-effort: on any failure the original text comes back unchanged
// and no error is reported, so callers never have to handle oracle outages.
func (g *Gemini) CorrectDate(ctx context.Context, raw string) (string, error) {
	prompt := "The following bank statement date could not be parsed: \"" + raw + "\".\n" +
		"Answer with ONLY the most likely intended date in YYYY-MM-DD form.\n" +
		"If you cannot tell, answer with the input unchanged."

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return raw, nil
	}
	answer := strings.TrimSpace(strings.Trim(cleanScalarAnswer(resp.Text()), `"`))
	if answer == "" {
		return raw, nil
	}
	return answer, nil
}

// SuggestCategory asks the model to classify a transaction description into
// the fixed taxonomy. The ledger engine discards out-of-taxonomy answers, so
// this only has to make a best effort at returning a member verbatim.
func (g *Gemini) SuggestCategory(ctx context.Context, description, current string) (string, error) {
	prompt := "Classify this Brazilian bank statement transaction into ONE of the " +
		"categories below. Answer with the category name EXACTLY as written, nothing else.\n\n" +
		categoriesPrompt() +
		"\nCurrent category: " + current + "\n" +
		"Transaction description: " + description + "\n"

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("SuggestCategory: generate content: %w", err)
	}
	return strings.TrimSpace(strings.Trim(cleanScalarAnswer(resp.Text()), `"`)), nil
}

// cleanModelJSON strips Markdown fences and surrounding prose when the model
// ignores the raw-JSON instruction, keeping only the outermost JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

// cleanScalarAnswer strips fences from single-value answers and keeps the
// first line of what remains.
func cleanScalarAnswer(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = strings.TrimSpace(s[:idx])
	}
	return s
}
