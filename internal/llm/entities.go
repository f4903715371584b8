package llm

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-sifter/internal/logging"
	"github.com/jonathan/resume-sifter/internal/types"
)

// maxLines bounds a single extraction request.
const maxLines = 400

var knownLabels = map[string]bool{
	types.EntityOrg:    true,
	types.EntitySchool: true,
	types.EntityDate:   true,
	types.EntityTitle:  true,
}

// ExtractionError is returned when the model response cannot be used.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ExtractorOption configures an EntityExtractor.
type ExtractorOption func(*EntityExtractor)

// WithTier selects the model tier used for extraction.
func WithTier(tier ModelTier) ExtractorOption {
	return func(e *EntityExtractor) { e.tier = tier }
}

// WithLogger sets the logger used to report dropped entities.
func WithLogger(logger *slog.Logger) ExtractorOption {
	return func(e *EntityExtractor) { e.logger = logger }
}

// EntityExtractor annotates résumé lines with entity hints through a Client.
type EntityExtractor struct {
	client   Client
	tier     ModelTier
	logger   *slog.Logger
	validate *validator.Validate
}

// NewEntityExtractor creates an extractor backed by client.
func NewEntityExtractor(client Client, opts ...ExtractorOption) *EntityExtractor {
	e := &EntityExtractor{
		client:   client,
		tier:     TierLite,
		logger:   logging.Discard(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type entityResponse struct {
	Entities []types.EntityHint `json:"entities"`
}

// Extract returns the entity hints the model finds in lines, sorted by line
// then text. Entities with an unknown label, an out-of-range line or empty
// text are dropped; confidences are clamped to [0, 1].
func (e *EntityExtractor) Extract(ctx context.Context, lines []string) ([]types.EntityHint, error) {
	if len(lines) == 0 {
		return []types.EntityHint{}, nil
	}
	if len(lines) > maxLines {
		return nil, &ExtractionError{Message: fmt.Sprintf("document has %d lines, limit is %d", len(lines), maxLines)}
	}

	prompt := BuildExtractionPrompt(EntityHintsSchema(), numberLines(lines))
	raw, err := e.client.GenerateJSON(ctx, prompt, e.tier)
	if err != nil {
		return nil, &ExtractionError{Message: "entity extraction failed", Cause: err}
	}

	var resp entityResponse
	if err := json.Unmarshal([]byte(CleanJSONBlock(raw)), &resp); err != nil {
		return nil, &ExtractionError{Message: "failed to parse entity response", Cause: err}
	}

	out := make([]types.EntityHint, 0, len(resp.Entities))
	for _, h := range resp.Entities {
		h.Text = strings.TrimSpace(h.Text)
		h.Label = strings.ToUpper(strings.TrimSpace(h.Label))
		h.Confidence = min(max(h.Confidence, 0), 1)

		if !knownLabels[h.Label] || h.LineIdx >= len(lines) {
			e.logger.Debug("dropping entity", slog.String("label", h.Label), slog.Int("line", h.LineIdx))
			continue
		}
		if err := e.validate.Struct(h); err != nil {
			e.logger.Debug("dropping invalid entity", slog.String("error", err.Error()))
			continue
		}
		out = append(out, h)
	}

	slices.SortFunc(out, func(a, b types.EntityHint) int {
		return cmp.Or(cmp.Compare(a.LineIdx, b.LineIdx), cmp.Compare(a.Text, b.Text))
	})
	return out, nil
}
