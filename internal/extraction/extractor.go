package extraction

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"realty-assistant/internal/contextutil"
	"realty-assistant/internal/llm"
	"realty-assistant/internal/service"
)

const (
	// ClassifyRunes is how much of a document classification looks at.
	ClassifyRunes = 2000
	// ExtractRunes caps the document text sent for field extraction.
	ExtractRunes = 24000

	temperature = 0.1
	maxTokens   = 4000
	dateLayout  = "2006-01-02"
)

// ErrUnknownDocumentType is returned when extraction is asked for a type the schema does not define.
var ErrUnknownDocumentType = errors.New("unknown document type")

// Classification is the detected type of a document.
type Classification struct {
	DocumentType string  `json:"document_type"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

// Extraction holds the fields extracted for one document type.
// Fields omits values the model reported as null and fields outside the schema.
type Extraction struct {
	DocumentType string         `json:"document_type"`
	Fields       map[string]any `json:"fields"`
	Missing      []string       `json:"missing"`
	Confidence   float64        `json:"confidence"`
	Notes        string         `json:"notes,omitempty"`
}

// Analysis is a classification followed by extraction for the detected type.
type Analysis struct {
	Classification Classification `json:"classification"`
	Extraction     Extraction     `json:"extraction"`
}

// Extractor classifies documents and extracts their fields.
type Extractor struct {
	model  llm.ChatModel
	schema *Schema
}

// NewExtractor creates an Extractor for schema backed by model.
func NewExtractor(model llm.ChatModel, schema *Schema) *Extractor {
	return &Extractor{model: model, schema: schema}
}

// Schema returns the schema the extractor uses.
func (e *Extractor) Schema() *Schema {
	return e.schema
}

type rawClassification struct {
	DocumentType string   `json:"document_type"`
	Confidence   *float64 `json:"confidence_score"`
	Reasoning    string   `json:"reasoning"`
}

type rawExtraction struct {
	DocumentType    string         `json:"document_type"`
	ExtractedData   map[string]any `json:"extracted_data"`
	Confidence      *float64       `json:"confidence_score"`
	ProcessingNotes string         `json:"processing_notes"`
}

// Classify detects the document type from the start of text.
// A type outside the schema wraps llm.ErrMalformedResponse.
func (e *Extractor) Classify(ctx context.Context, text string) (Classification, error) {
	logger := contextutil.LoggerFromContext(ctx)

	raw, err := e.chat(ctx, classifyPrompt(e.schema.TypeNames(), truncateRunes(text, ClassifyRunes)))
	if err != nil {
		return Classification{}, service.External(err, "failed to classify document")
	}

	var parsed rawClassification
	if err := llm.ParseJSONObject(raw, &parsed); err != nil {
		return Classification{}, err
	}
	docType := normalizeTypeName(parsed.DocumentType)
	if _, ok := e.schema.Type(docType); !ok {
		return Classification{}, fmt.Errorf("%w: unknown document type %q", llm.ErrMalformedResponse, parsed.DocumentType)
	}
	confidence, err := checkConfidence(parsed.Confidence)
	if err != nil {
		return Classification{}, err
	}

	logger.InfoContext(ctx, "document classified", "document_type", docType, "confidence", confidence)
	return Classification{
		DocumentType: docType,
		Confidence:   confidence,
		Reasoning:    strings.TrimSpace(parsed.Reasoning),
	}, nil
}

// Extract pulls the fields of docType out of text.
func (e *Extractor) Extract(ctx context.Context, text, docType string) (Extraction, error) {
	logger := contextutil.LoggerFromContext(ctx)

	docType = normalizeTypeName(docType)
	dt, ok := e.schema.Type(docType)
	if !ok {
		return Extraction{}, fmt.Errorf("%w: %q", ErrUnknownDocumentType, docType)
	}

	raw, err := e.chat(ctx, extractPrompt(dt, truncateRunes(text, ExtractRunes)))
	if err != nil {
		return Extraction{}, service.External(err, "failed to extract fields")
	}

	var parsed rawExtraction
	if err := llm.ParseJSONObject(raw, &parsed); err != nil {
		return Extraction{}, err
	}
	confidence, err := checkConfidence(parsed.Confidence)
	if err != nil {
		return Extraction{}, err
	}

	fields, dropped := coerceFields(dt, parsed.ExtractedData)
	if len(dropped) > 0 {
		logger.WarnContext(ctx, "dropped extracted fields", "document_type", docType, "fields", dropped)
	}

	missing := []string{}
	for _, name := range dt.FieldNames() {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}

	logger.InfoContext(ctx, "fields extracted",
		"document_type", docType,
		"fields", len(fields),
		"missing", len(missing),
		"confidence", confidence,
	)
	return Extraction{
		DocumentType: docType,
		Fields:       fields,
		Missing:      missing,
		Confidence:   confidence,
		Notes:        strings.TrimSpace(parsed.ProcessingNotes),
	}, nil
}

// Analyze classifies text and extracts the fields of the detected type.
func (e *Extractor) Analyze(ctx context.Context, text string) (Analysis, error) {
	classification, err := e.Classify(ctx, text)
	if err != nil {
		return Analysis{}, err
	}
	extraction, err := e.Extract(ctx, text, classification.DocumentType)
	if err != nil {
		return Analysis{}, err
	}
	return Analysis{Classification: classification, Extraction: extraction}, nil
}

func (e *Extractor) chat(ctx context.Context, prompt string) (string, error) {
	return e.model.ChatWithMessages(ctx, []llm.Message{
		{Role: "user", Content: prompt},
	}, llm.ChatParams{
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
}

func checkConfidence(c *float64) (float64, error) {
	if c == nil {
		return 0, fmt.Errorf("%w: missing confidence_score", llm.ErrMalformedResponse)
	}
	if *c < 0 || *c > 1 {
		return 0, fmt.Errorf("%w: confidence_score %v outside [0, 1]", llm.ErrMalformedResponse, *c)
	}
	return *c, nil
}

// coerceFields keeps the schema fields of data, converted to their kind.
// Nulls are treated as absent. Unknown or unconvertible fields are returned as dropped.
func coerceFields(dt DocumentType, data map[string]any) (map[string]any, []string) {
	fields := make(map[string]any, len(dt.Fields))
	var dropped []string

	for _, name := range sortedKeys(data) {
		value := data[name]
		if value == nil {
			continue
		}
		field, ok := dt.Field(name)
		if !ok {
			dropped = append(dropped, name)
			continue
		}
		converted, ok := coerce(field.Kind, value)
		if !ok {
			dropped = append(dropped, name)
			continue
		}
		fields[name] = converted
	}
	return fields, dropped
}

func coerce(kind FieldKind, value any) (any, bool) {
	switch kind {
	case KindNumber:
		switch v := value.(type) {
		case float64:
			return v, true
		case string:
			return parseAmount(v)
		}
		return nil, false

	case KindDate:
		s, ok := value.(string)
		if !ok {
			return nil, false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, false
		}
		if t, err := time.Parse(dateLayout, s); err == nil {
			return t.Format(dateLayout), true
		}
		// Keep dates the model could not normalise as written.
		return s, true

	case KindList:
		switch v := value.(type) {
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					items = append(items, strings.TrimSpace(s))
				}
			}
			return items, true
		case string:
			if strings.TrimSpace(v) == "" {
				return nil, false
			}
			return []string{strings.TrimSpace(v)}, true
		}
		return nil, false

	default:
		switch v := value.(type) {
		case string:
			v = strings.TrimSpace(v)
			return v, v != ""
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
		return nil, false
	}
}

// parseAmount reads "$350,000.00" style amounts and percentages.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func normalizeTypeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
