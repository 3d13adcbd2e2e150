package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"realty-assistant/internal/contextutil"
	"realty-assistant/internal/extraction"
	"realty-assistant/internal/property"
	"realty-assistant/internal/storage"
)

// Analyzer classifies documents and extracts their fields. *extraction.Extractor implements it.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (extraction.Analysis, error)
	Extract(ctx context.Context, text, docType string) (extraction.Extraction, error)
	AnalyzeBatch(ctx context.Context, ids []string, load extraction.DocumentSource) (*extraction.BatchReport, error)
}

// Researcher researches a property. *property.Researcher implements it.
type Researcher interface {
	Research(ctx context.Context, req property.ResearchRequest) (*property.Research, error)
}

// AnalyzeHandler serves document analysis and research from a document.
type AnalyzeHandler struct {
	documents  storage.DocumentStore
	analyzer   Analyzer
	researcher Researcher
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(documents storage.DocumentStore, analyzer Analyzer, researcher Researcher) *AnalyzeHandler {
	return &AnalyzeHandler{
		documents:  documents,
		analyzer:   analyzer,
		researcher: researcher,
	}
}

// DocumentResearchResponse combines the analysis of a document with the
// research on the property it names.
//
// swagger:model DocumentResearchResponse
type DocumentResearchResponse struct {
	DocumentID string              `json:"document_id"`
	Analysis   extraction.Analysis `json:"analysis"`
	Research   *property.Research  `json:"research"`
}

// BatchAnalyzeRequest selects the documents of a batch analysis.
// An empty list analyzes every stored document.
//
// swagger:model BatchAnalyzeRequest
type BatchAnalyzeRequest struct {
	DocumentIDs []string `json:"document_ids"`
}

// AnalyzeBatch classifies and extracts several stored documents and reports
// per-document results with batch statistics.
//
// swagger:route POST /api/v1/documents/analyze analyzeDocuments
//
// responses:
//
//	'200':
//	  description: Per-document results and statistics
//	'400':
//	  description: Invalid body or too many documents
func (h *AnalyzeHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BatchAnalyzeRequest
	if r.ContentLength != 0 && !decodeJSON(ctx, w, r, &req) {
		return
	}

	ids := req.DocumentIDs
	if len(ids) == 0 {
		docs, err := h.documents.List(ctx)
		if err != nil {
			handleServiceError(ctx, w, err, "analyze documents")
			return
		}
		ids = make([]string, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
	}

	report, err := h.analyzer.AnalyzeBatch(ctx, ids, h.loadDocument)
	if err != nil {
		handleServiceError(ctx, w, err, "analyze documents")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *AnalyzeHandler) loadDocument(ctx context.Context, id string) (string, string, error) {
	doc, err := h.documents.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	return doc.Name, doc.Text, nil
}

// Analyze classifies the document and extracts the fields of its type.
// The `type` query parameter skips classification.
//
// swagger:route POST /api/v1/documents/{id}/analyze analyzeDocument
//
// ---
// parameters:
//   - in: query
//     name: type
//     type: string
//     description: settlement, purchase_agreement or income_verification
//     required: false
//
// responses:
//
//	'200':
//	  description: Classification and extracted fields
//	'400':
//	  description: Unknown document type
//	'404':
//	  description: Unknown document
//	'502':
//	  description: Model unavailable or returned unusable output
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	analysis, err := h.analyze(ctx, chi.URLParam(r, "id"), r.URL.Query().Get("type"))
	if err != nil {
		handleServiceError(ctx, w, err, "analyze document")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// Research analyzes the document and researches the property it names.
//
// swagger:route POST /api/v1/documents/{id}/research researchDocument
//
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/DocumentResearchResponse"
//	'404':
//	  description: Unknown document
//	'422':
//	  description: No property address in the document
//	'502':
//	  description: Model unavailable or returned unusable output
func (h *AnalyzeHandler) Research(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	id := chi.URLParam(r, "id")

	analysis, err := h.analyze(ctx, id, r.URL.Query().Get("type"))
	if err != nil {
		handleServiceError(ctx, w, err, "research document")
		return
	}

	req, err := property.RequestFromFields(analysis.Extraction.Fields)
	if err != nil {
		handleServiceError(ctx, w, err, "research document")
		return
	}
	logger.InfoContext(ctx, "researching document property",
		"document_id", id,
		"document_type", analysis.Extraction.DocumentType,
		"address", req.Address.String(),
	)

	research, err := h.researcher.Research(ctx, req)
	if err != nil {
		handleServiceError(ctx, w, err, "research document")
		return
	}
	writeJSON(w, http.StatusOK, DocumentResearchResponse{
		DocumentID: id,
		Analysis:   analysis,
		Research:   research,
	})
}

func (h *AnalyzeHandler) analyze(ctx context.Context, id, docType string) (extraction.Analysis, error) {
	doc, err := h.documents.GetByID(ctx, id)
	if err != nil {
		return extraction.Analysis{}, err
	}

	docType = strings.TrimSpace(docType)
	if docType == "" {
		return h.analyzer.Analyze(ctx, doc.Text)
	}

	ext, err := h.analyzer.Extract(ctx, doc.Text, docType)
	if err != nil {
		return extraction.Analysis{}, err
	}
	return extraction.Analysis{
		Classification: extraction.Classification{
			DocumentType: ext.DocumentType,
			Confidence:   1,
			Reasoning:    "document type given by the caller",
		},
		Extraction: ext,
	}, nil
}
