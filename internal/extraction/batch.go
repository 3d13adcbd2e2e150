package extraction

import (
	"context"
	"fmt"
	"math"

	"realty-assistant/internal/contextutil"
	"realty-assistant/internal/service"
)

// MaxBatchDocuments caps how many documents one batch may analyze.
const MaxBatchDocuments = 100

// DocumentSource loads the name and text of one document for batch analysis.
type DocumentSource func(ctx context.Context, id string) (name, text string, err error)

// BatchResult is the outcome for one document of a batch.
type BatchResult struct {
	DocumentID   string    `json:"document_id"`
	DocumentName string    `json:"document_name,omitempty"`
	Success      bool      `json:"success"`
	Analysis     *Analysis `json:"analysis,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// BatchStats summarises a batch. Type counts and mean confidences cover successful documents only.
type BatchStats struct {
	Total                       int            `json:"total_documents"`
	Succeeded                   int            `json:"successful_documents"`
	Failed                      int            `json:"failed_documents"`
	SuccessRate                 float64        `json:"success_rate"`
	DocumentTypes               map[string]int `json:"document_type_distribution"`
	AvgClassificationConfidence float64        `json:"average_classification_confidence"`
	AvgExtractionConfidence     float64        `json:"average_extraction_confidence"`
}

// BatchReport holds the per-document results of a batch, in input order, and their statistics.
type BatchReport struct {
	Results []BatchResult `json:"results"`
	Stats   BatchStats    `json:"statistics"`
}

// AnalyzeBatch analyzes each document in turn. A failing document is recorded
// in its result and does not stop the batch; a cancelled context does.
func (e *Extractor) AnalyzeBatch(ctx context.Context, ids []string, load DocumentSource) (*BatchReport, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(ids) > MaxBatchDocuments {
		return nil, &service.ValidationError{
			Field:   "document_ids",
			Message: fmt.Sprintf("at most %d documents per batch, got %d", MaxBatchDocuments, len(ids)),
		}
	}

	results := make([]BatchResult, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := BatchResult{DocumentID: id}
		name, text, err := load(ctx, id)
		if err == nil {
			result.DocumentName = name
			var analysis Analysis
			analysis, err = e.Analyze(ctx, text)
			if err == nil {
				result.Success = true
				result.Analysis = &analysis
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.WarnContext(ctx, "document analysis failed", "document_id", id, "error", err)
			result.Error = err.Error()
		}
		results = append(results, result)
	}

	stats := ComputeBatchStats(results)
	logger.InfoContext(ctx, "batch analysis completed",
		"total", stats.Total,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
	)
	return &BatchReport{Results: results, Stats: stats}, nil
}

// ComputeBatchStats counts outcomes and document types and averages the confidences.
// Averages are 0 when nothing succeeded.
func ComputeBatchStats(results []BatchResult) BatchStats {
	stats := BatchStats{
		Total:         len(results),
		DocumentTypes: map[string]int{},
	}

	var classificationSum, extractionSum float64
	for _, r := range results {
		if !r.Success || r.Analysis == nil {
			stats.Failed++
			continue
		}
		stats.Succeeded++
		stats.DocumentTypes[r.Analysis.Extraction.DocumentType]++
		classificationSum += r.Analysis.Classification.Confidence
		extractionSum += r.Analysis.Extraction.Confidence
	}

	if stats.Total > 0 {
		stats.SuccessRate = round2(float64(stats.Succeeded) / float64(stats.Total))
	}
	if stats.Succeeded > 0 {
		n := float64(stats.Succeeded)
		stats.AvgClassificationConfidence = round2(classificationSum / n)
		stats.AvgExtractionConfidence = round2(extractionSum / n)
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
