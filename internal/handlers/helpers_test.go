package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"realty-assistant/internal/extraction"
	"realty-assistant/internal/ingest"
	"realty-assistant/internal/property"
	"realty-assistant/internal/service"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// withURLParam attaches a chi route parameter to r.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// fakeLibrary is a simple stand-in for the ingest pipeline.
type fakeLibrary struct {
	loadedName string
	loadedSize int
	result     *ingest.Result
	deletedID  string
	err        error

	hits    []ingest.SearchHit
	stats   *ingest.Stats
	dirSeen chan string
	release chan struct{}
}

func (f *fakeLibrary) Load(ctx context.Context, name string, content []byte) (*ingest.Result, error) {
	f.loadedName = name
	f.loadedSize = len(content)
	return f.result, f.err
}

func (f *fakeLibrary) Delete(ctx context.Context, id string) error {
	f.deletedID = id
	return f.err
}

func (f *fakeLibrary) Search(ctx context.Context, query string, limit int, documentID string) ([]ingest.SearchHit, error) {
	return f.hits, f.err
}

func (f *fakeLibrary) Stats(ctx context.Context) (*ingest.Stats, error) {
	return f.stats, f.err
}

func (f *fakeLibrary) LoadDir(ctx context.Context, dir string) (*ingest.DirReport, error) {
	if f.dirSeen != nil {
		f.dirSeen <- dir
	}
	if f.release != nil {
		<-f.release
	}
	return &ingest.DirReport{}, f.err
}

type fakeAnalyzer struct {
	analysis      extraction.Analysis
	extractedType string
	err           error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text string) (extraction.Analysis, error) {
	return f.analysis, f.err
}

func (f *fakeAnalyzer) Extract(ctx context.Context, text, docType string) (extraction.Extraction, error) {
	f.extractedType = docType
	ext := f.analysis.Extraction
	ext.DocumentType = docType
	return ext, f.err
}

// AnalyzeBatch runs the real batch bookkeeping over Analyze so load failures are reported per document.
func (f *fakeAnalyzer) AnalyzeBatch(ctx context.Context, ids []string, load extraction.DocumentSource) (*extraction.BatchReport, error) {
	if len(ids) > extraction.MaxBatchDocuments {
		return nil, &service.ValidationError{Field: "document_ids", Message: "too many documents"}
	}
	results := make([]extraction.BatchResult, 0, len(ids))
	for _, id := range ids {
		result := extraction.BatchResult{DocumentID: id}
		name, _, err := load(ctx, id)
		if err == nil {
			err = f.err
		}
		if err != nil {
			result.Error = err.Error()
		} else {
			analysis := f.analysis
			result.DocumentName = name
			result.Success = true
			result.Analysis = &analysis
		}
		results = append(results, result)
	}
	return &extraction.BatchReport{Results: results, Stats: extraction.ComputeBatchStats(results)}, nil
}

type fakeResearcher struct {
	lastRequest property.ResearchRequest
	research    *property.Research
	err         error
}

func (f *fakeResearcher) Research(ctx context.Context, req property.ResearchRequest) (*property.Research, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return f.research, nil
}
