package analysis

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/oclem/tenderwise/internal/config"
	"github.com/oclem/tenderwise/internal/domain/contract"
	"github.com/oclem/tenderwise/internal/domain/matching"
	"github.com/oclem/tenderwise/internal/domain/recommend"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/metrics"
	"github.com/oclem/tenderwise/pkg/errors"
)

// Service runs the analysis pipeline end to end.
type Service interface {
	// AnalyzeURL fetches a notice by URL and produces a full report.
	AnalyzeURL(ctx context.Context, url string) (*Report, error)

	// AnalyzeDocument runs the pipeline over an already-fetched document.
	AnalyzeDocument(ctx context.Context, data []byte, sourceURL string) (*Report, error)

	// GetReport returns a previously produced report from the cache.
	GetReport(ctx context.Context, id string) (*Report, error)
}

// Deps carries the collaborators of the analysis Service. Fetcher and
// Dataset are required; Cache, Archiver, and Notifier are optional and their
// failures never fail an analysis.
type Deps struct {
	Fetcher  DocumentFetcher
	Dataset  ContractDataset
	Cache    ReportCache
	Archiver ReportArchiver
	Notifier CompletionNotifier

	Extractor *contract.Extractor
	Scorer    *matching.Scorer
	Engine    *recommend.Engine
	Narrative *NarrativeWriter

	Metrics *metrics.PipelineMetrics
	Logger  logging.Logger
}

type service struct {
	deps     Deps
	rowLimit int
	log      logging.Logger
}

// NewService wires the pipeline. Domain components left nil in deps are
// built with defaults from cfg.
func NewService(cfg config.AnalysisConfig, deps Deps) Service {
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Extractor == nil {
		deps.Extractor = contract.NewExtractor(contract.ExtractorOptions{
			AuthorityBlocklist: cfg.AuthorityBlocklist,
			Logger:             deps.Logger,
		})
	}
	if deps.Scorer == nil {
		deps.Scorer = matching.NewScorer(matching.ScorerConfig{
			MinScore:      cfg.MinScore,
			MaxCandidates: cfg.MaxCandidates,
			Workers:       cfg.ScoreWorkers,
		}, nil, deps.Logger)
	}
	if deps.Engine == nil {
		deps.Engine = recommend.NewEngine(deps.Logger)
	}
	if deps.Narrative == nil {
		deps.Narrative = NewNarrativeWriter(rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	rowLimit := cfg.RowLimit
	if rowLimit <= 0 {
		rowLimit = 5000
	}
	return &service{deps: deps, rowLimit: rowLimit, log: deps.Logger.Named("analysis")}
}

func (s *service) AnalyzeURL(ctx context.Context, url string) (*Report, error) {
	if url == "" {
		return nil, errors.Validation("url", "notice URL is required")
	}
	data, err := s.deps.Fetcher.Fetch(ctx, url)
	if err != nil {
		s.observe("fetch_failed", time.Time{})
		return nil, err
	}
	return s.AnalyzeDocument(ctx, data, url)
}

func (s *service) AnalyzeDocument(ctx context.Context, data []byte, sourceURL string) (*Report, error) {
	started := time.Now()

	rec, err := s.deps.Extractor.Extract(data, sourceURL)
	if err != nil {
		s.observe("extract_failed", started)
		return nil, err
	}

	rows, err := s.deps.Dataset.Rows(ctx, s.rowLimit)
	if err != nil {
		s.observe("dataset_failed", started)
		return nil, errors.Wrap(err, errors.ErrCodeDatasetLoad, "loading historical contracts")
	}

	candidates, err := s.deps.Scorer.Score(ctx, rec, rows)
	if err != nil {
		s.observe("score_failed", started)
		return nil, err
	}

	recommendation := s.deps.Engine.FromCandidates(candidates)

	report := &Report{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		SourceURL:      sourceURL,
		Contract:       rec,
		Candidates:     candidates,
		MatchStats:     buildMatchStats(candidates),
		Recommendation: recommendation,
		Awardees:       buildAwardeeActivity(candidates),
	}
	report.Narrative = s.deps.Narrative.Write(rec, candidates, recommendation)

	s.persist(ctx, report)
	s.observe("completed", started)

	s.log.Info("analysis completed",
		logging.String("report_id", report.ID),
		logging.Int("candidates", len(candidates)),
		logging.Float64("recommended_discount", recommendation.Percent),
	)
	return report, nil
}

func (s *service) GetReport(ctx context.Context, id string) (*Report, error) {
	if s.deps.Cache == nil {
		return nil, errors.NotFound("report cache not configured")
	}
	return s.deps.Cache.GetReport(ctx, id)
}

// persist stores and announces the report best-effort. A cold cache or an
// unreachable archive degrades durability, not the analysis itself.
func (s *service) persist(ctx context.Context, report *Report) {
	if s.deps.Cache != nil {
		if err := s.deps.Cache.PutReport(ctx, report); err != nil {
			s.log.Warn("caching report failed", logging.String("report_id", report.ID), logging.Err(err))
		}
	}
	if s.deps.Archiver != nil {
		if err := s.deps.Archiver.Archive(ctx, report); err != nil {
			s.log.Warn("archiving report failed", logging.String("report_id", report.ID), logging.Err(err))
		}
	}
	if s.deps.Notifier != nil {
		if err := s.deps.Notifier.AnalysisCompleted(ctx, report.ID, report.SourceURL); err != nil {
			s.log.Warn("completion notification failed", logging.String("report_id", report.ID), logging.Err(err))
		}
	}
}

func (s *service) observe(outcome string, started time.Time) {
	if s.deps.Metrics == nil {
		return
	}
	var elapsed time.Duration
	if !started.IsZero() {
		elapsed = time.Since(started)
	}
	s.deps.Metrics.ObserveAnalysis(outcome, elapsed)
}
