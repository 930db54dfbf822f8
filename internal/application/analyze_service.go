package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dockreview/dockreview/internal/domain"
	"github.com/dockreview/dockreview/internal/domain/check"
	"golang.org/x/sync/errgroup"
)

// Analysis is the outcome of analyzing one path: a report per target, in
// scan order.
type Analysis struct {
	Root    string               `json:"root"`
	Config  domain.ProjectConfig `json:"-"`
	Engine  *Engine              `json:"-"`
	Reports []*domain.Report     `json:"reports"`
}

// Issues returns the issues of every report, report by report.
func (a *Analysis) Issues() []domain.Issue {
	var out []domain.Issue
	for _, r := range a.Reports {
		out = append(out, r.Issues...)
	}
	return out
}

// Summary counts issues across reports.
type Summary struct {
	Files      int `json:"files"`
	Critical   int `json:"critical"`
	Warning    int `json:"warning"`
	Suggestion int `json:"suggestion"`
}

// Summarize counts the issues of reports by severity.
func Summarize(reports []*domain.Report) Summary {
	sum := Summary{Files: len(reports)}
	for _, r := range reports {
		sum.Critical += r.Count(domain.SeverityCritical)
		sum.Warning += r.Count(domain.SeverityWarning)
		sum.Suggestion += r.Count(domain.SeveritySuggestion)
	}
	return sum
}

// AnalyzeService orchestrates the analysis pipeline:
// load config -> scan targets -> parse -> run rules -> score.
type AnalyzeService struct {
	scanner  domain.TargetScanner
	parser   domain.FileParser
	detector domain.FileDetector
	config   domain.ConfigLoader

	cache   domain.ResultCache
	git     domain.GitInfo
	history domain.ScoreHistory
	logger  *slog.Logger
	workers int
	now     func() time.Time
}

// Option configures optional collaborators of the service.
type Option func(*AnalyzeService)

func WithCache(c domain.ResultCache) Option { return func(s *AnalyzeService) { s.cache = c } }

func WithGitInfo(g domain.GitInfo) Option { return func(s *AnalyzeService) { s.git = g } }

func WithHistory(h domain.ScoreHistory) Option { return func(s *AnalyzeService) { s.history = h } }

func WithLogger(l *slog.Logger) Option { return func(s *AnalyzeService) { s.logger = l } }

// WithWorkers bounds how many files are analyzed at once.
func WithWorkers(n int) Option {
	return func(s *AnalyzeService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithClock replaces time.Now for report timestamps.
func WithClock(now func() time.Time) Option { return func(s *AnalyzeService) { s.now = now } }

func NewAnalyzeService(
	scanner domain.TargetScanner,
	parser domain.FileParser,
	detector domain.FileDetector,
	config domain.ConfigLoader,
	opts ...Option,
) *AnalyzeService {
	s := &AnalyzeService{
		scanner:  scanner,
		parser:   parser,
		detector: detector,
		config:   config,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers:  runtime.GOMAXPROCS(0),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProjectRoot is the directory configuration and history are read from:
// path itself for a directory, its parent for a file.
func ProjectRoot(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}

// LoadEngine reads the configuration under root and builds its engine.
func (s *AnalyzeService) LoadEngine(root string) (*Engine, domain.ProjectConfig, error) {
	cfg, err := s.config.Load(root)
	if err != nil {
		return nil, domain.ProjectConfig{}, fmt.Errorf("loading config: %w", err)
	}
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, domain.ProjectConfig{}, err
	}
	return engine, cfg, nil
}

// AnalyzePath analyzes a Dockerfile, a Compose file, or every such file
// under a directory. Files are analyzed concurrently; reports keep scan
// order. The first parse error aborts the whole analysis.
func (s *AnalyzeService) AnalyzePath(ctx context.Context, path string) (*Analysis, error) {
	root := ProjectRoot(path)
	engine, cfg, err := s.LoadEngine(root)
	if err != nil {
		return nil, err
	}

	targets, err := s.scanner.Scan(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	s.logger.Debug("scan complete", "root", root, "targets", len(targets))

	commit := s.commitHash(root)
	fingerprint := configFingerprint(cfg)

	reports := make([]*domain.Report, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, t := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(t.Path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", t.Rel, err)
			}
			r, err := s.analyze(engine, fingerprint, t.Kind, t.Rel, content, t.Context)
			if err != nil {
				return err
			}
			r.CommitHash = commit
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Analysis{Root: root, Config: cfg, Engine: engine, Reports: reports}, nil
}

// AnalyzeContent analyzes in-memory content with cfg. An empty kind is
// detected from name and content. The build context is unknown, so DF003
// never fires.
func (s *AnalyzeService) AnalyzeContent(kind domain.FileKind, name string, content []byte, cfg domain.ProjectConfig) (*domain.Report, error) {
	if kind == "" {
		k, ok := s.detector.Detect(name, content)
		if !ok {
			return nil, fmt.Errorf("cannot tell whether %s is a Dockerfile or a Compose file", name)
		}
		kind = k
	}
	if kind != domain.KindDockerfile && kind != domain.KindCompose {
		return nil, fmt.Errorf("unknown kind %q (valid: dockerfile, compose)", kind)
	}

	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return s.analyze(engine, configFingerprint(cfg), kind, name, content, nil)
}

func (s *AnalyzeService) analyze(engine *Engine, fingerprint string, kind domain.FileKind, name string, content []byte, bc *domain.BuildContext) (*domain.Report, error) {
	key := cacheKey(fingerprint, kind, name, content, bc)
	if s.cache != nil {
		if r, ok := s.cache.Get(key); ok {
			s.logger.Debug("cache hit", "file", name)
			r.Timestamp = s.now()
			return r, nil
		}
	}

	var target check.Target
	switch kind {
	case domain.KindCompose:
		m, err := s.parser.ParseCompose(name, content)
		if err != nil {
			return nil, err
		}
		target.Compose = m
	default:
		m, err := s.parser.ParseDockerfile(name, content, bc)
		if err != nil {
			return nil, err
		}
		target.Dockerfile = m
	}

	issues, card := engine.Evaluate(target)
	for i := range issues {
		issues[i].File = name
	}
	if issues == nil {
		issues = []domain.Issue{}
	}

	r := &domain.Report{
		File:      name,
		Kind:      kind,
		Issues:    issues,
		Score:     card,
		Timestamp: s.now(),
	}
	s.logger.Debug("analyzed", "file", name, "kind", kind, "issues", len(issues), "overall", card.Overall)

	if s.cache != nil {
		s.cache.Add(key, r)
	}
	return r, nil
}

// Record appends one history entry per report under the analysis root.
func (s *AnalyzeService) Record(a *Analysis) error {
	if s.history == nil {
		return fmt.Errorf("score history is not configured")
	}
	for _, r := range a.Reports {
		if err := s.history.Save(a.Root, domain.EntryFor(r)); err != nil {
			return fmt.Errorf("recording %s: %w", r.File, err)
		}
	}
	return nil
}

// History returns the recorded entries under root.
func (s *AnalyzeService) History(root string) ([]domain.ScoreEntry, error) {
	if s.history == nil {
		return nil, fmt.Errorf("score history is not configured")
	}
	return s.history.Load(root)
}

func (s *AnalyzeService) commitHash(root string) string {
	if s.git == nil {
		return ""
	}
	hash, err := s.git.CommitHash(root)
	if err != nil {
		s.logger.Debug("no commit hash", "root", root, "err", err)
		return ""
	}
	return hash
}

func configFingerprint(cfg domain.ProjectConfig) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// cacheKey digests everything that determines a report.
func cacheKey(fingerprint string, kind domain.FileKind, name string, content []byte, bc *domain.BuildContext) string {
	buildCtx := "unknown"
	if bc != nil {
		buildCtx = fmt.Sprintf("dockerignore=%t", bc.HasDockerignore)
	}

	h := sha256.New()
	for _, part := range [][]byte{[]byte(fingerprint), []byte(kind), []byte(name), []byte(buildCtx), content} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
