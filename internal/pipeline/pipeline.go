package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/venue-scraper/internal/fetch"
	"github.com/pfrederiksen/venue-scraper/internal/logger"
	"github.com/pfrederiksen/venue-scraper/internal/scraper"
	"github.com/pfrederiksen/venue-scraper/internal/venue"
)

var (
	// ErrArticleFetch is returned when the list article cannot be retrieved
	ErrArticleFetch = errors.New("article fetch failed")
	// ErrNoEntries is returned when neither extraction strategy finds a venue
	ErrNoEntries = errors.New("no venue entries found")
)

// Fetcher retrieves a page body
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Enricher recovers contact details for a venue page. It must not fail;
// an empty Detail signals that nothing was found.
type Enricher interface {
	Enrich(ctx context.Context, url string) venue.Detail
}

// Progress is called before each candidate is enriched
type Progress func(index, total int, c venue.Candidate)

// Config holds per-run settings
type Config struct {
	ArticleURL string
	DelayMin   time.Duration
	DelayMax   time.Duration
}

// Report is the outcome of a successful run
type Report struct {
	ArticleURL string                 `json:"article_url"`
	Strategy   scraper.Strategy       `json:"strategy"`
	Rows       []venue.Row            `json:"rows"`
	Metrics    map[string]interface{} `json:"metrics"`
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithSleeper replaces the courtesy delay between venues
func WithSleeper(s fetch.Sleeper) Option {
	return func(p *Pipeline) {
		p.sleep = s
	}
}

// WithRand replaces the source used to pick each delay. r must return a value in [0, 1).
func WithRand(r func() float64) Option {
	return func(p *Pipeline) {
		p.rand = r
	}
}

// WithMetrics records run metrics on m instead of a fresh tracker
func WithMetrics(m *logger.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithProgress registers a callback invoked per venue
func WithProgress(fn Progress) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// Pipeline wires the fetcher, extractor and enricher together
type Pipeline struct {
	cfg       Config
	fetcher   Fetcher
	extractor *scraper.Extractor
	enricher  Enricher
	log       logger.Logger
	metrics   *logger.Metrics
	sleep     fetch.Sleeper
	rand      func() float64
	progress  Progress
}

// New creates a Pipeline
func New(cfg Config, fetcher Fetcher, extractor *scraper.Extractor, enricher Enricher, log logger.Logger, opts ...Option) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	p := &Pipeline{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		enricher:  enricher,
		log:       log,
		sleep:     fetch.Sleep,
		rand:      rand.Float64,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = logger.NewMetrics()
	}
	return p
}

// Metrics returns the tracker the run records on
func (p *Pipeline) Metrics() *logger.Metrics {
	return p.metrics
}

// Run executes the scrape and returns the merged rows
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	base, err := url.Parse(p.cfg.ArticleURL)
	if err != nil {
		return nil, fmt.Errorf("parsing article url: %w", err)
	}

	start := time.Now()
	html, err := p.fetcher.Fetch(ctx, p.cfg.ArticleURL)
	if err != nil {
		p.log.Error("Article fetch failed", logger.Fields{"url": p.cfg.ArticleURL}, err)
		return nil, fmt.Errorf("%w: %w", ErrArticleFetch, err)
	}
	p.metrics.RecordTiming("fetch.article", time.Since(start))
	p.log.Info("Fetched article", logger.Fields{
		"url":   p.cfg.ArticleURL,
		"bytes": len(html),
	})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing article: %w", err)
	}

	result := p.extractor.Extract(doc, base)
	if len(result.Candidates) == 0 {
		p.log.Warn("No venue entries extracted", logger.Fields{"url": p.cfg.ArticleURL})
		return nil, ErrNoEntries
	}
	p.metrics.SetGauge("venues.extracted", float64(len(result.Candidates)))
	p.log.Info("Extracted venues", logger.Fields{
		"count":    len(result.Candidates),
		"strategy": string(result.Strategy),
	})

	rows := make([]venue.Row, 0, len(result.Candidates))
	for i, c := range result.Candidates {
		for _, field := range c.MissingFields() {
			p.metrics.IncrCounter("fields.unresolved." + field)
		}
		if p.progress != nil {
			p.progress(i+1, len(result.Candidates), c)
		}

		if err := p.sleep(ctx, p.delay()); err != nil {
			return nil, fmt.Errorf("waiting before %q: %w", c.Name, err)
		}

		rows = append(rows, venue.Merge(c, p.enrich(ctx, c)))
	}

	p.logUnresolved()

	return &Report{
		ArticleURL: p.cfg.ArticleURL,
		Strategy:   result.Strategy,
		Rows:       rows,
		Metrics:    p.metrics.GetSnapshot(),
	}, nil
}

func (p *Pipeline) enrich(ctx context.Context, c venue.Candidate) venue.Detail {
	if c.SourceLink == "" {
		return venue.Detail{}
	}
	start := time.Now()
	d := p.enricher.Enrich(ctx, c.SourceLink)
	p.metrics.RecordTiming("enrich.venue", time.Since(start))
	if d.IsZero() {
		p.metrics.IncrCounter("enrich.failures")
	}
	return d
}

// delay picks the courtesy wait, uniform in [DelayMin, DelayMax)
func (p *Pipeline) delay() time.Duration {
	span := p.cfg.DelayMax - p.cfg.DelayMin
	if span <= 0 {
		return p.cfg.DelayMin
	}
	return p.cfg.DelayMin + time.Duration(p.rand()*float64(span))
}

func (p *Pipeline) logUnresolved() {
	fields := logger.Fields{}
	for _, name := range []string{"address", "opening_hours", "source_link"} {
		fields[name] = p.metrics.Counter("fields.unresolved." + name)
	}
	fields["enrich_failures"] = p.metrics.Counter("enrich.failures")
	p.log.Info("Unresolved fields", fields)
}
