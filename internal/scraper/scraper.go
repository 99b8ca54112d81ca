package scraper

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/venue-scraper/internal/logger"
	"github.com/pfrederiksen/venue-scraper/internal/venue"
)

// Strategy names the extraction step that produced a result
type Strategy string

const (
	StrategySections Strategy = "sections"
	StrategyHeadings Strategy = "headings"
	StrategyNone     Strategy = "none"
)

// Result holds the candidates of the first strategy that found any
type Result struct {
	Candidates []venue.Candidate
	Strategy   Strategy
}

// Extractor runs the section and heading strategies over list articles
type Extractor struct {
	rules  Rules
	fields fields
	log    logger.Logger
}

// New creates an Extractor. Zero-valued rules fall back to DefaultRules.
func New(rules Rules, log logger.Logger) *Extractor {
	rules = rules.withDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{
		rules:  rules,
		fields: newFields(rules.Marker),
		log:    log,
	}
}

// Rules returns the rules the extractor runs with
func (e *Extractor) Rules() Rules {
	return e.rules
}

// Extract tries the section strategy, then the heading strategy, and returns
// the first non-empty result. Both strategies cap output at MaxItems.
func (e *Extractor) Extract(doc *goquery.Document, base *url.URL) Result {
	steps := []struct {
		strategy Strategy
		run      func(*goquery.Document, *url.URL) []venue.Candidate
	}{
		{StrategySections, e.ExtractSections},
		{StrategyHeadings, e.ExtractByHeadings},
	}

	for _, step := range steps {
		candidates := step.run(doc, base)
		if len(candidates) > 0 {
			return Result{Candidates: candidates, Strategy: step.strategy}
		}
		e.log.Info("Extraction strategy found no venues", logger.Fields{
			"strategy": string(step.strategy),
		})
	}
	return Result{Strategy: StrategyNone}
}
