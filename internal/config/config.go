// Package config loads and validates venue-scraper settings via Viper.
//
// Values come from built-in defaults, an optional config file and VENUE_*
// environment variables, in increasing order of precedence. The CLI applies
// its flags on top of the loaded Config and validates the result.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pfrederiksen/venue-scraper/internal/fetch"
	"github.com/pfrederiksen/venue-scraper/internal/logger"
	"github.com/pfrederiksen/venue-scraper/internal/scraper"
	"github.com/spf13/viper"
)

// DefaultArticleURL is the list article scraped when none is configured
const DefaultArticleURL = "https://www.timeout.com/london/food-drink/londons-best-cafes-and-coffee-shops"

// Config captures every setting of a run
type Config struct {
	Article ArticleConfig `mapstructure:"article"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`
	Rules   RulesConfig   `mapstructure:"rules"`
}

// ArticleConfig selects the list article
type ArticleConfig struct {
	URL string `mapstructure:"url"`
}

// FetchConfig governs retries and the courtesy delay between venue pages
type FetchConfig struct {
	Retries        int           `mapstructure:"retries"`
	Backoff        float64       `mapstructure:"backoff"`
	Timeout        time.Duration `mapstructure:"timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	AcceptLanguage string        `mapstructure:"accept_language"`
	DelayMin       time.Duration `mapstructure:"delay_min"`
	DelayMax       time.Duration `mapstructure:"delay_max"`
}

// OutputConfig sets where rows are written
type OutputConfig struct {
	Dir      string `mapstructure:"dir"`
	CSVName  string `mapstructure:"csv_name"`
	XLSXName string `mapstructure:"xlsx_name"`
}

// LogConfig controls the log sink. An empty File logs to stderr.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// RulesConfig holds the extraction thresholds and denylists
type RulesConfig struct {
	Marker                 string   `mapstructure:"marker"`
	MaxItems               int      `mapstructure:"max_items"`
	MinBlockLength         int      `mapstructure:"min_block_length"`
	NameScanLines          int      `mapstructure:"name_scan_lines"`
	MaxNameLength          int      `mapstructure:"max_name_length"`
	MinNameWords           int      `mapstructure:"min_name_words"`
	NameDenylist           []string `mapstructure:"name_denylist"`
	HeadingDenylist        []string `mapstructure:"heading_denylist"`
	MaxHeadingLength       int      `mapstructure:"max_heading_length"`
	MaxSiblingNodes        int      `mapstructure:"max_sibling_nodes"`
	FallbackMinText        int      `mapstructure:"fallback_min_text"`
	FallbackDescriptionMax int      `mapstructure:"fallback_description_max"`
	VenuePathMarker        string   `mapstructure:"venue_path_marker"`
}

// Load builds a Config from defaults, the file at path (if any) and the
// environment. It does not validate; callers apply their overrides first and
// then call Validate.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VENUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	f := fetch.DefaultConfig()
	r := scraper.DefaultRules()

	v.SetDefault("article.url", DefaultArticleURL)

	v.SetDefault("fetch.retries", f.Retries)
	v.SetDefault("fetch.backoff", f.Backoff)
	v.SetDefault("fetch.timeout", f.Timeout)
	v.SetDefault("fetch.user_agent", f.UserAgent)
	v.SetDefault("fetch.accept_language", f.AcceptLanguage)
	v.SetDefault("fetch.delay_min", time.Second)
	v.SetDefault("fetch.delay_max", 2*time.Second)

	v.SetDefault("output.dir", "~/.local/share/venue-scraper")
	v.SetDefault("output.csv_name", "venues.csv")
	v.SetDefault("output.xlsx_name", "venues.xlsx")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("rules.marker", r.Marker)
	v.SetDefault("rules.max_items", r.MaxItems)
	v.SetDefault("rules.min_block_length", r.MinBlockLength)
	v.SetDefault("rules.name_scan_lines", r.NameScanLines)
	v.SetDefault("rules.max_name_length", r.MaxNameLength)
	v.SetDefault("rules.min_name_words", r.MinNameWords)
	v.SetDefault("rules.name_denylist", r.NameDenylist)
	v.SetDefault("rules.heading_denylist", r.HeadingDenylist)
	v.SetDefault("rules.max_heading_length", r.MaxHeadingLength)
	v.SetDefault("rules.max_sibling_nodes", r.MaxSiblingNodes)
	v.SetDefault("rules.fallback_min_text", r.FallbackMinText)
	v.SetDefault("rules.fallback_description_max", r.FallbackDescriptionMax)
	v.SetDefault("rules.venue_path_marker", r.VenuePathMarker)
}

// Validate enforces required values and reasonable limits
func (c Config) Validate() error {
	u, err := url.Parse(c.Article.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("article.url must be an absolute http(s) URL, got %q", c.Article.URL)
	}
	if c.Fetch.Retries <= 0 {
		return fmt.Errorf("fetch.retries must be > 0")
	}
	if c.Fetch.Backoff < 1 {
		return fmt.Errorf("fetch.backoff must be >= 1")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0")
	}
	if c.Fetch.DelayMin < 0 || c.Fetch.DelayMax < c.Fetch.DelayMin {
		return fmt.Errorf("fetch.delay_min must be >= 0 and <= fetch.delay_max")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must be set")
	}
	if c.Output.CSVName == "" || c.Output.XLSXName == "" {
		return fmt.Errorf("output.csv_name and output.xlsx_name must be set")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if strings.TrimSpace(c.Rules.Marker) == "" {
		return fmt.Errorf("rules.marker must be set")
	}
	if c.Rules.MaxItems <= 0 {
		return fmt.Errorf("rules.max_items must be > 0")
	}
	if c.Rules.MinNameWords <= 0 {
		return fmt.Errorf("rules.min_name_words must be > 0")
	}
	return nil
}

// FetchSettings converts the fetch section into fetcher settings
func (c Config) FetchSettings() fetch.Config {
	return fetch.Config{
		Retries:        c.Fetch.Retries,
		Backoff:        c.Fetch.Backoff,
		Timeout:        c.Fetch.Timeout,
		UserAgent:      c.Fetch.UserAgent,
		AcceptLanguage: c.Fetch.AcceptLanguage,
	}
}

// ExtractionRules converts the rules section into extractor rules
func (c Config) ExtractionRules() scraper.Rules {
	r := c.Rules
	return scraper.Rules{
		Marker:                 r.Marker,
		MaxItems:               r.MaxItems,
		MinBlockLength:         r.MinBlockLength,
		NameScanLines:          r.NameScanLines,
		MaxNameLength:          r.MaxNameLength,
		MinNameWords:           r.MinNameWords,
		NameDenylist:           r.NameDenylist,
		HeadingDenylist:        r.HeadingDenylist,
		MaxHeadingLength:       r.MaxHeadingLength,
		MaxSiblingNodes:        r.MaxSiblingNodes,
		FallbackMinText:        r.FallbackMinText,
		FallbackDescriptionMax: r.FallbackDescriptionMax,
		VenuePathMarker:        r.VenuePathMarker,
	}
}
