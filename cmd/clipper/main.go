// Package main provides the clipper command that captures web pages as
// markdown documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"clipper/internal/clip"
	"clipper/internal/config"
	"clipper/internal/extractor"
	"clipper/internal/fetcher"
	"clipper/internal/formatter"
	"clipper/internal/logger"
	"clipper/internal/markdown"
	"clipper/internal/validator"
	"clipper/pkg/metadata"
)

const generator = "clipper/1.0"

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	pageURL := flag.String("url", "", "Clip a single URL (overrides configured sources)")
	localFile := flag.String("file", "", "Clip a local HTML file")
	outputDir := flag.String("output", "", "Output directory (overrides config)")

	flag.Parse()

	cfg := loadConfig(*configFile)
	if *outputDir != "" {
		cfg.Clipper.Output.Dir = *outputDir
	}

	log := logger.New(cfg.Clipper.Logging.Level, cfg.Clipper.Logging.Format)

	sources := resolveSources(cfg, *pageURL, *localFile)
	if len(sources) == 0 {
		log.Error("Nothing to clip: provide -url, -file or configured sources")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log.Info("🚀 Starting Personal Web Clipper", "sources", len(sources), "output", cfg.Clipper.Output.Dir)

	ctx := context.Background()

	fetch := fetcher.NewWithConfig(&cfg.Clipper.Fetch, cfg.Advanced.MaxBodySizeKb)
	extract := extractor.New(cfg.Clipper.Extraction)
	convert := markdown.NewConverterWithDepth(cfg.Advanced.MaxTreeDepth)
	validate := validator.New(cfg.Clipper.Validation)
	writer := clip.NewWriter(cfg.Clipper.Output)
	cache := extractor.NewSelectorCache()

	failures := 0

	for _, src := range sources {
		if err := clipSource(ctx, src, cfg, fetch, extract, convert, validate, writer, cache, log); err != nil {
			log.Error("❌ Clip failed", "source", src.Location(), "error", err)

			failures++
		}
	}

	if failures > 0 {
		log.Error(fmt.Sprintf("Finished with %d failure(s) out of %d source(s)", failures, len(sources)))
		os.Exit(1)
	}

	log.Info("✅ All sources clipped", "count", len(sources))
}

func loadConfig(path string) *config.Config {
	if path == "" {
		// Try default location
		if _, err := os.Stat("configs/clipper.yaml"); err == nil {
			path = "configs/clipper.yaml"
		}
	}

	if path == "" {
		return config.Default()
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", path, err)
		os.Exit(1)
	}

	return cfg
}

func resolveSources(cfg *config.Config, pageURL, localFile string) []config.SourceConfig {
	if pageURL != "" || localFile != "" {
		return []config.SourceConfig{{URL: pageURL, File: localFile, Enabled: true}}
	}

	return cfg.EnabledSources()
}

func clipSource(
	ctx context.Context,
	src config.SourceConfig,
	cfg *config.Config,
	fetch *fetcher.Fetcher,
	extract *extractor.Extractor,
	convert *markdown.Converter,
	validate *validator.DocumentValidator,
	writer *clip.Writer,
	cache *extractor.SelectorCache,
	log *logger.Logger,
) error {
	log.Info("📍 Clipping", "source", src.Location())

	startTime := time.Now()

	rawHTML, err := fetch.FetchSource(ctx, src)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	log.Debug("Fetched page", "bytes", len(rawHTML), "elapsed", time.Since(startTime))

	result, err := extract.ExtractCached(rawHTML, siteOf(src), cache)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	title := src.Title
	if title == "" {
		title = result.Title
	}

	clippedAt := time.Now().UTC()
	body := convert.Convert(result.Root)
	document := markdown.BuildDocument(title, body, src.Location(), clippedAt.Format(time.RFC3339))

	if cfg.Features.TidyTables {
		document = formatter.Tidy(document, generator)
	}

	res := validate.Validate(document)
	for _, warning := range res.Warnings {
		log.Warn("⚠️  " + warning)
	}

	if !res.IsValid {
		for _, vErr := range res.Errors {
			log.Error("Validation error", "field", vErr.Field, "message", vErr.Message)
		}

		return fmt.Errorf("document failed validation (%d error(s))", len(res.Errors))
	}

	if cfg.Features.SignClips {
		document = metadata.Sign(document, generator, res.IsValid)
	}

	c := clip.New(title, src.Location(), clippedAt, document)
	c.Stats.Headings = res.Stats.Headings
	c.Stats.Links = res.Stats.Links
	c.Stats.Images = res.Stats.Images

	path, err := writer.Write(c)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	log.Info("✅ Saved clip",
		"path", path,
		"title", title,
		"words", c.Stats.Words,
		"headings", c.Stats.Headings,
		"links", c.Stats.Links,
		"elapsed", time.Since(startTime),
	)

	return nil
}

// siteOf returns the host used as the selector-cache key; local files
// share one bucket.
func siteOf(src config.SourceConfig) string {
	if src.IsLocalFile() {
		return "local"
	}

	u, err := url.Parse(src.URL)
	if err != nil || u.Host == "" {
		return src.URL
	}

	return u.Host
}
