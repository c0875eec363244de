// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/veridoc"
	"github.com/poiesic/veridoc/config"
	"github.com/poiesic/veridoc/core"
	"github.com/poiesic/veridoc/index"
	"github.com/poiesic/veridoc/ingest"
	"github.com/poiesic/veridoc/report"
)

func main() {
	app := &cli.App{
		Name:  "veridoc",
		Usage: "Document compliance auditing over a hybrid search index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Extract, chunk, embed and index a document",
				ArgsUsage: "<path>",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Document type label (defaults to the configured entry)",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Reindex even when the document is already indexed",
					},
				},
			},
			{
				Name:      "audit",
				Usage:     "Audit an indexed document against the configured criteria",
				ArgsUsage: "<document>",
				Action:    auditCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Document type label (defaults to the configured entry)",
					},
				},
			},
			{
				Name:   "run",
				Usage:  "Index and audit every configured document",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "index-only",
						Usage: "Only index documents, skip auditing",
					},
					&cli.BoolFlag{
						Name:  "audit-only",
						Usage: "Only run audits, skip indexing",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Reindex documents even when already indexed",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Run a one-off hybrid search against an indexed document",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "document",
						Aliases:  []string{"d"},
						Usage:    "Indexed document name to search within",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Document type label (defaults to the configured entry)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of passages to return",
						Value:   5,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the configured YAML file. A missing file is only an
// error when the user asked for a specific one; the default path falls
// back to the built-in defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if c.IsSet("config") {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return config.Load(path)
}

// resolveDocType settles the document type from the --type flag, falling
// back to the configured documents list.
func resolveDocType(c *cli.Context, cfg *config.Config, document string) (string, error) {
	if docType := c.String("type"); docType != "" {
		return docType, nil
	}
	if docType, ok := cfg.DocumentType(document); ok {
		return docType, nil
	}
	return "", fmt.Errorf("no document type for %q: pass --type or add the document to the configuration", document)
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one document path")
	}
	path := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	docType, err := resolveDocType(c, cfg, filepath.Base(path))
	if err != nil {
		return err
	}

	engine, err := veridoc.New(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	pipeline, err := engine.NewPipeline(ingest.WithProgress(os.Stderr))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	result, err := pipeline.Index(ctx, path, docType, ingest.IndexOptions{Force: c.Bool("force")})
	if errors.Is(err, ingest.ErrAlreadyIndexed) {
		fmt.Printf("Document already indexed: %s (use --force to reindex)\n", filepath.Base(path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("Indexed %s: %d chunks across %d pages\n",
		result.Filename, result.IndexedChunks, result.TotalPages)
	return nil
}

func auditCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one document name")
	}
	document := filepath.Base(c.Args().First())

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	docType, err := resolveDocType(c, cfg, document)
	if err != nil {
		return err
	}

	engine, err := veridoc.New(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	auditor, err := engine.NewAuditor()
	if err != nil {
		return err
	}
	defer auditor.Release()

	rep, err := auditor.Run(ctx, document, docType, cfg.AuditCriteria())
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	fmt.Print(report.Summary(&rep))
	return saveReports(cfg, &rep, document)
}

// saveReports writes the enabled report formats with per-document
// filenames and prints where they landed.
func saveReports(cfg *config.Config, rep *core.AuditReport, document string) error {
	if cfg.Output.SaveJSON {
		path := report.JSONPathFor(cfg.Output.Directory, document)
		if err := report.WriteJSON(rep, path); err != nil {
			return fmt.Errorf("failed to save JSON report: %w", err)
		}
		fmt.Printf("Report saved: %s\n", path)
	}
	if cfg.Output.SaveTXT {
		path := report.TextPathFor(cfg.Output.Directory, document)
		if err := report.WriteText(rep, path); err != nil {
			return fmt.Errorf("failed to save text report: %w", err)
		}
		fmt.Printf("Report saved: %s\n", path)
	}
	return nil
}

func runCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.Bool("index-only") && c.Bool("audit-only") {
		return fmt.Errorf("cannot use --index-only and --audit-only together")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if len(cfg.Documents) == 0 {
		return fmt.Errorf("no documents configured")
	}

	engine, err := veridoc.New(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	pipeline, err := engine.NewPipeline(ingest.WithProgress(os.Stderr))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	auditor, err := engine.NewAuditor()
	if err != nil {
		return err
	}
	defer auditor.Release()

	logger := slog.Default()
	criteria := cfg.AuditCriteria()

	var failed int
	for n, doc := range cfg.Documents {
		fmt.Printf("\nDocument %d/%d: %s (%s)\n", n+1, len(cfg.Documents), doc.Filename(), doc.DocType)

		path := documentPath(cfg, doc)
		if _, err := os.Stat(path); err != nil {
			logger.Error("document not found, skipping", "path", path)
			failed++
			continue
		}

		if !c.Bool("audit-only") {
			// A document that opted out of skip-if-indexed always reindexes.
			force := c.Bool("force") || !doc.SkipIfIndexed
			result, err := pipeline.Index(ctx, path, doc.DocType, ingest.IndexOptions{Force: force})
			switch {
			case errors.Is(err, ingest.ErrAlreadyIndexed):
				fmt.Println("Already indexed, skipping...")
			case err != nil:
				logger.Error("indexing failed", "document", doc.Filename(), "err", err)
				failed++
				continue
			default:
				fmt.Printf("Indexed %d chunks across %d pages\n", result.IndexedChunks, result.TotalPages)
			}
		}

		if !c.Bool("index-only") {
			rep, err := auditor.Run(ctx, doc.Filename(), doc.DocType, criteria)
			if err != nil {
				logger.Error("audit failed", "document", doc.Filename(), "err", err)
				failed++
				continue
			}
			fmt.Print(report.Summary(&rep))
			if err := saveReports(cfg, &rep, doc.Filename()); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(cfg.Documents))
	}
	return nil
}

// documentPath resolves a configured document to its source file,
// joining relative paths onto the documents directory.
func documentPath(cfg *config.Config, doc config.DocumentConfig) string {
	if cfg.DocumentsDir == "" || filepath.IsAbs(doc.Path) {
		return doc.Path
	}
	return filepath.Join(cfg.DocumentsDir, doc.Path)
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() < 1 {
		return fmt.Errorf("expected a search query")
	}
	query := strings.Join(c.Args().Slice(), " ")

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	document := filepath.Base(c.String("document"))
	docType, err := resolveDocType(c, cfg, document)
	if err != nil {
		return err
	}

	engine, err := veridoc.New(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	retriever, err := engine.NewRetriever()
	if err != nil {
		return err
	}

	filter := index.Filter{Filename: document, DocType: docType}
	retrieved, err := retriever.Retrieve(ctx, query, filter, nil, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(retrieved.Hits))
	for n, hit := range retrieved.Hits {
		fmt.Printf("%d: page %d [%.3f] %s\n", n+1, hit.PageNumber, hit.Score, snippet(hit.Text))
	}
	return nil
}

// snippet collapses whitespace and clips passage text for one-line output.
func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if runes := []rune(text); len(runes) > 120 {
		return string(runes[:120]) + "..."
	}
	return text
}

func setupLogger(c *cli.Context) error {
	levels := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}

	name := strings.ToLower(c.String("log-level"))
	level, ok := levels[name]
	if !ok {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", name)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
	return nil
}
