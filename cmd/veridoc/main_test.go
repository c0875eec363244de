package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/veridoc/config"
)

func TestLoadConfig(t *testing.T) {
	newApp := func(action cli.ActionFunc) *cli.App {
		return &cli.App{
			Name: "veridoc",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "config", Value: "config.yaml"},
			},
			Action: action,
		}
	}

	t.Run("explicit missing config fails", func(t *testing.T) {
		app := newApp(func(c *cli.Context) error {
			_, err := loadConfig(c)
			return err
		})

		err := app.Run([]string{"veridoc", "--config", "/nonexistent/config.yaml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config")
	})

	t.Run("default missing config falls back to defaults", func(t *testing.T) {
		var cfg *config.Config
		app := newApp(func(c *cli.Context) error {
			var err error
			cfg, err = loadConfig(c)
			return err
		})

		require.NoError(t, app.Run([]string{"veridoc"}))
		require.NotNil(t, cfg)
		assert.Equal(t, config.BackendBadger, cfg.Index.Backend)
		assert.Len(t, cfg.Criteria, 8)
	})

	t.Run("explicit config file loads", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		yaml := "index:\n  backend: milvus\n  collection: contracts\n"
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

		var cfg *config.Config
		app := newApp(func(c *cli.Context) error {
			var err error
			cfg, err = loadConfig(c)
			return err
		})

		require.NoError(t, app.Run([]string{"veridoc", "--config", path}))
		require.NotNil(t, cfg)
		assert.Equal(t, config.BackendMilvus, cfg.Index.Backend)
		assert.Equal(t, "contracts", cfg.Index.Collection)
	})
}

func TestIndexCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "veridoc",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml"},
		},
		Commands: []*cli.Command{
			{
				Name:   "index",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}},
					&cli.BoolFlag{Name: "force"},
				},
			},
		},
	}

	t.Run("requires a document path", func(t *testing.T) {
		err := app.Run([]string{"veridoc", "index"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "document path")
	})

	t.Run("requires a resolvable document type", func(t *testing.T) {
		err := app.Run([]string{"veridoc", "index", "mystery.txt"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "document type")
	})
}

func TestAuditCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "veridoc",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml"},
		},
		Commands: []*cli.Command{
			{
				Name:   "audit",
				Action: auditCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}},
				},
			},
		},
	}

	t.Run("requires a document name", func(t *testing.T) {
		err := app.Run([]string{"veridoc", "audit"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "document name")
	})

	t.Run("requires a resolvable document type", func(t *testing.T) {
		err := app.Run([]string{"veridoc", "audit", "mystery.txt"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "document type")
	})
}

func TestRunCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "veridoc",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml"},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "index-only"},
					&cli.BoolFlag{Name: "audit-only"},
					&cli.BoolFlag{Name: "force"},
				},
			},
		},
	}

	t.Run("conflicting mode flags fail", func(t *testing.T) {
		err := app.Run([]string{"veridoc", "run", "--index-only", "--audit-only"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot use --index-only and --audit-only together")
	})

	t.Run("requires configured documents", func(t *testing.T) {
		err := app.Run([]string{"veridoc", "run"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no documents configured")
	})
}

func TestSearchCommandValidation(t *testing.T) {
	app := &cli.App{
		Name: "veridoc",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml"},
		},
		Commands: []*cli.Command{
			{
				Name:   "search",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "document", Aliases: []string{"d"}, Required: true},
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}},
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 5},
				},
			},
		},
	}

	t.Run("document flag is required", func(t *testing.T) {
		err := app.Run([]string{"veridoc", "search", "settlement"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "document")
	})

	t.Run("requires a query", func(t *testing.T) {
		err := app.Run([]string{"veridoc", "search", "--document", "agreement.txt"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "search query")
	})
}

func TestDocumentPath(t *testing.T) {
	cfg := config.DefaultConfig()
	doc := config.DocumentConfig{Path: "contracts/agreement.txt"}

	assert.Equal(t, "contracts/agreement.txt", documentPath(cfg, doc))

	cfg.DocumentsDir = "./documents"
	assert.Equal(t, filepath.Join("documents", "contracts", "agreement.txt"), documentPath(cfg, doc))

	abs := config.DocumentConfig{Path: "/srv/docs/agreement.txt"}
	assert.Equal(t, "/srv/docs/agreement.txt", documentPath(cfg, abs))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("  a\n b\t c "))

	long := strings.Repeat("liquidação ", 30)
	out := snippet(long)
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.LessOrEqual(t, len([]rune(out)), 123)
}

func TestSetupLogger(t *testing.T) {
	run := func(level string) error {
		app := &cli.App{
			Name:   "test",
			Flags:  []cli.Flag{&cli.StringFlag{Name: "log-level", Value: "info"}},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
		return app.Run([]string{"test", "--log-level", level})
	}

	t.Run("known levels in any case", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "Info", "WaRn"} {
			assert.NoError(t, run(level), level)
		}
	})

	t.Run("unknown level fails", func(t *testing.T) {
		err := run("verbose")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "verbose")
	})
}
