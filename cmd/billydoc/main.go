// Command billydoc generates documents and maintains the database and PDF
// store from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/billydoc/backend/internal/infrastructure/config"
	"github.com/billydoc/backend/internal/infrastructure/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "billydoc",
		Usage:   "Thai quotation, invoice and receipt generator",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML config file (default: ./config.toml)",
				EnvVars: []string{"BILLY_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "log level: debug, info, warn, error",
			},
		},
		Commands: []*cli.Command{
			totalsCommand(),
			generateCommand(),
			migrateCommand(),
			cleanupCommand(),
		},
	}
}

// loadConfig reads --config when given, otherwise the default search path
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:      c.String("log-level"),
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
}
