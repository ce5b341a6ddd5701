// Command scan runs a one-shot library scan without the server: it reads
// the working directory, runs every resolution pass, and writes the result
// to a CSV file.
package main

import (
	"context"
	"os"

	"github.com/fb2shelf/fb2shelf/pkg/catalog"
	"github.com/fb2shelf/fb2shelf/pkg/config"
	"github.com/fb2shelf/fb2shelf/pkg/pipeline"
	"github.com/fb2shelf/fb2shelf/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	app := &cli.App{
		Name:    "scan",
		Usage:   "scan an FB2 library and write the resolved records to CSV",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "workdir",
				Aliases: []string{"w"},
				Usage:   "library root to scan (overrides config)",
			},
			&cli.StringFlag{
				Name:    "rules",
				Aliases: []string{"r"},
				Usage:   "path to the JSON rule bundle (overrides config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "fb2shelf.csv",
				Usage:   "CSV output path",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.New(os.Getenv("FB2SHELF_CONFIG_FILE"))
			if err != nil {
				return err
			}

			workdir := cfg.WorkingDirectory
			if c.String("workdir") != "" {
				workdir = c.String("workdir")
			}
			if workdir == "" {
				return errors.New("no working directory given; use --workdir or the config file")
			}

			rulesPath := cfg.RulesFilePath
			if c.String("rules") != "" {
				rulesPath = c.String("rules")
			}

			rules, err := config.LoadRules(rulesPath)
			if err != nil {
				return err
			}

			p, err := pipeline.New(rules)
			if err != nil {
				return err
			}

			ctx := log.WithContext(context.Background())
			scanned, err := p.Run(ctx, workdir, nil)
			if err != nil {
				return err
			}

			out, err := os.Create(c.String("output"))
			if err != nil {
				return errors.WithStack(err)
			}
			defer out.Close()

			if err := catalog.WriteCSV(out, catalog.RecordsFromScan(scanned)); err != nil {
				return err
			}

			log.Info("scan written", logger.Data{"records": len(scanned), "output": c.String("output")})
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}
