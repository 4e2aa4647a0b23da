package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/conc/iter"
	"github.com/urfave/cli/v2"

	"github.com/pkordes/trip-overtime/internal/config"
	"github.com/pkordes/trip-overtime/internal/domain"
	"github.com/pkordes/trip-overtime/internal/export"
	"github.com/pkordes/trip-overtime/internal/ingest"
	"github.com/pkordes/trip-overtime/internal/overtime"
	"github.com/pkordes/trip-overtime/internal/postcode"
	"github.com/pkordes/trip-overtime/internal/service"
)

// rendered is one file's finished output.
type rendered struct {
	name string
	body bytes.Buffer
}

// newApp builds the CLI. Results go to stdout unless --out-dir is given.
func newApp(cfg config.Config, stdout io.Writer, log *slog.Logger) *cli.App {
	svc := service.NewOvertimeService(
		ingest.NewReader(cfg.Layout()),
		ingest.NewBuilder(postcode.New(cfg.HomeCode, postcode.DefaultAliases...)),
		overtime.NewEngine(cfg.Policy()),
		service.NewCaches(),
		nil,
		log,
	)

	formatFlag := &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "output format: json, csv or xlsx"}
	outDirFlag := &cli.StringFlag{Name: "out-dir", Aliases: []string{"o"}, Usage: "write one file per input into `DIR` instead of stdout"}

	return &cli.App{
		Name:      "overtime",
		Usage:     "compute overtime and mileage from MileIQ trip exports",
		Writer:    stdout,
		ErrWriter: os.Stderr,
		Commands: []*cli.Command{
			{
				Name:      "compute",
				Usage:     "compute the overtime report of each FILE",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "first day to report, YYYY-MM-DD"},
					&cli.StringFlag{Name: "to", Usage: "last day to report, YYYY-MM-DD"},
					formatFlag,
					outDirFlag,
				},
				Action: func(c *cli.Context) error {
					dr, err := domain.ParseRange(c.String("from"), c.String("to"))
					if err != nil {
						return err
					}
					return run(c, "overtime", func(ctx context.Context, up domain.Upload, f export.Format, w io.Writer) error {
						report, err := svc.Overtime(ctx, up, dr)
						if err != nil {
							return err
						}
						return export.WriteOvertime(w, f, report)
					})
				},
			},
			{
				Name:      "summary",
				Usage:     "compute the daily mileage summary of each FILE",
				ArgsUsage: "FILE...",
				Flags:     []cli.Flag{formatFlag, outDirFlag},
				Action: func(c *cli.Context) error {
					return run(c, "summary", func(ctx context.Context, up domain.Upload, f export.Format, w io.Writer) error {
						summary, err := svc.Summary(ctx, up)
						if err != nil {
							return err
						}
						return export.WriteSummary(w, f, summary)
					})
				},
			},
		},
	}
}

type renderFunc func(ctx context.Context, up domain.Upload, f export.Format, w io.Writer) error

// run processes every FILE argument concurrently and emits the results in
// argument order.
func run(c *cli.Context, kind string, render renderFunc) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return errors.New("at least one FILE is required")
	}
	format, err := export.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	outDir := c.String("out-dir")
	if format == export.XLSX && outDir == "" {
		return errors.New("xlsx output needs --out-dir")
	}
	if outDir != "" {
		if err := checkOutputNames(files, kind, format); err != nil {
			return err
		}
	}

	results, err := iter.MapErr(files, func(path *string) (*rendered, error) {
		data, err := os.ReadFile(*path)
		if err != nil {
			return nil, err
		}
		r := &rendered{name: outputName(*path, kind, format)}
		up := domain.Upload{Name: filepath.Base(*path), Data: data}
		if err := render(c.Context, up, format, &r.body); err != nil {
			return nil, fmt.Errorf("%s: %w", *path, err)
		}
		return r, nil
	})
	if err != nil {
		return err
	}

	for _, r := range results {
		if outDir == "" {
			if _, err := r.body.WriteTo(c.App.Writer); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(outDir, r.name), r.body.Bytes(), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// outputName maps "logs/march.xlsx" to "march-overtime.csv".
func outputName(path, kind string, f export.Format) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "-" + kind + "." + f.Extension()
}

// checkOutputNames rejects inputs that would write the same file in --out-dir.
func checkOutputNames(files []string, kind string, f export.Format) error {
	seen := make(map[string]string, len(files))
	for _, path := range files {
		name := outputName(path, kind, f)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%s and %s both write %s", prev, path, name)
		}
		seen[name] = path
	}
	return nil
}
