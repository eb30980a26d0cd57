// Command salesreport reads a point-of-sale export and prints or renders
// the dashboard metrics without starting the web server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"salesdash/internal/analytics"
	"salesdash/internal/config"
	"salesdash/internal/dataprocessing"
	apperrors "salesdash/internal/errors"
	"salesdash/internal/exporter"
	"salesdash/internal/infrastructure"
	"salesdash/internal/validation"
	"salesdash/pkg/contracts/domain"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	metricFlag := &cli.StringFlag{
		Name:    "metric",
		Aliases: []string{"m"},
		Usage:   "metric slug; the catalog default when omitted",
	}

	return &cli.App{
		Name:      "salesreport",
		Usage:     "inspect a Listado_Caja export from the command line",
		Version:   config.Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML config file",
				EnvVars: []string{config.EnvPrefix + "_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "month-first",
				Usage: "read dates as mm/dd instead of dd/mm",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "metrics",
				Usage:     "list the metrics available for FILE",
				ArgsUsage: "FILE",
				Action:    metricsAction,
			},
			{
				Name:      "series",
				Usage:     "print the aggregated series of a metric",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					metricFlag,
					&cli.BoolFlag{Name: "json", Usage: "print JSON instead of a table"},
				},
				Action: seriesAction,
			},
			{
				Name:      "render",
				Usage:     "write the chart of a metric as PNG",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					metricFlag,
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output PNG path", Required: true},
					&cli.IntFlag{Name: "width", Usage: "image width in pixels"},
					&cli.IntFlag{Name: "height", Usage: "image height in pixels"},
				},
				Action: renderAction,
			},
		},
	}
}

// session is a loaded file plus the settings it was loaded with
type session struct {
	cfg    *config.Config
	table  *domain.TransactionTable
	logger *slog.Logger
}

func load(c *cli.Context) (*session, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("%s: expected exactly one FILE argument", c.Command.Name)
	}
	path := c.Args().First()

	cfg, err := config.LoadFrom(c.String("config"))
	if err != nil {
		return nil, apperrors.NewConfigError("invalid configuration", err)
	}
	if c.Bool("month-first") {
		cfg.Data.DayFirst = false
	}
	logger := infrastructure.NewLogger(cfg.Logging, c.App.ErrWriter)

	validator := validation.NewUploadValidator(cfg.Upload, logger)
	upload, err := validator.ValidateFile(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	loader := dataprocessing.NewLoader(dataprocessing.NewLoadOptions(cfg.Data.DayFirst), logger)
	table, err := loader.Load(context.Background(), f, upload.Filename)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, table: table, logger: logger}, nil
}

func (s *session) series(slug string) (*domain.Series, error) {
	id := analytics.Default(s.table).ID
	if slug != "" {
		id = domain.MetricID(slug)
	}
	return analytics.Aggregate(s.table, id)
}

func metricsAction(c *cli.Context) error {
	s, err := load(c)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	def := analytics.Default(s.table).ID
	for _, m := range analytics.Catalog(s.table) {
		marker := ""
		if m.ID == def {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\n", m.ID, marker, m.Label, m.Kind)
	}
	return tw.Flush()
}

func seriesAction(c *cli.Context) error {
	s, err := load(c)
	if err != nil {
		return err
	}
	series, err := s.series(c.String("metric"))
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(series)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t\n", series.Title)
	for _, p := range series.Points {
		fmt.Fprintf(tw, "%s\t%s\t\n", p.Label, exporter.FormatAmount(p.Value))
	}
	fmt.Fprintf(tw, "Total\t%s\t\n", exporter.FormatAmount(series.Total))
	return tw.Flush()
}

func renderAction(c *cli.Context) error {
	s, err := load(c)
	if err != nil {
		return err
	}
	series, err := s.series(c.String("metric"))
	if err != nil {
		return err
	}

	opts := exporter.ChartOptions{Width: s.cfg.Chart.Width, Height: s.cfg.Chart.Height}
	if c.IsSet("width") {
		opts.Width = c.Int("width")
	}
	if c.IsSet("height") {
		opts.Height = c.Int("height")
	}

	out := c.String("out")
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := exporter.RenderPNG(f, series, opts); err != nil {
		f.Close()
		os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	s.logger.Info("chart written",
		slog.String("metric", string(series.Metric.ID)),
		slog.String("path", out),
		slog.Int("points", len(series.Points)))
	return nil
}
