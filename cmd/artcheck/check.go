package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/labelproof/artcheck/config"
	"github.com/labelproof/artcheck/internal/app"
	"github.com/labelproof/artcheck/internal/domain"
	"github.com/labelproof/artcheck/internal/logging"
	"github.com/labelproof/artcheck/internal/report"
)

type checkOptions struct {
	copyPath    string
	artworkPath string
	outputDir   string
	format      string
	configPath  string
	project     string
	verbose     bool
	strict      bool
	pretty      bool
	noColor     bool
	timeout     time.Duration
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check artwork text against a copy document",
		Long: `Extracts the text of a PDF or AI artwork file, reads the copy document
(DOCX, XLSX, YAML or JSON) and reports, field by field, whether the approved copy
appears on the artwork and what still needs visual confirmation.`,
		Example: `  artcheck check --copy copy.xlsx --artwork label.pdf
  artcheck check --copy copy.yaml --artwork label.ai --output reports --format xlsx --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.copyPath, "copy", "", "Copy document (.docx, .xlsx, .yaml, .yml, .json)")
	flags.StringVar(&opts.artworkPath, "artwork", "", "Artwork file (.pdf, .ai)")
	flags.StringVarP(&opts.outputDir, "output", "o", "", "Directory to write the report to (default: stdout)")
	flags.StringVarP(&opts.format, "format", "f", "markdown", "Report format: markdown, json, yaml or xlsx")
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default: ./config.yaml if present)")
	flags.StringVar(&opts.project, "project", "", "Project name shown in the report header")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&opts.strict, "strict", false, "Exit with status 2 when any check fails")
	flags.BoolVar(&opts.pretty, "pretty", false, "Render markdown for the terminal")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable coloured output")
	flags.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Overall check timeout")
	_ = cmd.MarkFlagRequired("copy")
	_ = cmd.MarkFlagRequired("artwork")

	return cmd
}

func runCheck(ctx context.Context, opts *checkOptions, stdout, stderr io.Writer) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if format == report.FormatXLSX && opts.outputDir == "" {
		return fmt.Errorf("--format xlsx needs --output")
	}

	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return err
	}
	level := cfg.Logging.Level
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer logger.Sync()

	copyContent, err := os.ReadFile(opts.copyPath)
	if err != nil {
		return fmt.Errorf("failed to read copy document: %w", err)
	}
	artworkContent, err := os.ReadFile(opts.artworkPath)
	if err != nil {
		return fmt.Errorf("failed to read artwork: %w", err)
	}

	// A single run gains nothing from the result cache.
	cfg.Cache.Type = "none"
	services, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	result, err := services.Checks.CheckDocuments(ctx,
		filepath.Base(opts.copyPath), copyContent,
		filepath.Base(opts.artworkPath), artworkContent)
	if err != nil {
		return err
	}
	logger.Debug("check complete", zap.String("report_id", result.ID), zap.Int("findings", len(result.Findings)))

	renderOpts := report.Options{Version: app.Version, ProjectName: opts.project}
	summaryOut := stdout
	if opts.outputDir == "" {
		if err := writeToStdout(stdout, result, format, renderOpts, opts.pretty); err != nil {
			return err
		}
		summaryOut = stderr
	} else {
		path, err := writeReportFile(opts.outputDir, opts.copyPath, result, format, renderOpts)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Report written to %s\n", path)
	}

	report.PrintSummary(summaryOut, result, opts.noColor)

	if opts.strict && result.HasFailures() {
		return errChecksFailed
	}
	return nil
}

func writeToStdout(w io.Writer, r *domain.CheckReport, format report.Format, opts report.Options, pretty bool) error {
	if format != report.FormatMarkdown || !pretty {
		return report.Write(w, r, format, opts)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(report.Markdown(r, opts))
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func writeReportFile(dir, copyPath string, r *domain.CheckReport, format report.Format, opts report.Options) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(copyPath), filepath.Ext(copyPath))
	path := filepath.Join(dir, base+"_report"+format.Extension())

	var buf bytes.Buffer
	if err := report.Write(&buf, r, format, opts); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
