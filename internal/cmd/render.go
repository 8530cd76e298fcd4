package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aerissecure/drilldown/bookfile"
	"github.com/aerissecure/drilldown/docx"
	"github.com/aerissecure/drilldown/grid"
	"github.com/aerissecure/drilldown/htmlgrid"
	"github.com/aerissecure/drilldown/internal/config"
	"github.com/aerissecure/drilldown/preview"
	"github.com/aerissecure/drilldown/render"
	"github.com/aerissecure/drilldown/xlsx"
)

var renderCmd = &cobra.Command{
	Use:   "render BOOK.yaml",
	Short: "Render a book into a workbook",
	Long: `Render every page of a book file into one output.

The output format is taken from --format, then from output.format in the
config file. Without --output the result is written next to the book with
the format's extension; the text format prints to stdout.

Examples:
  drilldown render hosts.yaml
  drilldown render hosts.yaml --format html -o hosts.html
  drilldown render hosts.yaml --format text --skip-errors`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringP("output", "o", "", "output file, - for stdout")
	renderCmd.Flags().StringP("format", "f", "xlsx", "output format: "+strings.Join(config.ValidOutputFormats(), ", "))
	renderCmd.Flags().Bool("skip-errors", false, "render the remaining pages when a page fails")
	renderCmd.Flags().Int("parallel", 1, "number of pages rendered concurrently")

	_ = viper.BindPFlag("output.format", renderCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("render.skip_errors", renderCmd.Flags().Lookup("skip-errors"))
	_ = viper.BindPFlag("render.parallelism", renderCmd.Flags().Lookup("parallel"))
}

// extensions maps output formats to file extensions.
var extensions = map[string]string{
	"xlsx": ".xlsx",
	"html": ".html",
	"docx": ".docx",
	"text": ".txt",
}

func runRender(cmd *cobra.Command, args []string) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	opts, err := cfg.RenderOptions(logger)
	if err != nil {
		return err
	}

	book, err := bookfile.Load(appFs, args[0])
	if err != nil {
		return err
	}

	format := cfg.Output.Format
	output, _ := cmd.Flags().GetString("output")
	if output == "" && format != "text" {
		output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + extensions[format]
	}

	var dst io.Writer = cmd.OutOrStdout()
	toFile := output != "" && output != "-"
	if toFile {
		f, err := appFs.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output: %w", cerr)
			}
		}()
		dst = f
	}

	title := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	rep, err := render.RenderBook(cmd.Context(), book, newSink(format, dst, title), opts...)
	if err != nil {
		return err
	}

	// Keep stdout clean when the rendered book is printed there.
	status := cmd.OutOrStdout()
	if !toFile {
		status = cmd.ErrOrStderr()
	}
	if len(rep.Failed) > 0 {
		_, _ = fmt.Fprintf(status, "Skipped %d of %d pages:\n", len(rep.Failed), len(book.Pages))
		for _, pe := range rep.Failed {
			_, _ = fmt.Fprintf(status, "  %s: %v\n", pe.Page, pe.Err)
		}
	}
	if toFile {
		_, _ = fmt.Fprintf(status, "Rendered %d pages to %s\n", len(rep.Rendered), output)
	}
	if len(rep.Failed) > 0 {
		return fmt.Errorf("%d pages failed to render", len(rep.Failed))
	}
	return nil
}

// newSink returns the sink writing format to dst. format is validated by
// config.Load.
func newSink(format string, dst io.Writer, title string) grid.Sink {
	switch format {
	case "html":
		return htmlgrid.NewSink(dst, title)
	case "docx":
		return docx.NewSink(dst)
	case "text":
		return preview.NewSink(dst)
	default:
		return xlsx.NewWriter(dst)
	}
}
