package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aerissecure/drilldown/docx"
	"github.com/aerissecure/drilldown/grid"
	"github.com/aerissecure/drilldown/htmlgrid"
	"github.com/aerissecure/drilldown/preview"
	"github.com/aerissecure/drilldown/xlsx"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Show the sheets of a rendered workbook",
	Long: `Read a rendered .xlsx or .docx file back and describe its sheets.

By default one summary line is printed per sheet. Use --text to print the
sheets as tables, or --html to convert the file to a standalone HTML page.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Bool("html", false, "print the workbook as HTML")
	inspectCmd.Flags().Bool("text", false, "print the workbook as text tables (ignored with --html)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	var (
		wb  *grid.Workbook
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		wb, err = xlsx.Open(appFs, path)
	case ".docx":
		wb, err = docx.Open(appFs, path)
	default:
		return fmt.Errorf("unsupported file type %q: want .xlsx or .docx", ext)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	asHTML, _ := cmd.Flags().GetBool("html")
	asText, _ := cmd.Flags().GetBool("text")
	switch {
	case asHTML:
		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return htmlgrid.Document(out, wb, title)
	case asText:
		return preview.Print(out, wb)
	}

	_, _ = fmt.Fprintf(out, "%s: %d sheets\n", path, len(wb.Sheets))
	for _, s := range wb.Sheets {
		_, _ = fmt.Fprintf(out, "  %-31s %4d rows %3d cols %3d merges %3d links  frozen %dx%d\n",
			s.Name, len(s.Rows), s.ColCount(), len(s.Merges), countLinks(s), s.FrozenRows, s.FrozenCols)
	}
	return nil
}

func countLinks(s *grid.SheetModel) int {
	n := 0
	for _, row := range s.Rows {
		for _, c := range row.Cells {
			if c != nil && c.Link != "" {
				n++
			}
		}
	}
	return n
}
