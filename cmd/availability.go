package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/shiftboard/core/availability"
	"github.com/kilianp07/shiftboard/core/model"
	"github.com/kilianp07/shiftboard/pkg/export"
)

var (
	availFile   string
	availDays   []string
	availFormat string
)

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Availability document tools",
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Merge adjacent ranges and canonicalize day names of a document",
	RunE:  runNormalize,
}

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Print a document as a slot grid",
	RunE:  runGrid,
}

func init() {
	availabilityCmd.PersistentFlags().StringVarP(&availFile, "file", "f", "", "availability document (json or yaml)")
	_ = availabilityCmd.MarkPersistentFlagRequired("file")
	normalizeCmd.Flags().StringVar(&availFormat, "format", "", "output format (default: input format)")
	gridCmd.Flags().StringSliceVar(&availDays, "day", nil, "days to print (default: all)")
	availabilityCmd.AddCommand(normalizeCmd, gridCmd)
	rootCmd.AddCommand(availabilityCmd)
}

func fileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func readDocument() (availability.Document, error) {
	f, err := os.Open(availFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return availability.ReadDocument(f, fileFormat(availFile))
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	doc, err := readDocument()
	if err != nil {
		return err
	}
	norm, err := availability.Normalize(doc, cfg.Grid.Slot(), cfg.Grid.CategoryList())
	if err != nil {
		return err
	}
	format := availFormat
	if format == "" {
		format = fileFormat(availFile)
	}
	return availability.WriteDocument(cmd.OutOrStdout(), norm, format)
}

func runGrid(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	doc, err := readDocument()
	if err != nil {
		return err
	}
	g, err := availability.DecodeDocument(doc, cfg.Grid.Slot())
	if err != nil {
		cmd.PrintErrln(err)
		if g == nil {
			return err
		}
	}
	days := model.Week
	if len(availDays) > 0 {
		days = nil
		for _, s := range availDays {
			d, err := model.ParseDay(s)
			if err != nil {
				return err
			}
			days = append(days, d)
		}
	}
	from, to, err := cfg.Grid.View()
	if err != nil {
		return err
	}
	return export.RenderGrid(cmd.OutOrStdout(), g, days, from, to)
}
