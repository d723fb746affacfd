package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/shiftboard/core/layout"
	"github.com/kilianp07/shiftboard/core/model"
	"github.com/kilianp07/shiftboard/core/shifts"
	"github.com/kilianp07/shiftboard/infra/logger"
	"github.com/kilianp07/shiftboard/pkg/export"
)

var (
	layoutFeed   string
	layoutDay    string
	layoutFormat string
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Pack a schedule feed into lanes and print one day or the whole week",
	RunE:  runLayout,
}

func init() {
	layoutCmd.Flags().StringVar(&layoutFeed, "feed", "", "schedule feed JSON file")
	layoutCmd.Flags().StringVar(&layoutDay, "day", "", "day to render (default: every scheduled day)")
	layoutCmd.Flags().StringVar(&layoutFormat, "format", "text", "output format: text, json or csv")
	_ = layoutCmd.MarkFlagRequired("feed")
	rootCmd.AddCommand(layoutCmd)
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := os.Open(layoutFeed)
	if err != nil {
		return err
	}
	defer f.Close()
	feed, err := shifts.ReadFeed(f)
	if err != nil {
		return err
	}
	records, err := shifts.FlattenFeed(feed)
	if err != nil {
		logger.New("layout").Warnf("feed: %v", err)
	}
	ingest, err := shifts.NewIngestor(cfg.Grid.FeedUnit())
	if err != nil {
		return err
	}
	b := layout.NewBuilder(ingest, nil, nil, nil)

	days := shifts.Days(records)
	if layoutDay != "" {
		d, err := model.ParseDay(layoutDay)
		if err != nil {
			return err
		}
		days = []model.Day{d}
	}
	out := cmd.OutOrStdout()
	for _, d := range days {
		l, err := b.Build(context.Background(), records, d, "")
		if err != nil {
			return err
		}
		switch layoutFormat {
		case "json":
			err = export.WriteJSON(out, l)
		case "csv":
			err = export.WriteCSV(out, l)
		case "text":
			err = export.RenderLanes(out, l, model.ClockTime(cfg.Grid.SlotMinutes))
		default:
			return fmt.Errorf("unsupported format: %s", layoutFormat)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
