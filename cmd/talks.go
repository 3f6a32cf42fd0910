package cmd

import (
	"fmt"
	"text/tabwriter"
	"unicode/utf8"

	"conference-clipper/application/schedule"
	"conference-clipper/domain/talk"
	"conference-clipper/infrastructure/config"
	"conference-clipper/infrastructure/csv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var talksShowRejected bool

var talksCmd = &cobra.Command{
	Use:   "talks",
	Short: "Show the talks the schedule yields, grouped by room",
	Long: `Read the schedule file and print every valid talk grouped by room,
in the order the pipeline would process them. Nothing is downloaded.

Example:
  conference-clipper talks
  conference-clipper talks --rejected`,
	RunE: runTalks,
}

func init() {
	rootCmd.AddCommand(talksCmd)
	talksCmd.Flags().BoolVar(&talksShowRejected, "rejected", false, "also list the rows that were rejected and why")
}

func runTalks(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	return RunTalksWithDependencies(cfg, newScheduleReader(cfg.Schedule), talksShowRejected, DefaultOutput)
}

// newScheduleReader builds the CSV reader the schedule settings describe
func newScheduleReader(sc config.ScheduleConfig) *csv.Reader {
	opts := []csv.ReaderOption{
		csv.WithColumns(csv.Columns(sc.Columns)),
		csv.WithSkipHeader(sc.SkipHeader),
	}
	if sc.Delimiter != "" {
		comma, _ := utf8.DecodeRuneInString(sc.Delimiter)
		opts = append(opts, csv.WithComma(comma))
	}
	return csv.NewReader(opts...)
}

// RunTalksWithDependencies runs the talks command with injected dependencies
func RunTalksWithDependencies(cfg *config.Config, reader schedule.RecordReader, showRejected bool, out OutputWriter) error {
	service := schedule.NewService(reader, talk.NewValidator(cfg.Rooms), log.Logger)
	result, err := service.Load(cfg.Schedule.File)
	if err != nil {
		return err
	}

	groups := talk.GroupByRoom(result.Talks)
	if len(groups) == 0 {
		fmt.Fprintln(out, "No valid talks in the schedule.")
	}

	for _, g := range groups {
		fmt.Fprintf(out, "%s (%d talks)\n", g.Room, len(g.Talks))
		fmt.Fprintf(out, "  source: %s\n", g.SourceURL())
		fmt.Fprintf(out, "  directory: %s\n", g.DirName())

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  START\tEND\tFILE\tTITLE")
		for i, t := range g.Talks {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", t.Start, t.End, g.FileStem(i), t.Title)
		}
		w.Flush()
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%d talks in %d rooms, %d rows rejected\n", len(result.Talks), len(groups), len(result.Rejected))

	if showRejected && len(result.Rejected) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LINE\tROOM\tTITLE\tREASON")
		for _, r := range result.Rejected {
			fmt.Fprintf(w, "%d\t%s\t%s\t%v\n", r.Record.Line, r.Record.Room, r.Record.Title, r.Err)
		}
		w.Flush()
	}

	return nil
}
