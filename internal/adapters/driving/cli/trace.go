package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Browse recorded trace sessions",
}

var traceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded trace sessions",
	RunE:  runTraceList,
}

var traceShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print the samples of a trace session",
	Args:  cobra.ExactArgs(1),
	RunE:  runTraceShow,
}

var traceDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a trace session",
	Args:  cobra.ExactArgs(1),
	RunE:  runTraceDelete,
}

var traceShowLimit int

func init() {
	traceShowCmd.Flags().IntVarP(&traceShowLimit, "limit", "n", 50, "maximum samples to print, 0 for all")
	traceCmd.AddCommand(traceListCmd)
	traceCmd.AddCommand(traceShowCmd)
	traceCmd.AddCommand(traceDeleteCmd)
	rootCmd.AddCommand(traceCmd)
}

func runTraceList(cmd *cobra.Command, _ []string) error {
	if traceService == nil {
		return errors.New("trace service not configured")
	}

	sessions, err := traceService.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		cmd.Println("No trace sessions recorded. Run 'vsync simulate --record' to record one.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDISPLAY\tSTARTED")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Display, s.StartedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func runTraceShow(cmd *cobra.Command, args []string) error {
	if traceService == nil {
		return errors.New("trace service not configured")
	}

	samples, err := traceService.Samples(cmd.Context(), args[0], traceShowLimit)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		cmd.Println("No samples recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AT\tDELTA\tCOUNTER\tVALUE")
	prev := samples[0].At
	for _, s := range samples {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", s.At, s.At.Sub(prev).Round(time.Microsecond), s.Name, s.Value)
		prev = s.At
	}
	return tw.Flush()
}

func runTraceDelete(cmd *cobra.Command, args []string) error {
	if traceService == nil {
		return errors.New("trace service not configured")
	}

	if err := traceService.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Deleted trace session %s\n", args[0])
	return nil
}
