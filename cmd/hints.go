package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/camtune/internal/config"
	"github.com/smazurov/camtune/internal/hints"
	"github.com/smazurov/camtune/internal/media"
)

// CreateHintsCmd creates the hints command.
func CreateHintsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hints",
		Short: "Show the last tier that produced a verified stream per facing mode",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(_ *cobra.Command, _ []string, opts *config.Options) {
			store := hints.NewTOML(opts.HintsFile)
			if err := store.Load(); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			if err := printHints(os.Stdout, store.All()); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
		}),
	}
}

func printHints(w io.Writer, all map[media.FacingRequest]hints.Hint) error {
	if len(all) == 0 {
		_, err := fmt.Fprintln(w, "No hints recorded")
		return err
	}

	facings := make([]string, 0, len(all))
	for f := range all {
		facings = append(facings, string(f))
	}
	sort.Strings(facings)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FACING\tTIER\tUPDATED")
	for _, f := range facings {
		h := all[media.FacingRequest(f)]
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f, h.Tier, h.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
