package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smazurov/camtune/internal/devices"
)

// CreateDevicesCmd creates the devices command.
func CreateDevicesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List V4L2 capture devices",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			found, err := devices.NewDetector().FindDevices()
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			if err := printDevices(os.Stdout, found, asJSON); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print devices as JSON")
	return cmd
}

func printDevices(w io.Writer, found []devices.Device, asJSON bool) error {
	if asJSON {
		if found == nil {
			found = []devices.Device{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(found)
	}

	if len(found) == 0 {
		_, err := fmt.Fprintln(w, "No capture devices found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tNAME\tID")
	for _, d := range found {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Path, d.Name, d.ID)
	}
	return tw.Flush()
}
