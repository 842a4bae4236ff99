package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zicgo/zic/tzif"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Print the transitions and local time types of a TZif file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		d, err := tzif.Decode(f)
		if err != nil {
			return err
		}
		if err := d.Validate(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "types: %d\n", len(d.Types))
		for i, t := range d.Types {
			dst := " "
			if t.DST {
				dst = "D"
			}
			fmt.Fprintf(out, "  [%d] %-6s %s %+d\n", i, d.Designation(t), dst, t.UTOff)
		}
		fmt.Fprintf(out, "transitions: %d\n", len(d.TransitionTimes))
		for i, at := range d.TransitionTimes {
			t := d.Types[d.TransitionTypes[i]]
			fmt.Fprintf(out, "  %s -> %s\n",
				time.Unix(at, 0).UTC().Format(time.RFC3339), d.Designation(t))
		}
		if d.TZString != "" {
			fmt.Fprintf(out, "tz: %s\n", d.TZString)
		}
		return nil
	},
}
