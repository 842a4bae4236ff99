package main

import (
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/zicgo/zic/tzif"
)

var diffCmd = &cobra.Command{
	Use:   "diff FILE FILE",
	Short: "Compare two TZif files",
	Long: `Compare the decoded content of two TZif files and print a diff.
Exits with status 1 when the files differ.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := decodeFile(args[0])
		if err != nil {
			return err
		}
		b, err := decodeFile(args[1])
		if err != nil {
			return err
		}
		if diff := cmp.Diff(a, b); diff != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "(-%s +%s):\n%s", args[0], args[1], diff)
			return fmt.Errorf("files differ")
		}
		return nil
	},
}

func decodeFile(path string) (tzif.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return tzif.Data{}, err
	}
	defer f.Close()
	d, err := tzif.Decode(f)
	if err != nil {
		return tzif.Data{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
