package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/beaufortfrancois/templates/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compile every template in the store and report failures",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st := store.NewStore(cfg, logger)
	if err := st.Load(ctx); err != nil {
		return err
	}

	problems := st.Problems()
	if len(problems) == 0 {
		fmt.Printf("%d template(s) OK\n", len(st.Names()))
		return nil
	}

	paths := make([]string, 0, len(problems))
	for path := range problems {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		fmt.Fprintln(os.Stderr, problems[path])
	}
	return fmt.Errorf("%d template(s) failed to compile", len(problems))
}
