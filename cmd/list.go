package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/beaufortfrancois/templates/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the templates in the store",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().Bool("json", false, "emit the list as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
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

	names := st.Names()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return json.NewEncoder(os.Stdout).Encode(names)
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
