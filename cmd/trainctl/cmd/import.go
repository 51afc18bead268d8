package cmd

import (
	"fmt"
	"os"

	"github.com/habitedge/habitedge/internal/app"
	"github.com/spf13/cobra"
)

func ImportCmd() *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Restore a backup, replacing all targets and journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in == "" {
				return fmt.Errorf("--in is required")
			}
			return withApp(func(a *app.App) error {
				data, err := os.ReadFile(in)
				if err != nil {
					return fmt.Errorf("read import file: %w", err)
				}

				user, err := a.UserService.First()
				if err != nil {
					return fmt.Errorf("no account on this server yet, run trainctl init first")
				}

				summary, err := a.ExportService.Import(user.ID, data)
				if err != nil {
					return err
				}

				fmt.Printf("imported %d targets and %d entries\n", summary.Targets, summary.Entries)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Backup file to restore")
	return cmd
}
