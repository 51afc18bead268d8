package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/habitedge/habitedge/internal/app"
	"github.com/spf13/cobra"
)

func ExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a full backup as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				user, err := a.UserService.First()
				if err != nil {
					return fmt.Errorf("no account on this server yet")
				}

				export, err := a.ExportService.Export(user.ID)
				if err != nil {
					return err
				}

				b, err := json.MarshalIndent(export, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal export json: %w", err)
				}

				if out == "" {
					fmt.Println(string(b))
					return nil
				}
				if err := os.WriteFile(out, b, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				fmt.Printf("exported %d targets and %d entries to %s\n", len(export.Targets), len(export.Entries), out)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file (stdout when omitted)")
	return cmd
}
