package cmd

import (
	"fmt"

	"github.com/habitedge/habitedge/internal/app"
	"github.com/spf13/cobra"
)

func DigestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Send the weekly digest email now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				if err := a.DigestService.SendNow(); err != nil {
					return err
				}
				fmt.Println("digest sent")
				return nil
			})
		},
	}
}
