package cmd

import (
	"fmt"

	"github.com/habitedge/habitedge/internal/app"
	"github.com/spf13/cobra"
)

func RemindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send the deadline reminder email now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				n, err := a.DigestService.SendRemindersNow()
				if err != nil {
					return err
				}
				if n == 0 {
					fmt.Println("nothing due, no reminder sent")
					return nil
				}
				fmt.Printf("reminder sent covering %d target(s)\n", n)
				return nil
			})
		},
	}
}
