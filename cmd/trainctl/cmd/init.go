package cmd

import (
	"fmt"

	"github.com/habitedge/habitedge/internal/app"
	"github.com/spf13/cobra"
)

func InitCmd() *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the athlete account on a fresh server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			return withApp(func(a *app.App) error {
				var passwordHash *string
				if password != "" {
					if err := a.AuthService.ValidatePassword(password); err != nil {
						return err
					}
					hash, err := a.AuthService.HashPassword(password)
					if err != nil {
						return err
					}
					passwordHash = &hash
				}

				user, err := a.AuthService.CreateAccount(email, passwordHash)
				if err != nil {
					return err
				}

				// The operator owns the host; no emailed token needed.
				if err := a.AuthService.VerifyEmail(user.ID); err != nil {
					return err
				}

				fmt.Printf("account created: %s\n", user.Email)
				if password == "" {
					fmt.Println("sign in with a magic link from the app")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email for the athlete account")
	cmd.Flags().StringVar(&password, "password", "", "Optional password (magic link sign-in works regardless)")
	return cmd
}
