package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podscript/podscript-cli/internals/auth"
)

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.RunLoginForm(cmd.Context(), app.Client, app.Config.Server.DataDir, false); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "register",
		Short: "Create an account and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.RunLoginForm(cmd.Context(), app.Client, app.Config.Server.DataDir, true); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.ClearToken(app.Config.Server.DataDir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	})

	return cmd
}
