package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <user-id>",
	Short: "Show a user's effective role and group-management permission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		userID := args[0]
		ctx := cobraCmd.Context()

		role, err := a.permissionSvc.GetUserRole(ctx, userID)
		if err != nil {
			pterm.Error.Printfln("could not resolve role: %v", err)
			os.Exit(exitStoreFailure)
		}

		decision, err := a.permissionSvc.CanManageGroups(ctx, userID)
		if err != nil {
			pterm.Error.Printfln("could not check permission: %v", err)
			os.Exit(exitStoreFailure)
		}

		pterm.Info.Printfln("user %s has effective role %q", userID, role)

		if decision.Allowed {
			pterm.Success.Println("allowed to manage groups")
			return nil
		}

		pterm.Warning.Printfln("not allowed to manage groups: %s", decision.Reason)
		os.Exit(exitPermissionDenied)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
