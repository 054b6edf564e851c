package cmd

import (
	"os"
	"text/tabwriter"

	"github.com/emberhollow/hearth/internal/groups"
	"github.com/emberhollow/hearth/pkg/errors"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all groups",
	Args:  cobra.NoArgs,
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.groupsSvc.ListGroups(cobraCmd.Context())
		if err != nil {
			pterm.Error.Printfln("could not list groups: %v", err)
			os.Exit(exitStoreFailure)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer w.Flush()

		if _, err := w.Write([]byte("ID\tNAME\tMEMBERS\tACTIVE\tCREATED\n")); err != nil {
			return err
		}
		for _, g := range list {
			active := "yes"
			if !g.IsActive {
				active = "no"
			}
			if _, err := w.Write([]byte(g.ID + "\t" + g.Name + "\t" + humanize.Comma(int64(g.MemberCount)) + "\t" + active + "\t" + humanize.Time(g.CreatedAt) + "\n")); err != nil {
				return err
			}
		}

		return nil
	},
}

var (
	createName        string
	createDescription string
	createLink        string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a group as the acting user",
	Args:  cobra.NoArgs,
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		if actingUser == "" {
			pterm.Error.Println("create requires --as <user-id>")
			os.Exit(exitStoreFailure)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		group, err := a.groupsSvc.CreateGroup(cobraCmd.Context(), actingUser, groups.GroupInput{
			Name:         createName,
			Description:  createDescription,
			ExternalLink: createLink,
		})
		if err != nil {
			exitGroupsError(err)
		}

		pterm.Success.Printfln("created group %q (%s)", group.Name, group.ID)
		return nil
	},
}

var createMissingCmd = &cobra.Command{
	Use:   "create-missing",
	Short: "Create every configured default group that does not exist yet",
	Args:  cobra.NoArgs,
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		if actingUser == "" {
			pterm.Error.Println("create-missing requires --as <user-id>")
			os.Exit(exitStoreFailure)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		created, err := a.groupsSvc.CreateMissing(cobraCmd.Context(), actingUser)
		if err != nil {
			exitGroupsError(err)
		}

		if len(created) == 0 {
			pterm.Info.Println("all default groups already exist")
			return nil
		}

		for _, g := range created {
			pterm.Success.Printfln("created group %q (%s)", g.Name, g.ID)
		}
		return nil
	},
}

// exitGroupsError terminates with the exit code matching the failure class.
func exitGroupsError(err error) {
	var denied *groups.PermissionDeniedError

	if errors.As(err, &denied) {
		pterm.Error.Println(denied.Reason)
		os.Exit(exitPermissionDenied)
	}

	pterm.Error.Println(err.Error())
	os.Exit(exitStoreFailure)
}

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "group name (required)")
	createCmd.Flags().StringVar(&createDescription, "description", "", "group description")
	createCmd.Flags().StringVar(&createLink, "link", "", "external link")
	createCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(createMissingCmd)
}
