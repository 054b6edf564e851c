package cmd

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current row counts for the managed tables",
	Args:  cobra.NoArgs,
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		status, err := a.cleanupSvc.GetCleanupStatus(cobraCmd.Context())
		if err != nil {
			pterm.Error.Printfln("could not read status: %v", err)
			os.Exit(exitStoreFailure)
		}

		rows := pterm.TableData{
			{"TABLE", "ROWS"},
			{"posts", humanize.Comma(status.PostsCount)},
			{"post_likes", humanize.Comma(status.PostLikesCount)},
			{"groups", humanize.Comma(status.GroupsCount)},
			{"group_memberships", humanize.Comma(status.GroupMembershipsCount)},
		}
		pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

		pterm.Info.Printfln("snapshot taken %s", humanize.Time(status.LastUpdated))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
