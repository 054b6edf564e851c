package cmd

import (
	"os"
	"strings"

	"github.com/emberhollow/hearth/internal/domain"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup posts|groups|all",
	Short: "Delete all posts, all groups, or everything, as the acting user",
	Long: `Runs a destructive cleanup pass. Requires --as with a user id holding
an admin or super_admin role; anyone else is denied before a single row
is touched.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"posts", "groups", "all"},
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		if actingUser == "" {
			pterm.Error.Println("cleanup requires --as <user-id>")
			os.Exit(exitStoreFailure)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cobraCmd.Context()

		switch args[0] {
		case "posts":
			reportResult(a.cleanupSvc.ClearAllPosts(ctx, actingUser))
		case "groups":
			reportResult(a.cleanupSvc.ClearAllGroups(ctx, actingUser))
		case "all":
			reportCompleteResult(a.cleanupSvc.PerformCompleteCleanup(ctx, actingUser))
		default:
			pterm.Error.Printfln("unknown cleanup target %q", args[0])
			os.Exit(exitStoreFailure)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func reportResult(result domain.CleanupResult) {
	if result.Success {
		pterm.Success.Println(result.Message)
		return
	}

	pterm.Error.Println(result.Message)
	if result.Outcome == domain.CleanupOutcomeDenied {
		os.Exit(exitPermissionDenied)
	}
	os.Exit(exitStoreFailure)
}

func reportCompleteResult(result domain.CompleteCleanupResult) {
	rows := pterm.TableData{
		{"STEP", "OK", "DETAIL"},
		{"posts", okMark(result.PostsCleanup.Success), result.PostsCleanup.Message},
		{"groups", okMark(result.GroupsCleanup.Success), result.GroupsCleanup.Message},
		{"integrity", okMark(result.IntegrityValidation.IsValid), integrityDetail(result.IntegrityValidation)},
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	if result.OverallSuccess {
		deleted := result.PostsCleanup.DeletedCount + result.GroupsCleanup.DeletedCount
		pterm.Success.Printfln("complete cleanup finished, %s row(s) deleted", humanize.Comma(deleted))
		return
	}

	if result.PostsCleanup.Outcome == domain.CleanupOutcomeDenied {
		os.Exit(exitPermissionDenied)
	}
	if !result.IntegrityValidation.IsValid && result.PostsCleanup.Success && result.GroupsCleanup.Success {
		os.Exit(exitIntegrityViolation)
	}
	os.Exit(exitStoreFailure)
}

func okMark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

func integrityDetail(result domain.IntegrityValidationResult) string {
	if result.IsValid {
		return "no orphaned records"
	}
	return strings.Join(result.Issues, "; ")
}
