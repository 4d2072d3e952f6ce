package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wakili/backend/internal/i18n"
	"github.com/wakili/backend/internal/notify"
	"github.com/wakili/backend/internal/service"
)

func applicationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "applications",
		Aliases: []string{"apps"},
		Short:   "Review lawyer onboarding applications",
	}
	cmd.AddCommand(listApplicationsCmd(a), approveApplicationCmd(a), rejectApplicationCmd(a))
	return cmd
}

// withAdmin opens the backend and hands an AdminService to fn.
func (a *app) withAdmin(cmd *cobra.Command, fn func(admin *service.AdminService) error) error {
	repo, release, err := a.connect(cmd.Context())
	if err != nil {
		return err
	}
	defer release()
	return fn(service.NewAdminService(repo, notify.NewLogNotifier(a.logger), a.logger))
}

func listApplicationsCmd(a *app) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications, optionally filtered by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdmin(cmd, func(admin *service.AdminService) error {
				views, err := admin.ListApplications(cmd.Context(), status)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "USER\tNAME\tSTATUS\tSTEP\tPROGRESS\tSUBMITTED")
				for _, v := range views {
					name := "-"
					if v.Application.BasicInfo != nil {
						name = v.Application.BasicInfo.FullName
					}
					submitted := "-"
					if v.Application.SubmittedAt != nil {
						submitted = v.Application.SubmittedAt.UTC().Format("2006-01-02 15:04")
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%%\t%s\n",
						v.Application.UserID, name, v.Progress.Status,
						v.Progress.CurrentStep, v.Progress.Percent, submitted)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "submitted", "draft|submitted|approved|rejected, empty for all")
	return cmd
}

func approveApplicationCmd(a *app) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "approve [user-id]",
		Short: "Approve a submitted application and publish the lawyer profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withAdmin(cmd, func(admin *service.AdminService) error {
				_, lawyer, err := admin.Approve(cmd.Context(), args[0], i18n.Normalize(lang))
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Approved %s as lawyer %s\n", args[0], lawyer.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&lang, "lang", i18n.Arabic, "language of the decision email")
	return cmd
}

func rejectApplicationCmd(a *app) *cobra.Command {
	var (
		reason string
		lang   string
	)
	cmd := &cobra.Command{
		Use:   "reject [user-id]",
		Short: "Return a submitted application to the lawyer with a reason",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(reason) == "" {
				return fmt.Errorf("--reason is required")
			}
			return a.withAdmin(cmd, func(admin *service.AdminService) error {
				if _, err := admin.Reject(cmd.Context(), args[0], reason, i18n.Normalize(lang)); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Rejected %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason shown to the lawyer")
	cmd.Flags().StringVar(&lang, "lang", i18n.Arabic, "language of the decision email")
	return cmd
}
