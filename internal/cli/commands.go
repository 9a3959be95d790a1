package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/app"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/services"
)

func newSyncRentCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sync-rent [organizationId]",
		Short: "Copy space rent onto active rent records that drifted",
		Long: `Compare monthlyRent of every active rent record with the rent of the
space it occupies and update the record where they differ by more than 0.01.
Records whose property or space is missing are skipped. Writes go out in
batches of at most 500. Every record's disposition is printed before the
first batch is committed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := depsFrom(cmd)
			svc := services.NewRentSyncService(d.Store, d.Rents, d.Props)
			svc.OnPlan = planPrinter(cmd.OutOrStdout(), "sync-rent")
			report, err := svc.Sync(cmd.Context(), services.RentSyncOptions{
				OrganizationID: optionalArg(args),
				DryRun:         dryRun,
			})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), report)
			return reportError(report)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	return cmd
}

func newFixOrgIDsCmd() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "fix-org-ids <organizationId>",
		Short: "Find and repair rent records whose organizationId disagrees with their property",
		Long: `Without --confirm this only reports the records that would be rewritten.
With --confirm the same records are updated to the given organizationId.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := depsFrom(cmd)
			svc := services.NewOrgScopeService(d.Store, d.Orgs, d.Props, d.Rents)
			svc.OnPlan = planPrinter(cmd.OutOrStdout(), "fix-org-ids")
			run := svc.Check
			if confirm {
				run = svc.Fix
			}
			report, err := run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), report)
			if !confirm && report.Count(services.WillUpdate) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "re-run with --confirm to apply")
			}
			return reportError(report)
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Apply the fix")
	return cmd
}

func newAssignManagerCmd() *cobra.Command {
	var (
		selected []string
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "assign-manager <email>",
		Short: "Add a manager to the assignedManagers list of properties in their organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := depsFrom(cmd)
			svc := services.NewManagerAssignmentService(d.Store, d.Users, d.Props)
			svc.OnPlan = planPrinter(cmd.OutOrStdout(), "assign-manager")
			report, err := svc.Assign(cmd.Context(), args[0], services.AssignScope{
				PropertyIDs: selected,
				DryRun:      dryRun,
			})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), report)
			return reportError(report)
		},
	}
	cmd.Flags().StringSliceVar(&selected, "selected", nil, "Only these property ids (comma separated)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	return cmd
}

func newCheckManagerCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check-manager <email>",
		Short: "Explain which properties a user can see and why",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := depsFrom(cmd)
			svc := services.NewManagerAssignmentService(d.Store, d.Users, d.Props)
			diag, err := svc.Diagnose(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(diag)
			}
			fmt.Fprintf(out, "user %s (%s) org=%s role=%s\n", diag.Email, diag.UserID, diag.OrganizationID, diag.RoleID)
			fmt.Fprintf(out, "permissions: %s\n", strings.Join(diag.Permissions, ", "))
			scope := diag.MatchedScope
			if scope == "" {
				scope = "(none)"
			}
			fmt.Fprintf(out, "read scope: %s\n", scope)
			fmt.Fprintf(out, "properties in organization: %d, assigned: %d, visible: %d\n",
				diag.OrganizationTotal, len(diag.AssignedProperties), len(diag.Visible))
			for _, p := range diag.Visible {
				fmt.Fprintf(out, "  visible %s %s\n", p.ID, p.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the diagnosis as JSON")
	return cmd
}

func newSetRoleCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "set-role <email> <roleIdOrName>",
		Short: "Assign a role and copy its permissions onto the user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := depsFrom(cmd)
			u, err := services.NewRoleService(d.Users, d.Roles).AssignRole(cmd.Context(), args[0], args[1], dryRun)
			if err != nil {
				return err
			}
			verb := "updated"
			if dryRun {
				verb = "would update"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: role=%s permissions=[%s]\n",
				verb, u.Email, u.RoleID, strings.Join(u.Permissions, ", "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the result without writing")
	return cmd
}

func newCheckPaymentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-payments <organizationId>",
		Short: "List payments that are not linked to an existing invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := depsFrom(cmd)
			report, err := services.NewBillingService(d.Store, d.Rents, d.Invoices, d.Payments).CheckPayments(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), "check-payments", report)
			return nil
		},
	}
}

func newExpireLeasesCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "expire-leases [organizationId]",
		Short: "Mark active leases past their end date as expired",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := depsFrom(cmd)
			svc := services.NewLeaseExpiryService(d.Store, d.Rents, d.Props, d.Orgs)
			svc.OnPlan = planPrinter(cmd.OutOrStdout(), "expire-leases")
			report, err := svc.ExpireLeases(cmd.Context(), optionalArg(args), dryRun)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), report)
			return reportError(report)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	return cmd
}

func newNotifyExpiringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify-expiring [organizationId]",
		Short: "Email and text tenants whose lease is about to end",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := depsFrom(cmd)
			if d.Notifier == nil {
				return fmt.Errorf("no email or SMS provider configured")
			}
			report, err := d.Notifier.NotifyExpiringLeases(cmd.Context(), optionalArg(args))
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), "notify-expiring", report)
			return reportError(report)
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the demo organization, users, properties and leases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.SeedAllTestData(cmd.Context(), depsFrom(cmd).Store); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded organization %s (admin %s, manager %s)\n",
				app.SeedOrganizationID, app.SeedAdminEmail, app.SeedManagerEmail)
			return nil
		},
	}
}
