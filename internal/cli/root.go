package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/repositories"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/services"
)

// Deps is everything a maintenance command can reach.
type Deps struct {
	Store    docstore.Store
	Orgs     repositories.OrganizationRepository
	Users    repositories.UserRepository
	Roles    repositories.RoleRepository
	Props    repositories.PropertyRepository
	Rents    repositories.RentRepository
	Invoices repositories.InvoiceRepository
	Payments repositories.PaymentRepository

	// Notifier is nil when no email or SMS provider is configured.
	Notifier *services.LeaseNotificationService
}

func NewDeps(store docstore.Store) *Deps {
	return &Deps{
		Store:    store,
		Orgs:     repositories.NewOrganizationRepository(store),
		Users:    repositories.NewUserRepository(store),
		Roles:    repositories.NewRoleRepository(store),
		Props:    repositories.NewPropertyRepository(store),
		Rents:    repositories.NewRentRepository(store),
		Invoices: repositories.NewInvoiceRepository(store),
		Payments: repositories.NewPaymentRepository(store),
	}
}

// Opener connects to the backing store. The returned func releases it.
type Opener func(ctx context.Context) (*Deps, func(), error)

type contextKey struct{}

// NewRootCmd builds the rent-maint command tree. Dependencies are opened
// once before a subcommand runs and released when it returns, error or not.
func NewRootCmd(open Opener) *cobra.Command {
	var release func()

	subcommands := []*cobra.Command{
		newSyncRentCmd(),
		newFixOrgIDsCmd(),
		newAssignManagerCmd(),
		newCheckManagerCmd(),
		newSetRoleCmd(),
		newCheckPaymentsCmd(),
		newExpireLeasesCmd(),
		newNotifyExpiringCmd(),
		newSeedCmd(),
	}
	needsDeps := make(map[*cobra.Command]bool, len(subcommands))

	root := &cobra.Command{
		Use:           "rent-maint",
		Short:         "Maintenance commands for rent, property and permission data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsDeps[cmd] {
				return nil
			}
			deps, closeFn, err := open(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			release = closeFn
			cmd.SetContext(context.WithValue(cmd.Context(), contextKey{}, deps))
			return nil
		},
	}

	// cobra skips PersistentPostRun when RunE fails, so release is deferred
	// around RunE instead.
	for _, c := range subcommands {
		needsDeps[c] = true
		runE := c.RunE
		c.RunE = func(cmd *cobra.Command, args []string) error {
			defer func() {
				if release != nil {
					release()
					release = nil
				}
			}()
			return runE(cmd, args)
		}
	}
	root.AddCommand(subcommands...)
	return root
}

func depsFrom(cmd *cobra.Command) *Deps {
	return cmd.Context().Value(contextKey{}).(*Deps)
}

func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
