package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"familydir/internal/auth/secrets"
	"familydir/internal/importer"
	"familydir/internal/platform/postgres"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			version, err := postgres.MigrationVersion(ctx, b.db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-csv <file>",
		Short: "Import persons, households and relationships from a CSV file",
		Long: `Reads a CSV with a header row. Recognised columns:

  first_name, last_name (required), full_name, email, phone,
  address_line1, address_line2, city, state, postal_code, country,
  date_of_birth, wedding_anniversary_date (YYYY-MM-DD), gender,
  generation, household_name, mother_name, father_name, spouse_name,
  is_deceased, photo_url

Parents and spouses are referenced by "first last" name. The whole file is
imported in one transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open csv: %w", err)
			}
			defer f.Close()
			records, err := importer.Parse(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			b, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			imp := importer.New(importer.Stores{
				People:        b.stores.People,
				Households:    b.stores.Households,
				Marriages:     b.stores.Marriages,
				Relationships: b.stores.Relationships,
			}, b.tx,
				importer.WithLogger(a.log),
				importer.WithAuditPublisher(b.publisher(a.log)),
			)
			result, err := imp.Import(ctx, records)
			if err != nil {
				return fmt.Errorf("import failed, nothing was saved: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported %d persons, %d households, %d parent links, %d marriages\n",
				result.Persons, result.Households, result.ParentLinks, result.Marriages)
			for _, w := range result.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	}
}

func newCleanupHouseholdsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-households",
		Short: "Delete households that have no members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			deleted, err := b.households.Cleanup(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d empty households\n", deleted)
			return nil
		},
	}
}

func newRecalcAgesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recalc-ages",
		Short: "Recompute stored ages and years married from their dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			changed, err := b.persons.RecalculateAges(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d persons\n", changed)
			return nil
		},
	}
}

func newSetAdminCmd(a *app) *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "set-admin <email>",
		Short: "Grant (or with --revoke, remove) administrator rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			p, err := b.persons.SetAdmin(ctx, args[0], !revoke)
			if err != nil {
				return err
			}
			verb := "granted"
			if revoke {
				verb = "revoked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s for %s (%s)\n", verb, p.Name(), p.Email)
			return nil
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove administrator rights instead")
	return cmd
}

func newPurgeAuditCmd(a *app) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "purge-audit",
		Short: "Delete audit outbox entries already published to Kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			ctx := cmd.Context()
			b, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			n, err := b.audit.PurgeProcessed(ctx, time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d outbox entries\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age of published entries to delete")
	return cmd
}

func newGenSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random secret suitable for JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := secrets.Generate()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}
}
