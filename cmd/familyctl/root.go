package main

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/spf13/cobra"

	"familydir/internal/directory/authority"
	"familydir/internal/directory/kinship"
	directoryservice "familydir/internal/directory/service"
	householdstore "familydir/internal/directory/store/household"
	maritalstore "familydir/internal/directory/store/marital"
	personstore "familydir/internal/directory/store/person"
	relationshipstore "familydir/internal/directory/store/relationship"
	"familydir/internal/platform/config"
	"familydir/internal/platform/logger"
	"familydir/internal/platform/postgres"
	"familydir/pkg/platform/audit/publishers/compliance"
	auditpostgres "familydir/pkg/platform/audit/store/postgres"
)

// app holds what every database command needs. It is filled in lazily so
// commands like gen-secret run without a database.
type app struct {
	cfg config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "familyctl",
		Short:         "Maintenance commands for the family directory",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.FromEnv()
			a.log = logger.NewWithWriter(cmd.ErrOrStderr(), a.cfg.Log)
		},
	}
	root.AddCommand(
		newMigrateCmd(a),
		newImportCmd(a),
		newCleanupHouseholdsCmd(a),
		newRecalcAgesCmd(a),
		newSetAdminCmd(a),
		newPurgeAuditCmd(a),
		newGenSecretCmd(),
	)
	return root
}

// backend is the wired directory over Postgres.
type backend struct {
	db         *sql.DB
	tx         *postgres.TxRunner
	audit      *auditpostgres.Store
	stores     directoryservice.Stores
	persons    *directoryservice.PersonService
	households *directoryservice.HouseholdService
}

func (a *app) open(ctx context.Context) (*backend, error) {
	db, err := postgres.Open(ctx, a.cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	people := personstore.NewPostgres(db)
	households := householdstore.NewPostgres(db)
	marriages := maritalstore.NewPostgres(db)
	relationships := relationshipstore.NewPostgres(db)
	b := &backend{
		db:    db,
		tx:    postgres.NewTxRunner(db, a.cfg.Database.TxTimeout),
		audit: auditpostgres.New(db),
		stores: directoryservice.Stores{
			People:        people,
			Households:    households,
			Marriages:     marriages,
			Relationships: relationships,
		},
	}

	evaluator := authority.New(people, households, relationships, marriages)
	opts := []directoryservice.Option{
		directoryservice.WithLogger(a.log),
		directoryservice.WithAuditPublisher(b.publisher(a.log)),
		directoryservice.WithTx(b.tx),
	}
	b.persons = directoryservice.NewPersonService(b.stores, kinship.New(people), evaluator, opts...)
	b.households = directoryservice.NewHouseholdService(b.stores, evaluator, opts...)
	return b, nil
}

func (b *backend) publisher(log *slog.Logger) *compliance.Publisher {
	return compliance.New(b.audit, compliance.WithLogger(log))
}

func (b *backend) Close() {
	_ = b.db.Close()
}
