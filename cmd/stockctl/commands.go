package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			dsn := cfg.DB.ConnectionString()
			if err := postgres.Migrate(cmd.Context(), dsn); err != nil {
				return err
			}
			v, err := postgres.MigrationVersion(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			log.Info().Int64("version", v).Msg("migraciones aplicadas")
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión actual del esquema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadEnv()
			if err != nil {
				return err
			}
			v, err := postgres.MigrationVersion(cmd.Context(), cfg.DB.ConnectionString())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newReconcileCmd() *cobra.Command {
	var pendingOnly bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recalcula contable vs físico desde PostgreSQL e imprime el reporte",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			pool, err := postgres.NewPool(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()

			repos := postgres.Repos(pool)
			svc := inventory.NewReconciliationService(repos.Movements, repos.Stock, log.Component("reconciliation"))
			sum, err := svc.Recompute(cmd.Context())
			if err != nil {
				return err
			}

			balances := svc.Report()
			if pendingOnly {
				balances = svc.Pending()
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BODEGA\tPRODUCTO\tCONTABLE\tFÍSICO\tPENDIENTE")
			for _, b := range balances {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", b.Key.WarehouseID, b.Key.ProductID, b.Accounting, b.Physical, b.Pending())
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\npendientes: %d  anomalías: %d  llaves: %d\n", sum.PendingKeys, sum.AnomalyKeys, sum.TrackedKeys)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "solo llaves con mercancía pendiente por ubicar")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		userID  string
		role    string
		minutes int
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un JWT firmado con JWT_SECRET (pruebas y scripts)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadEnv()
			if err != nil {
				return err
			}
			switch role {
			case jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleAuditor:
			default:
				return fmt.Errorf("rol desconocido %q", role)
			}
			if minutes <= 0 {
				minutes = cfg.JWT.Expiration
			}
			tok, err := jwt.Generate(cfg.JWT.Secret, userID, role, cfg.JWT.Issuer, minutes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "stockctl", "user_id del token")
	cmd.Flags().StringVar(&role, "role", jwt.RoleAuditor, "admin | bodeguero | auditor")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "vigencia en minutos (0 = JWT_EXPIRATION_MINUTES)")
	return cmd
}
