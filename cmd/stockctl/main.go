// stockctl tareas de operación del ledger de inventario: migraciones, carga de datos maestros,
// recálculo de reconciliación y emisión de tokens para pruebas.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Herramientas de operación del ledger de inventario",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newVersionCmd(),
		newSeedCmd(),
		newReconcileCmd(),
		newTokenCmd(),
	)
	return root
}

// loadEnv configuración y logger compartidos por los subcomandos.
func loadEnv() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "stockctl"})
	return cfg, log, nil
}
