package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
)

// masterData archivo YAML con bodegas, ubicaciones y productos.
//
//	warehouses:
//	  - id: W1
//	    name: Central
//	    locations:
//	      - {id: W1-A01, code: A-01}
//	products:
//	  - {id: P1, code: CEM-50, name: Cemento 50kg, cost: "32500.00"}
type masterData struct {
	Warehouses []struct {
		ID        string `yaml:"id"`
		Name      string `yaml:"name"`
		Locations []struct {
			ID   string `yaml:"id"`
			Code string `yaml:"code"`
		} `yaml:"locations"`
	} `yaml:"warehouses"`
	Products []struct {
		ID   string `yaml:"id"`
		Code string `yaml:"code"`
		Name string `yaml:"name"`
		Cost string `yaml:"cost"`
	} `yaml:"products"`
}

// masterSink destino de la carga (PostgreSQL en producción).
type masterSink interface {
	CreateWarehouse(ctx context.Context, w *entity.Warehouse) error
	CreateLocation(ctx context.Context, l *entity.Location) error
	CreateProduct(ctx context.Context, p *entity.Product) error
}

type seedResult struct {
	Warehouses, Locations, Products int
}

func parseMasterData(r io.Reader) (*masterData, error) {
	var md masterData
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&md); err != nil {
		return nil, fmt.Errorf("decodificar YAML: %w", err)
	}
	codes := make(map[string]bool)
	for _, w := range md.Warehouses {
		if strings.TrimSpace(w.ID) == "" {
			return nil, fmt.Errorf("bodega sin id")
		}
		for _, l := range w.Locations {
			if l.ID == "" || l.Code == "" {
				return nil, fmt.Errorf("bodega %s: ubicación sin id o código", w.ID)
			}
			key := w.ID + "/" + l.Code
			if codes[key] {
				return nil, fmt.Errorf("bodega %s: código de ubicación repetido %s", w.ID, l.Code)
			}
			codes[key] = true
		}
	}
	for _, p := range md.Products {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("producto sin id")
		}
		if p.Cost != "" {
			if _, err := decimal.NewFromString(p.Cost); err != nil {
				return nil, fmt.Errorf("producto %s: costo inválido %q", p.ID, p.Cost)
			}
		}
	}
	return &md, nil
}

func applyMasterData(ctx context.Context, md *masterData, sink masterSink, now time.Time) (seedResult, error) {
	var res seedResult
	for _, w := range md.Warehouses {
		if err := sink.CreateWarehouse(ctx, &entity.Warehouse{ID: w.ID, Name: w.Name, CreatedAt: now}); err != nil {
			return res, err
		}
		res.Warehouses++
		for _, l := range w.Locations {
			if err := sink.CreateLocation(ctx, &entity.Location{ID: l.ID, WarehouseID: w.ID, Code: l.Code}); err != nil {
				return res, err
			}
			res.Locations++
		}
	}
	for _, p := range md.Products {
		cost := decimal.Zero
		if p.Cost != "" {
			cost = decimal.RequireFromString(p.Cost)
		}
		if err := sink.CreateProduct(ctx, &entity.Product{ID: p.ID, Code: p.Code, Name: p.Name, Cost: cost, CreatedAt: now, UpdatedAt: now}); err != nil {
			return res, err
		}
		res.Products++
	}
	return res, nil
}

// pgSink carga sobre PostgreSQL; los inserts ignoran ids existentes.
type pgSink struct {
	warehouses *postgres.WarehouseRepo
	products   *postgres.ProductRepo
}

func (s pgSink) CreateWarehouse(ctx context.Context, w *entity.Warehouse) error {
	return s.warehouses.Create(ctx, w)
}

func (s pgSink) CreateLocation(ctx context.Context, l *entity.Location) error {
	return s.warehouses.CreateLocation(ctx, l)
}

func (s pgSink) CreateProduct(ctx context.Context, p *entity.Product) error {
	return s.products.Create(ctx, p)
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Carga bodegas, ubicaciones y productos desde un archivo YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("abrir %s: %w", file, err)
			}
			defer f.Close()

			md, err := parseMasterData(f)
			if err != nil {
				return err
			}

			pool, err := postgres.NewPool(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()

			sink := pgSink{warehouses: postgres.NewWarehouseRepository(pool), products: postgres.NewProductRepository(pool)}
			res, err := applyMasterData(cmd.Context(), md, sink, time.Now())
			if err != nil {
				return err
			}
			log.Info().
				Int("warehouses", res.Warehouses).
				Int("locations", res.Locations).
				Int("products", res.Products).
				Msg("datos maestros cargados")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "master.yaml", "archivo YAML de datos maestros")
	return cmd
}
