// seed_stock carga el stock inicial desde un CSV exportado del sistema anterior
// registrando una entrada (INBOUND) por fila en el kardex.
//
// Uso: go run ./cmd/seed_stock [-latin1] [-workers 4] stock.csv
// Formato (separado por ';', con cabecera): codigo_producto;bodega;cantidad;motivo
// La bodega puede ser el ID o el nombre. Las filas de un mismo producto se aplican en orden.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-ventas/internal/application/inventory"
	"github.com/jhoicas/inventario-ventas/internal/domain/repository"
	"github.com/jhoicas/inventario-ventas/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ventas/pkg/config"
	"github.com/jhoicas/inventario-ventas/pkg/logger"
)

const seedActor = "seed_stock"

type row struct {
	line        int
	productCode string
	warehouse   string
	quantity    int64
	reason      string
}

func main() {
	latin1 := flag.Bool("latin1", true, "el archivo viene en ISO-8859-1")
	workers := flag.Int("workers", 4, "productos procesados en paralelo")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_stock [-latin1] [-workers N] stock.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	rows, err := parseRows(f, *latin1)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner, repos := postgres.NewTxRunner(pool), postgres.NewRepos(pool)
	svc := inventory.NewService(txRunner, repos, log.Component("stock"))
	ledger := inventory.NewLedger(txRunner, repos, svc, nil, log.Component("kardex"))

	n, err := seed(ctx, repos, ledger, rows, *workers, log.Component("seed"))
	if err != nil {
		log.Fatal().Err(err).Int("aplicadas", n).Msg("carga interrumpida")
	}
	log.Info().Int("filas", n).Msg("stock inicial cargado")
}

// parseRows lee el CSV; la primera fila es cabecera.
func parseRows(r io.Reader, latin1 bool) ([]row, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []row
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("línea %d: se esperaban al menos 3 columnas", line)
		}
		qty, err := strconv.ParseInt(strings.TrimSpace(rec[2]), 10, 64)
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("línea %d: cantidad inválida %q", line, rec[2])
		}
		rw := row{
			line:        line,
			productCode: strings.TrimSpace(rec[0]),
			warehouse:   strings.TrimSpace(rec[1]),
			quantity:    qty,
			reason:      "Carga inicial",
		}
		if len(rec) > 3 && strings.TrimSpace(rec[3]) != "" {
			rw.reason = strings.TrimSpace(rec[3])
		}
		out = append(out, rw)
	}
	return out, nil
}

// seed agrupa por producto y registra cada grupo en su propia goroutine.
// Devuelve cuántas filas quedaron registradas.
func seed(ctx context.Context, repos repository.Repos, ledger *inventory.Ledger, rows []row, workers int, log zerolog.Logger) (int, error) {
	warehouses, err := repos.Warehouses.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listar bodegas: %w", err)
	}
	byKey := make(map[string]string, len(warehouses)*2)
	for _, w := range warehouses {
		byKey[w.ID] = w.ID
		byKey[strings.ToLower(w.Name)] = w.ID
	}

	groups := make(map[string][]row)
	var order []string
	for _, r := range rows {
		if _, ok := groups[r.productCode]; !ok {
			order = append(order, r.productCode)
		}
		groups[r.productCode] = append(groups[r.productCode], r)
	}

	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	applied := make([]int, len(order))
	for i, code := range order {
		i, code := i, code
		g.Go(func() error {
			product, err := repos.Products.GetByCode(ctx, code)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("línea %d: producto %q no existe", groups[code][0].line, code)
			}
			for _, r := range groups[code] {
				whID, ok := byKey[r.warehouse]
				if !ok {
					whID, ok = byKey[strings.ToLower(r.warehouse)]
				}
				if !ok {
					return fmt.Errorf("línea %d: bodega %q no existe", r.line, r.warehouse)
				}
				m, err := ledger.RecordInbound(ctx, whID, inventory.MovementInput{
					ProductID: product.ID,
					Quantity:  r.quantity,
					Reason:    r.reason,
					Actor:     seedActor,
				})
				if err != nil {
					return fmt.Errorf("línea %d: %w", r.line, err)
				}
				applied[i]++
				log.Debug().Str("code", m.Code).Str("product", code).Int64("qty", r.quantity).Msg("entrada registrada")
			}
			return nil
		})
	}
	err = g.Wait()
	total := 0
	for _, n := range applied {
		total += n
	}
	return total, err
}
