package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// nullable convierte "" en NULL para columnas UUID opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// lockKey toma un candado de sesión transaccional sobre una clave de texto.
// Se libera al terminar la transacción.
func lockKey(ctx context.Context, q Querier, key string) error {
	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("advisory lock %s: %w", key, err)
	}
	return nil
}

// lastSequence lee la secuencia más alta de los códigos PREFIJO-yyyyMMdd-NNNN de una tabla.
func lastSequence(ctx context.Context, q Querier, table, dayKey string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(CAST(split_part(code, '-', 3) AS INTEGER)), 0)
		FROM %s WHERE code LIKE $1`, table)
	var last int
	if err := q.QueryRow(ctx, query, dayKey+"-%").Scan(&last); err != nil {
		return 0, fmt.Errorf("last sequence %s: %w", table, err)
	}
	return last, nil
}

// isUUID evita enviar a PostgreSQL ids que la columna UUID rechazaría con error de sintaxis.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
