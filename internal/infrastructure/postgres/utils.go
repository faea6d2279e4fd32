package postgres

import (
	"errors"
	"strings"

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

// variationKey normaliza variation_id para la clave única: en BD se guarda 0
// cuando el producto no tiene variación.
func variationKey(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// variationPtr convierte la columna de BD de vuelta al dominio (0 -> nil).
func variationPtr(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
