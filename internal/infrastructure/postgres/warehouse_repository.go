package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
// Pasar pool o tx (Querier).
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

const warehouseColumns = `id, name, slug, is_primary, status, created_at, updated_at`

// Create persiste una nueva bodega y asigna el ID generado.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (name, slug, is_primary, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		w.Name, w.Slug, w.IsPrimary, w.Status, w.CreatedAt, w.UpdatedAt,
	).Scan(&w.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert warehouse: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// GetByID obtiene una bodega por ID. Devuelve (nil, nil) si no existe.
func (r *WarehouseRepo) GetByID(ctx context.Context, id int64) (*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id), "get warehouse")
}

// GetBySlug obtiene una bodega por slug. Devuelve (nil, nil) si no existe.
func (r *WarehouseRepo) GetBySlug(ctx context.Context, slug string) (*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE slug = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, slug), "get warehouse by slug")
}

// GetPrimary obtiene la bodega primaria. Devuelve (nil, nil) si aún no hay.
func (r *WarehouseRepo) GetPrimary(ctx context.Context) (*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses WHERE is_primary LIMIT 1`
	return r.scanOne(r.q.QueryRow(ctx, query), "get primary warehouse")
}

// Update actualiza una bodega existente.
func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	query := `
		UPDATE warehouses
		SET name = $2, slug = $3, is_primary = $4, status = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		w.ID, w.Name, w.Slug, w.IsPrimary, w.Status, w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update warehouse: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("update warehouse: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update warehouse %d: %w", w.ID, domain.ErrNotFound)
	}
	return nil
}

// List lista bodegas con paginación. status vacío lista todas.
func (r *WarehouseRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Warehouse, error) {
	query := `SELECT ` + warehouseColumns + ` FROM warehouses`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY is_primary DESC, name ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()

	var list []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Slug, &w.IsPrimary, &w.Status, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

func (r *WarehouseRepo) scanOne(row pgx.Row, op string) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := row.Scan(&w.ID, &w.Name, &w.Slug, &w.IsPrimary, &w.Status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &w, nil
}
