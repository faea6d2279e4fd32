package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/jhoicas/bodegas-api/pkg/logger"
	"github.com/jhoicas/bodegas-api/pkg/slug"
)

// PrimaryCache cachea la bodega primaria (se consulta en cada evento de
// pedido). Get devuelve (nil, nil) en miss; los fallos del cache son best
// effort y nunca rompen el caso de uso.
type PrimaryCache interface {
	GetPrimary(ctx context.Context) (*entity.Warehouse, error)
	SetPrimary(ctx context.Context, w *entity.Warehouse) error
	Invalidate(ctx context.Context) error
}

// WarehouseUseCase registro de bodegas: alta, edición, listado y la garantía
// de una única bodega primaria intocable por la API normal.
type WarehouseUseCase struct {
	repo  repository.WarehouseRepository
	cache PrimaryCache
	log   *logger.Logger
}

// NewWarehouseUseCase construye el caso de uso. cache puede ser nil.
func NewWarehouseUseCase(repo repository.WarehouseRepository, cache PrimaryCache, log *logger.Logger) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo, cache: cache, log: log}
}

// CreateOrUpdate crea (ID en cero) o actualiza una bodega. El slug se deriva
// del nombre si no viene y se sufija ante colisión. La bodega primaria no es
// editable por esta vía.
func (uc *WarehouseUseCase) CreateOrUpdate(ctx context.Context, in dto.SaveWarehouseRequest) (*dto.WarehouseResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	status := in.Status
	if status == "" {
		status = entity.WarehouseStatusActive
	}
	if status != entity.WarehouseStatusActive && status != entity.WarehouseStatusInactive {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	if in.ID > 0 {
		warehouse, err := uc.repo.GetByID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		if warehouse == nil {
			return nil, domain.ErrNotFound
		}
		if warehouse.IsPrimary {
			return nil, domain.ErrForbidden
		}
		warehouse.Name = in.Name
		if in.Slug != "" && in.Slug != warehouse.Slug {
			newSlug, err := uc.uniqueSlug(ctx, in.Slug, warehouse.ID)
			if err != nil {
				return nil, err
			}
			warehouse.Slug = newSlug
		}
		warehouse.Status = status
		warehouse.UpdatedAt = now
		if err := uc.repo.Update(ctx, warehouse); err != nil {
			return nil, err
		}
		return toWarehouseResponse(warehouse), nil
	}

	wantSlug := in.Slug
	if wantSlug == "" {
		wantSlug = slug.Make(in.Name)
	}
	newSlug, err := uc.uniqueSlug(ctx, wantSlug, 0)
	if err != nil {
		return nil, err
	}
	warehouse := &entity.Warehouse{
		Name:      in.Name,
		Slug:      newSlug,
		IsPrimary: false,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Carrera sobre el slug: reintentar una vez con sufijo nuevo.
			warehouse.Slug = suffixSlug(warehouse.Slug)
			if err := uc.repo.Create(ctx, warehouse); err != nil {
				return nil, err
			}
			return toWarehouseResponse(warehouse), nil
		}
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// Disable desactiva una bodega. Falla sobre la primaria; desactivar una ya
// inactiva es un no-op exitoso.
func (uc *WarehouseUseCase) Disable(ctx context.Context, id int64) (*dto.WarehouseResponse, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidInput
	}
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	if warehouse.IsPrimary {
		return nil, domain.ErrForbidden
	}
	if warehouse.Status == entity.WarehouseStatusInactive {
		return toWarehouseResponse(warehouse), nil
	}
	warehouse.Status = entity.WarehouseStatusInactive
	warehouse.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega. Devuelve (nil, nil) si no existe.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id int64) (*dto.WarehouseResponse, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidInput
	}
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, nil
	}
	return toWarehouseResponse(warehouse), nil
}

// GetPrimary obtiene la bodega primaria, pasando por el cache si hay.
func (uc *WarehouseUseCase) GetPrimary(ctx context.Context) (*dto.WarehouseResponse, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.GetPrimary(ctx); err == nil && cached != nil {
			return toWarehouseResponse(cached), nil
		}
	}
	warehouse, err := uc.repo.GetPrimary(ctx)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	if uc.cache != nil {
		if err := uc.cache.SetPrimary(ctx, warehouse); err != nil {
			uc.log.Warn().Err(err).Msg("cache de bodega primaria no disponible")
		}
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas, opcionalmente filtradas por estado.
func (uc *WarehouseUseCase) List(ctx context.Context, status string, page dto.PageRequest) (*dto.WarehouseListResponse, error) {
	if status != "" && status != entity.WarehouseStatusActive && status != entity.WarehouseStatusInactive {
		return nil, domain.ErrInvalidInput
	}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// EnsurePrimary garantiza que exista la bodega primaria; si falta la crea
// con el nombre/slug configurados. Se invoca al arrancar.
func (uc *WarehouseUseCase) EnsurePrimary(ctx context.Context, name, slugName string) (*entity.Warehouse, error) {
	existing, err := uc.repo.GetPrimary(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	if name == "" {
		name = "Bodega principal"
	}
	if slugName == "" {
		slugName = slug.Make(name)
	}
	now := time.Now()
	primary := &entity.Warehouse{
		Name:      name,
		Slug:      slugName,
		IsPrimary: true,
		Status:    entity.WarehouseStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, primary); err != nil {
		return nil, err
	}
	if uc.cache != nil {
		_ = uc.cache.Invalidate(ctx)
	}
	uc.log.Info().Int64("warehouse_id", primary.ID).Str("slug", primary.Slug).Msg("bodega primaria creada")
	return primary, nil
}

// uniqueSlug devuelve el slug tal cual si está libre (o pertenece a selfID);
// si colisiona, lo sufija con un token corto.
func (uc *WarehouseUseCase) uniqueSlug(ctx context.Context, want string, selfID int64) (string, error) {
	normalized := slug.Make(want)
	if normalized == "" {
		return "", domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetBySlug(ctx, normalized)
	if err != nil {
		return "", err
	}
	if existing == nil || existing.ID == selfID {
		return normalized, nil
	}
	return suffixSlug(normalized), nil
}

func suffixSlug(s string) string {
	return s + "-" + uuid.New().String()[:8]
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:        w.ID,
		Name:      w.Name,
		Slug:      w.Slug,
		IsPrimary: w.IsPrimary,
		Status:    w.Status,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
