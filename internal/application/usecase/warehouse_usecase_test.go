package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/usecase"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/pkg/logger"
)

type fakeWarehouseRepo struct {
	byID            map[int64]entity.Warehouse
	nextID          int64
	failCreateOnce  bool // primer Create devuelve ErrDuplicate aunque el slug esté libre
	getByIDCalls    int
	getPrimaryCalls int
}

func newFakeWarehouseRepo() *fakeWarehouseRepo {
	return &fakeWarehouseRepo{byID: make(map[int64]entity.Warehouse), nextID: 1}
}

func (r *fakeWarehouseRepo) seed(w entity.Warehouse) entity.Warehouse {
	if w.ID == 0 {
		w.ID = r.nextID
		r.nextID++
	} else if w.ID >= r.nextID {
		r.nextID = w.ID + 1
	}
	if w.Status == "" {
		w.Status = entity.WarehouseStatusActive
	}
	r.byID[w.ID] = w
	return w
}

func (r *fakeWarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	if r.failCreateOnce {
		r.failCreateOnce = false
		return domain.ErrDuplicate
	}
	for _, existing := range r.byID {
		if existing.Slug == w.Slug {
			return domain.ErrDuplicate
		}
	}
	w.ID = r.nextID
	r.nextID++
	r.byID[w.ID] = *w
	return nil
}

func (r *fakeWarehouseRepo) GetByID(_ context.Context, id int64) (*entity.Warehouse, error) {
	r.getByIDCalls++
	w, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := w
	return &cp, nil
}

func (r *fakeWarehouseRepo) GetBySlug(_ context.Context, slug string) (*entity.Warehouse, error) {
	for _, w := range r.byID {
		if w.Slug == slug {
			cp := w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeWarehouseRepo) GetPrimary(_ context.Context) (*entity.Warehouse, error) {
	r.getPrimaryCalls++
	for _, w := range r.byID {
		if w.IsPrimary {
			cp := w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeWarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	if _, ok := r.byID[w.ID]; !ok {
		return domain.ErrNotFound
	}
	r.byID[w.ID] = *w
	return nil
}

func (r *fakeWarehouseRepo) List(_ context.Context, status string, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	for _, w := range r.byID {
		if status != "" && w.Status != status {
			continue
		}
		cp := w
		out = append(out, &cp)
	}
	return out, nil
}

// fakePrimaryCache implementa usecase.PrimaryCache en memoria.
type fakePrimaryCache struct {
	cached      *entity.Warehouse
	sets        int
	invalidates int
}

func (c *fakePrimaryCache) GetPrimary(_ context.Context) (*entity.Warehouse, error) {
	if c.cached == nil {
		return nil, nil
	}
	cp := *c.cached
	return &cp, nil
}

func (c *fakePrimaryCache) SetPrimary(_ context.Context, w *entity.Warehouse) error {
	cp := *w
	c.cached = &cp
	c.sets++
	return nil
}

func (c *fakePrimaryCache) Invalidate(_ context.Context) error {
	c.cached = nil
	c.invalidates++
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func newUC(repo *fakeWarehouseRepo, cache usecase.PrimaryCache) *usecase.WarehouseUseCase {
	return usecase.NewWarehouseUseCase(repo, cache, testLogger())
}

func TestWarehouse_CrearDerivaSlugDelNombre(t *testing.T) {
	repo := newFakeWarehouseRepo()
	uc := newUC(repo, nil)

	resp, err := uc.CreateOrUpdate(context.Background(), dto.SaveWarehouseRequest{Name: "Sucursal Ñuñoa"})
	require.NoError(t, err)
	assert.Equal(t, "sucursal-nunoa", resp.Slug)
	assert.Equal(t, entity.WarehouseStatusActive, resp.Status)
	assert.False(t, resp.IsPrimary)
}

func TestWarehouse_CrearSufijaSlugEnColision(t *testing.T) {
	repo := newFakeWarehouseRepo()
	repo.seed(entity.Warehouse{Name: "Norte", Slug: "norte"})
	uc := newUC(repo, nil)

	resp, err := uc.CreateOrUpdate(context.Background(), dto.SaveWarehouseRequest{Name: "Norte"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Slug, "norte-"), "slug sufijado, fue %q", resp.Slug)
	assert.NotEqual(t, "norte", resp.Slug)
}

// Carrera sobre el slug: GetBySlug lo vio libre pero Create choca con el
// índice único. Se reintenta una vez con sufijo.
func TestWarehouse_CrearReintentaTrasCarrera(t *testing.T) {
	repo := newFakeWarehouseRepo()
	repo.failCreateOnce = true
	uc := newUC(repo, nil)

	resp, err := uc.CreateOrUpdate(context.Background(), dto.SaveWarehouseRequest{Name: "Sur"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Slug, "sur-"))
	assert.Positive(t, resp.ID)
}

func TestWarehouse_Validaciones(t *testing.T) {
	repo := newFakeWarehouseRepo()
	uc := newUC(repo, nil)
	ctx := context.Background()

	_, err := uc.CreateOrUpdate(ctx, dto.SaveWarehouseRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateOrUpdate(ctx, dto.SaveWarehouseRequest{Name: "Norte", Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateOrUpdate(ctx, dto.SaveWarehouseRequest{ID: 99, Name: "Norte"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWarehouse_ActualizarRenombra(t *testing.T) {
	repo := newFakeWarehouseRepo()
	w := repo.seed(entity.Warehouse{Name: "Norte", Slug: "norte"})
	uc := newUC(repo, nil)

	resp, err := uc.CreateOrUpdate(context.Background(), dto.SaveWarehouseRequest{
		ID:   w.ID,
		Name: "Norte Renovada",
		Slug: "norte-renovada",
	})
	require.NoError(t, err)
	assert.Equal(t, "Norte Renovada", resp.Name)
	assert.Equal(t, "norte-renovada", resp.Slug)
}

// La bodega primaria no se edita ni desactiva por la API normal.
func TestWarehouse_PrimariaIntocable(t *testing.T) {
	repo := newFakeWarehouseRepo()
	primary := repo.seed(entity.Warehouse{Name: "Principal", Slug: "principal", IsPrimary: true})
	uc := newUC(repo, nil)
	ctx := context.Background()

	_, err := uc.CreateOrUpdate(ctx, dto.SaveWarehouseRequest{ID: primary.ID, Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Disable(ctx, primary.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestWarehouse_Disable(t *testing.T) {
	repo := newFakeWarehouseRepo()
	w := repo.seed(entity.Warehouse{Name: "Norte", Slug: "norte"})
	uc := newUC(repo, nil)
	ctx := context.Background()

	resp, err := uc.Disable(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.WarehouseStatusInactive, resp.Status)

	// Desactivar de nuevo es un no-op exitoso.
	resp, err = uc.Disable(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.WarehouseStatusInactive, resp.Status)

	_, err = uc.Disable(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWarehouse_EnsurePrimaryCreaUnaVez(t *testing.T) {
	repo := newFakeWarehouseRepo()
	cache := &fakePrimaryCache{}
	uc := newUC(repo, cache)
	ctx := context.Background()

	first, err := uc.EnsurePrimary(ctx, "Bodega principal", "bodega-principal")
	require.NoError(t, err)
	assert.True(t, first.IsPrimary)
	assert.Equal(t, "bodega-principal", first.Slug)
	assert.Equal(t, 1, cache.invalidates)

	second, err := uc.EnsurePrimary(ctx, "Otra", "otra")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "no debe crear una segunda primaria")
	assert.Len(t, repo.byID, 1)
}

func TestWarehouse_GetPrimaryUsaCache(t *testing.T) {
	repo := newFakeWarehouseRepo()
	repo.seed(entity.Warehouse{Name: "Principal", Slug: "principal", IsPrimary: true})
	cache := &fakePrimaryCache{}
	uc := newUC(repo, cache)
	ctx := context.Background()

	// Miss: va al repo y puebla el cache.
	resp, err := uc.GetPrimary(ctx)
	require.NoError(t, err)
	assert.True(t, resp.IsPrimary)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, repo.getPrimaryCalls)

	// Hit: no vuelve al repo.
	_, err = uc.GetPrimary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getPrimaryCalls)
}

func TestWarehouse_ListFiltraPorEstado(t *testing.T) {
	repo := newFakeWarehouseRepo()
	repo.seed(entity.Warehouse{Name: "Norte", Slug: "norte"})
	repo.seed(entity.Warehouse{Name: "Sur", Slug: "sur", Status: entity.WarehouseStatusInactive})
	uc := newUC(repo, nil)
	ctx := context.Background()

	resp, err := uc.List(ctx, entity.WarehouseStatusActive, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Norte", resp.Items[0].Name)

	_, err = uc.List(ctx, "archived", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
