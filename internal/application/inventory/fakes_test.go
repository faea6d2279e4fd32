package inventory_test

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
	"github.com/jhoicas/bodegas-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// Fakes en memoria de los puertos de persistencia, con transacciones
// simuladas por snapshot/restore para poder verificar atomicidad.

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

type rowKey struct {
	warehouseID int64
	productID   int64
	variationID int64
}

func keyOf(warehouseID, productID int64, variationID *int64) rowKey {
	k := rowKey{warehouseID: warehouseID, productID: productID}
	if variationID != nil {
		k.variationID = *variationID
	}
	return k
}

type memStore struct {
	rows    map[rowKey]entity.InventoryRow
	logs    []entity.StockLogEntry
	states  map[int64]entity.OrderStockState
	nextID  int64
	failLog string // action_type cuyo Append debe fallar
}

func newMemStore() *memStore {
	return &memStore{
		rows:   make(map[rowKey]entity.InventoryRow),
		states: make(map[int64]entity.OrderStockState),
		nextID: 1,
	}
}

func (s *memStore) snapshot() *memStore {
	cp := &memStore{
		rows:    make(map[rowKey]entity.InventoryRow, len(s.rows)),
		logs:    append([]entity.StockLogEntry(nil), s.logs...),
		states:  make(map[int64]entity.OrderStockState, len(s.states)),
		nextID:  s.nextID,
		failLog: s.failLog,
	}
	for k, v := range s.rows {
		cp.rows[k] = v
	}
	for k, v := range s.states {
		cp.states[k] = v
	}
	return cp
}

func (s *memStore) restore(from *memStore) {
	s.rows = from.rows
	s.logs = from.logs
	s.states = from.states
	s.nextID = from.nextID
}

func (s *memStore) seedRow(warehouseID, productID int64, qty, reserved decimal.Decimal) {
	k := keyOf(warehouseID, productID, nil)
	s.rows[k] = entity.InventoryRow{
		ID:          s.nextID,
		WarehouseID: warehouseID,
		ProductID:   productID,
		Qty:         qty,
		ReservedQty: reserved,
	}
	s.nextID++
}

func (s *memStore) row(warehouseID, productID int64) entity.InventoryRow {
	return s.rows[keyOf(warehouseID, productID, nil)]
}

func (s *memStore) logsFor(action string) []entity.StockLogEntry {
	var out []entity.StockLogEntry
	for _, e := range s.logs {
		if e.ActionType == action {
			out = append(out, e)
		}
	}
	return out
}

// memInventoryRepo implementa repository.InventoryRepository sobre memStore.
type memInventoryRepo struct{ s *memStore }

func (r *memInventoryRepo) Get(_ context.Context, warehouseID, productID int64, variationID *int64) (*entity.InventoryRow, error) {
	row, ok := r.s.rows[keyOf(warehouseID, productID, variationID)]
	if !ok {
		return nil, nil
	}
	cp := row
	return &cp, nil
}

func (r *memInventoryRepo) GetForUpdate(ctx context.Context, warehouseID, productID int64, variationID *int64) (*entity.InventoryRow, error) {
	return r.Get(ctx, warehouseID, productID, variationID)
}

func (r *memInventoryRepo) Upsert(_ context.Context, row *entity.InventoryRow) error {
	k := keyOf(row.WarehouseID, row.ProductID, row.VariationID)
	if existing, ok := r.s.rows[k]; ok {
		row.ID = existing.ID
	} else {
		row.ID = r.s.nextID
		r.s.nextID++
	}
	r.s.rows[k] = *row
	return nil
}

func (r *memInventoryRepo) ListByWarehouse(_ context.Context, warehouseID int64, limit, offset int) ([]*entity.InventoryRow, error) {
	var out []*entity.InventoryRow
	for _, row := range r.s.rows {
		if row.WarehouseID == warehouseID {
			cp := row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memInventoryRepo) ListBelowMin(_ context.Context, warehouseID int64) ([]*entity.InventoryRow, error) {
	var out []*entity.InventoryRow
	for _, row := range r.s.rows {
		if row.WarehouseID == warehouseID && row.MinQty.IsPositive() && row.Qty.LessThanOrEqual(row.MinQty) {
			cp := row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memInventoryRepo) CurrentQtyByProduct(_ context.Context, warehouseID int64) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal)
	for _, row := range r.s.rows {
		if warehouseID == 0 || row.WarehouseID == warehouseID {
			out[row.ProductID] = out[row.ProductID].Add(row.Qty)
		}
	}
	return out, nil
}

// memStockLogRepo implementa repository.StockLogRepository sobre memStore.
type memStockLogRepo struct{ s *memStore }

type failAppendError struct{ action string }

func (e failAppendError) Error() string { return "append forzado a fallar: " + e.action }

func (r *memStockLogRepo) Append(_ context.Context, e *entity.StockLogEntry) (int64, error) {
	if r.s.failLog != "" && e.ActionType == r.s.failLog {
		return 0, failAppendError{action: e.ActionType}
	}
	e.ID = r.s.nextID
	r.s.nextID++
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	r.s.logs = append(r.s.logs, *e)
	return e.ID, nil
}

func (r *memStockLogRepo) List(_ context.Context, f repository.StockLogFilter) ([]*entity.StockLogEntry, error) {
	var out []*entity.StockLogEntry
	for i := len(r.s.logs) - 1; i >= 0; i-- {
		e := r.s.logs[i]
		if f.WarehouseID > 0 && e.WarehouseID != f.WarehouseID {
			continue
		}
		if f.ProductID > 0 && e.ProductID != f.ProductID {
			continue
		}
		if f.OrderID > 0 && (e.OrderID == nil || *e.OrderID != f.OrderID) {
			continue
		}
		if f.ActionType != "" && e.ActionType != f.ActionType {
			continue
		}
		if f.From != nil && e.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.CreatedAt.After(*f.To) {
			continue
		}
		cp := e
		out = append(out, &cp)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (r *memStockLogRepo) SummaryByProduct(ctx context.Context, f repository.StockLogFilter) ([]repository.ActionSummary, error) {
	entries, err := r.List(ctx, repository.StockLogFilter{
		WarehouseID: f.WarehouseID,
		ProductID:   f.ProductID,
		From:        f.From,
		To:          f.To,
	})
	if err != nil {
		return nil, err
	}
	byProduct := make(map[int64]*repository.ActionSummary)
	for _, e := range entries {
		s, ok := byProduct[e.ProductID]
		if !ok {
			s = &repository.ActionSummary{ProductID: e.ProductID}
			byProduct[e.ProductID] = s
		}
		if e.QtyChange.IsPositive() {
			s.TotalIn = s.TotalIn.Add(e.QtyChange)
		} else {
			s.TotalOut = s.TotalOut.Add(e.QtyChange.Neg())
		}
		switch e.ActionType {
		case entity.ActionManualIncrease, entity.ActionManualAdjust:
			if e.QtyChange.IsPositive() {
				s.EntriesIn = s.EntriesIn.Add(e.QtyChange)
			}
		case entity.ActionOrderComplete, entity.ActionStatusChangeToComplete, entity.ActionPOSSale:
			s.SalesOut = s.SalesOut.Add(e.QtyChange.Neg())
		case entity.ActionOrderRestore:
			if e.QtyChange.IsPositive() {
				s.SalesReturns = s.SalesReturns.Add(e.QtyChange)
			}
		case entity.ActionTransferIn:
			s.TransferIn = s.TransferIn.Add(e.QtyChange)
		case entity.ActionTransferOut:
			s.TransferOut = s.TransferOut.Add(e.QtyChange.Neg())
		}
	}
	out := make([]repository.ActionSummary, 0, len(byProduct))
	for _, s := range byProduct {
		out = append(out, *s)
	}
	return out, nil
}

func (r *memStockLogRepo) SumChangesAfter(_ context.Context, warehouseID int64, after time.Time) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal)
	for _, e := range r.s.logs {
		if warehouseID > 0 && e.WarehouseID != warehouseID {
			continue
		}
		if !e.CreatedAt.After(after) {
			continue
		}
		out[e.ProductID] = out[e.ProductID].Add(e.QtyChange)
	}
	return out, nil
}

// memOrderStateRepo implementa repository.OrderStateRepository sobre memStore.
type memOrderStateRepo struct{ s *memStore }

func (r *memOrderStateRepo) Get(_ context.Context, orderID int64) (*entity.OrderStockState, error) {
	st, ok := r.s.states[orderID]
	if !ok {
		return nil, nil
	}
	cp := st
	return &cp, nil
}

func (r *memOrderStateRepo) Save(_ context.Context, st *entity.OrderStockState) error {
	st.UpdatedAt = time.Now()
	r.s.states[st.OrderID] = *st
	return nil
}

// memWarehouseRepo implementa repository.WarehouseRepository en memoria.
type memWarehouseRepo struct {
	byID   map[int64]entity.Warehouse
	nextID int64
}

func newMemWarehouseRepo() *memWarehouseRepo {
	return &memWarehouseRepo{byID: make(map[int64]entity.Warehouse), nextID: 1}
}

func (r *memWarehouseRepo) seed(w entity.Warehouse) entity.Warehouse {
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

func (r *memWarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	for _, existing := range r.byID {
		if existing.Slug == w.Slug {
			return errDuplicateSlug
		}
	}
	w.ID = r.nextID
	r.nextID++
	r.byID[w.ID] = *w
	return nil
}

func (r *memWarehouseRepo) GetByID(_ context.Context, id int64) (*entity.Warehouse, error) {
	w, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := w
	return &cp, nil
}

func (r *memWarehouseRepo) GetBySlug(_ context.Context, slug string) (*entity.Warehouse, error) {
	for _, w := range r.byID {
		if w.Slug == slug {
			cp := w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memWarehouseRepo) GetPrimary(_ context.Context) (*entity.Warehouse, error) {
	for _, w := range r.byID {
		if w.IsPrimary {
			cp := w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memWarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	r.byID[w.ID] = *w
	return nil
}

func (r *memWarehouseRepo) List(_ context.Context, status string, limit, offset int) ([]*entity.Warehouse, error) {
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

var errDuplicateSlug = duplicateSlugError{}

type duplicateSlugError struct{}

func (duplicateSlugError) Error() string { return "slug duplicado" }

// fakeTxRunner simula la transacción con snapshot/restore: si fn falla, el
// estado vuelve al punto de partida.
type fakeTxRunner struct{ s *memStore }

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	invRepo repository.InventoryRepository,
	logRepo repository.StockLogRepository,
	orderRepo repository.OrderStateRepository,
) error) error {
	snap := r.s.snapshot()
	err := fn(&memInventoryRepo{s: r.s}, &memStockLogRepo{s: r.s}, &memOrderStateRepo{s: r.s})
	if err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

// fakeCatalog registra las llamadas de push al catálogo.
type fakeCatalog struct {
	calls []catalogCall
	fail  bool
}

type catalogCall struct {
	productID int64
	qty       decimal.Decimal
	inStock   bool
}

type catalogDownError struct{}

func (catalogDownError) Error() string { return "catálogo caído" }

func (f *fakeCatalog) SetManagedStock(_ context.Context, productID int64, _ *int64, qty decimal.Decimal, inStock bool) error {
	if f.fail {
		return catalogDownError{}
	}
	f.calls = append(f.calls, catalogCall{productID: productID, qty: qty, inStock: inStock})
	return nil
}

func (f *fakeCatalog) callsFor(productID int64) []catalogCall {
	var out []catalogCall
	for _, c := range f.calls {
		if c.productID == productID {
			out = append(out, c)
		}
	}
	return out
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		panic(err)
	}
	return d
}
