package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

type stockLogTestEnv struct {
	store    *memStore
	ledger   *inventory.LedgerUseCase
	orders   *inventory.OrderUseCase
	transfer *inventory.TransferUseCase
	stockLog *inventory.StockLogUseCase
}

func newStockLogTestEnv(t *testing.T) *stockLogTestEnv {
	t.Helper()
	store := newMemStore()
	whRepo := newMemWarehouseRepo()
	whRepo.seed(entity.Warehouse{Name: "Principal", Slug: "principal", IsPrimary: true})
	whRepo.seed(entity.Warehouse{Name: "Sucursal Norte", Slug: "sucursal-norte"})
	tx := &fakeTxRunner{s: store}
	return &stockLogTestEnv{
		store:    store,
		ledger:   inventory.NewLedgerUseCase(tx, whRepo, &memInventoryRepo{s: store}, nil, testLogger()),
		orders:   inventory.NewOrderUseCase(tx, whRepo, &memOrderStateRepo{s: store}, nil, testLogger()),
		transfer: inventory.NewTransferUseCase(tx, whRepo, nil, testLogger()),
		stockLog: inventory.NewStockLogUseCase(&memStockLogRepo{s: store}, &memInventoryRepo{s: store}),
	}
}

// Sobre una secuencia de mutaciones hechas por los casos de uso, la
// conciliación cierra exacta: expected == closing y discrepancia cero.
func TestStockLog_ConciliacionCierraExacta(t *testing.T) {
	env := newStockLogTestEnv(t)
	env.store.seedRow(1, 100, dec("10"), dec("0"))
	ctx := context.Background()
	from := time.Now().Add(-time.Hour)

	// Entrada manual, venta directa y transferencia de salida.
	_, err := env.ledger.Adjust(ctx, inventory.AdjustInput{WarehouseID: 1, ProductID: 100, QtyDelta: dec("5")})
	require.NoError(t, err)
	_, err = env.orders.HandleStatusChanged(ctx, inventory.OrderStatusEvent{
		OrderID:   900,
		NewStatus: entity.OrderStatusCompleted,
		Lines:     []entity.OrderLine{{ProductID: 100, Qty: dec("3")}},
	})
	require.NoError(t, err)
	require.NoError(t, env.transfer.Transfer(ctx, inventory.TransferInput{
		FromWarehouseID: 1, ToWarehouseID: 2, ProductID: 100, Qty: dec("2"),
	}))

	to := time.Now().Add(time.Hour)
	rows, err := env.stockLog.Reconcile(ctx, 1, from, to)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, int64(100), r.ProductID)
	assert.True(t, r.OpeningQty.Equal(dec("10")), "apertura derivada del stock actual menos los deltas, fue %s", r.OpeningQty)
	assert.True(t, r.ClosingQty.Equal(dec("10")), "10 +5 -3 -2")
	assert.True(t, r.TotalIn.Equal(dec("5")))
	assert.True(t, r.TotalOut.Equal(dec("5")))
	assert.True(t, r.EntriesIn.Equal(dec("5")))
	assert.True(t, r.SalesOut.Equal(dec("3")))
	assert.True(t, r.TransferOut.Equal(dec("2")))
	assert.True(t, r.ExpectedClosing.Equal(r.ClosingQty))
	assert.True(t, r.Discrepancy.IsZero())
}

// Los saldos se derivan del stock actual: una mutación hecha por fuera del
// libro desplaza apertura y cierre por igual, y el cierre siempre refleja lo
// que de verdad hay en la bodega.
func TestStockLog_SaldosDerivadosDelStockActual(t *testing.T) {
	env := newStockLogTestEnv(t)
	env.store.seedRow(1, 100, dec("10"), dec("0"))
	ctx := context.Background()
	from := time.Now().Add(-time.Hour)

	_, err := env.ledger.Adjust(ctx, inventory.AdjustInput{WarehouseID: 1, ProductID: 100, QtyDelta: dec("5")})
	require.NoError(t, err)

	// Alguien toca la fila directo en la base, sin pasar por el libro.
	k := keyOf(1, 100, nil)
	row := env.store.rows[k]
	row.Qty = row.Qty.Add(dec("4"))
	env.store.rows[k] = row

	to := time.Now().Add(time.Hour)
	rows, err := env.stockLog.Reconcile(ctx, 1, from, to)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.True(t, r.ClosingQty.Equal(dec("19")), "el cierre refleja el stock real")
	assert.True(t, r.OpeningQty.Equal(dec("14")), "la apertura absorbe el mismo desplazamiento")
	assert.True(t, r.TotalIn.Equal(dec("5")))
	assert.True(t, r.Discrepancy.IsZero())
}

func TestStockLog_ReconcileValidaRango(t *testing.T) {
	env := newStockLogTestEnv(t)
	now := time.Now()
	_, err := env.stockLog.Reconcile(context.Background(), 1, now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// El transfer_in de la bodega destino aparece en su propia conciliación.
func TestStockLog_TransferenciaEnDestino(t *testing.T) {
	env := newStockLogTestEnv(t)
	env.store.seedRow(1, 100, dec("10"), dec("0"))
	ctx := context.Background()
	from := time.Now().Add(-time.Hour)

	require.NoError(t, env.transfer.Transfer(ctx, inventory.TransferInput{
		FromWarehouseID: 1, ToWarehouseID: 2, ProductID: 100, Qty: dec("4"),
	}))

	to := time.Now().Add(time.Hour)
	rows, err := env.stockLog.Reconcile(ctx, 2, from, to)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].TransferIn.Equal(dec("4")))
	assert.True(t, rows[0].OpeningQty.IsZero())
	assert.True(t, rows[0].ClosingQty.Equal(dec("4")))
	assert.True(t, rows[0].Discrepancy.IsZero())
}

func TestStockLog_ListFiltraPorAccion(t *testing.T) {
	env := newStockLogTestEnv(t)
	env.store.seedRow(1, 100, dec("10"), dec("0"))
	ctx := context.Background()

	_, err := env.ledger.Adjust(ctx, inventory.AdjustInput{WarehouseID: 1, ProductID: 100, QtyDelta: dec("5")})
	require.NoError(t, err)
	_, err = env.ledger.Adjust(ctx, inventory.AdjustInput{WarehouseID: 1, ProductID: 100, QtyDelta: dec("-2")})
	require.NoError(t, err)

	entries, err := env.stockLog.List(ctx, repository.StockLogFilter{
		WarehouseID: 1,
		ActionType:  entity.ActionManualDecrease,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].QtyChange.Equal(dec("-2")))

	// Sin filtro de acción, más recientes primero.
	entries, err = env.stockLog.List(ctx, repository.StockLogFilter{WarehouseID: 1})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.ActionManualDecrease, entries[0].ActionType)
}
