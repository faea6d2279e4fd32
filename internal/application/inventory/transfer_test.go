package inventory_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

type transferTestEnv struct {
	store    *memStore
	whRepo   *memWarehouseRepo
	catalog  *fakeCatalog
	transfer *inventory.TransferUseCase
}

func newTransferTestEnv(t *testing.T) *transferTestEnv {
	t.Helper()
	store := newMemStore()
	whRepo := newMemWarehouseRepo()
	whRepo.seed(entity.Warehouse{Name: "Principal", Slug: "principal", IsPrimary: true})
	whRepo.seed(entity.Warehouse{Name: "Sucursal Norte", Slug: "sucursal-norte"})
	cat := &fakeCatalog{}
	return &transferTestEnv{
		store:    store,
		whRepo:   whRepo,
		catalog:  cat,
		transfer: inventory.NewTransferUseCase(&fakeTxRunner{s: store}, whRepo, cat, testLogger()),
	}
}

// Transferencia feliz: el total entre bodegas se conserva y quedan las dos
// entradas de log correlacionadas por el mismo identificador en notes.
func TestTransfer_ConservaElTotal(t *testing.T) {
	env := newTransferTestEnv(t)
	env.store.seedRow(1, 100, dec("10"), dec("2"))

	err := env.transfer.Transfer(context.Background(), inventory.TransferInput{
		FromWarehouseID: 1,
		ToWarehouseID:   2,
		ProductID:       100,
		Qty:             dec("4"),
	})
	require.NoError(t, err)

	from := env.store.row(1, 100)
	to := env.store.row(2, 100)
	assert.True(t, from.Qty.Equal(dec("6")))
	assert.True(t, to.Qty.Equal(dec("4")))
	assert.True(t, from.Qty.Add(to.Qty).Equal(dec("10")), "el total se conserva")
	assert.True(t, from.ReservedQty.Equal(dec("2")), "las reservas no viajan")
	assert.True(t, to.ReservedQty.IsZero())

	outs := env.store.logsFor(entity.ActionTransferOut)
	ins := env.store.logsFor(entity.ActionTransferIn)
	require.Len(t, outs, 1)
	require.Len(t, ins, 1)
	assert.True(t, outs[0].QtyChange.Equal(dec("-4")))
	assert.True(t, ins[0].QtyChange.Equal(dec("4")))
	assert.Equal(t, outs[0].Notes, ins[0].Notes, "ambas entradas comparten el identificador")
	assert.True(t, strings.HasPrefix(outs[0].Notes, "transfer "))
	assert.True(t, outs[0].ReservedBefore.Equal(outs[0].ReservedAfter))
}

// Stock insuficiente en origen: error y ninguna fila cambia.
func TestTransfer_StockInsuficiente(t *testing.T) {
	env := newTransferTestEnv(t)
	env.store.seedRow(1, 100, dec("3"), dec("0"))

	err := env.transfer.Transfer(context.Background(), inventory.TransferInput{
		FromWarehouseID: 1,
		ToWarehouseID:   2,
		ProductID:       100,
		Qty:             dec("5"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, env.store.row(1, 100).Qty.Equal(dec("3")))
	_, exists := env.store.rows[keyOf(2, 100, nil)]
	assert.False(t, exists, "no debe crearse fila en destino")
	assert.Empty(t, env.store.logs)
}

// Origen sin fila de inventario cuenta como stock insuficiente.
func TestTransfer_OrigenSinFila(t *testing.T) {
	env := newTransferTestEnv(t)

	err := env.transfer.Transfer(context.Background(), inventory.TransferInput{
		FromWarehouseID: 1,
		ToWarehouseID:   2,
		ProductID:       100,
		Qty:             dec("1"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestTransfer_Validaciones(t *testing.T) {
	env := newTransferTestEnv(t)
	env.store.seedRow(1, 100, dec("10"), dec("0"))
	ctx := context.Background()

	cases := []struct {
		name  string
		input inventory.TransferInput
		want  error
	}{
		{"misma bodega", inventory.TransferInput{FromWarehouseID: 1, ToWarehouseID: 1, ProductID: 100, Qty: dec("1")}, domain.ErrInvalidInput},
		{"cantidad cero", inventory.TransferInput{FromWarehouseID: 1, ToWarehouseID: 2, ProductID: 100, Qty: dec("0")}, domain.ErrInvalidInput},
		{"cantidad negativa", inventory.TransferInput{FromWarehouseID: 1, ToWarehouseID: 2, ProductID: 100, Qty: dec("-1")}, domain.ErrInvalidInput},
		{"producto inválido", inventory.TransferInput{FromWarehouseID: 1, ToWarehouseID: 2, ProductID: 0, Qty: dec("1")}, domain.ErrInvalidInput},
		{"bodega inexistente", inventory.TransferInput{FromWarehouseID: 1, ToWarehouseID: 99, ProductID: 100, Qty: dec("1")}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := env.transfer.Transfer(ctx, tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Empty(t, env.store.logs, "ninguna validación fallida debe escribir log")
}

// Atomicidad: si la segunda entrada de log falla, las dos mutaciones de
// inventario y la primera entrada se revierten completas.
func TestTransfer_RollbackCompleto(t *testing.T) {
	env := newTransferTestEnv(t)
	env.store.seedRow(1, 100, dec("10"), dec("0"))
	env.store.failLog = entity.ActionTransferIn

	err := env.transfer.Transfer(context.Background(), inventory.TransferInput{
		FromWarehouseID: 1,
		ToWarehouseID:   2,
		ProductID:       100,
		Qty:             dec("4"),
	})
	require.Error(t, err)

	assert.True(t, env.store.row(1, 100).Qty.Equal(dec("10")), "origen intacto tras rollback")
	_, exists := env.store.rows[keyOf(2, 100, nil)]
	assert.False(t, exists, "destino intacto tras rollback")
	assert.Empty(t, env.store.logs, "tampoco sobrevive la entrada transfer_out")
}

// Si alguna punta es la bodega primaria, su nuevo qty se empuja al catálogo.
func TestTransfer_PushCatalogoSoloPrimaria(t *testing.T) {
	env := newTransferTestEnv(t)
	env.store.seedRow(1, 100, dec("10"), dec("0"))

	err := env.transfer.Transfer(context.Background(), inventory.TransferInput{
		FromWarehouseID: 1,
		ToWarehouseID:   2,
		ProductID:       100,
		Qty:             dec("4"),
	})
	require.NoError(t, err)

	calls := env.catalog.callsFor(100)
	require.Len(t, calls, 1, "solo la punta primaria empuja")
	assert.True(t, calls[0].qty.Equal(dec("6")))

	// Entre dos bodegas secundarias no hay push.
	env.whRepo.seed(entity.Warehouse{Name: "Sucursal Sur", Slug: "sucursal-sur"})
	env.store.seedRow(2, 200, dec("5"), dec("0"))
	err = env.transfer.Transfer(context.Background(), inventory.TransferInput{
		FromWarehouseID: 2,
		ToWarehouseID:   3,
		ProductID:       200,
		Qty:             dec("2"),
	})
	require.NoError(t, err)
	assert.Empty(t, env.catalog.callsFor(200))
}

// TransferBulk aísla cada ítem: un fallo no frena a los demás.
func TestTransfer_BulkAislaFallos(t *testing.T) {
	env := newTransferTestEnv(t)
	env.store.seedRow(1, 100, dec("10"), dec("0"))
	env.store.seedRow(1, 200, dec("1"), dec("0"))

	results := env.transfer.TransferBulk(context.Background(), []inventory.TransferInput{
		{FromWarehouseID: 1, ToWarehouseID: 2, ProductID: 100, Qty: dec("4")},
		{FromWarehouseID: 1, ToWarehouseID: 2, ProductID: 200, Qty: dec("5")},
		{FromWarehouseID: 1, ToWarehouseID: 2, ProductID: 100, Qty: dec("2")},
	})
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, domain.ErrInsufficientStock)
	assert.NoError(t, results[2].Err)

	assert.True(t, env.store.row(1, 100).Qty.Equal(dec("4")))
	assert.True(t, env.store.row(2, 100).Qty.Equal(dec("6")))
	assert.True(t, env.store.row(1, 200).Qty.Equal(dec("1")), "el ítem fallido no muta nada")
}
