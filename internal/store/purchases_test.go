package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safar/shop-ledger/internal/database"
	"github.com/safar/shop-ledger/internal/inventory"
	"github.com/safar/shop-ledger/internal/testutil"
)

func TestRecordPurchase(t *testing.T) {
	db := testutil.NewPostgres(t)
	ctx := context.Background()

	product := stockedProduct(t, db, "Coffee beans", "10", "5.00")

	purchase, updated, err := RecordPurchase(ctx, db, inventory.PurchaseRequest{
		ProductID: product.ID,
		Quantity:  dec("10"),
		UnitPrice: dec("7.00"),
		Date:      may(3),
	})
	require.NoError(t, err)

	assert.True(t, dec("20").Equal(updated.Quantity))
	assert.True(t, dec("6").Equal(updated.UnitCost))

	assert.Equal(t, product.ID, purchase.ProductID)
	assert.Equal(t, "Coffee beans", purchase.ProductName)
	assert.True(t, dec("70").Equal(purchase.Total))
	assert.Equal(t, "2024-05-03", purchase.Date.String())

	stored, err := GetProduct(ctx, db, product.ID)
	require.NoError(t, err)
	assert.True(t, dec("20").Equal(stored.Quantity))
	assert.True(t, dec("6").Equal(stored.UnitCost))

	purchases, err := ListPurchases(ctx, db)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, purchase.ID, purchases[0].ID)
}

func TestRecordPurchaseFailuresLeaveStateUnchanged(t *testing.T) {
	db := testutil.NewPostgres(t)
	ctx := context.Background()

	product := stockedProduct(t, db, "Tea", "4", "3")

	tests := []struct {
		name string
		req  inventory.PurchaseRequest
		kind error
	}{
		{"unknown product", inventory.PurchaseRequest{ProductID: 999999, Quantity: dec("1"), UnitPrice: dec("1"), Date: may(1)}, database.ErrNotFound},
		{"zero quantity", inventory.PurchaseRequest{ProductID: product.ID, Quantity: dec("0"), UnitPrice: dec("1"), Date: may(1)}, database.ErrInvalidArgument},
		{"negative price", inventory.PurchaseRequest{ProductID: product.ID, Quantity: dec("1"), UnitPrice: dec("-1"), Date: may(1)}, database.ErrInvalidArgument},
		{"missing date", inventory.PurchaseRequest{ProductID: product.ID, Quantity: dec("1"), UnitPrice: dec("1")}, database.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := RecordPurchase(ctx, db, tt.req)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	stored, err := GetProduct(ctx, db, product.ID)
	require.NoError(t, err)
	assert.True(t, dec("4").Equal(stored.Quantity))
	assert.True(t, dec("3").Equal(stored.UnitCost))

	purchases, err := ListPurchases(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, purchases)
}

func TestConcurrentPurchasesDoNotLoseUpdates(t *testing.T) {
	db := testutil.NewPostgres(t)
	ctx := context.Background()

	product := stockedProduct(t, db, "Rice", "0", "0")

	concurrency := 10
	var wg sync.WaitGroup
	errs := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, _, err := RecordPurchase(ctx, db, inventory.PurchaseRequest{
				ProductID: product.ID,
				Quantity:  dec("2"),
				UnitPrice: dec("4"),
				Date:      may(1),
			})
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := GetProduct(ctx, db, product.ID)
	require.NoError(t, err)
	assert.True(t, dec("20").Equal(stored.Quantity), "quantity %s", stored.Quantity)
	assert.True(t, dec("4").Equal(stored.UnitCost), "unit cost %s", stored.UnitCost)

	purchases, err := PurchasesForProduct(ctx, db, product.ID)
	require.NoError(t, err)
	assert.Len(t, purchases, concurrency)
}
