package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColumnName(t *testing.T) {
	assert.Equal(t, "currentstock", normalizeColumnName(" Current Stock "))
	assert.Equal(t, "currentstock", normalizeColumnName("current_stock"))
	assert.Equal(t, "expirydate", normalizeColumnName("Expiry-Date"))
}

func TestReadProducts(t *testing.T) {
	input := "\ufeffID,Name,SKU,Category,Price,Cost,Current Stock,Minimum Stock,Maximum Stock,Expiry Date\n" +
		"p1,Serum,SKU-1,skincare,\"1,200.50\",8,5,10,100,2024-03-01\n" +
		",,,,,,,,,\n" +
		"p2,Toner,SKU-2,skincare,15,6,40,10,100,\n"

	products, err := ReadProducts(strings.NewReader(input), time.UTC)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, 1200.50, products[0].Price)
	assert.Equal(t, 5, products[0].CurrentStock)
	require.NotNil(t, products[0].ExpiryDate)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *products[0].ExpiryDate)
	assert.Nil(t, products[1].ExpiryDate)
}

func TestReadProductsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty", "", "empty"},
		{"missing column", "id,name\np1,Serum\n", "sku"},
		{"bad number", "id,name,sku,price\np1,Serum,S1,abc\n", "line 2"},
		{"fractional stock", "id,name,sku,current_stock\np1,Serum,S1,1.5\n", "whole number"},
		{"negative stock", "id,name,sku,current_stock\np1,Serum,S1,-1\n", "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadProducts(strings.NewReader(tt.input), time.UTC)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReadSales(t *testing.T) {
	input := "product_id,date,quantity\np1,2024-01-01,3\np1,2024-01-02,4\np2,2024-01-01T08:00:00Z,1\n"

	history, err := ReadSales(strings.NewReader(input), time.UTC)
	require.NoError(t, err)
	assert.Len(t, history["p1"], 2)
	assert.Equal(t, 4, history["p1"][1].Quantity)
	assert.Len(t, history["p2"], 1)
}

func TestReadOrdersFoldsLines(t *testing.T) {
	input := "order_id,created_at,status,customer_name,customer_email,product_id,quantity,unit_price,subtotal\n" +
		"o1,2024-01-01,Delivered,Ana,ana@example.com,p1,1,100,\n" +
		"o2,2024-01-02,delivered,Budi,budi@example.com,p2,2,100,200\n" +
		"o1,2024-01-01,delivered,Ana,ana@example.com,p2,3,0.1,\n"

	orders, err := ReadOrders(strings.NewReader(input), time.UTC)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "o1", orders[0].ID)
	assert.Equal(t, domain.OrderStatusDelivered, orders[0].Status)
	require.Len(t, orders[0].Items, 2)
	assert.Equal(t, 0.3, orders[0].Items[1].Subtotal)
	assert.Equal(t, 100.3, orders[0].TotalAmount)

	assert.Equal(t, 200.0, orders[1].TotalAmount)
	assert.Equal(t, "budi@example.com", orders[1].Customer.Email)
}

func TestReadOrdersRejectsUnknownStatus(t *testing.T) {
	input := "order_id,created_at,status,customer_email,product_id,quantity,unit_price\n" +
		"o1,2024-01-01,lost,ana@example.com,p1,1,100\n"

	_, err := ReadOrders(strings.NewReader(input), time.UTC)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")
}
