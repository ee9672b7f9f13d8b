package order

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	orders := []Order{
		{
			OrderNumber:      "CMD-20260801-a1b2c3",
			CustomerName:     "Jean Dupont",
			CustomerPhone:    "+237699000000",
			City:             "Douala",
			Status:           StatusPending,
			OrderType:        "WITH_INSTALLATION",
			Subtotal:         8000,
			InstallationCost: 25000,
			DeliveryCost:     5000,
			TotalAmount:      38000,
			Currency:         "XAF",
			CreatedAt:        time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, orders))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Order Number", rows[0][0])
	require.Equal(t, "CMD-20260801-a1b2c3", rows[1][0])
	require.Equal(t, "PENDING", rows[1][5])
	require.Equal(t, "38000", rows[1][11])
}

func TestWriteXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
