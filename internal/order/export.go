package order

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"Order Number", "Date", "Customer", "Phone", "City", "Status", "Type",
	"Subtotal", "Installation", "Delivery", "Discount", "Total", "Currency",
}

// WriteXLSX renders the given orders as a spreadsheet for the back office.
func WriteXLSX(w io.Writer, orders []Order) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}

	for i, o := range orders {
		values := []any{
			o.OrderNumber,
			o.CreatedAt.Format("2006-01-02 15:04"),
			o.CustomerName,
			o.CustomerPhone,
			o.City,
			string(o.Status),
			o.OrderType,
			o.Subtotal,
			o.InstallationCost,
			o.DeliveryCost,
			o.Discount,
			o.TotalAmount,
			o.Currency,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "M", 16); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
