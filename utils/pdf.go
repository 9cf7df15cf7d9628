package utils

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/tabletap/ordering-backend/models"
)

// GenerateReceiptPDF renders a simple A6 receipt for an order.
func GenerateReceiptPDF(tenant models.Tenant, order models.Order, dishNames map[uint]string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A6", "")
	pdf.SetMargins(8, 8, 8)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 6, tenant.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	if tenant.Address != "" {
		pdf.CellFormat(0, 4, tenant.Address, "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Order %s", order.DisplayOrder), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, order.CreatedAt.Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(50, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(10, 5, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 5, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range order.OrderItems {
		name := dishNames[item.DishID]
		if name == "" {
			name = fmt.Sprintf("Dish #%d", item.DishID)
		}
		pdf.CellFormat(50, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(10, 5, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 5, FormatCurrencyVND(item.UnitPrice*float64(item.Quantity)), "", 1, "R", false, 0, "")
	}

	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 6, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, FormatCurrencyVND(order.TotalAmount), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
