// Package invoice renders an order into its PDF invoice artifact.
//
// Rendering is a pure function of the order snapshot: the producer must
// have resolved item names and staff references beforehand, and two
// renders of the same snapshot yield byte-identical documents.
package invoice

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"sportshop-be/internal/order"

	"github.com/go-pdf/fpdf"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the finished document in memory. The buffer is only
// handed back once the document trailer has been written, so a failed
// render never exposes partial bytes.
func (r *Renderer) Render(o *order.Order) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.RenderTo(o, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderTo writes the invoice for o to w. Field order is fixed: order
// code, customer identity, payment method, payment status, delivery
// status, overall status, timestamps, total, then one block per item.
func (r *Renderer) RenderTo(o *order.Order, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")

	// pin the metadata clock to the snapshot so output is reproducible
	pdf.SetCreationDate(o.UpdatedAt.UTC())
	pdf.SetModificationDate(o.UpdatedAt.UTC())
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	writeField := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}

	writeField("Order code", o.Code)
	writeField("Customer", o.Customer.FullName)
	writeField("Phone", o.Customer.Phone)
	writeField("Address", o.Customer.Address)
	writeField("Email", o.Customer.Email)
	writeField("Payment method", o.PaymentMethod)
	writeField("Payment status", string(o.PaymentStatus))
	writeField("Delivery status", string(o.DeliveryStatus))
	writeField("Status", string(o.Status))
	writeField("Created at", o.CreatedAt.UTC().Format(time.RFC3339))
	writeField("Updated at", o.UpdatedAt.UTC().Format(time.RFC3339))
	writeField("Total", fmt.Sprintf("%d", o.TotalPrice))
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 8, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(45, 8, "Variant", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(0, 8, "Line total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range o.Items {
		lineTotal := int64(item.Quantity) * item.UnitPrice
		pdf.CellFormat(60, 7, item.ProductName, "", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, item.VariantName, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("%d", lineTotal), "", 1, "R", false, 0, "")
	}

	return pdf.Output(w)
}
