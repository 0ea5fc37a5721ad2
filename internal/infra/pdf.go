package infra

// pdf.go — order receipt generated with go-pdf/fpdf and attached to the
// confirmation e-mail. Letter-size page with store header, order data,
// shipping address, item table and totals (original, coupon, customer
// discount, paid).

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"aceves/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateReciboPDF renders the receipt for order. When storagePath is not
// empty a copy is written to storagePath/recibo_{id}.pdf.
func GenerateReciboPDF(order *model.Order, storeName, storagePath string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 10, tr(storeName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Recibo de compra"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Order info ───────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, tr("Pedido: "+order.ID.String()), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Fecha: "+order.CreatedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr("Cliente: "+order.CustomerName+" <"+order.CustomerEmail+">"), "", 1, "L", false, 0, "")
	if order.PaypalOrderID != "" {
		pdf.CellFormat(contentW, 5, "PayPal: "+order.PaypalOrderID, "", 1, "L", false, 0, "")
	}

	addr := order.ShippingAddress.Data()
	if addr.Street != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 5, tr("Dirección de envío"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 5, tr(addr.Street), "", 1, "L", false, 0, "")
		pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("%s, %s, C.P. %s, %s", addr.City, addr.State, addr.PostalCode, addr.Country)), "", 1, "L", false, 0, "")
		if addr.References != "" {
			pdf.CellFormat(contentW, 5, tr("Referencias: "+addr.References), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	// ── Items ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.50
	col2 := contentW * 0.12
	col3 := contentW * 0.10
	col4 := contentW * 0.28

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 7, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Talla", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 7, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col4, 7, "Importe", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range order.Items {
		nombre := item.Name
		if len([]rune(nombre)) > 45 {
			nombre = string([]rune(nombre)[:44]) + "..."
		}
		talla := item.Size
		if talla == "" {
			talla = "-"
		}
		importe := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		pdf.CellFormat(col1, 6, tr(nombre), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, tr(talla), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, fmt.Sprintf("%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+importe.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	labelW := col1 + col2 + col3
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(labelW, 5, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 5, "$"+order.OriginalTotal.StringFixed(2), "", 1, "R", false, 0, "")
	if order.CouponDiscount.IsPositive() {
		label := tr("Cupón:")
		if order.CouponCode != nil {
			label = tr("Cupón " + *order.CouponCode + ":")
		}
		pdf.CellFormat(labelW, 5, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, "-$"+order.CouponDiscount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if order.UserDiscount.IsPositive() {
		pdf.CellFormat(labelW, 5, "Descuento cliente:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, "-$"+order.UserDiscount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 7, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "$"+order.TotalAmount.StringFixed(2)+" MXN", "", 1, "R", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(contentW, 5, tr("¡Gracias por tu compra!"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}

	if storagePath != "" {
		if err := os.MkdirAll(storagePath, 0o755); err != nil {
			return nil, fmt.Errorf("pdf: create storage dir: %w", err)
		}
		filePath := filepath.Join(storagePath, fmt.Sprintf("recibo_%s.pdf", order.ID))
		if err := os.WriteFile(filePath, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("pdf: write file: %w", err)
		}
	}
	return buf.Bytes(), nil
}
