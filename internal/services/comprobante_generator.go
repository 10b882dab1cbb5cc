package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/sergio-centurion/verduleria-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ComprobanteGenerator genera el comprobante PDF de una compra
type ComprobanteGenerator struct {
	logger *logrus.Logger
}

// NewComprobanteGenerator crea una nueva instancia del generador
func NewComprobanteGenerator(logger *logrus.Logger) *ComprobanteGenerator {
	return &ComprobanteGenerator{
		logger: logger,
	}
}

// GenerarPDF genera el comprobante de la venta con sus items
func (g *ComprobanteGenerator) GenerarPDF(venta *models.Venta, comprador string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Header con color de fondo
	pdf.SetFillColor(39, 174, 96) // Verde verdulería
	pdf.Rect(0, 0, 210, 40, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 24)
	pdf.Cell(190, 15, "COMPROBANTE DE COMPRA")
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(190, 10, fmt.Sprintf("#%s", venta.NumeroPedido))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(190, 8, fmt.Sprintf("Fecha: %s", venta.Fecha.Format("02/01/2006 15:04")))
	pdf.Ln(8)

	pdf.SetTextColor(44, 62, 80)
	pdf.SetFillColor(255, 255, 255)

	// Datos del comprador
	pdf.SetY(50)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(95, 8, "COMPRADOR")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(95, 6, comprador)
	pdf.Ln(6)

	if venta.TipoTarjeta != nil && venta.Ultimos4 != nil {
		pdf.Cell(95, 6, fmt.Sprintf("Pago: %s terminada en %s", *venta.TipoTarjeta, *venta.Ultimos4))
		pdf.Ln(6)
	}

	if venta.Estado == models.VentaCancelada {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(192, 57, 43)
		pdf.Cell(95, 8, "COMPRA CANCELADA")
		pdf.Ln(8)
		pdf.SetTextColor(44, 62, 80)
	}

	// Tabla de items
	pdf.SetY(85)
	pdf.SetFillColor(236, 240, 241)
	pdf.SetFont("Arial", "B", 10)

	colWidths := []float64{80, 30, 40, 40}
	colHeaders := []string{"Producto", "Cantidad", "Precio Unit.", "Subtotal"}

	for i, header := range colHeaders {
		pdf.CellFormat(colWidths[i], 10, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 9)
	for i, item := range venta.Items {
		if i%2 == 0 {
			pdf.SetFillColor(248, 249, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		subtotal := item.PrecioUnitario.Mul(decimal.NewFromInt(int64(item.Cantidad)))

		pdf.CellFormat(colWidths[0], 8, item.NombreProducto, "1", 0, "L", true, 0, "")
		pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%d", item.Cantidad), "1", 0, "C", true, 0, "")
		pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("$%s", item.PrecioUnitario.StringFixed(2)), "1", 0, "R", true, 0, "")
		pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("$%s", subtotal.StringFixed(2)), "1", 0, "R", true, 0, "")
		pdf.Ln(8)
	}

	// Total
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(110, 10, "", "", 0, "", false, 0, "")
	pdf.CellFormat(40, 10, "TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 10, fmt.Sprintf("$%s", venta.Total.StringFixed(2)), "1", 0, "R", false, 0, "")
	pdf.Ln(20)

	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(127, 140, 141)
	pdf.Cell(190, 6, "Gracias por su compra")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error generating PDF: %w", err)
	}

	g.logger.WithFields(logrus.Fields{
		"numero_pedido": venta.NumeroPedido,
		"pdf_size":      buf.Len(),
	}).Info("Receipt PDF generated")

	return buf.Bytes(), nil
}
