package orders

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"
)

// RenderOrderPDF renders a printable withdrawal slip with a code128 barcode
// of the order number.
func RenderOrderPDF(order Detail) ([]byte, error) {
	if strings.TrimSpace(order.OrderNumber) == "" {
		return nil, fmt.Errorf("order number is required")
	}
	barcodePNG, err := renderCode128PNG(order.OrderNumber, 1200, 220)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Order "+order.OrderNumber, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, "Withdrawal Order", "", 1, "C", false, 0, "")

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	imageName := "order-barcode-" + order.OrderNumber
	pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
	pageW, _ := pdf.GetPageSize()
	imgW := 150.0
	imgH := 28.0
	pdf.ImageOptions(imageName, (pageW-imgW)/2, pdf.GetY()+2, imgW, imgH, false, opt, 0, "")
	pdf.SetY(pdf.GetY() + imgH + 4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, order.OrderNumber, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	recipient := strings.TrimSpace(order.RecipientName)
	if recipient == "" {
		recipient = "-"
	}
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Date: "+order.CreatedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Recipient: "+recipient, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Issued by: "+order.User, "", 1, "L", false, 0, "")
	if notes := strings.TrimSpace(order.Notes); notes != "" {
		pdf.MultiCell(0, 6, "Notes: "+notes, "", "L", false)
	}
	pdf.Ln(4)

	colW := []float64{70, 40, 40, 40}
	pdf.SetFont("Helvetica", "B", 11)
	for i, h := range []string{"Product", "Before", "Taken", "After"} {
		pdf.CellFormat(colW[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range order.Lines {
		pdf.CellFormat(colW[0], 7, line.ProductNumber, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[1], 7, fmt.Sprintf("%d", line.OldQuantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[2], 7, fmt.Sprintf("%d", line.QuantityTaken), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[3], 7, fmt.Sprintf("%d", line.NewQuantity), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colW[0], 8, fmt.Sprintf("%d products", order.TotalProducts), "1", 0, "L", false, 0, "")
	pdf.CellFormat(colW[1], 8, "", "1", 0, "R", false, 0, "")
	pdf.CellFormat(colW[2], 8, fmt.Sprintf("%d", order.TotalQuantities), "1", 0, "R", false, 0, "")
	pdf.CellFormat(colW[3], 8, "", "1", 1, "R", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, toNRGBA(scaled)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
