// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/premiumdrop/storefront/internal/config"
	"github.com/premiumdrop/storefront/internal/domain/location"
	"github.com/premiumdrop/storefront/internal/domain/order"
	"github.com/premiumdrop/storefront/internal/pkg/money"
)

var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"cop":      money.FormatCOP,
	"longDate": location.FormatLongDate,
}).Parse(receiptTemplate))

// Service handles PDF generation
type Service struct {
	config *config.Config
	loc    *time.Location
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	if cfg.External.WkhtmltopdfPath != "" {
		wkhtmltopdf.SetPath(cfg.External.WkhtmltopdfPath)
	}
	return &Service{
		config: cfg,
		loc:    cfg.Location(),
	}
}

// ReceiptData represents the data passed to the receipt template
type ReceiptData struct {
	Order     *order.Order
	IssuedAt  time.Time
	OrderedAt time.Time
	Company   CompanyInfo
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string
	Phone   string
	Email   string
	Website string
}

// GenerateReceipt renders an order receipt as PDF
func (s *Service) GenerateReceipt(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderReceiptHTML(o)
	if err != nil {
		return nil, err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeLetter)
	pdfg.Title.Set("Pedido " + o.Reference)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.Encoding.Set("utf-8")
	page.FooterRight.Set("[page]/[topage]")
	page.FooterFontSize.Set(8)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderReceiptHTML renders the receipt page that GenerateReceipt converts
func (s *Service) RenderReceiptHTML(o *order.Order) ([]byte, error) {
	data := ReceiptData{
		Order:     o,
		IssuedAt:  time.Now().In(s.loc),
		OrderedAt: o.CreatedAt.In(s.loc),
		Company: CompanyInfo{
			Name:    s.config.App.CompanyName,
			Phone:   s.config.App.CompanyPhone,
			Email:   s.config.App.CompanyEmail,
			Website: s.config.App.CompanyWebsite,
		},
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute receipt template: %w", err)
	}
	return buf.Bytes(), nil
}

const receiptTemplate = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<title>Pedido {{.Order.Reference}}</title>
<style>
  body { font-family: Arial, sans-serif; color: #222; padding: 24px; }
  h1 { font-size: 22px; margin: 0 0 4px; }
  .muted { color: #777; font-size: 12px; }
  table { width: 100%; border-collapse: collapse; margin-top: 18px; }
  th, td { padding: 8px; border-bottom: 1px solid #eee; text-align: left; font-size: 13px; }
  td.num, th.num { text-align: right; }
  .totals td { border: none; }
  .total { font-weight: bold; font-size: 15px; }
</style>
</head>
<body>
  <h1>{{.Company.Name}}</h1>
  <div class="muted">{{.Company.Website}} · {{.Company.Email}} · {{.Company.Phone}}</div>

  <h2>Pedido {{.Order.Reference}}</h2>
  <div>Fecha del pedido: {{longDate .OrderedAt}}</div>
  <div>Estado: {{.Order.Status}}</div>
  {{if .Order.Department}}<div>Destino: {{.Order.City}}, {{.Order.DepartmentName}}</div>{{end}}
  {{with .Order.EstimatedDelivery}}<div>Entrega estimada: {{longDate .}}</div>{{end}}

  <table>
    <thead>
      <tr><th>Producto</th><th class="num">Cantidad</th><th class="num">Precio</th><th class="num">Subtotal</th></tr>
    </thead>
    <tbody>
    {{range .Order.Items}}
      <tr>
        <td>{{.Name}}{{if .VariantName}} - {{.VariantName}}{{end}}</td>
        <td class="num">{{.Quantity}}</td>
        <td class="num">{{cop .Price}}</td>
        <td class="num">{{cop .TotalPrice}}</td>
      </tr>
    {{end}}
    </tbody>
  </table>

  <table class="totals">
    <tr><td class="num">Subtotal</td><td class="num">{{cop .Order.SubtotalAmount}}</td></tr>
    <tr><td class="num">Envío</td><td class="num">{{if .Order.FreeShipping}}GRATIS{{else}}{{cop .Order.ShippingAmount}}{{end}}</td></tr>
    <tr class="total"><td class="num">Total</td><td class="num">{{cop .Order.TotalAmount}}</td></tr>
  </table>

  <p class="muted">Documento generado el {{longDate .IssuedAt}}. Este comprobante no es una factura electrónica.</p>
</body>
</html>
`
