// internal/domain/checkout/message.go
package checkout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/premiumdrop/storefront/internal/domain/cart"
	"github.com/premiumdrop/storefront/internal/domain/location"
	"github.com/premiumdrop/storefront/internal/domain/product"
	"github.com/premiumdrop/storefront/internal/pkg/money"
)

// OrderSummary is everything the order message renders
type OrderSummary struct {
	Reference             string
	Items                 []cart.CartItem
	Totals                cart.CartTotals
	Department            *location.Department // nil when none selected
	City                  string
	Estimate              *location.DeliveryEstimate
	FreeShippingThreshold int64
}

func (s *OrderSummary) located() bool {
	return s.Department != nil && s.City != ""
}

// InquirySummary is everything the single-product inquiry renders
type InquirySummary struct {
	Product    *product.Product
	Variant    *product.Variant
	Department *location.Department
	City       string
	Estimate   *location.DeliveryEstimate
	// FreeShipping marks the delivery block cost as waived
	FreeShipping bool
}

// FormatOrderMessage renders the cart as the plain-text WhatsApp order
func FormatOrderMessage(s OrderSummary) string {
	var b strings.Builder

	b.WriteString("🛍️ *Nuevo Pedido - PremiumDrop*\n\n")
	if s.Reference != "" {
		fmt.Fprintf(&b, "*Referencia:* %s\n\n", s.Reference)
	}
	b.WriteString("*Productos solicitados:*\n")

	for i, item := range s.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, itemLabel(item.Name, item.VariantName))
		fmt.Fprintf(&b, "   Cantidad: %d\n", item.Quantity)
		fmt.Fprintf(&b, "   Precio: %s\n", money.FormatCOP(item.Price))
		fmt.Fprintf(&b, "   Subtotal: %s\n\n", money.FormatCOP(item.Subtotal()))
	}

	fmt.Fprintf(&b, "*Total de artículos:* %d\n", s.Totals.TotalQuantity)
	fmt.Fprintf(&b, "*Subtotal:* %s\n", money.FormatCOP(s.Totals.SubTotal))

	if s.located() {
		b.WriteString("\n*Información de envío:*\n")
		fmt.Fprintf(&b, "• Destino: %s, %s\n", s.City, s.Department.Name)
		fmt.Fprintf(&b, "• Costo de envío: %s\n", shippingLabel(s.Totals.ShippingCost))
	}

	fmt.Fprintf(&b, "*Total final:* %s\n\n", money.FormatCOP(s.Totals.TotalAmount))

	b.WriteString("📍 *Información importante:*\n")
	b.WriteString("• Los productos son importados directamente de fabricantes internacionales\n")
	b.WriteString("• Tiempo de entrega: 7-15 días hábiles en Colombia\n")
	fmt.Fprintf(&b, "• Envío gratuito en pedidos superiores a %s\n", money.FormatCOP(s.FreeShippingThreshold))
	b.WriteString("• Proceso de importación personalizada\n\n")

	if s.located() {
		writeDeliveryBlock(&b, s.Department, s.City, s.Estimate, s.Totals.FreeShipping)
		b.WriteString("\n")
	} else {
		b.WriteString("¿Podrías confirmar tu ciudad en Colombia para el envío?\n\n")
	}

	b.WriteString("¡Gracias por elegir PremiumDrop! 🚚\n")
	b.WriteString("Nuestro equipo comercial te contactará con todos los detalles.")
	return b.String()
}

// FormatProductInquiry renders the single-product WhatsApp inquiry
func FormatProductInquiry(s InquirySummary) string {
	var b strings.Builder
	p := s.Product

	price := p.Price
	name := p.Name
	if s.Variant != nil {
		name = itemLabel(p.Name, s.Variant.Name)
		if s.Variant.Price > 0 {
			price = s.Variant.Price
		}
	}

	b.WriteString("🛍️ *Consulta de Producto - PremiumDrop*\n\n")
	b.WriteString("*Producto de interés:*\n")
	fmt.Fprintf(&b, "📦 %s\n", name)
	fmt.Fprintf(&b, "💰 Precio: %s\n", money.FormatCOP(price))
	fmt.Fprintf(&b, "⭐ Calificación: %s/5 (%d reseñas)\n\n", strconv.FormatFloat(p.Rating, 'f', -1, 64), p.Reviews)
	b.WriteString("¡Hola! Me interesa este producto. ¿Podrías darme más información sobre:\n")
	b.WriteString("• Disponibilidad y origen del producto\n")
	b.WriteString("• Métodos de pago disponibles\n")
	b.WriteString("• Tiempo de entrega a Colombia (7-15 días)\n")
	b.WriteString("• Proceso de importación\n")
	b.WriteString("• Garantía y soporte\n\n")
	b.WriteString("📍 *Ubicación en Colombia:*\n")
	b.WriteString("Por favor, indica tu ciudad para calcular tiempo exacto de entrega.\n\n")
	b.WriteString("¡Gracias! 😊")

	if s.Department != nil && s.City != "" {
		writeDeliveryBlock(&b, s.Department, s.City, s.Estimate, s.FreeShipping)
	}
	return b.String()
}

// writeDeliveryBlock appends the automatic delivery information
func writeDeliveryBlock(b *strings.Builder, d *location.Department, city string, est *location.DeliveryEstimate, free bool) {
	cost := d.ShippingCost
	if free {
		cost = 0
	}

	b.WriteString("\n\n📍 *Información de entrega automática:*\n")
	fmt.Fprintf(b, "• Ubicación: %s, %s\n", city, d.Name)
	fmt.Fprintf(b, "• Tiempo estimado: %d-%d días hábiles\n", d.DeliveryDays.Min, d.DeliveryDays.Max)
	fmt.Fprintf(b, "• Costo de envío: %s\n", shippingLabel(cost))
	if est != nil {
		fmt.Fprintf(b, "• Entrega estimada: %s\n", est.DateText)
	}
}

func itemLabel(name, variant string) string {
	if variant == "" {
		return name
	}
	return name + " - " + variant
}

func shippingLabel(cost int64) string {
	if cost <= 0 {
		return "GRATIS"
	}
	return money.FormatCOP(cost)
}
