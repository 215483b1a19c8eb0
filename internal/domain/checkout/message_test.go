package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/premiumdrop/storefront/internal/domain/cart"
	"github.com/premiumdrop/storefront/internal/domain/location"
	"github.com/premiumdrop/storefront/internal/domain/product"
)

func lampItems() []cart.CartItem {
	return []cart.CartItem{{Key: "2", ProductID: 2, Name: "Lámpara LED", Price: 45000, Quantity: 2}}
}

func TestFormatOrderMessage_WithoutLocation(t *testing.T) {
	msg := FormatOrderMessage(OrderSummary{
		Reference:             "PD-20241108-ABCDEF12",
		Items:                 lampItems(),
		Totals:                cart.CartTotals{ItemCount: 1, TotalQuantity: 2, SubTotal: 90000, TotalAmount: 90000},
		FreeShippingThreshold: 200000,
	})

	want := `🛍️ *Nuevo Pedido - PremiumDrop*

*Referencia:* PD-20241108-ABCDEF12

*Productos solicitados:*
1. Lámpara LED
   Cantidad: 2
   Precio: $45.000 COP
   Subtotal: $90.000 COP

*Total de artículos:* 2
*Subtotal:* $90.000 COP
*Total final:* $90.000 COP

📍 *Información importante:*
• Los productos son importados directamente de fabricantes internacionales
• Tiempo de entrega: 7-15 días hábiles en Colombia
• Envío gratuito en pedidos superiores a $200.000 COP
• Proceso de importación personalizada

¿Podrías confirmar tu ciudad en Colombia para el envío?

¡Gracias por elegir PremiumDrop! 🚚
Nuestro equipo comercial te contactará con todos los detalles.`

	assert.Equal(t, want, msg)
}

func TestFormatOrderMessage_WithLocation(t *testing.T) {
	dept, _ := location.DefaultTable().Lookup("antioquia")
	est := &location.DeliveryEstimate{
		MinDays: 7, MaxDays: 10,
		Date:     time.Date(2024, 11, 22, 0, 0, 0, 0, time.UTC),
		DateText: "viernes, 22 de noviembre de 2024",
	}

	msg := FormatOrderMessage(OrderSummary{
		Items: append(lampItems(), cart.CartItem{Key: "1::negro", Name: "Audífonos Pro", VariantName: "Negro", Price: 95000, Quantity: 1}),
		Totals: cart.CartTotals{
			ItemCount: 2, TotalQuantity: 3, SubTotal: 185000,
			ShippingCost: 15000, TotalAmount: 200000, Department: "antioquia", City: "Medellín",
		},
		Department:            &dept,
		City:                  "Medellín",
		Estimate:              est,
		FreeShippingThreshold: 200000,
	})

	assert.Contains(t, msg, "2. Audífonos Pro - Negro\n   Cantidad: 1\n")
	assert.Contains(t, msg, "*Total de artículos:* 3\n")
	assert.Contains(t, msg, "\n*Información de envío:*\n• Destino: Medellín, Antioquia\n• Costo de envío: $15.000 COP\n*Total final:* $200.000 COP\n")
	assert.Contains(t, msg, "📍 *Información de entrega automática:*\n• Ubicación: Medellín, Antioquia\n• Tiempo estimado: 7-10 días hábiles\n")
	assert.Contains(t, msg, "• Entrega estimada: viernes, 22 de noviembre de 2024\n")
	assert.NotContains(t, msg, "¿Podrías confirmar tu ciudad")
	assert.NotContains(t, msg, "Referencia")
}

func TestFormatOrderMessage_FreeShipping(t *testing.T) {
	dept, _ := location.DefaultTable().Lookup("bogota")

	msg := FormatOrderMessage(OrderSummary{
		Items:                 lampItems(),
		Totals:                cart.CartTotals{TotalQuantity: 5, SubTotal: 225000, TotalAmount: 225000, FreeShipping: true},
		Department:            &dept,
		City:                  "Bogotá",
		FreeShippingThreshold: 200000,
	})

	assert.Contains(t, msg, "• Destino: Bogotá, Bogotá D.C.\n• Costo de envío: GRATIS\n")
	assert.NotContains(t, msg, "$12.000 COP")
	assert.NotContains(t, msg, "Entrega estimada")
}

func TestFormatOrderMessage_DepartmentWithoutCity(t *testing.T) {
	dept, _ := location.DefaultTable().Lookup("bogota")

	msg := FormatOrderMessage(OrderSummary{
		Items:      lampItems(),
		Totals:     cart.CartTotals{TotalQuantity: 2, SubTotal: 90000, ShippingCost: 12000, TotalAmount: 102000},
		Department: &dept,
	})

	assert.NotContains(t, msg, "Información de envío")
	assert.Contains(t, msg, "*Total final:* $102.000 COP")
	assert.Contains(t, msg, "¿Podrías confirmar tu ciudad en Colombia para el envío?")
}

func TestFormatProductInquiry(t *testing.T) {
	p := &product.Product{ID: 1, Name: "Audífonos Pro", Price: 89000, Rating: 4.5, Reviews: 120}

	msg := FormatProductInquiry(InquirySummary{Product: p})
	assert.Contains(t, msg, "📦 Audífonos Pro\n💰 Precio: $89.000 COP\n⭐ Calificación: 4.5/5 (120 reseñas)\n")
	assert.True(t, len(msg) > 0 && msg[len(msg)-len("😊"):] == "😊")

	dept, _ := location.DefaultTable().Lookup("valle")
	msg = FormatProductInquiry(InquirySummary{
		Product:    p,
		Variant:    &product.Variant{ID: "negro", Name: "Negro", Price: 95000},
		Department: &dept,
		City:       "Cali",
	})
	assert.Contains(t, msg, "📦 Audífonos Pro - Negro\n💰 Precio: $95.000 COP\n")
	assert.Contains(t, msg, "¡Gracias! 😊\n\n📍 *Información de entrega automática:*\n• Ubicación: Cali, Valle del Cauca\n")
	assert.Contains(t, msg, "• Costo de envío: $16.000 COP\n")
}

func TestWhatsAppURL(t *testing.T) {
	assert.Equal(t,
		"https://wa.me/573115477984?text=Hola%2C%20%C2%BFprecio%3F%20100%25%20(env%C3%ADo)!",
		WhatsAppURL("573115477984", "Hola, ¿precio? 100% (envío)!"))

	assert.Equal(t, "a%20b%2Bc%2Fd~*'", EncodeURIComponent("a b+c/d~*'"))
	assert.Equal(t, "%0A%26%3D%23", EncodeURIComponent("\n&=#"))
}
