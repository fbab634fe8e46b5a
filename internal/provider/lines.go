package provider

import (
	"strings"

	"commerce-mollie/internal/commerce"
	"commerce-mollie/internal/config"
	"commerce-mollie/internal/mollie"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// assembleLines translates an order into mollie payment lines. The sum of
// all generated line totals equals the order's transaction amount: every
// line, fee and adjustment the order carries becomes its own line.
func assembleLines(
	order *commerce.Order,
	currency commerce.Currency,
	paymentMethod commerce.PaymentMethod,
	shippingMethod *commerce.ShippingMethod,
	settings config.ProviderSettings,
) []mollie.PaymentLine {
	code := currency.Code
	lines := make([]mollie.PaymentLine, 0, len(order.OrderLines)+4)

	// Order lines, priced without adjustments. An order line can have sub
	// lines and various discounts and fees, so rather than adjusting each
	// line we emit a single adjustment line per primary order line.
	for _, ol := range order.OrderLines {
		line := mollie.PaymentLine{
			Sku:         ol.Sku,
			Description: ol.Name,
			Quantity:    ol.Quantity,
			Type:        mollie.LineTypePhysical,
			UnitPrice:   mollie.NewAmount(code, ol.UnitPrice.WithoutAdjustments.WithTax),
			VatRate:     percentRate(ol.TaxRate),
			VatAmount:   mollie.NewAmount(code, ol.TotalPrice.WithoutAdjustments.Tax),
			TotalAmount: mollie.NewAmount(code, ol.TotalPrice.WithoutAdjustments.WithTax),
		}

		if alias := settings.OrderLineProductTypePropertyAlias; alias != "" {
			if v := ol.Property(alias); v != "" {
				line.Type = v
			}
		}

		if alias := settings.OrderLineProductCategoryPropertyAlias; alias != "" {
			if v := ol.Property(alias); v != "" {
				line.Categories = splitTrim(v)
			}
		}

		lines = append(lines, line)

		if !ol.TotalPrice.TotalAdjustment.WithTax.IsZero() {
			name := strings.TrimSpace(ol.Name + " " + discountOrFee(ol.TotalPrice.TotalAdjustment.WithTax))
			lines = append(lines, adjustmentPriceLine(ol.TotalPrice.TotalAdjustment, name, 1, code))
		}
	}

	lines = append(lines, adjustmentLines(order.SubtotalPrice.Adjustments, "Subtotal", 1, code)...)

	// Payment method fee
	if !order.Payment.TotalPrice.WithoutAdjustments.WithTax.IsZero() {
		name := paymentMethod.Name + " Charge"
		lines = append(lines, mollie.PaymentLine{
			Sku:         skuOrDefault(paymentMethod.Sku, "PF001"),
			Description: name,
			Type:        mollie.LineTypeSurcharge,
			Quantity:    1,
			UnitPrice:   mollie.NewAmount(code, order.Payment.TotalPrice.WithoutAdjustments.WithTax),
			VatRate:     percentRate(order.Payment.TaxRate),
			VatAmount:   mollie.NewAmount(code, order.Payment.TotalPrice.WithoutAdjustments.Tax),
			TotalAmount: mollie.NewAmount(code, order.Payment.TotalPrice.WithoutAdjustments.WithTax),
		})
		lines = append(lines, adjustmentLines(order.Payment.TotalPrice.Adjustments, name, 1, code)...)
	}

	// Shipping method fee
	if shippingMethod != nil && !order.Shipping.TotalPrice.WithoutAdjustments.WithTax.IsZero() {
		name := shippingMethod.Name + " Charge"
		lines = append(lines, mollie.PaymentLine{
			Sku:         skuOrDefault(shippingMethod.Sku, "SF001"),
			Description: name,
			Type:        mollie.LineTypeShippingFee,
			Quantity:    1,
			UnitPrice:   mollie.NewAmount(code, order.Shipping.TotalPrice.WithoutAdjustments.WithTax),
			VatRate:     percentRate(order.Shipping.TaxRate),
			VatAmount:   mollie.NewAmount(code, order.Shipping.TotalPrice.WithoutAdjustments.Tax),
			TotalAmount: mollie.NewAmount(code, order.Shipping.TotalPrice.WithoutAdjustments.WithTax),
		})
		lines = append(lines, adjustmentLines(order.Shipping.TotalPrice.Adjustments, name, 1, code)...)
	}

	lines = append(lines, adjustmentLines(order.TotalPrice.Adjustments, "Total", 1, code)...)

	// Gift cards redeemed against the transaction amount
	for _, adj := range order.TransactionAmount.Adjustments {
		if adj.GiftCardCode == "" || adj.Amount.IsZero() {
			continue
		}
		lines = append(lines, mollie.PaymentLine{
			Sku:         "GIFT_CARD",
			Description: "Gift Card - " + adj.GiftCardCode,
			Type:        mollie.LineTypeGiftCard,
			Quantity:    1,
			UnitPrice:   mollie.NewAmount(code, adj.Amount),
			VatRate:     "0.00",
			VatAmount:   mollie.NewAmount(code, decimal.Zero),
			TotalAmount: mollie.NewAmount(code, adj.Amount),
		})
	}

	// Remaining flat transaction adjustments
	for _, adj := range order.TransactionAmount.Adjustments {
		if adj.GiftCardCode != "" || adj.Amount.IsZero() {
			continue
		}
		isDiscount := adj.Amount.IsNegative()
		lines = append(lines, mollie.PaymentLine{
			Sku:         discountOrSurchargeSku(isDiscount),
			Description: "Transaction " + discountOrFee(adj.Amount) + " - " + adj.Name,
			Type:        discountOrSurchargeType(isDiscount),
			Quantity:    1,
			UnitPrice:   mollie.NewAmount(code, adj.Amount),
			VatRate:     "0.00",
			VatAmount:   mollie.NewAmount(code, decimal.Zero),
			TotalAmount: mollie.NewAmount(code, adj.Amount),
		})
	}

	return lines
}

// buildBillingAddress maps customer info plus any configured property aliases
// to a mollie billing address. Unconfigured aliases leave fields unset.
func buildBillingAddress(order *commerce.Order, country commerce.Country, settings config.ProviderSettings) *mollie.Address {
	address := &mollie.Address{
		GivenName:  order.Customer.FirstName,
		FamilyName: order.Customer.LastName,
		Email:      order.Customer.Email,
		Country:    country.Code,
	}

	if alias := settings.BillingAddressLine1PropertyAlias; alias != "" {
		address.StreetAndNumber = order.Property(alias)
	}

	if alias := settings.BillingAddressCityPropertyAlias; alias != "" {
		address.City = order.Property(alias)
	}

	if alias := settings.BillingAddressStatePropertyAlias; alias != "" {
		address.Region = order.Property(alias)
	}

	if alias := settings.BillingAddressZipCodePropertyAlias; alias != "" {
		address.PostalCode = order.Property(alias)
	}

	return address
}

// adjustmentLines emits one line per non-zero adjustment, named
// "<prefix> Discount|Fee - <adjustment name>".
func adjustmentLines(adjustments []commerce.PriceAdjustment, namePrefix string, quantity int, code string) []mollie.PaymentLine {
	var out []mollie.PaymentLine
	for _, adj := range adjustments {
		if adj.Price.WithTax.IsZero() {
			continue
		}
		name := strings.TrimSpace(namePrefix + " " + discountOrFee(adj.Price.WithTax) + " - " + adj.Name)
		out = append(out, adjustmentPriceLine(adj.Price, name, quantity, code))
	}
	return out
}

func adjustmentPriceLine(price commerce.Price, name string, quantity int, code string) mollie.PaymentLine {
	isDiscount := price.WithTax.IsNegative()
	qty := decimal.NewFromInt(int64(quantity))

	return mollie.PaymentLine{
		Sku:         discountOrSurchargeSku(isDiscount),
		Description: name,
		Type:        discountOrSurchargeType(isDiscount),
		Quantity:    quantity,
		UnitPrice:   mollie.NewAmount(code, price.WithTax),
		VatRate:     vatRate(price),
		VatAmount:   mollie.NewAmount(code, price.Tax.Mul(qty)),
		TotalAmount: mollie.NewAmount(code, price.WithTax.Mul(qty)),
	}
}

// vatRate derives the rate from the tax split: (withTax/withoutTax - 1) * 100.
// Amount-only prices with no net value carry a fixed "0.00" rate.
func vatRate(price commerce.Price) string {
	if price.WithoutTax.IsZero() {
		return "0.00"
	}
	rate := price.WithTax.Div(price.WithoutTax).Sub(one)
	return percentRate(rate)
}

// percentRate formats a fractional rate as a two-decimal percentage string,
// locale independent.
func percentRate(fraction decimal.Decimal) string {
	return fraction.Mul(decimal.NewFromInt(100)).StringFixed(2)
}

func discountOrFee(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "Discount"
	}
	return "Fee"
}

func discountOrSurchargeSku(isDiscount bool) string {
	if isDiscount {
		return "DISCOUNT"
	}
	return "SURCHARGE"
}

func discountOrSurchargeType(isDiscount bool) string {
	if isDiscount {
		return mollie.LineTypeDiscount
	}
	return mollie.LineTypeSurcharge
}

func skuOrDefault(sku, fallback string) string {
	if strings.TrimSpace(sku) == "" {
		return fallback
	}
	return sku
}

func splitTrim(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
