package domain

import "github.com/shopspring/decimal"

var (
	// BasePrice is the unit price of one stand in EUR.
	BasePrice = decimal.RequireFromString("14.99")
	// SurchargeShipping applies to countries outside Kosovo.
	SurchargeShipping = decimal.RequireFromString("5.00")
)

// surchargeCountries pay SurchargeShipping once per order.
var surchargeCountries = map[string]bool{
	CountryAlbania:        true,
	CountryNorthMacedonia: true,
}

// PricingResult is derived from country and quantity and never stored.
type PricingResult struct {
	BasePrice    decimal.Decimal
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
}

// Quote is the JSON shape of a PricingResult.
type Quote struct {
	BasePrice    float64 `json:"basePrice"`
	ShippingCost float64 `json:"shippingCost"`
	TotalPrice   float64 `json:"totalPrice"`
}

// Price computes shipping and total for an order. Quantities below 1 are
// priced as 1. This is the only place the formula lives.
func Price(country string, quantity int) PricingResult {
	if quantity < 1 {
		quantity = 1
	}

	shipping := decimal.Zero
	if surchargeCountries[country] {
		shipping = SurchargeShipping
	}

	return PricingResult{
		BasePrice:    BasePrice,
		ShippingCost: shipping,
		Total:        BasePrice.Mul(decimal.NewFromInt(int64(quantity))).Add(shipping),
	}
}

// Quote converts the result for JSON responses.
func (p PricingResult) Quote() Quote {
	return Quote{
		BasePrice:    p.BasePrice.Round(2).InexactFloat64(),
		ShippingCost: p.ShippingCost.Round(2).InexactFloat64(),
		TotalPrice:   p.Total.Round(2).InexactFloat64(),
	}
}

// FormatEUR renders an amount like "19.99€".
func FormatEUR(d decimal.Decimal) string {
	return d.StringFixed(2) + "€"
}
