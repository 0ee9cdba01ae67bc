package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"ecu-stand/internal/features/orders/domain"
	"ecu-stand/internal/features/orders/ports"
)

var customerTemplate = template.Must(template.New("customer").Parse(`
<div style="font-family: system-ui, -apple-system, Segoe UI, Roboto, Arial; line-height: 1.5;">
  <h2 style="margin: 0 0 12px;">Faleminderit, {{.FirstName}}!</h2>
  <p style="margin: 0 0 16px;">Porosia juaj u pranua me sukses. Do t'ju kontaktojmë së shpejti.</p>
  <div style="padding: 12px 14px; border: 1px solid #eee; border-radius: 10px;">
    <p style="margin: 0 0 6px;"><strong>Order ID:</strong> {{.OrderID}}</p>
    <p style="margin: 0 0 6px;"><strong>Sasia:</strong> {{.Quantity}}</p>
    <p style="margin: 0 0 6px;"><strong>Transporti:</strong> {{.Shipping}}</p>
    <p style="margin: 0;"><strong>Totali:</strong> {{.Total}}</p>
  </div>
  <p style="margin: 16px 0 0; color: #555; font-size: 13px;">Nëse keni pyetje, përgjigjuni këtij emaili.</p>
</div>
`))

type customerView struct {
	FirstName string
	OrderID   string
	Quantity  int
	Shipping  string
	Total     string
}

// customerEmail is the Albanian confirmation sent to the buyer.
func customerEmail(from, shopName string, order domain.Order, pricing domain.PricingResult) (ports.Email, error) {
	var html bytes.Buffer
	err := customerTemplate.Execute(&html, customerView{
		FirstName: order.FirstName,
		OrderID:   order.ID,
		Quantity:  order.Quantity,
		Shipping:  domain.FormatEUR(pricing.ShippingCost),
		Total:     domain.FormatEUR(pricing.Total),
	})
	if err != nil {
		return ports.Email{}, fmt.Errorf("failed to render customer email: %w", err)
	}

	return ports.Email{
		From:    from,
		To:      order.Email,
		Subject: fmt.Sprintf("Porosia u pranua (#%s) — %s", order.ID, shopName),
		HTML:    html.String(),
	}, nil
}

// ownerEmail is the plain-text summary sent to the shop owner.
func ownerEmail(from, to string, order domain.Order, pricing domain.PricingResult, notes *string) ports.Email {
	lines := []string{
		fmt.Sprintf("New order received: #%s", order.ID),
		fmt.Sprintf("Name: %s %s", order.FirstName, order.LastName),
		fmt.Sprintf("Email: %s", order.Email),
		fmt.Sprintf("Phone: %s", order.PhoneNumber),
		fmt.Sprintf("Address: %s, %s, %s", order.Address, order.City, order.Country),
		fmt.Sprintf("Quantity: %d", order.Quantity),
		fmt.Sprintf("Shipping: %s", domain.FormatEUR(pricing.ShippingCost)),
		fmt.Sprintf("Total: %s", domain.FormatEUR(pricing.Total)),
	}
	if notes != nil && *notes != "" {
		lines = append(lines, fmt.Sprintf("Notes: %s", *notes))
	}
	lines = append(lines, fmt.Sprintf("Created: %s", order.Date))

	return ports.Email{
		From:    from,
		To:      to,
		Subject: fmt.Sprintf("New order received (#%s)", order.ID),
		Text:    strings.Join(lines, "\n"),
	}
}
