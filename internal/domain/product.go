package domain

// Product is a read-only projection of a provider catalog entry. The cart
// never stores these; they are resolved live at display and checkout time.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// Price is the effective unit price of a product at the moment it was read:
// the most recent active price the provider reports.
type Price struct {
	ID         string `json:"id"`
	UnitAmount int64  `json:"unit_amount"` // minor units
	Currency   string `json:"currency"`
	Active     bool   `json:"active"`
}
