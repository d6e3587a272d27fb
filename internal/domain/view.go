package domain

// CartItemView is one displayable cart line with product data and pricing
// resolved from the catalog.
type CartItemView struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// CartView is the fully resolved cart. Items whose product or price could not
// be resolved upstream are absent and do not contribute to Total.
type CartView struct {
	Items []CartItemView `json:"items"`
	Total float64        `json:"total"`
}
