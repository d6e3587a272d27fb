package domain

// Cart is the session-scoped aggregate. ID equals the owning session key and
// never changes after creation. Items holds at most one entry per product.
type Cart struct {
	ID    string               `json:"id" bson:"_id"`
	Items map[string]*CartItem `json:"items" bson:"items"`
}

// CartItem references a catalog product by ID. Quantity is always >= 1; an
// item that would reach zero is removed from the cart instead.
type CartItem struct {
	ProductID string `json:"product_id" bson:"product_id"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

func NewCart(id string) *Cart {
	return &Cart{
		ID:    id,
		Items: make(map[string]*CartItem),
	}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy so stores can hand out value semantics without
// sharing item pointers with the caller.
func (c *Cart) Clone() *Cart {
	clone := NewCart(c.ID)
	for id, item := range c.Items {
		copied := *item
		clone.Items[id] = &copied
	}
	return clone
}
