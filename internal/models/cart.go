package models

// Cart appartient soit à un utilisateur connecté, soit à un invité (jamais les deux)
type Cart struct {
	UserID      string     `json:"user_id,omitempty"`
	GuestCartID string     `json:"guest_cart_id,omitempty"`
	Items       []CartItem `json:"items"`
}

type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Discount  float64 `json:"discount"` // remise en % (0-100)
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// UnitPrice retourne le prix unitaire remisé
func (i CartItem) UnitPrice() float64 {
	return i.Price * (1 - i.Discount/100)
}
