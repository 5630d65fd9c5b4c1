package catalog

type Product struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	TimeLeft int    `json:"timeLeft"`
}

type CartItem struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// AddToCartRequest keeps price loosely typed: clients send numbers or
// numeric strings.
type AddToCartRequest struct {
	ProductID int         `json:"productId"`
	Price     interface{} `json:"price"`
}

// IsActive reports whether the auction for the product is still running.
func (p Product) IsActive() bool {
	return p.TimeLeft > 0
}
