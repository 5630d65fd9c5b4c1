package catalog

import (
	"sync"

	"showroom-presence-svc/src/internal/config"
	"showroom-presence-svc/src/internal/models"

	"github.com/sirupsen/logrus"
)

type Service interface {
	Products() []Product
	Cart() []CartItem
	AddToCart(productID int, price float64) ([]CartItem, error)
	RemoveFromCart(index int) ([]CartItem, error)
	TickTimers() []Product
	CartItems() int
	ProductsCount() int
}

type catalogService struct {
	mu       sync.Mutex
	products []Product
	cart     []CartItem
}

func NewService(seeds []config.ProductSeed) Service {
	products := make([]Product, len(seeds))
	for i, seed := range seeds {
		products[i] = Product{
			ID:       seed.ID,
			Name:     seed.Name,
			Image:    seed.Image,
			TimeLeft: seed.TimeLeft,
		}
	}

	logrus.WithField("products", len(products)).Debug("Catalog initialized")

	return &catalogService{
		products: products,
		cart:     []CartItem{},
	}
}

func (s *catalogService) Products() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Product(nil), s.products...)
}

func (s *catalogService) Cart() []CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cartCopy()
}

func (s *catalogService) AddToCart(productID int, price float64) ([]CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.findProduct(productID)
	if !ok {
		return nil, models.ErrProductNotFound
	}
	if !(price > 0) {
		return nil, models.ErrInvalidPrice
	}
	if !product.IsActive() {
		return nil, models.ErrAuctionEnded
	}

	s.cart = append(s.cart, CartItem{ID: product.ID, Name: product.Name, Price: price})

	logrus.WithFields(logrus.Fields{
		"product_id": productID,
		"price":      price,
		"cart_items": len(s.cart),
	}).Info("Product added to cart")

	return s.cartCopy(), nil
}

func (s *catalogService) RemoveFromCart(index int) ([]CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.cart) {
		return nil, models.ErrInvalidCartIndex
	}

	s.cart = append(s.cart[:index], s.cart[index+1:]...)
	return s.cartCopy(), nil
}

// TickTimers takes one second off every running auction.
func (s *catalogService) TickTimers() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].TimeLeft > 0 {
			s.products[i].TimeLeft--
		}
	}
	return append([]Product(nil), s.products...)
}

func (s *catalogService) CartItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.cart)
}

func (s *catalogService) ProductsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.products)
}

func (s *catalogService) findProduct(id int) (Product, bool) {
	for _, product := range s.products {
		if product.ID == id {
			return product, true
		}
	}
	return Product{}, false
}

func (s *catalogService) cartCopy() []CartItem {
	return append([]CartItem{}, s.cart...)
}
