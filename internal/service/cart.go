// 文件路径: internal/service/cart.go
// 模块说明: 服务端购物车，按购物车 ID 存入缓存，每次读取时按当前菜单重新定价。
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brinaregal/brina/internal/cache"
	"github.com/brinaregal/brina/internal/cart"
	"github.com/brinaregal/brina/internal/repository"
)

// MaxLineQuantity caps a single cart line.
const MaxLineQuantity = 99

// CartLine is one line of CartView.
type CartLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	ImageURL  string `json:"image_url,omitempty"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// CartView is the JSON shape of a cart.
type CartView struct {
	ID         string     `json:"id"`
	Items      []CartLine `json:"items"`
	TotalPrice int64      `json:"total_price"`
	TotalItems int        `json:"total_items"`
	// Removed lists products dropped because they left the menu.
	Removed []int64 `json:"removed,omitempty"`
}

// CartService 管理服务端购物车。
type CartService interface {
	Get(ctx context.Context, cartID string) (*CartView, error)
	Add(ctx context.Context, cartID string, productID int64, quantity int) (*CartView, error)
	UpdateQuantity(ctx context.Context, cartID string, productID int64, quantity int) (*CartView, error)
	Remove(ctx context.Context, cartID string, productID int64) (*CartView, error)
	Clear(ctx context.Context, cartID string) (*CartView, error)
}

type cartService struct {
	store    cache.Store
	products repository.ProductRepository
	ttl      time.Duration
}

// NewCartService stores carts in the "cart" namespace of store.
func NewCartService(store cache.Store, products repository.ProductRepository, ttl time.Duration) CartService {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &cartService{store: store.Namespace("cart"), products: products, ttl: ttl}
}

func (s *cartService) Get(ctx context.Context, cartID string) (*CartView, error) {
	id, c, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	removed, err := s.reprice(ctx, &c)
	if err != nil {
		return nil, err
	}
	if !c.IsEmpty() || len(removed) > 0 {
		if err := s.save(ctx, id, c); err != nil {
			return nil, err
		}
	}
	view := newCartView(id, c)
	view.Removed = removed
	return view, nil
}

func (s *cartService) Add(ctx context.Context, cartID string, productID int64, quantity int) (*CartView, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if !product.Available {
		return nil, ErrProductUnavailable
	}

	id, c, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if c.Quantity(productID)+quantity > MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}
	c.AddQuantity(cartProduct(product), quantity)
	return s.persist(ctx, id, c)
}

func (s *cartService) UpdateQuantity(ctx context.Context, cartID string, productID int64, quantity int) (*CartView, error) {
	if quantity > MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}
	id, c, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	c.UpdateQuantity(productID, quantity)
	return s.persist(ctx, id, c)
}

func (s *cartService) Remove(ctx context.Context, cartID string, productID int64) (*CartView, error) {
	id, c, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	c.Remove(productID)
	return s.persist(ctx, id, c)
}

func (s *cartService) Clear(ctx context.Context, cartID string) (*CartView, error) {
	id := normalizeCartID(cartID)
	s.store.Delete(ctx, id)
	return newCartView(id, cart.Cart{}), nil
}

func (s *cartService) persist(ctx context.Context, id string, c cart.Cart) (*CartView, error) {
	if c.IsEmpty() {
		s.store.Delete(ctx, id)
	} else if err := s.save(ctx, id, c); err != nil {
		return nil, err
	}
	return newCartView(id, c), nil
}

// load returns the cart for cartID. Unknown or malformed IDs yield a fresh
// ID with an empty cart.
func (s *cartService) load(ctx context.Context, cartID string) (string, cart.Cart, error) {
	id := normalizeCartID(cartID)
	var stored cart.Cart
	found, err := s.store.GetJSON(ctx, id, &stored)
	if err != nil {
		return "", cart.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var c cart.Cart
	if found {
		c.Load(stored.Items)
	}
	return id, c, nil
}

func (s *cartService) save(ctx context.Context, id string, c cart.Cart) error {
	if err := s.store.SetJSON(ctx, id, c, s.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *cartService) reprice(ctx context.Context, c *cart.Cart) ([]int64, error) {
	if c.IsEmpty() {
		return nil, nil
	}
	ids := make([]int64, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	catalog := make(map[int64]cart.Product, len(found))
	for id, p := range found {
		if p.Available {
			catalog[id] = cartProduct(p)
		}
	}
	return c.Reprice(catalog), nil
}

func normalizeCartID(raw string) string {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.NewString()
	}
	return parsed.String()
}

func cartProduct(p *repository.Product) cart.Product {
	return cart.Product{ID: p.ID, Name: p.Name, UnitPrice: p.Price, ImageURL: p.ImageURL}
}

func newCartView(id string, c cart.Cart) *CartView {
	lines := make([]CartLine, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, CartLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			ImageURL:  it.ImageURL,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		})
	}
	return &CartView{ID: id, Items: lines, TotalPrice: c.TotalPrice(), TotalItems: c.TotalItems()}
}
