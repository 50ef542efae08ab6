// 文件路径: internal/service/catalog.go
// 模块说明: 公开菜单，只展示可售菜品。
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/brinaregal/brina/internal/repository"
)

// AllCategories is the pseudo category that disables filtering.
const AllCategories = "Tous"

// ProductView is the JSON shape of a menu product.
type ProductView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url,omitempty"`
	Available   bool   `json:"available"`
	Sort        int64  `json:"sort,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// CatalogService exposes the public menu.
type CatalogService interface {
	Menu(ctx context.Context, category string) ([]ProductView, error)
	Categories(ctx context.Context) ([]string, error)
	Product(ctx context.Context, id int64) (*ProductView, error)
}

type catalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) CatalogService {
	return &catalogService{products: products}
}

// Menu lists available products ordered by name; an empty category or
// "Tous" returns every category.
func (s *catalogService) Menu(ctx context.Context, category string) ([]ProductView, error) {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, AllCategories) {
		category = ""
	}
	products, err := s.products.List(ctx, repository.ProductFilter{Category: category, AvailableOnly: true})
	if err != nil {
		return nil, err
	}
	return toProductViews(products), nil
}

func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.products.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return append([]string{AllCategories}, categories...), nil
}

func (s *catalogService) Product(ctx context.Context, id int64) (*ProductView, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !product.Available {
		return nil, ErrNotFound
	}
	view := toProductView(product)
	return &view, nil
}

func toProductView(p *repository.Product) ProductView {
	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Available:   p.Available,
		Sort:        p.Sort,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductViews(products []*repository.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	return views
}
