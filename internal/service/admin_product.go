package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brinaregal/brina/internal/repository"
)

// ProductInput 描述后台创建或更新菜品时提交的字段。
type ProductInput struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Price       int64  `json:"price" yaml:"price"`
	Category    string `json:"category" yaml:"category"`
	ImageURL    string `json:"image_url" yaml:"image_url"`
	Available   *bool  `json:"available" yaml:"available"`
	Sort        int64  `json:"sort" yaml:"sort"`
}

// ImportResult summarises a menu import.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// AdminProductService 管理菜单菜品（后台）。
type AdminProductService interface {
	List(ctx context.Context, category string) ([]ProductView, error)
	Get(ctx context.Context, id int64) (*ProductView, error)
	Create(ctx context.Context, input ProductInput) (*ProductView, error)
	Update(ctx context.Context, id int64, input ProductInput) (*ProductView, error)
	ToggleAvailability(ctx context.Context, id int64) (*ProductView, error)
	Delete(ctx context.Context, id int64) error
	SetImage(ctx context.Context, id int64, imageURL string) (*ProductView, error)
	Import(ctx context.Context, inputs []ProductInput) (ImportResult, error)
}

type adminProductService struct {
	products repository.ProductRepository
	logger   *slog.Logger
	now      func() time.Time
}

func NewAdminProductService(products repository.ProductRepository, logger *slog.Logger) AdminProductService {
	if logger == nil {
		logger = slog.Default()
	}
	return &adminProductService{products: products, logger: logger, now: time.Now}
}

func (s *adminProductService) List(ctx context.Context, category string) ([]ProductView, error) {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, AllCategories) {
		category = ""
	}
	products, err := s.products.List(ctx, repository.ProductFilter{Category: category})
	if err != nil {
		return nil, err
	}
	return toProductViews(products), nil
}

func (s *adminProductService) Get(ctx context.Context, id int64) (*ProductView, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	view := toProductView(product)
	return &view, nil
}

func (s *adminProductService) Create(ctx context.Context, input ProductInput) (*ProductView, error) {
	product := &repository.Product{Available: true}
	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}
	now := s.now().Unix()
	product.CreatedAt = now
	product.UpdatedAt = now

	created, err := s.products.Create(ctx, product)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrProductExists
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "product created", "product_id", created.ID, "name", created.Name)
	view := toProductView(created)
	return &view, nil
}

func (s *adminProductService) Update(ctx context.Context, id int64, input ProductInput) (*ProductView, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}
	product.UpdatedAt = s.now().Unix()
	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrProductExists
		}
		return nil, translateNotFound(err)
	}
	view := toProductView(product)
	return &view, nil
}

func (s *adminProductService) ToggleAvailability(ctx context.Context, id int64) (*ProductView, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Available = !product.Available
	product.UpdatedAt = s.now().Unix()
	if err := s.products.SetAvailability(ctx, id, product.Available, product.UpdatedAt); err != nil {
		return nil, translateNotFound(err)
	}
	s.logger.InfoContext(ctx, "product availability changed", "product_id", id, "available", product.Available)
	view := toProductView(product)
	return &view, nil
}

func (s *adminProductService) Delete(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return translateNotFound(err)
	}
	s.logger.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

func (s *adminProductService) SetImage(ctx context.Context, id int64, imageURL string) (*ProductView, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	product.ImageURL = strings.TrimSpace(imageURL)
	product.UpdatedAt = s.now().Unix()
	if err := s.products.SetImage(ctx, id, product.ImageURL, product.UpdatedAt); err != nil {
		return nil, translateNotFound(err)
	}
	view := toProductView(product)
	return &view, nil
}

// Import upserts products by name. Validation stops at the first bad entry.
func (s *adminProductService) Import(ctx context.Context, inputs []ProductInput) (ImportResult, error) {
	var result ImportResult
	for i, input := range inputs {
		existing, err := s.products.FindByName(ctx, strings.TrimSpace(input.Name))
		switch {
		case err == nil:
			if _, err := s.Update(ctx, existing.ID, mergeImportInput(existing, input)); err != nil {
				return result, fmt.Errorf("product #%d %q: %w", i+1, input.Name, err)
			}
			result.Updated++
		case errors.Is(err, repository.ErrNotFound):
			if _, err := s.Create(ctx, input); err != nil {
				return result, fmt.Errorf("product #%d %q: %w", i+1, input.Name, err)
			}
			result.Created++
		default:
			return result, err
		}
	}
	return result, nil
}

// mergeImportInput 导入文件中省略的字段沿用已有菜品的值。
func mergeImportInput(existing *repository.Product, input ProductInput) ProductInput {
	if strings.TrimSpace(input.Description) == "" {
		input.Description = existing.Description
	}
	if strings.TrimSpace(input.Category) == "" {
		input.Category = existing.Category
	}
	if strings.TrimSpace(input.ImageURL) == "" {
		input.ImageURL = existing.ImageURL
	}
	if input.Sort == 0 {
		input.Sort = existing.Sort
	}
	return input
}

func (s *adminProductService) find(ctx context.Context, id int64) (*repository.Product, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return product, nil
}

func applyProductInput(product *repository.Product, input ProductInput) error {
	name, ok := cleanName(input.Name)
	if !ok {
		return ErrInvalidName
	}
	if input.Price <= 0 {
		return ErrInvalidPrice
	}
	product.Name = name
	product.Description = sanitizeHTML(input.Description)
	product.Price = input.Price
	product.Category = stripTags(input.Category)
	product.ImageURL = strings.TrimSpace(input.ImageURL)
	product.Sort = input.Sort
	if input.Available != nil {
		product.Available = *input.Available
	}
	return nil
}

func translateNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
