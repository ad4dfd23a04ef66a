package service

import (
	"context"

	"beautypos/internal/dto"
	"beautypos/internal/model"
	"beautypos/internal/repository"

	"github.com/google/uuid"
)

// CatalogService covers products and their categories.
type CatalogService interface {
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	ListCategories(ctx context.Context) ([]dto.CategoryResponse, error)
}

type catalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository) CatalogService {
	return &catalogService{products: products, categories: categories}
}

// ── Products ──────────────────────────────────────────────────────────────────

func (s *catalogService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &model.Product{
		Code:           req.Code,
		Name:           req.Name,
		SalePrice:      req.SalePrice,
		CostPrice:      req.CostPrice,
		Stock:          req.Stock,
		MinimumStock:   req.MinimumStock,
		ExpirationDate: req.ExpirationDate,
		Active:         true,
	}
	if req.CategoryID != nil {
		cat, err := s.category(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = &cat.ID
		p.Category = cat
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := productResponse(p)
	return &resp, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, lookup("product", err)
	}
	resp := productResponse(p)
	return &resp, nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, len(products))
	for i := range products {
		data[i] = productResponse(&products[i])
	}
	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.ProductListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pages,
	}, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, lookup("product", err)
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.CategoryID != nil {
		cat, err := s.category(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = &cat.ID
		p.Category = cat
	}
	if req.SalePrice != nil {
		p.SalePrice = *req.SalePrice
	}
	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.MinimumStock != nil {
		p.MinimumStock = req.MinimumStock
	}
	if req.ExpirationDate != nil {
		p.ExpirationDate = req.ExpirationDate
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := productResponse(p)
	return &resp, nil
}

func (s *catalogService) category(ctx context.Context, rawID string) (*model.Category, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, validationf("invalid category_id")
	}
	cat, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, lookup("category", err)
	}
	return cat, nil
}

// ── Categories ────────────────────────────────────────────────────────────────

func (s *catalogService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	c := &model.Category{Name: req.Name, Active: true}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{ID: c.ID.String(), Name: c.Name, Active: c.Active}, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CategoryResponse, len(cats))
	for i, c := range cats {
		resp[i] = dto.CategoryResponse{ID: c.ID.String(), Name: c.Name, Active: c.Active}
	}
	return resp, nil
}

func productResponse(p *model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:             p.ID.String(),
		Code:           p.Code,
		Name:           p.Name,
		CategoryName:   p.CategoryName(),
		SalePrice:      p.SalePrice,
		CostPrice:      p.CostPrice,
		Stock:          p.Stock,
		MinimumStock:   p.MinimumStock,
		ExpirationDate: p.ExpirationDate,
		Active:         p.Active,
	}
	if p.CategoryID != nil {
		id := p.CategoryID.String()
		resp.CategoryID = &id
	}
	return resp
}
