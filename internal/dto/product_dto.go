package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Code           string          `json:"code"            validate:"required,min=1,max=64"`
	Name           string          `json:"name"            validate:"required,min=2,max=200"`
	CategoryID     *string         `json:"category_id"     validate:"omitempty,uuid"`
	SalePrice      decimal.Decimal `json:"sale_price"      validate:"required,gt=0"`
	CostPrice      decimal.Decimal `json:"cost_price"      validate:"min=0"`
	Stock          int             `json:"stock"           validate:"min=0"`
	MinimumStock   *int            `json:"minimum_stock"   validate:"omitempty,min=0"`
	ExpirationDate *time.Time      `json:"expiration_date"`
}

type UpdateProductRequest struct {
	Name           *string          `json:"name"            validate:"omitempty,min=2,max=200"`
	CategoryID     *string          `json:"category_id"     validate:"omitempty,uuid"`
	SalePrice      *decimal.Decimal `json:"sale_price"      validate:"omitempty,gt=0"`
	CostPrice      *decimal.Decimal `json:"cost_price"      validate:"omitempty,min=0"`
	Stock          *int             `json:"stock"           validate:"omitempty,min=0"`
	MinimumStock   *int             `json:"minimum_stock"   validate:"omitempty,min=0"`
	ExpirationDate *time.Time       `json:"expiration_date"`
	Active         *bool            `json:"active"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Code       string `form:"code"`
	Name       string `form:"name"`
	CategoryID string `form:"category_id"`
	Active     string `form:"active"` // "false" | "all" | default active only
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	CategoryID     *string         `json:"category_id"`
	CategoryName   string          `json:"category_name"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	Stock          int             `json:"stock"`
	MinimumStock   *int            `json:"minimum_stock"`
	ExpirationDate *time.Time      `json:"expiration_date"`
	Active         bool            `json:"active"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type CategoryResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
