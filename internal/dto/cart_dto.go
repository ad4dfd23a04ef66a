package dto

import (
	"time"

	"beautypos/internal/pricing"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type SelectPromotionRequest struct {
	PromotionID string `json:"promotion_id" validate:"required,uuid"`
}

type CheckoutRequest struct {
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=cash debit credit transfer"`
	CustomerID    *string `json:"customer_id"    validate:"omitempty,uuid"`
	CustomerName  *string `json:"customer_name"  validate:"omitempty,max=150"`
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CartItemResponse struct {
	ProductID string          `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Items          []CartItemResponse     `json:"items"`
	ManualDiscount *ManualDiscountRequest `json:"manual_discount"`
	PromotionID    *string                `json:"promotion_id"`
	PromotionsOff  bool                   `json:"promotions_off"`
	Totals         pricing.Totals         `json:"totals"`
	// Warning is set when a pinned promotion can no longer be applied.
	Warning   string    `json:"warning,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID                   string              `json:"id"`
	TicketNumber         int                 `json:"ticket_number"`
	CashierID            *string             `json:"cashier_id"`
	UserName             string              `json:"user_name"`
	CustomerName         *string             `json:"customer_name"`
	Subtotal             decimal.Decimal     `json:"subtotal"`
	ManualDiscountAmount decimal.Decimal     `json:"manual_discount_amount"`
	PromotionName        *string             `json:"promotion_name"`
	PromotionDiscount    decimal.Decimal     `json:"promotion_discount"`
	TotalDiscount        decimal.Decimal     `json:"total_discount"`
	Total                decimal.Decimal     `json:"total"`
	PaymentMethod        string              `json:"payment_method"`
	Status               string              `json:"status"`
	ManagerName          *string             `json:"manager_name"`
	Items                []OrderItemResponse `json:"items"`
	CreatedAt            time.Time           `json:"created_at"`
}
