package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beautypos/internal/authgate"
	"beautypos/internal/dto"
	"beautypos/internal/model"
	"beautypos/internal/pricing"
	"beautypos/internal/reconciliation"
	"beautypos/internal/repository"
	"beautypos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundredPercent = decimal.NewFromInt(100)

type ReceiptQueue interface {
	EnqueueReceipt(ctx context.Context, payload worker.ReceiptJobPayload) error
}

// RemoveCartItemPayload is parked on the gate while an item removal waits
// for a manager.
type RemoveCartItemPayload struct {
	ProductID uuid.UUID `json:"product_id"`
}

// CartService keeps one cart per logged-in user. Removing lines, emptying
// the cart and dropping a discount or promotion need a manager approval;
// without one the action is parked on the user's authorization gate.
type CartService interface {
	Get(ctx context.Context, userID uuid.UUID) (*dto.CartResponse, error)
	AddItem(ctx context.Context, userID uuid.UUID, req dto.AddCartItemRequest) (*dto.CartResponse, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*dto.CartResponse, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID, approval *authgate.Approval) (*dto.CartResponse, error)
	Clear(ctx context.Context, userID uuid.UUID, approval *authgate.Approval) (*dto.CartResponse, error)
	SetManualDiscount(ctx context.Context, userID uuid.UUID, req dto.ManualDiscountRequest) (*dto.CartResponse, error)
	RemoveManualDiscount(ctx context.Context, userID uuid.UUID, approval *authgate.Approval) (*dto.CartResponse, error)
	SelectPromotion(ctx context.Context, userID, promotionID uuid.UUID) (*dto.CartResponse, error)
	RemovePromotion(ctx context.Context, userID uuid.UUID, approval *authgate.Approval) (*dto.CartResponse, error)
	// Checkout turns the cart into an order on the user's open till.
	Checkout(ctx context.Context, by reconciliation.Actor, req dto.CheckoutRequest) (*dto.OrderResponse, error)
}

type cartService struct {
	store      repository.CartStore
	products   repository.ProductRepository
	promotions repository.PromotionRepository
	orders     repository.OrderRepository
	sessions   OpenSessionFinder
	calc       *pricing.Calculator
	gate       Gatekeeper
	receipts   ReceiptQueue
	now        func() time.Time
}

// NewCartService wires the cart use cases. receipts may be nil.
func NewCartService(
	store repository.CartStore,
	products repository.ProductRepository,
	promotions repository.PromotionRepository,
	orders repository.OrderRepository,
	sessions OpenSessionFinder,
	calc *pricing.Calculator,
	gate Gatekeeper,
	receipts ReceiptQueue,
) CartService {
	return &cartService{
		store:      store,
		products:   products,
		promotions: promotions,
		orders:     orders,
		sessions:   sessions,
		calc:       calc,
		gate:       gate,
		receipts:   receipts,
		now:        time.Now,
	}
}

// ── Lines ─────────────────────────────────────────────────────────────────────

func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*dto.CartResponse, error) {
	cart, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req dto.AddCartItemRequest) (*dto.CartResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, validationf("invalid product_id")
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, lookup("product", err)
	}
	if !product.Active {
		return nil, fmt.Errorf("%w: product %s is inactive", ErrConflict, product.Code)
	}
	cart, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	qty := req.Quantity
	i := cart.Find(productID)
	if i >= 0 {
		qty += cart.Items[i].Quantity
	}
	if qty > product.Stock {
		return nil, fmt.Errorf("%w: only %d units of %s in stock", ErrConflict, product.Stock, product.Code)
	}
	if i >= 0 {
		cart.Items[i].Quantity = qty
	} else {
		cart.Items = append(cart.Items, model.CartItem{Product: *product, Quantity: qty, Price: product.SalePrice})
	}
	return s.save(ctx, cart)
}

// UpdateQuantity sets a line's quantity. Use RemoveItem to drop a line.
func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*dto.CartResponse, error) {
	if quantity < 1 {
		return nil, validationf("quantity must be at least 1")
	}
	cart, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := cart.Find(productID)
	if i < 0 {
		return nil, fmt.Errorf("cart item %w", ErrNotFound)
	}
	if quantity > cart.Items[i].Product.Stock {
		return nil, fmt.Errorf("%w: only %d units in stock", ErrConflict, cart.Items[i].Product.Stock)
	}
	cart.Items[i].Quantity = quantity
	return s.save(ctx, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID, approval *authgate.Approval) (*dto.CartResponse, error) {
	cart, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := cart.Find(productID)
	if i < 0 {
		return nil, fmt.Errorf("cart item %w", ErrNotFound)
	}
	if approval == nil {
		return nil, requireApproval(ctx, s.gate, userID, authgate.ActionRemoveCartItem, RemoveCartItemPayload{ProductID: productID})
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	approve(cart, approval)
	return s.save(ctx, cart)
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID, approval *authgate.Approval) (*dto.CartResponse, error) {
	cart, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Only items or a manual discount need a manager; a pinned promotion or
	// the promotions-off flag alone is reset freely.
	gated := len(cart.Items) > 0 || cart.ManualDiscount != nil
	if gated && approval == nil {
		return nil, requireApproval(ctx, s.gate, userID, authgate.ActionClearCart, nil)
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		return nil, err
	}
	if gated {
		log.Info().Str("user_id", userID.String()).Str("manager", approval.ManagerName).Msg("cart cleared")
	}
	return s.view(ctx, &model.Cart{UserID: userID, UpdatedAt: s.now()})
}

// ── Discounts ─────────────────────────────────────────────────────────────────

func (s *cartService) SetManualDiscount(ctx context.Context, userID uuid.UUID, req dto.ManualDiscountRequest) (*dto.CartResponse, error) {
	if req.Value.IsNegative() {
		return nil, validationf("discount value must not be negative")
	}
	if req.Type == string(model.ManualPercentage) && req.Value.GreaterThan(hundredPercent) {
		return nil, validationf("a percentage discount cannot exceed 100")
	}
	cart, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.ManualDiscount = &model.ManualDiscount{Type: model.ManualDiscountType(req.Type), Value: req.Value}
	return s.save(ctx, cart)
}

func (s *cartService) RemoveManualDiscount(ctx context.Context, userID uuid.UUID, approval *authgate.Approval) (*dto.CartResponse, error) {
	cart, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.ManualDiscount == nil {
		return s.view(ctx, cart)
	}
	if approval == nil {
		return nil, requireApproval(ctx, s.gate, userID, authgate.ActionRemoveManualDiscount, nil)
	}
	cart.ManualDiscount = nil
	approve(cart, approval)
	return s.save(ctx, cart)
}

func (s *cartService) SelectPromotion(ctx context.Context, userID, promotionID uuid.UUID) (*dto.CartResponse, error) {
	p, err := s.promotions.FindByID(ctx, promotionID)
	if err != nil {
		return nil, lookup("promotion", err)
	}
	if !p.ActiveAt(s.calc.Engine().Now()) {
		return nil, fmt.Errorf("%w: %v: %s", ErrValidation, pricing.ErrPromotionInactive, p.Name)
	}
	cart, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.PromotionID = &p.ID
	cart.PromotionsOff = false
	return s.save(ctx, cart)
}

// RemovePromotion drops the applied promotion, chosen or automatic, and
// keeps promotions off for this cart until one is selected again.
func (s *cartService) RemovePromotion(ctx context.Context, userID uuid.UUID, approval *authgate.Approval) (*dto.CartResponse, error) {
	cart, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	current, err := s.view(ctx, cart)
	if err != nil {
		return nil, err
	}
	applied := current.Totals.Promotion
	if (applied == nil || !applied.DiscountAmount.IsPositive()) && cart.PromotionID == nil {
		return current, nil
	}
	if approval == nil {
		return nil, requireApproval(ctx, s.gate, userID, authgate.ActionRemovePromotion, nil)
	}
	sel := pricing.SelectionOf(*cart).WithoutPromotion()
	cart.PromotionID = sel.PromotionID
	cart.PromotionsOff = sel.PromotionsOff
	approve(cart, approval)
	return s.save(ctx, cart)
}

// ── Checkout ──────────────────────────────────────────────────────────────────

func (s *cartService) Checkout(ctx context.Context, by reconciliation.Actor, req dto.CheckoutRequest) (*dto.OrderResponse, error) {
	cart, err := s.store.Get(ctx, by.UserID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, validationf("cart is empty")
	}
	open, err := s.sessions.OpenSessionsByUser(ctx, by.UserID)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, fmt.Errorf("%w: open a cashier before selling", ErrConflict)
	}
	cashierID := open[0].ID

	totals, _, err := s.price(ctx, cart)
	if err != nil {
		return nil, err
	}

	order := model.Order{
		CashierID:            &cashierID,
		UserID:               by.UserID,
		UserName:             by.UserName,
		CustomerName:         req.CustomerName,
		CustomerEmail:        req.CustomerEmail,
		Subtotal:             totals.Subtotal,
		ManualDiscountAmount: totals.ManualDiscount,
		PromotionDiscount:    totals.PromotionDiscount,
		TotalDiscount:        totals.TotalDiscount,
		Total:                totals.Total,
		PaymentMethod:        req.PaymentMethod,
		Status:               model.OrderCompleted,
		ManagerID:            cart.ManagerID,
		ManagerName:          cart.ManagerName,
	}
	if req.CustomerID != nil {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, validationf("invalid customer_id")
		}
		order.CustomerID = &cid
	}
	if md := cart.ManualDiscount; md != nil {
		typ := string(md.Type)
		order.ManualDiscountType = &typ
		order.ManualDiscountValue = md.Value
	}
	if a := totals.Promotion; a != nil && a.DiscountAmount.IsPositive() {
		id, name := a.PromotionID, a.PromotionName
		order.PromotionID = &id
		order.PromotionName = &name
	}
	for _, it := range cart.Items {
		order.Items = append(order.Items, model.OrderItem{
			ProductID:   it.Product.ID,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.Price,
			Subtotal:    it.Subtotal(),
		})
	}

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		ticket, err := s.orders.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}
		order.TicketNumber = ticket
		for _, it := range cart.Items {
			if err := s.products.DecrementStockTx(tx, it.Product.ID, it.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return fmt.Errorf("%w: %s: %v", ErrConflict, it.Product.Name, err)
				}
				return err
			}
		}
		return s.orders.Create(ctx, tx, &order)
	})
	if txErr != nil {
		return nil, txErr
	}

	if err := s.store.Delete(ctx, by.UserID); err != nil {
		log.Warn().Err(err).Str("user_id", by.UserID.String()).Msg("cart delete after checkout failed")
	}
	if s.receipts != nil {
		if err := s.receipts.EnqueueReceipt(ctx, worker.ReceiptJobPayload{OrderID: order.ID.String()}); err != nil {
			log.Warn().Err(err).Int("ticket", order.TicketNumber).Msg("receipt enqueue failed")
		}
	}
	log.Info().
		Int("ticket", order.TicketNumber).
		Str("cashier_id", cashierID.String()).
		Str("total", order.Total.StringFixed(2)).
		Str("payment_method", order.PaymentMethod).
		Msg("order completed")
	resp := orderResponse(&order)
	return &resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *cartService) save(ctx context.Context, cart *model.Cart) (*dto.CartResponse, error) {
	cart.UpdatedAt = s.now()
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// price quotes the cart. A pinned promotion that can no longer be applied
// falls back to automatic selection and is reported as a warning.
func (s *cartService) price(ctx context.Context, cart *model.Cart) (pricing.Totals, string, error) {
	catalog, err := s.promotions.List(ctx)
	if err != nil {
		return pricing.Totals{}, "", err
	}
	products := make([]model.Product, len(cart.Items))
	for i, it := range cart.Items {
		products[i] = it.Product
	}
	sel := pricing.SelectionOf(*cart)
	totals, pinErr := s.calc.Quote(cart.Items, catalog, products, sel)
	if pinErr == nil {
		return totals, "", nil
	}
	if !errors.Is(pinErr, pricing.ErrPromotionNotFound) && !errors.Is(pinErr, pricing.ErrPromotionInactive) {
		return pricing.Totals{}, "", pinErr
	}
	sel.PromotionID = nil
	totals, err = s.calc.Quote(cart.Items, catalog, products, sel)
	if err != nil {
		return pricing.Totals{}, "", err
	}
	return totals, "selected " + pinErr.Error() + "; best available promotion applied instead", nil
}

func (s *cartService) view(ctx context.Context, cart *model.Cart) (*dto.CartResponse, error) {
	totals, warning, err := s.price(ctx, cart)
	if err != nil {
		return nil, err
	}
	resp := &dto.CartResponse{
		Items:         make([]dto.CartItemResponse, len(cart.Items)),
		PromotionID:   idString(cart.PromotionID),
		PromotionsOff: cart.PromotionsOff,
		Totals:        totals,
		Warning:       warning,
		UpdatedAt:     cart.UpdatedAt,
	}
	for i, it := range cart.Items {
		resp.Items[i] = dto.CartItemResponse{
			ProductID: it.Product.ID.String(),
			Code:      it.Product.Code,
			Name:      it.Product.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal(),
		}
	}
	if md := cart.ManualDiscount; md != nil {
		resp.ManualDiscount = &dto.ManualDiscountRequest{Type: string(md.Type), Value: md.Value}
	}
	return resp, nil
}

func approve(cart *model.Cart, approval *authgate.Approval) {
	id, name := approval.ManagerID, approval.ManagerName
	cart.ManagerID = &id
	cart.ManagerName = &name
}

func orderResponse(o *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:                   o.ID.String(),
		TicketNumber:         o.TicketNumber,
		CashierID:            idString(o.CashierID),
		UserName:             o.UserName,
		CustomerName:         o.CustomerName,
		Subtotal:             o.Subtotal,
		ManualDiscountAmount: o.ManualDiscountAmount,
		PromotionName:        o.PromotionName,
		PromotionDiscount:    o.PromotionDiscount,
		TotalDiscount:        o.TotalDiscount,
		Total:                o.Total,
		PaymentMethod:        o.PaymentMethod,
		Status:               o.Status,
		ManagerName:          o.ManagerName,
		Items:                make([]dto.OrderItemResponse, len(o.Items)),
		CreatedAt:            o.CreatedAt,
	}
	for i, it := range o.Items {
		resp.Items[i] = dto.OrderItemResponse{
			ProductID:   it.ProductID.String(),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		}
	}
	return resp
}
