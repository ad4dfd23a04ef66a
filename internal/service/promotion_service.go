package service

import (
	"context"
	"errors"
	"fmt"

	"beautypos/internal/dto"
	"beautypos/internal/model"
	"beautypos/internal/pricing"
	"beautypos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type PromotionService interface {
	Create(ctx context.Context, req dto.PromotionRequest) (*dto.PromotionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PromotionResponse, error)
	List(ctx context.Context) ([]dto.PromotionResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.PromotionRequest) (*dto.PromotionResponse, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*dto.PromotionResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Available lists the promotions the posted cart qualifies for, each with
	// the discount it would give. The best one is flagged.
	Available(ctx context.Context, req dto.AvailablePromotionsRequest) ([]dto.AvailablePromotionResponse, error)
	// Quote prices a posted cart without touching any stored cart.
	Quote(ctx context.Context, req dto.QuoteRequest) (*pricing.Totals, error)
}

type promotionService struct {
	repo     repository.PromotionRepository
	products repository.ProductRepository
	calc     *pricing.Calculator
}

func NewPromotionService(repo repository.PromotionRepository, products repository.ProductRepository, calc *pricing.Calculator) PromotionService {
	return &promotionService{repo: repo, products: products, calc: calc}
}

// ── Catalog ───────────────────────────────────────────────────────────────────

func (s *promotionService) Create(ctx context.Context, req dto.PromotionRequest) (*dto.PromotionResponse, error) {
	p := &model.Promotion{IsActive: true}
	if err := applyPromotionRequest(p, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Str("promotion_id", p.ID.String()).Str("type", string(p.Type)).Msg("promotion created")
	resp := promotionResponse(p)
	return &resp, nil
}

func (s *promotionService) Get(ctx context.Context, id uuid.UUID) (*dto.PromotionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup("promotion", err)
	}
	resp := promotionResponse(p)
	return &resp, nil
}

func (s *promotionService) List(ctx context.Context) ([]dto.PromotionResponse, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PromotionResponse, len(promos))
	for i := range promos {
		resp[i] = promotionResponse(&promos[i])
	}
	return resp, nil
}

func (s *promotionService) Update(ctx context.Context, id uuid.UUID, req dto.PromotionRequest) (*dto.PromotionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup("promotion", err)
	}
	updated := model.Promotion{ID: p.ID, IsActive: p.IsActive, CreatedAt: p.CreatedAt}
	if err := applyPromotionRequest(&updated, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	resp := promotionResponse(&updated)
	return &resp, nil
}

func (s *promotionService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*dto.PromotionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup("promotion", err)
	}
	p.IsActive = active
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := promotionResponse(p)
	return &resp, nil
}

func (s *promotionService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookup("promotion", err)
	}
	return s.repo.Delete(ctx, id)
}

// ── Pricing ───────────────────────────────────────────────────────────────────

func (s *promotionService) Available(ctx context.Context, req dto.AvailablePromotionsRequest) ([]dto.AvailablePromotionResponse, error) {
	items, products, err := s.cartLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	catalog, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	engine := s.calc.Engine()
	available := engine.Available(items, catalog)
	best := engine.Best(items, available, products)

	resp := make([]dto.AvailablePromotionResponse, len(available))
	for i := range available {
		a := engine.Calculate(items, available[i], products)
		resp[i] = dto.AvailablePromotionResponse{
			Promotion:      promotionResponse(&available[i]),
			DiscountAmount: a.DiscountAmount,
			Best:           best != nil && best.PromotionID == available[i].ID,
		}
	}
	return resp, nil
}

func (s *promotionService) Quote(ctx context.Context, req dto.QuoteRequest) (*pricing.Totals, error) {
	items, products, err := s.cartLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	catalog, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sel := pricing.Selection{PromotionsOff: req.PromotionsOff}
	if req.ManualDiscount != nil {
		sel.Manual = &model.ManualDiscount{
			Type:  model.ManualDiscountType(req.ManualDiscount.Type),
			Value: req.ManualDiscount.Value,
		}
	}
	if req.PromotionID != nil {
		id, err := uuid.Parse(*req.PromotionID)
		if err != nil {
			return nil, validationf("invalid promotion_id")
		}
		sel.PromotionID = &id
	}
	totals, err := s.calc.Quote(items, catalog, products, sel)
	if err != nil {
		return nil, pricingError(err)
	}
	return &totals, nil
}

// cartLines loads the products of the posted lines. A line without a price
// uses the product's sale price.
func (s *promotionService) cartLines(ctx context.Context, lines []dto.CartLineRequest) ([]model.CartItem, []model.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		id, err := uuid.Parse(l.ProductID)
		if err != nil {
			return nil, nil, validationf("invalid product_id %q", l.ProductID)
		}
		ids = append(ids, id)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	items := make([]model.CartItem, 0, len(lines))
	for i, l := range lines {
		p, ok := byID[ids[i]]
		if !ok {
			return nil, nil, fmt.Errorf("product %s %w", ids[i], ErrNotFound)
		}
		price := p.SalePrice
		if l.Price != nil {
			price = *l.Price
		}
		items = append(items, model.CartItem{Product: p, Quantity: l.Quantity, Price: price})
	}
	return items, products, nil
}

// pricingError classifies the calculator's errors for the handlers.
func pricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrPromotionNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, pricing.ErrPromotionInactive):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}

// ── Mapping ───────────────────────────────────────────────────────────────────

// applyPromotionRequest copies req onto p and checks that the promotion
// carries what its type needs.
func applyPromotionRequest(p *model.Promotion, req dto.PromotionRequest) error {
	if req.EndDate.Before(req.StartDate) {
		return validationf("end_date must not be before start_date")
	}
	var err error
	p.Name = req.Name
	p.Description = req.Description
	p.Type = model.PromotionType(req.Type)
	p.StartDate = req.StartDate
	p.EndDate = req.EndDate
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if p.ProductID, err = optionalID("product_id", req.ProductID); err != nil {
		return err
	}
	if p.CategoryID, err = optionalID("category_id", req.CategoryID); err != nil {
		return err
	}
	if p.ProductIDs, err = idList("product_ids", req.ProductIDs); err != nil {
		return err
	}
	if p.SecondaryProductID, err = optionalID("secondary_product_id", req.SecondaryProductID); err != nil {
		return err
	}
	if p.BundleProducts, err = idList("bundle_products", req.BundleProducts); err != nil {
		return err
	}
	p.DiscountPercent = req.DiscountPercent
	p.DiscountValue = req.DiscountValue
	p.BuyQuantity = req.BuyQuantity
	p.GetQuantity = req.GetQuantity
	p.SecondaryProductDiscount = req.SecondaryProductDiscount
	p.FixedPrice = req.FixedPrice
	p.BundlePrice = req.BundlePrice

	hasTarget := p.ProductID != nil || p.CategoryID != nil || len(p.ProductIDs) > 0
	switch p.Type {
	case model.PromotionPercentage:
		if p.DiscountPercent == nil || !hasTarget {
			return validationf("discount_percentage needs discount_percent and a target")
		}
	case model.PromotionValue:
		if p.DiscountValue == nil || !hasTarget {
			return validationf("discount_value needs discount_value and a target")
		}
	case model.PromotionFixedPrice:
		if p.FixedPrice == nil || p.ProductID == nil {
			return validationf("fixed_price needs fixed_price and product_id")
		}
	case model.PromotionBuyXGetY:
		if p.ProductID == nil || p.BuyQuantity == nil || p.GetQuantity == nil {
			return validationf("buy_x_get_y needs product_id, buy_quantity and get_quantity")
		}
	case model.PromotionBundle:
		if len(p.BundleProducts) < 2 || p.BundlePrice == nil {
			return validationf("bundle needs at least two bundle_products and a bundle_price")
		}
	default:
		return validationf("unknown promotion type %q", req.Type)
	}
	return nil
}

func optionalID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, validationf("invalid %s", field)
	}
	return &id, nil
}

func idList(field string, raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, validationf("invalid %s entry %q", field, r)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func promotionResponse(p *model.Promotion) dto.PromotionResponse {
	return dto.PromotionResponse{
		ID:                       p.ID.String(),
		Name:                     p.Name,
		Description:              p.Description,
		Type:                     string(p.Type),
		StartDate:                p.StartDate,
		EndDate:                  p.EndDate,
		IsActive:                 p.IsActive,
		ProductID:                idString(p.ProductID),
		CategoryID:               idString(p.CategoryID),
		ProductIDs:               idStrings(p.ProductIDs),
		DiscountPercent:          p.DiscountPercent,
		DiscountValue:            p.DiscountValue,
		BuyQuantity:              p.BuyQuantity,
		GetQuantity:              p.GetQuantity,
		SecondaryProductID:       idString(p.SecondaryProductID),
		SecondaryProductDiscount: p.SecondaryProductDiscount,
		FixedPrice:               p.FixedPrice,
		BundleProducts:           idStrings(p.BundleProducts),
		BundlePrice:              p.BundlePrice,
	}
}

func idString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func idStrings(ids []uuid.UUID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
