package service

import (
	"context"
	"encoding/json"

	"beautypos/internal/authgate"
	"beautypos/internal/dto"
	"beautypos/internal/reconciliation"
)

// RegisterApprovals installs the handler of every gated action. Each one
// replays the parked request as the requesting user, with the approval
// attached.
func RegisterApprovals(authz AuthorizationService, carts CartService, cashiers CashierService, auth AuthService) {
	authz.Register(authgate.ActionRemoveCartItem, func(ctx context.Context, req authgate.Request, a authgate.Approval) (any, error) {
		var p RemoveCartItemPayload
		if err := decodePayload(req, &p); err != nil {
			return nil, err
		}
		return carts.RemoveItem(ctx, req.RequestedBy, p.ProductID, &a)
	})
	authz.Register(authgate.ActionClearCart, func(ctx context.Context, req authgate.Request, a authgate.Approval) (any, error) {
		return carts.Clear(ctx, req.RequestedBy, &a)
	})
	authz.Register(authgate.ActionRemoveManualDiscount, func(ctx context.Context, req authgate.Request, a authgate.Approval) (any, error) {
		return carts.RemoveManualDiscount(ctx, req.RequestedBy, &a)
	})
	authz.Register(authgate.ActionRemovePromotion, func(ctx context.Context, req authgate.Request, a authgate.Approval) (any, error) {
		return carts.RemovePromotion(ctx, req.RequestedBy, &a)
	})
	authz.Register(authgate.ActionCloseWithShortage, func(ctx context.Context, req authgate.Request, a authgate.Approval) (any, error) {
		var p CloseShortagePayload
		if err := decodePayload(req, &p); err != nil {
			return nil, err
		}
		by := reconciliation.Actor{UserID: req.RequestedBy, UserName: p.UserName}
		return cashiers.Close(ctx, p.CashierID, by, dto.CloseCashierRequest{
			FinalAmount:       p.FinalAmount,
			DiscrepancyReason: p.DiscrepancyReason,
		}, &a)
	})
	authz.Register(authgate.ActionLogoutOpenCashier, func(ctx context.Context, req authgate.Request, a authgate.Approval) (any, error) {
		return auth.Logout(ctx, req.RequestedBy, &a)
	})
}

func decodePayload(req authgate.Request, v any) error {
	if len(req.Payload) == 0 {
		return validationf("%s needs a payload", req.Action)
	}
	if err := json.Unmarshal(req.Payload, v); err != nil {
		return validationf("invalid %s payload: %v", req.Action, err)
	}
	return nil
}
