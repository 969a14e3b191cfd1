package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tuango/internal/config"
	"tuango/internal/dates"
	"tuango/internal/model"
	"tuango/internal/pricing"
	"tuango/internal/repository"
	"tuango/internal/shipping"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var cents = decimal.NewFromInt(100)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	dealRepo    repository.DealRepository
	stockRepo   repository.StockRepository
	userRepo    repository.UserRepository
	shipping    *shipping.Calculator
	taxRate     decimal.Decimal
	retry       config.RetryConfig
	now         func() time.Time
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	dealRepo repository.DealRepository,
	stockRepo repository.StockRepository,
	userRepo repository.UserRepository,
	calculator *shipping.Calculator,
	taxRate decimal.Decimal,
	retry config.RetryConfig,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		dealRepo:    dealRepo,
		stockRepo:   stockRepo,
		userRepo:    userRepo,
		shipping:    calculator,
		taxRate:     taxRate,
		retry:       retry,
		now:         time.Now,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Create places a new order in an open deal, reserving stock for every line.
func (s *orderService) Create(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}
	if err := validateDelivery(req.DeliveryMethod, req.AddressID); err != nil {
		return nil, err
	}

	now := s.now()

	deal, err := s.dealRepo.GetByID(ctx, req.GroupDealID)
	if err != nil {
		return nil, err
	}
	if !deal.AcceptsOrdersAt(now) {
		return nil, model.NewValidationError("deal %d is not accepting orders", deal.ID)
	}

	products, dealProducts, err := s.loadDealCatalog(ctx, deal.ID, req.Items)
	if err != nil {
		return nil, err
	}

	items, err := s.priceItems(req.Items, products, dealProducts)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		UserID:         req.UserID,
		GroupDealID:    deal.ID,
		AddressID:      req.AddressID,
		OrderNumber:    newOrderNumber(now),
		DeliveryMethod: req.DeliveryMethod,
		PickupLocation: req.PickupLocation,
		Status:         model.OrderSubmitted,
		PaymentStatus:  model.PaymentUnpaid,
		PaymentMethod:  req.PaymentMethod,
		Notes:          req.Notes,
		Items:          items,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.applyTotals(order, products)

	err = runInTx(ctx, s.orderRepo, s.retry, s.logger, func(tx pgx.Tx) error {
		if err := s.stockRepo.Reserve(ctx, tx, deal.ID, stockLines(order.Items)); err != nil {
			return err
		}
		return s.orderRepo.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Int64("deal_id", deal.ID).
		Str("total", order.Total.String()).
		Msg("order created")

	return order, nil
}

// Edit modifies a submitted order. A nil item set edits delivery and payment
// details only, which is also allowed after the order deadline and on
// confirmed orders.
func (s *orderService) Edit(ctx context.Context, orderID int64, req *model.OrderEditRequest) (*model.Order, error) {
	if err := validateDelivery(req.DeliveryMethod, req.AddressID); err != nil {
		return nil, err
	}
	if req.Items != nil {
		if err := validateItems(req.Items); err != nil {
			return nil, err
		}
	}

	now := s.now()
	var order *model.Order

	err := runInTx(ctx, s.orderRepo, s.retry, s.logger, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != req.UserID {
			return &model.NotFoundError{Resource: "order", ID: orderID}
		}

		if req.Items != nil {
			if order.Status != model.OrderSubmitted {
				return &model.StateError{Current: order.Status, Action: "edit", Reason: "items can only change while submitted"}
			}

			deal, err := s.dealRepo.GetByID(ctx, order.GroupDealID)
			if err != nil {
				return err
			}
			if now.After(dates.EndOfDay(deal.OrderEndDate)) {
				return &model.StateError{Current: order.Status, Action: "edit", Reason: "order deadline has passed"}
			}

			products, dealProducts, err := s.loadDealCatalog(ctx, order.GroupDealID, req.Items)
			if err != nil {
				return err
			}

			newItems, err := s.priceItems(req.Items, products, dealProducts)
			if err != nil {
				return err
			}

			err = s.stockRepo.AdjustForModification(ctx, tx, order.GroupDealID, stockLines(order.Items), stockLines(newItems))
			if err != nil {
				return err
			}

			if err := s.orderRepo.ReplaceItems(ctx, tx, order.ID, newItems); err != nil {
				return err
			}
			order.Items = newItems
		} else {
			switch order.Status {
			case model.OrderSubmitted, model.OrderConfirmed:
			default:
				return &model.StateError{Current: order.Status, Action: "edit", Reason: "only delivery details of submitted or confirmed orders can change"}
			}
		}

		order.DeliveryMethod = req.DeliveryMethod
		order.AddressID = req.AddressID
		order.PickupLocation = req.PickupLocation
		if req.PaymentMethod != nil {
			order.PaymentMethod = req.PaymentMethod
		}
		if req.Notes != nil {
			order.Notes = req.Notes
		}

		// Switching pickup and delivery changes the fee even when the item
		// set is untouched, so totals are always recomputed.
		products, err := s.loadOrderProducts(ctx, order.Items)
		if err != nil {
			return err
		}
		s.applyTotals(order, products)
		order.UpdatedAt = now

		return s.orderRepo.Update(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Bool("items_changed", req.Items != nil).
		Msg("order edited")

	return order, nil
}

// Cancel cancels the order and restores its stock.
func (s *orderService) Cancel(ctx context.Context, orderID int64, actor model.Actor) (*model.Order, error) {
	var order *model.Order

	err := runInTx(ctx, s.orderRepo, s.retry, s.logger, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		switch {
		case order.Status == model.OrderCancelled:
			return &model.StateError{Current: order.Status, Action: "cancel", Reason: "order is already cancelled"}
		case order.Status.IsTerminal():
			return &model.StateError{Current: order.Status, Action: "cancel", Reason: "completed orders cannot be cancelled"}
		case actor != model.ActorAdmin && order.Status != model.OrderSubmitted:
			return &model.StateError{Current: order.Status, Action: "cancel", Reason: "only submitted orders can be cancelled"}
		}

		if err := s.stockRepo.Restore(ctx, tx, order.GroupDealID, stockLines(order.Items)); err != nil {
			return err
		}

		order.Status = model.OrderCancelled
		order.UpdatedAt = s.now()
		return s.orderRepo.Update(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("actor", string(actor)).
		Msg("order cancelled")

	return order, nil
}

// Reactivate returns a cancelled order to submitted, re-reserving stock.
func (s *orderService) Reactivate(ctx context.Context, orderID, userID int64) (*model.Order, error) {
	now := s.now()
	var order *model.Order

	err := runInTx(ctx, s.orderRepo, s.retry, s.logger, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return &model.NotFoundError{Resource: "order", ID: orderID}
		}
		if order.Status != model.OrderCancelled {
			return &model.StateError{Current: order.Status, Action: "reactivate", Reason: "only cancelled orders can be reactivated"}
		}

		deal, err := s.dealRepo.GetByID(ctx, order.GroupDealID)
		if err != nil {
			return err
		}
		if !deal.AcceptsOrdersAt(now) {
			return model.NewValidationError("deal %d is no longer accepting orders", deal.ID)
		}

		if err := s.stockRepo.Reserve(ctx, tx, order.GroupDealID, stockLines(order.Items)); err != nil {
			return err
		}

		order.Status = model.OrderSubmitted
		order.UpdatedAt = now
		return s.orderRepo.Update(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("order_id", order.ID).Msg("order reactivated")

	return order, nil
}

// FinalizeWeights records measured weights on a ready-for-pickup order and
// re-prices its weight-priced lines, then recomputes the totals including the
// shipping fee: a weight-priced line's total can cross a free-shipping
// threshold once its real weight is known. Fixed-price lines keep the prices
// they were sold at.
func (s *orderService) FinalizeWeights(ctx context.Context, orderID int64, updates []model.WeightUpdate) (*model.Order, error) {
	if len(updates) == 0 {
		return nil, model.NewValidationError("at least one weight update is required")
	}
	for _, u := range updates {
		if !u.FinalWeight.IsPositive() {
			return nil, model.NewValidationError("final weight for item %d must be positive", u.ItemID)
		}
	}

	var order *model.Order

	err := runInTx(ctx, s.orderRepo, s.retry, s.logger, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderReadyForPickup {
			return &model.StateError{Current: order.Status, Action: "finalize weights", Reason: "weights are recorded once the order is ready for pickup"}
		}

		byID := make(map[int64]*model.OrderItem, len(order.Items))
		for i := range order.Items {
			byID[order.Items[i].ID] = &order.Items[i]
		}
		touched := make(map[int64]bool, len(updates))
		for _, u := range updates {
			item, ok := byID[u.ItemID]
			if !ok {
				return &model.NotFoundError{Resource: "order item", ID: u.ItemID}
			}
			w := u.FinalWeight
			item.FinalWeight = &w
			touched[u.ItemID] = true
		}

		products, err := s.loadOrderProducts(ctx, order.Items)
		if err != nil {
			return err
		}
		dealProducts, err := s.dealRepo.GetDealProducts(ctx, order.GroupDealID)
		if err != nil {
			return err
		}

		// Re-price weight-priced lines from their measured weights. Fixed-price
		// lines keep the prices they were sold at; the catalog may have changed
		// since the order was placed.
		for i := range order.Items {
			item := &order.Items[i]
			product, ok := products[item.ProductID]
			if !ok {
				return &model.NotFoundError{Resource: "product", ID: item.ProductID}
			}
			if !product.PricingType.IsWeightBased() {
				if touched[item.ID] {
					if err := s.orderRepo.UpdateItem(ctx, tx, item); err != nil {
						return err
					}
				}
				continue
			}

			var dealPrice *decimal.Decimal
			if dp, ok := dealProducts[item.ProductID]; ok {
				dealPrice = dp.DealPrice
			}

			quote := pricing.Price(product, product.PricingType, dealPrice, item.Quantity, item.FinalWeight)
			item.UnitPrice = quote.UnitPrice.Round(2)
			item.TotalPrice = quote.TotalPrice.Round(2)

			if err := s.orderRepo.UpdateItem(ctx, tx, item); err != nil {
				return err
			}
		}

		s.applyTotals(order, products)
		order.UpdatedAt = s.now()
		return s.orderRepo.Update(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Int("weights", len(updates)).
		Str("total", order.Total.String()).
		Msg("order weights finalized")

	return order, nil
}

// UpdatePayment marks the order paid. This is the only path that credits the
// user's points balance, and it completes the order.
func (s *orderService) UpdatePayment(ctx context.Context, orderID int64, update *model.PaymentUpdate) (*model.Order, error) {
	if update.PaymentStatus != model.PaymentPaid {
		return nil, model.NewValidationError("payment status can only transition to %q", model.PaymentPaid)
	}

	now := s.now()
	var order *model.Order

	err := runInTx(ctx, s.orderRepo, s.retry, s.logger, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status == model.OrderCancelled {
			return &model.StateError{Current: order.Status, Action: "pay", Reason: "cancelled orders cannot be paid"}
		}
		if order.PaymentStatus == model.PaymentPaid {
			return &model.StateError{Current: order.Status, Action: "pay", Reason: "order is already paid"}
		}

		order.PaymentStatus = model.PaymentPaid
		order.PaymentDate = &now
		if update.PaymentMethod != nil {
			order.PaymentMethod = update.PaymentMethod
		}
		order.Status = model.OrderCompleted
		order.UpdatedAt = now

		if order.PointsEarned > 0 {
			if err := s.userRepo.AddPoints(ctx, tx, order.UserID, order.PointsEarned); err != nil {
				return err
			}
		}

		return s.orderRepo.Update(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Int("points", order.PointsEarned).
		Msg("order paid and completed")

	return order, nil
}

// GetByID retrieves an order with its items.
func (s *orderService) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// ListByUser retrieves a user's orders, newest first.
func (s *orderService) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// loadDealCatalog fetches the products referenced by the requested lines and
// the deal's product links, verifying every product exists and is active.
func (s *orderService) loadDealCatalog(ctx context.Context, dealID int64, reqs []model.OrderItemRequest) (map[int64]*model.Product, map[int64]*model.DealProduct, error) {
	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, nil, &model.NotFoundError{Resource: "product", ID: id}
		}
	}

	dealProducts, err := s.dealRepo.GetDealProducts(ctx, dealID)
	if err != nil {
		return nil, nil, err
	}

	return products, dealProducts, nil
}

// loadOrderProducts fetches the products of an order's current item set.
func (s *orderService) loadOrderProducts(ctx context.Context, items []model.OrderItem) (map[int64]*model.Product, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, &model.NotFoundError{Resource: "product", ID: id}
		}
	}

	return products, nil
}

// priceItems prices every requested line. Each request carries the pricing
// type it was quoted under; the deal's override price wins over the product's
// base price. Prices are rounded to cents here, at the persistence boundary.
func (s *orderService) priceItems(reqs []model.OrderItemRequest, products map[int64]*model.Product, dealProducts map[int64]*model.DealProduct) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(reqs))
	for _, req := range reqs {
		product := products[req.ProductID]

		var dealPrice *decimal.Decimal
		if dp, ok := dealProducts[req.ProductID]; ok {
			dealPrice = dp.DealPrice
		} else {
			return nil, model.NewValidationError("product %d is not part of the deal", req.ProductID)
		}

		quote := pricing.Price(product, req.PricingType, dealPrice, req.Quantity, req.FinalWeight)
		items = append(items, model.OrderItem{
			ProductID:   req.ProductID,
			Quantity:    req.Quantity,
			UnitPrice:   quote.UnitPrice.Round(2),
			TotalPrice:  quote.TotalPrice.Round(2),
			FinalWeight: req.FinalWeight,
		})
	}
	return items, nil
}

// applyTotals recomputes subtotal, shipping fee, tax, total and points from
// the order's current item set.
func (s *orderService) applyTotals(order *model.Order, products map[int64]*model.Product) {
	subtotal := decimal.Zero
	lines := make([]shipping.Line, 0, len(order.Items))
	for _, item := range order.Items {
		subtotal = subtotal.Add(item.TotalPrice)

		eligible := false
		if product, ok := products[item.ProductID]; ok {
			eligible = product.CountsTowardFreeShipping
		}
		lines = append(lines, shipping.Line{TotalPrice: item.TotalPrice, Eligible: eligible})
	}

	order.Subtotal = subtotal.Round(2)
	order.ShippingFee = s.shipping.Fee(order.DeliveryMethod, lines)
	order.Tax = subtotal.Mul(s.taxRate).Round(2)
	order.Total = order.Subtotal.Add(order.ShippingFee).Add(order.Tax)

	// One point per cent of subtotal plus tax.
	order.PointsEarned = int(order.Subtotal.Add(order.Tax).Mul(cents).Round(0).IntPart())
}

// stockLines converts order items to stock ledger lines.
func stockLines(items []model.OrderItem) []repository.StockLine {
	lines := make([]repository.StockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, repository.StockLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

// newOrderNumber builds a human-readable unique order number.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("GSF-%s-%s", now.Format("20060102150405"), suffix)
}

// validateItems rejects malformed item lines before any transaction starts.
func validateItems(items []model.OrderItemRequest) error {
	if len(items) == 0 {
		return model.NewValidationError("order must contain at least one item")
	}
	for i, item := range items {
		if item.ProductID <= 0 {
			return model.NewValidationError("item %d: product id is required", i)
		}
		if item.Quantity <= 0 {
			return model.NewValidationError("item %d: quantity must be positive", i)
		}
	}
	return nil
}

// validateDelivery enforces that delivery orders carry an address.
func validateDelivery(method model.DeliveryMethod, addressID *int64) error {
	switch method {
	case model.DeliveryPickup:
		return nil
	case model.DeliveryDelivery:
		if addressID == nil {
			return model.NewValidationError("address is required for delivery orders")
		}
		return nil
	default:
		return model.NewValidationError("unknown delivery method %q", method)
	}
}
