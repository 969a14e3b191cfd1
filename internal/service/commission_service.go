package service

import (
	"context"
	"fmt"
	"sort"

	"tuango/internal/model"
	"tuango/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// commissionService implements CommissionService.
type commissionService struct {
	commissionRepo repository.CommissionRepository
	orderRepo      repository.OrderRepository
	productRepo    repository.ProductRepository
	userRepo       repository.UserRepository
	logger         zerolog.Logger
}

// NewCommissionService creates a new commission service.
func NewCommissionService(
	commissionRepo repository.CommissionRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) CommissionService {
	return &commissionService{
		commissionRepo: commissionRepo,
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		userRepo:       userRepo,
		logger:         logger.With().Str("service", "commission").Logger(),
	}
}

// productTally accumulates one product's contribution to one SDR's record.
type productTally struct {
	productID         int64
	commissionType    model.CommissionType
	ownQuantity       int
	generalQuantity   int
	ownWeight         decimal.Decimal
	generalWeight     decimal.Decimal
	ownCommission     decimal.Decimal
	generalCommission decimal.Decimal
	ownRate           decimal.Decimal
	generalRate       decimal.Decimal
}

// Calculate computes commission records for every active SDR over all orders
// of the deal. Results are upserted one record per (deal, sdr), so repeated
// calls are not additive and a recompute is idempotent. recalculate also
// removes records of SDRs that no longer earn anything; surviving records are
// refreshed in place, so manual adjustments and payment tracking are never
// touched.
func (s *commissionService) Calculate(ctx context.Context, dealID int64, recalculate bool) ([]model.CommissionRecord, error) {
	orders, err := s.orderRepo.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	users, products, err := s.loadReferences(ctx, orders)
	if err != nil {
		return nil, err
	}

	sdrs, err := s.commissionRepo.GetActiveSDRs(ctx)
	if err != nil {
		return nil, err
	}

	var tallied []*model.CommissionRecord
	for _, sdr := range sdrs {
		rules, err := s.commissionRepo.GetActiveRulesBySDR(ctx, sdr.ID)
		if err != nil {
			return nil, err
		}
		if len(rules) == 0 {
			continue
		}

		record := s.tallySDR(&sdr, rules, orders, users, products, dealID)
		if record == nil {
			continue
		}
		tallied = append(tallied, record)
	}

	tx, err := s.commissionRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate commissions: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if recalculate {
		keep := make([]int64, 0, len(tallied))
		for _, record := range tallied {
			keep = append(keep, record.SDRID)
		}
		if err := s.commissionRepo.DeleteStaleRecords(ctx, tx, dealID, keep); err != nil {
			return nil, err
		}
	}

	records := make([]model.CommissionRecord, 0, len(tallied))
	for _, record := range tallied {
		if err := s.commissionRepo.UpsertRecord(ctx, tx, record); err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if len(records) == 0 {
		records = nil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to calculate commissions: %w", err)
	}

	s.logger.Info().
		Int64("deal_id", dealID).
		Bool("recalculate", recalculate).
		Int("records", len(records)).
		Int("orders", len(orders)).
		Msg("commissions calculated")

	return records, nil
}

// ListForDeal retrieves the deal's stored commission records.
func (s *commissionService) ListForDeal(ctx context.Context, dealID int64) ([]model.CommissionRecord, error) {
	return s.commissionRepo.ListRecordsForDeal(ctx, dealID)
}

// tallySDR aggregates one SDR's commission over every order of the deal.
// Returns nil when the SDR earned nothing; zero records are not persisted.
func (s *commissionService) tallySDR(
	sdr *model.SDR,
	rules map[int64]*model.CommissionRule,
	orders []model.Order,
	users map[int64]*model.User,
	products map[int64]*model.Product,
	dealID int64,
) *model.CommissionRecord {
	tallies := make(map[int64]*productTally)

	for _, order := range orders {
		user := users[order.UserID]
		if user == nil {
			continue
		}
		// Orders placed from the house account never generate commission.
		if user.Phone == model.HouseAccountPhone {
			continue
		}
		own := user.Source != nil && *user.Source == sdr.SourceIdentifier

		for _, item := range order.Items {
			rule := rules[item.ProductID]
			if rule == nil {
				continue
			}

			rate := rule.Rate(own)
			var amount decimal.Decimal
			var weight decimal.Decimal
			if rule.CommissionType == model.CommissionPerWeight {
				// Weight-based commission is zero until the item is weighed.
				if item.FinalWeight != nil {
					weight = *item.FinalWeight
				}
				amount = rate.Mul(weight)
			} else {
				amount = rate.Mul(decimal.NewFromInt(int64(item.Quantity)))
			}

			t := tallies[item.ProductID]
			if t == nil {
				t = &productTally{productID: item.ProductID, commissionType: rule.CommissionType}
				tallies[item.ProductID] = t
			}
			if own {
				t.ownQuantity += item.Quantity
				t.ownWeight = t.ownWeight.Add(weight)
				t.ownCommission = t.ownCommission.Add(amount)
				t.ownRate = rate
			} else {
				t.generalQuantity += item.Quantity
				t.generalWeight = t.generalWeight.Add(weight)
				t.generalCommission = t.generalCommission.Add(amount)
				t.generalRate = rate
			}
		}
	}

	if len(tallies) == 0 {
		return nil
	}

	productIDs := make([]int64, 0, len(tallies))
	for id := range tallies {
		productIDs = append(productIDs, id)
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	ownTotal := decimal.Zero
	generalTotal := decimal.Zero
	details := make([]model.CommissionDetail, 0, len(tallies))
	for _, id := range productIDs {
		t := tallies[id]
		rule := rules[id]

		detail := model.CommissionDetail{
			ProductID:         t.productID,
			CommissionType:    t.commissionType,
			OwnQuantity:       t.ownQuantity,
			GeneralQuantity:   t.generalQuantity,
			OwnCommission:     t.ownCommission.Round(2),
			GeneralCommission: t.generalCommission.Round(2),
			TotalCommission:   t.ownCommission.Add(t.generalCommission).Round(2),
			OwnRate:           rule.OwnCustomerAmount,
			GeneralRate:       rule.GeneralCustomerAmount,
		}
		if product := products[t.productID]; product != nil {
			detail.ProductName = product.Name
			detail.PricingType = product.PricingType
		}
		if t.commissionType == model.CommissionPerWeight {
			ow, gw := t.ownWeight, t.generalWeight
			detail.OwnWeight = &ow
			detail.GeneralWeight = &gw
		}
		details = append(details, detail)

		ownTotal = ownTotal.Add(t.ownCommission)
		generalTotal = generalTotal.Add(t.generalCommission)
	}

	total := ownTotal.Add(generalTotal).Round(2)
	if total.IsZero() {
		return nil
	}

	return &model.CommissionRecord{
		GroupDealID:               dealID,
		SDRID:                     sdr.ID,
		TotalCommission:           total,
		OwnCustomerCommission:     ownTotal.Round(2),
		GeneralCustomerCommission: generalTotal.Round(2),
		Details:                   details,
	}
}

// loadReferences fetches the users and products referenced by the deal's orders.
func (s *commissionService) loadReferences(ctx context.Context, orders []model.Order) (map[int64]*model.User, map[int64]*model.Product, error) {
	userIDs := make([]int64, 0, len(orders))
	seenUsers := make(map[int64]bool)
	var productIDs []int64
	seenProducts := make(map[int64]bool)

	for _, order := range orders {
		if !seenUsers[order.UserID] {
			seenUsers[order.UserID] = true
			userIDs = append(userIDs, order.UserID)
		}
		for _, item := range order.Items {
			if !seenProducts[item.ProductID] {
				seenProducts[item.ProductID] = true
				productIDs = append(productIDs, item.ProductID)
			}
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, nil, err
	}
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, nil, err
	}

	return users, products, nil
}
