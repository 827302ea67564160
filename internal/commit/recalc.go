package commit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RecalculateProductCost replays a product's inbound items in
// chronological order to rebuild its moving-average cost, backfilling
// line costs that were stored as zero along the way. Current stock is
// left untouched; the ledger remains the source of truth for quantity.
func (s *Service) RecalculateProductCost(ctx context.Context, productID uuid.UUID) (RecalcResult, error) {
	var result RecalcResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetProductByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		items, err := tx.ListInboundItems(ctx, productID)
		if err != nil {
			return fmt.Errorf("list inbound items: %w", err)
		}

		var stock, avg float64
		var updated int
		for _, item := range items {
			if item.InputQty <= 0 || item.ConversionRate <= 0 {
				continue
			}
			baseQty := item.InputQty * item.ConversionRate
			unitCost := BaseUnitPrice(item.InputPrice, item.InputQty, item.ConversionRate)
			avg = NewAverageCost(stock, avg, baseQty, unitCost)
			stock += baseQty
			if item.CostAtMoment == 0 && unitCost > 0 {
				if err := tx.UpdateItemCostAtMoment(ctx, item.ID, unitCost); err != nil {
					return fmt.Errorf("backfill item cost: %w", err)
				}
				updated++
			}
		}

		if err := tx.UpdateProductStockCost(ctx, product.ID, product.CurrentStock, avg); err != nil {
			return fmt.Errorf("update product cost: %w", err)
		}
		result = RecalcResult{
			Success:        true,
			NewAverageCost: avg,
			ItemsUpdated:   updated,
			Message:        fmt.Sprintf("Harga rata-rata dihitung ulang: %.2f (%d item diperbarui).", avg, updated),
		}
		s.log.Info("product cost recalculated",
			"product_id", productID, "average_cost", avg, "items_updated", updated)
		return nil
	})
	if err != nil {
		return RecalcResult{Success: false, Message: "Gagal menghitung ulang: " + err.Error()}, err
	}
	return result, nil
}
