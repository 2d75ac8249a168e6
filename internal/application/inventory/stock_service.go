package inventory

import (
	"context"

	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/inventory"
	"github.com/erp/orderdesk/internal/domain/shared"
	"go.uber.org/zap"
)

// StockService serves the stock ledger and moves stock between warehouses
type StockService struct {
	repo      inventory.StockRepository
	txManager shared.TransactionManager
	logger    *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(repo inventory.StockRepository, txManager shared.TransactionManager, logger *zap.Logger) *StockService {
	return &StockService{
		repo:      repo,
		txManager: txManager,
		logger:    logger,
	}
}

func toStockFilter(f StockListFilter, defaultOrder string) inventory.StockFilter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	if f.OrderBy == "" {
		f.OrderBy = defaultOrder
	}
	if f.OrderDir == "" {
		f.OrderDir = "desc"
	}
	filter := inventory.StockFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Filters:  make(map[string]interface{}),
		},
		WarehouseID: f.WarehouseID,
		ProductID:   f.ProductID,
		OrderID:     f.OrderID,
	}
	if f.Type != "" {
		filter.Filters["type"] = string(f.Type)
	}
	if f.InStock != nil {
		filter.Filters["in_stock"] = *f.InStock
	}
	return filter
}

// ListStock lists on-hand quantities
func (s *StockService) ListStock(ctx context.Context, f StockListFilter) ([]StockItemResponse, int64, error) {
	filter := toStockFilter(f, "updated_at")
	items, err := s.repo.FindItems(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountItems(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]StockItemResponse, len(items))
	for i := range items {
		out[i] = ToStockItemResponse(&items[i])
	}
	return out, total, nil
}

// ListTransactions lists ledger entries, newest first by default
func (s *StockService) ListTransactions(ctx context.Context, f StockListFilter) ([]StockTransactionResponse, int64, error) {
	filter := toStockFilter(f, "created_at")
	txs, err := s.repo.FindTransactions(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountTransactions(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]StockTransactionResponse, len(txs))
	for i := range txs {
		out[i] = ToStockTransactionResponse(&txs[i])
	}
	return out, total, nil
}

// Transfer moves stock of one product between two warehouses and returns
// the two ledger entries (out, in)
func (s *StockService) Transfer(ctx context.Context, form validation.StockTransferForm) ([]StockTransactionResponse, error) {
	// shape first; the available quantity is only known inside the transaction
	shape := form
	shape.Available = form.Quantity
	if err := validation.Check(shape); err != nil {
		return nil, err
	}

	var out, in *inventory.StockTransaction
	err := s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		from, err := s.repo.FindOrCreateItem(txCtx, form.FromWarehouseID, form.ProductID)
		if err != nil {
			return err
		}
		to, err := s.repo.FindOrCreateItem(txCtx, form.ToWarehouseID, form.ProductID)
		if err != nil {
			return err
		}

		form.Available = from.Quantity
		if err := validation.Check(form); err != nil {
			return err
		}

		out, in, err = inventory.Transfer(from, to, form.Quantity, form.Note)
		if err != nil {
			return err
		}
		return s.repo.SaveWithTransactions(txCtx,
			[]*inventory.StockItem{from, to},
			[]*inventory.StockTransaction{out, in})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock transferred",
		zap.String("product_id", form.ProductID.String()),
		zap.String("from", form.FromWarehouseID.String()),
		zap.String("to", form.ToWarehouseID.String()),
		zap.Int64("quantity", form.Quantity),
	)
	return []StockTransactionResponse{ToStockTransactionResponse(out), ToStockTransactionResponse(in)}, nil
}
