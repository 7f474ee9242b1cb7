package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// Get obtiene un pedido con sus líneas.
func (uc *LifecycleUseCase) Get(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return toOrderResponse(order), nil
}

// List lista pedidos (más recientes primero) con filtros y paginación.
func (uc *LifecycleUseCase) List(ctx context.Context, in dto.OrderListRequest) (*dto.OrderListResponse, error) {
	in.DefaultPage()
	switch in.Status {
	case "", entity.OrderStatusActive, entity.OrderStatusCompleted, entity.OrderStatusCanceled:
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.CreatedFrom != nil && in.CreatedTo != nil && in.CreatedTo.Before(*in.CreatedFrom) {
		return nil, domain.ErrInvalidInput
	}
	list, total, err := uc.orderRepo.List(ctx, repository.OrderFilter{
		Status:      in.Status,
		Customer:    strings.TrimSpace(in.Customer),
		WarehouseID: in.WarehouseID,
		CreatedFrom: in.CreatedFrom,
		CreatedTo:   in.CreatedTo,
		Limit:       in.Limit,
		Offset:      in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemDTO{ProductID: it.ProductID, Count: it.Count})
	}
	return &dto.OrderResponse{
		ID:          o.ID,
		Customer:    o.Customer,
		WarehouseID: o.WarehouseID,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		CompletedAt: o.CompletedAt,
		Items:       items,
	}
}
