package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-orders-api/internal/application/dto"
	"github.com/jhoicas/stock-orders-api/internal/domain"
	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
	"github.com/jhoicas/stock-orders-api/internal/domain/repository"
)

// MovementQueryUseCase consulta el historial de movimientos (solo lectura).
type MovementQueryUseCase struct {
	repo repository.MovementRepository
}

// NewMovementQueryUseCase construye el caso de uso.
func NewMovementQueryUseCase(repo repository.MovementRepository) *MovementQueryUseCase {
	return &MovementQueryUseCase{repo: repo}
}

// List aplica filtros, orden (por defecto created_at desc) y paginación.
func (uc *MovementQueryUseCase) List(ctx context.Context, in dto.MovementListRequest) (*dto.MovementListResponse, error) {
	in.DefaultPage()
	sortField := in.SortField
	if sortField == "" {
		sortField = "created_at"
	}
	if !repository.MovementSortFields[sortField] {
		return nil, domain.ErrInvalidInput
	}
	desc := true
	switch strings.ToLower(in.SortDirection) {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.MovementKind != "" && !entity.IsValidMovementKind(in.MovementKind) {
		return nil, domain.ErrInvalidInput
	}

	list, total, err := uc.repo.List(ctx, repository.MovementFilter{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		OrderID:     in.OrderID,
		Kind:        in.MovementKind,
		From:        in.DateFrom,
		To:          in.DateTo,
		SortField:   sortField,
		SortDesc:    desc,
		Limit:       in.Limit,
		Offset:      in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		WarehouseID:    m.WarehouseID,
		QuantityChange: m.QuantityChange,
		QuantityAfter:  m.QuantityAfter,
		OrderID:        m.OrderID,
		MovementKind:   m.Kind,
		CreatedAt:      m.CreatedAt,
	}
}
