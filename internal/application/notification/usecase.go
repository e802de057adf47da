package notification

import (
	"context"
	"fmt"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

// UseCase consulta y marca los avisos del actor.
type UseCase struct {
	repo repository.NotificationRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.NotificationRepository) *UseCase {
	return &UseCase{repo: repo}
}

// List avisos del actor, más recientes primero.
func (uc *UseCase) List(ctx context.Context, actor entity.Actor, unreadOnly bool, page dto.PageRequest) (*dto.NotificationListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByRecipient(ctx, RecipientFor(actor), unreadOnly, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar avisos: %w", err)
	}
	items := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		items = append(items, dto.FromNotification(n))
	}
	return &dto.NotificationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// MarkRead marca un aviso como leído. ErrNotFound si no existe o es de otro destinatario.
func (uc *UseCase) MarkRead(ctx context.Context, actor entity.Actor, id string) error {
	ok, err := uc.repo.MarkRead(ctx, id, RecipientFor(actor))
	if err != nil {
		return fmt.Errorf("marcar aviso: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
