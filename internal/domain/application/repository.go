package application

import "context"

type Repository interface {
	Create(ctx context.Context, app Application) (*Application, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*Application, error)
	List(ctx context.Context, filter Filter) ([]Application, error)
	UpdateStatus(ctx context.Context, trackingID string, status Status, notes string) (*Application, error)
	Delete(ctx context.Context, trackingID string) error
}
