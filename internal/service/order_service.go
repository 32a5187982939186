package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"orbitaledge/internal/apperror"
	"orbitaledge/internal/models"
	"orbitaledge/internal/repository"
	"orbitaledge/internal/utils"
)

const imageNotFoundForOrder = "Satellite image not found"

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

func (f ExportFormat) ContentType() string {
	if f == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ParseExportFormat defaults to CSV when format is empty.
func ParseExportFormat(format string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		return ExportCSV, nil
	case "xlsx", "excel":
		return ExportXLSX, nil
	}
	return "", apperror.Validation("Unsupported export format",
		apperror.Issue{Path: "format", Message: "expected 'csv' | 'xlsx'"})
}

type OrderService interface {
	Create(ctx context.Context, catalogID string) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.OrderView, error)
	Export(ctx context.Context, filter models.OrderFilter, format ExportFormat, w io.Writer) error
}

type orderService struct {
	repo      repository.OrderRepository
	imageRepo repository.ImageRepository
	log       *zap.Logger
}

func NewOrderService(
	repo repository.OrderRepository,
	imageRepo repository.ImageRepository,
	log *zap.Logger,
) OrderService {
	return &orderService{
		repo:      repo,
		imageRepo: imageRepo,
		log:       log,
	}
}

// Create checks that catalogID exists and then inserts the order. The two
// steps are not wrapped in a transaction; a concurrent removal surfaces as a
// foreign key violation and is reported the same way as a missing entry.
func (s *orderService) Create(ctx context.Context, catalogID string) (*models.Order, error) {
	exists, err := s.imageRepo.Exists(ctx, catalogID)
	if err != nil {
		s.log.Error("order image check failed", zap.String("catalog_id", catalogID), zap.Error(err))
		return nil, apperror.Internal("failed to create order", err)
	}
	if !exists {
		return nil, apperror.NotFound(imageNotFoundForOrder)
	}

	order := &models.Order{ImageID: catalogID}
	if err := s.repo.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return nil, apperror.NotFound(imageNotFoundForOrder)
		}
		s.log.Error("order insert failed", zap.String("catalog_id", catalogID), zap.Error(err))
		return nil, apperror.Internal("failed to create order", err)
	}

	s.log.Info("order created", zap.Uint("order_id", order.ID), zap.String("catalog_id", catalogID))
	return order, nil
}

func (s *orderService) List(ctx context.Context, filter models.OrderFilter) ([]models.OrderView, error) {
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		s.log.Error("order listing failed", zap.Error(err))
		return nil, apperror.Internal("failed to list orders", err)
	}
	return orders, nil
}

func (s *orderService) Export(ctx context.Context, filter models.OrderFilter, format ExportFormat, w io.Writer) error {
	orders, err := s.List(ctx, filter)
	if err != nil {
		return err
	}

	switch format {
	case ExportXLSX:
		err = utils.WriteOrdersWorkbook(w, orders)
	default:
		err = utils.WriteOrdersCSV(w, orders)
	}
	if err != nil {
		s.log.Error("order export failed", zap.String("format", string(format)), zap.Error(err))
		return apperror.Internal("failed to export orders", err)
	}
	return nil
}
