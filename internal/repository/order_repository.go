package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orbitaledge/internal/models"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	List(ctx context.Context, filter models.OrderFilter) ([]models.OrderView, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts order and fills in the server-assigned id and order date.
func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Create(order).
		Error
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s", ErrImageNotFound, order.ImageID)
	}
	return err
}

func (r *orderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.OrderView, error) {
	orders := make([]models.OrderView, 0)
	err := listOrders(r.db.WithContext(ctx), filter).
		Find(&orders).
		Error
	return orders, err
}

func listOrders(tx *gorm.DB, filter models.OrderFilter) *gorm.DB {
	tx = tx.Table("orders").
		Select("orders.id, orders.image_id, orders.order_date, satellite_images.catalog_id, satellite_images.resolution").
		Joins("JOIN satellite_images ON orders.image_id = satellite_images.catalog_id")

	if filter.ImageID != "" {
		tx = tx.Where("orders.image_id = ?", filter.ImageID)
	}
	if filter.StartDate != nil {
		tx = tx.Where("orders.order_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		tx = tx.Where("orders.order_date <= ?", *filter.EndDate)
	}

	return tx.Order("orders.order_date DESC, orders.id DESC")
}
