package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orbitaledge/internal/models"
	"orbitaledge/internal/query"
)

type ImageRepository interface {
	Find(ctx context.Context, filter query.ImageFilter) ([]models.ImageView, error)
	GetByCatalogID(ctx context.Context, catalogID string) (*models.ImageView, error)
	Exists(ctx context.Context, catalogID string) (bool, error)
	Upsert(ctx context.Context, images []models.SatelliteImage) (int64, error)
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Find(ctx context.Context, filter query.ImageFilter) ([]models.ImageView, error) {
	images := make([]models.ImageView, 0)
	err := findImages(r.db.WithContext(ctx), filter).
		Find(&images).
		Error
	return images, err
}

func findImages(tx *gorm.DB, filter query.ImageFilter) *gorm.DB {
	where, args, err := filter.Predicate()
	if err != nil {
		_ = tx.AddError(err)
		return tx
	}
	return tx.Model(&models.SatelliteImage{}).
		Select(models.ImageViewColumns).
		Where(where, args...).
		Order("id")
}

// GetByCatalogID returns gorm.ErrRecordNotFound when no entry matches.
func (r *imageRepository) GetByCatalogID(ctx context.Context, catalogID string) (*models.ImageView, error) {
	var image models.ImageView
	err := r.db.WithContext(ctx).
		Model(&models.SatelliteImage{}).
		Select(models.ImageViewColumns).
		Where("catalog_id = ?", catalogID).
		Take(&image).
		Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) Exists(ctx context.Context, catalogID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SatelliteImage{}).
		Where("catalog_id = ?", catalogID).
		Count(&count).
		Error
	return count > 0, err
}

// Upsert inserts catalog entries, refreshing the attributes of entries whose
// catalog id already exists.
func (r *imageRepository) Upsert(ctx context.Context, images []models.SatelliteImage) (int64, error) {
	if len(images) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "catalog_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"acquisition_date_start",
				"acquisition_date_end",
				"resolution",
				"cloud_coverage",
				"off_nadir",
				"sensor",
				"scan_direction",
				"satellite_elevation",
				"image_bands",
				"geometry",
			}),
		}).
		CreateInBatches(images, 100)
	return result.RowsAffected, result.Error
}
