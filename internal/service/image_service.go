package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"orbitaledge/internal/apperror"
	"orbitaledge/internal/geo"
	"orbitaledge/internal/models"
	"orbitaledge/internal/query"
	"orbitaledge/internal/repository"
)

const imageNotFound = "Image not found"

type ImageService interface {
	List(ctx context.Context, filter query.ImageFilter) ([]models.ImageView, error)
	Search(ctx context.Context, raw []byte) ([]models.ImageView, error)
	Get(ctx context.Context, catalogID string) (*models.ImageView, error)
}

type imageService struct {
	repo      repository.ImageRepository
	cacheRepo repository.CacheRepository
	cacheTTL  time.Duration
	log       *zap.Logger
}

func NewImageService(
	repo repository.ImageRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	log *zap.Logger,
) ImageService {
	return &imageService{
		repo:      repo,
		cacheRepo: cacheRepo,
		cacheTTL:  cacheTTL,
		log:       log,
	}
}

func (s *imageService) List(ctx context.Context, filter query.ImageFilter) ([]models.ImageView, error) {
	images, err := s.repo.Find(ctx, filter)
	if err != nil {
		s.log.Error("image listing failed", zap.Error(err))
		return nil, apperror.Internal("failed to list images", err)
	}
	return images, nil
}

// Search returns the entries whose footprint intersects the GeoJSON geometry
// in raw. Invalid input never reaches the store.
func (s *imageService) Search(ctx context.Context, raw []byte) ([]models.ImageView, error) {
	geometry, err := geo.ValidateGeometry(raw)
	if err != nil {
		return nil, err
	}

	images, err := s.repo.Find(ctx, query.ImageFilter{}.WithGeometry(geometry))
	if err != nil {
		s.log.Error("image search failed",
			zap.Error(err),
			zap.String("geometry_type", geometry.GeoJSONType()),
			zap.Int("body_bytes", len(raw)),
		)
		return nil, apperror.Internal("failed to search images", err)
	}
	return images, nil
}

func (s *imageService) Get(ctx context.Context, catalogID string) (*models.ImageView, error) {
	cacheKey := imageCacheKey(catalogID)

	var cached models.ImageView
	found, err := s.cacheRepo.GetJSON(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("image cache read failed", zap.String("catalog_id", catalogID), zap.Error(err))
	} else if found {
		return &cached, nil
	}

	image, err := s.repo.GetByCatalogID(ctx, catalogID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(imageNotFound)
	}
	if err != nil {
		s.log.Error("image lookup failed", zap.String("catalog_id", catalogID), zap.Error(err))
		return nil, apperror.Internal("failed to get image", err)
	}

	if err := s.cacheRepo.SetJSON(ctx, cacheKey, image, s.cacheTTL); err != nil {
		s.log.Warn("image cache write failed", zap.String("catalog_id", catalogID), zap.Error(err))
	}

	return image, nil
}

func imageCacheKey(catalogID string) string {
	return "image:" + catalogID
}
