// Package repotest provides in-memory repositories for tests. Spatial
// predicates are approximated with bounding-box intersection.
package repotest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"gorm.io/gorm"

	"orbitaledge/internal/geo"
	"orbitaledge/internal/models"
	"orbitaledge/internal/query"
	"orbitaledge/internal/repository"
)

// ImageRepository holds catalog entries keyed by catalog id.
type ImageRepository struct {
	mu     sync.Mutex
	images []models.SatelliteImage

	// Err, when set, is returned by every method.
	Err   error
	Calls int
}

func NewImageRepository(images ...models.SatelliteImage) *ImageRepository {
	r := &ImageRepository{}
	_, _ = r.Upsert(context.Background(), images)
	return r
}

func (r *ImageRepository) Find(_ context.Context, filter query.ImageFilter) ([]models.ImageView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return nil, r.Err
	}

	out := make([]models.ImageView, 0)
	for _, img := range r.images {
		if matches(img, filter) {
			out = append(out, view(img))
		}
	}
	return out, nil
}

func (r *ImageRepository) GetByCatalogID(_ context.Context, catalogID string) (*models.ImageView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return nil, r.Err
	}

	for _, img := range r.images {
		if img.CatalogID == catalogID {
			v := view(img)
			return &v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *ImageRepository) Exists(_ context.Context, catalogID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return false, r.Err
	}
	return r.indexOf(catalogID) >= 0, nil
}

func (r *ImageRepository) Upsert(_ context.Context, images []models.SatelliteImage) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}

	for _, img := range images {
		if i := r.indexOf(img.CatalogID); i >= 0 {
			img.ID = r.images[i].ID
			r.images[i] = img
			continue
		}
		img.ID = uint(len(r.images) + 1)
		r.images = append(r.images, img)
	}
	return int64(len(images)), nil
}

func (r *ImageRepository) indexOf(catalogID string) int {
	for i, img := range r.images {
		if img.CatalogID == catalogID {
			return i
		}
	}
	return -1
}

func matches(img models.SatelliteImage, f query.ImageFilter) bool {
	if f.MinResolution != nil && img.Resolution < *f.MinResolution {
		return false
	}
	if f.MaxCloudCoverage != nil && img.CloudCoverage > *f.MaxCloudCoverage {
		return false
	}
	if img.Geometry.Geometry == nil {
		return f.BBox == nil && f.Geometry == nil
	}
	bound := img.Geometry.Geometry.Bound()
	if f.BBox != nil && !bound.Intersects(*f.BBox) {
		return false
	}
	if f.Geometry != nil && !bound.Intersects(f.Geometry.Bound()) {
		return false
	}
	return true
}

func view(img models.SatelliteImage) models.ImageView {
	v := models.ImageView{
		ID:                   img.ID,
		CatalogID:            img.CatalogID,
		AcquisitionDateStart: img.AcquisitionDateStart,
		AcquisitionDateEnd:   img.AcquisitionDateEnd,
		Resolution:           img.Resolution,
		CloudCoverage:        img.CloudCoverage,
		OffNadir:             img.OffNadir,
		Sensor:               img.Sensor,
		ScanDirection:        img.ScanDirection,
		SatelliteElevation:   img.SatelliteElevation,
		ImageBands:           img.ImageBands,
	}
	if img.Geometry.Geometry != nil {
		if raw, err := geo.MarshalGeometry(img.Geometry.Geometry); err == nil {
			v.Geometry = raw
		}
	}
	return v
}

// OrderRepository stores orders and joins them against an ImageRepository.
type OrderRepository struct {
	mu     sync.Mutex
	orders []models.Order
	images *ImageRepository
	now    func() time.Time

	Err error
}

func NewOrderRepository(images *ImageRepository) *OrderRepository {
	return &OrderRepository{images: images, now: func() time.Time { return time.Now().UTC() }}
}

// Create enforces the foreign key the real schema carries.
func (r *OrderRepository) Create(_ context.Context, order *models.Order) error {
	if r.Err != nil {
		return r.Err
	}
	r.images.mu.Lock()
	known := r.images.indexOf(order.ImageID) >= 0
	r.images.mu.Unlock()
	if !known {
		return repository.ErrImageNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	order.ID = uint(len(r.orders) + 1)
	order.OrderDate = r.now()
	r.orders = append(r.orders, *order)
	return nil
}

func (r *OrderRepository) List(_ context.Context, filter models.OrderFilter) ([]models.OrderView, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	r.mu.Lock()
	orders := append([]models.Order(nil), r.orders...)
	r.mu.Unlock()

	r.images.mu.Lock()
	defer r.images.mu.Unlock()

	out := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		if filter.ImageID != "" && o.ImageID != filter.ImageID {
			continue
		}
		if filter.StartDate != nil && o.OrderDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && o.OrderDate.After(*filter.EndDate) {
			continue
		}
		i := r.images.indexOf(o.ImageID)
		if i < 0 {
			continue
		}
		img := r.images.images[i]
		out = append(out, models.OrderView{
			ID:         o.ID,
			ImageID:    o.ImageID,
			OrderDate:  o.OrderDate,
			CatalogID:  img.CatalogID,
			Resolution: img.Resolution,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out, nil
}

// SetClock overrides the order date source.
func (r *OrderRepository) SetClock(now func() time.Time) {
	r.now = now
}

// Cache is a map-backed CacheRepository.
type Cache struct {
	mu   sync.Mutex
	data map[string][]byte
	Err  error
}

func NewCache() *Cache {
	return &Cache{data: map[string][]byte{}}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Pinger reports Err from every Ping.
type Pinger struct {
	Err error
}

func (p Pinger) Ping(context.Context) error {
	return p.Err
}

// ErrStore is a stand-in store failure.
var ErrStore = errors.New("connection refused")

// Square returns a closed axis-aligned square polygon with its lower-left
// corner at (lon, lat).
func Square(lon, lat, size float64) orb.Polygon {
	return orb.Polygon{{
		{lon, lat},
		{lon, lat + size},
		{lon + size, lat + size},
		{lon + size, lat},
		{lon, lat},
	}}
}

// Image returns a catalog entry with plausible attributes and the given
// footprint.
func Image(catalogID string, footprint orb.Geometry) models.SatelliteImage {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return models.SatelliteImage{
		CatalogID:            catalogID,
		AcquisitionDateStart: start,
		AcquisitionDateEnd:   start.Add(30 * time.Second),
		Resolution:           0.5,
		CloudCoverage:        10,
		OffNadir:             12.5,
		Sensor:               "OE-1",
		ScanDirection:        "forward",
		SatelliteElevation:   70.2,
		ImageBands:           "RGB,NIR",
		Geometry:             models.Footprint{Geometry: footprint},
	}
}
