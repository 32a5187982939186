package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"orbitaledge/internal/apperror"
	"orbitaledge/internal/geo"
	"orbitaledge/internal/models"
	"orbitaledge/internal/repository"
)

const minCatalogIDLength = 10

// CatalogLoader imports catalog entries from a GeoJSON FeatureCollection.
// Each feature's properties carry the entry attributes and its geometry is
// the footprint.
type CatalogLoader interface {
	Load(ctx context.Context, r io.Reader) (int64, error)
}

type catalogLoader struct {
	repo repository.ImageRepository
	log  *zap.Logger
}

func NewCatalogLoader(repo repository.ImageRepository, log *zap.Logger) CatalogLoader {
	return &catalogLoader{repo: repo, log: log}
}

func (l *catalogLoader) Load(ctx context.Context, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return 0, apperror.Validation("Invalid catalog",
			apperror.Issue{Path: "", Message: "expected a GeoJSON FeatureCollection"})
	}

	images := make([]models.SatelliteImage, 0, len(fc.Features))
	firstSeen := make(map[string]int, len(fc.Features))
	var issues []apperror.Issue
	for i, f := range fc.Features {
		path := "features." + strconv.Itoa(i)
		image, featureIssues := featureToImage(f, path)

		// A single upsert statement cannot touch the same catalog id twice.
		if len(image.CatalogID) >= minCatalogIDLength {
			if first, dup := firstSeen[image.CatalogID]; dup {
				featureIssues = append(featureIssues, apperror.Issue{
					Path:    path + ".properties.catalogID",
					Message: fmt.Sprintf("duplicates features.%d", first),
				})
			} else {
				firstSeen[image.CatalogID] = i
			}
		}

		if len(featureIssues) > 0 {
			issues = append(issues, featureIssues...)
			continue
		}
		images = append(images, image)
	}
	if len(issues) > 0 {
		return 0, apperror.Validation("Invalid catalog", issues...)
	}

	n, err := l.repo.Upsert(ctx, images)
	if err != nil {
		return 0, apperror.Internal("failed to store catalog", err)
	}

	l.log.Info("catalog loaded", zap.Int("features", len(fc.Features)), zap.Int64("rows", n))
	return n, nil
}

func featureToImage(f *geojson.Feature, path string) (models.SatelliteImage, []apperror.Issue) {
	var issues []apperror.Issue
	fail := func(field, message string) {
		issues = append(issues, apperror.Issue{Path: path + "." + field, Message: message})
	}

	props := f.Properties
	image := models.SatelliteImage{
		CatalogID:          props.MustString("catalogID", props.MustString("catalog_id", "")),
		Resolution:         props.MustFloat64("resolution", 0),
		CloudCoverage:      props.MustFloat64("cloudCoverage", props.MustFloat64("cloud_coverage", 0)),
		OffNadir:           props.MustFloat64("offNadir", props.MustFloat64("off_nadir", 0)),
		Sensor:             props.MustString("sensor", ""),
		ScanDirection:      props.MustString("scanDirection", props.MustString("scan_direction", "")),
		SatelliteElevation: props.MustFloat64("satelliteElevation", props.MustFloat64("satellite_elevation", 0)),
		ImageBands:         props.MustString("imageBands", props.MustString("image_bands", "")),
	}

	if len(image.CatalogID) < minCatalogIDLength {
		fail("properties.catalogID", fmt.Sprintf("must be at least %d characters", minCatalogIDLength))
	}
	if image.Resolution <= 0 {
		fail("properties.resolution", "must be a positive number")
	}

	var err error
	if image.AcquisitionDateStart, err = parseTimeProperty(props, "acquisitionDateStart", "acquisition_date_start"); err != nil {
		fail("properties.acquisitionDateStart", err.Error())
	}
	if image.AcquisitionDateEnd, err = parseTimeProperty(props, "acquisitionDateEnd", "acquisition_date_end"); err != nil {
		fail("properties.acquisitionDateEnd", err.Error())
	}

	if f.Geometry == nil {
		fail("geometry", "required")
		return image, issues
	}
	raw, err := geo.MarshalGeometry(f.Geometry)
	if err != nil {
		fail("geometry", err.Error())
		return image, issues
	}
	footprint, err := geo.ValidateGeometry(raw)
	if err != nil {
		if appErr, ok := apperror.As(err); ok {
			for _, issue := range appErr.Issues {
				fail("geometry."+issue.Path, issue.Message)
			}
		}
		return image, issues
	}
	image.Geometry = models.Footprint{Geometry: footprint}

	return image, issues
}

func parseTimeProperty(props geojson.Properties, keys ...string) (time.Time, error) {
	for _, key := range keys {
		if raw := props.MustString(key, ""); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return time.Time{}, fmt.Errorf("must be an RFC 3339 timestamp")
			}
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("required")
}
