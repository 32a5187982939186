package models

import (
	"time"

	"gorm.io/datatypes"
)

// SatelliteImage is a catalog entry. Entries are loaded out of band and never
// modified by the API.
type SatelliteImage struct {
	ID                   uint      `gorm:"primaryKey"`
	CatalogID            string    `gorm:"column:catalog_id;size:64;not null;uniqueIndex"`
	AcquisitionDateStart time.Time `gorm:"not null"`
	AcquisitionDateEnd   time.Time `gorm:"not null"`
	Resolution           float64   `gorm:"not null;index"`
	CloudCoverage        float64   `gorm:"not null;index"`
	OffNadir             float64
	Sensor               string `gorm:"size:64"`
	ScanDirection        string `gorm:"size:32"`
	SatelliteElevation   float64
	ImageBands           string
	Geometry             Footprint `gorm:"type:geometry(Geometry,4326);not null"`
	CreatedAt            time.Time `gorm:"autoCreateTime"`
}

// ImageView is the wire shape of a catalog entry.
type ImageView struct {
	ID                   uint           `json:"id"`
	CatalogID            string         `json:"catalogID" gorm:"column:catalog_id"`
	AcquisitionDateStart time.Time      `json:"acquisitionDateStart"`
	AcquisitionDateEnd   time.Time      `json:"acquisitionDateEnd"`
	Resolution           float64        `json:"resolution"`
	CloudCoverage        float64        `json:"cloudCoverage"`
	OffNadir             float64        `json:"offNadir"`
	Sensor               string         `json:"sensor"`
	ScanDirection        string         `json:"scanDirection"`
	SatelliteElevation   float64        `json:"satelliteElevation"`
	ImageBands           string         `json:"imageBands"`
	Geometry             datatypes.JSON `json:"geometry"`
}

// ImageViewColumns selects satellite_images into ImageView with the footprint
// re-encoded as a GeoJSON object.
var ImageViewColumns = []string{
	"id",
	"catalog_id",
	"acquisition_date_start",
	"acquisition_date_end",
	"resolution",
	"cloud_coverage",
	"off_nadir",
	"sensor",
	"scan_direction",
	"satellite_elevation",
	"image_bands",
	"ST_AsGeoJSON(geometry)::json AS geometry",
}
