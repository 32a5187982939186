// Package query turns catalog filters into a parameterized SQL predicate.
package query

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"orbitaledge/internal/apperror"
	"orbitaledge/internal/geo"
)

const invalidQuery = "Invalid query parameters"

var (
	bboxPattern   = regexp.MustCompile(`^-?\d+(\.\d+)?,-?\d+(\.\d+)?,-?\d+(\.\d+)?,-?\d+(\.\d+)?$`)
	numberPattern = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][-+]?\d+)?$`)
)

// ImageFilter holds the optional constraints of a catalog query. Nil fields
// are absent and contribute nothing to the predicate.
type ImageFilter struct {
	MinResolution    *float64
	MaxCloudCoverage *float64
	BBox             *orb.Bound
	Geometry         orb.Geometry
}

// ParseImageFilter reads minResolution, maxCloudCoverage and bbox from the
// query string. Unknown keys are ignored.
func ParseImageFilter(values url.Values) (ImageFilter, error) {
	var (
		f      ImageFilter
		issues []apperror.Issue
	)

	if raw, ok := lookup(values, "minResolution"); ok {
		v, err := parseNumber(raw)
		if err != nil {
			issues = append(issues, apperror.Issue{Path: "minResolution", Message: err.Error()})
		} else {
			f.MinResolution = &v
		}
	}

	if raw, ok := lookup(values, "maxCloudCoverage"); ok {
		v, err := parseNumber(raw)
		if err != nil {
			issues = append(issues, apperror.Issue{Path: "maxCloudCoverage", Message: err.Error()})
		} else {
			f.MaxCloudCoverage = &v
		}
	}

	if raw, ok := lookup(values, "bbox"); ok {
		b, err := parseBBox(raw)
		if err != nil {
			issues = append(issues, apperror.Issue{Path: "bbox", Message: err.Error()})
		} else {
			f.BBox = &b
		}
	}

	if len(issues) > 0 {
		return ImageFilter{}, apperror.Validation(invalidQuery, issues...)
	}
	return f, nil
}

// WithGeometry returns a copy of f constrained to footprints intersecting g.
func (f ImageFilter) WithGeometry(g orb.Geometry) ImageFilter {
	f.Geometry = g
	return f
}

// IsEmpty reports whether no constraint is set.
func (f ImageFilter) IsEmpty() bool {
	return f.MinResolution == nil && f.MaxCloudCoverage == nil && f.BBox == nil && f.Geometry == nil
}

// Predicate renders the filter as a WHERE clause with positional "?"
// placeholders. Values only ever travel in the returned args. An empty
// filter yields "TRUE". A filter that cannot be rendered is an error, never
// a dropped clause.
func (f ImageFilter) Predicate() (string, []any, error) {
	var (
		clauses []string
		args    []any
	)

	if f.MinResolution != nil {
		clauses = append(clauses, "resolution >= ?")
		args = append(args, *f.MinResolution)
	}
	if f.MaxCloudCoverage != nil {
		clauses = append(clauses, "cloud_coverage <= ?")
		args = append(args, *f.MaxCloudCoverage)
	}
	if f.BBox != nil {
		clauses = append(clauses, fmt.Sprintf("ST_Intersects(geometry, ST_MakeEnvelope(?, ?, ?, ?, %d))", geo.SRID))
		args = append(args, f.BBox.Min.Lon(), f.BBox.Min.Lat(), f.BBox.Max.Lon(), f.BBox.Max.Lat())
	}
	if f.Geometry != nil {
		text, err := geo.MarshalGeometry(f.Geometry)
		if err != nil {
			return "", nil, fmt.Errorf("encode search geometry: %w", err)
		}
		clauses = append(clauses, fmt.Sprintf("ST_Intersects(geometry, ST_SetSRID(ST_GeomFromGeoJSON(?), %d))", geo.SRID))
		args = append(args, string(text))
	}

	if len(clauses) == 0 {
		return "TRUE", nil, nil
	}
	return strings.Join(clauses, " AND "), args, nil
}

// parseNumber accepts plain decimal notation with an optional exponent.
// NaN, Inf and hex floats are rejected.
func parseNumber(raw string) (float64, error) {
	if !numberPattern.MatchString(raw) {
		return 0, fmt.Errorf("must be a number")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("must be a finite number")
	}
	return v, nil
}

func parseBBox(raw string) (orb.Bound, error) {
	if !bboxPattern.MatchString(raw) {
		return orb.Bound{}, fmt.Errorf("expected minLon,minLat,maxLon,maxLat")
	}

	parts := strings.Split(raw, ",")
	nums := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("expected minLon,minLat,maxLon,maxLat")
		}
		nums[i] = v
	}

	return orb.Bound{
		Min: orb.Point{nums[0], nums[1]},
		Max: orb.Point{nums[2], nums[3]},
	}, nil
}

// lookup treats an empty value the same as an absent key.
func lookup(values url.Values, key string) (string, bool) {
	v := strings.TrimSpace(values.Get(key))
	return v, v != ""
}
