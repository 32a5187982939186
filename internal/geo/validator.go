// Package geo validates untrusted GeoJSON before it reaches the store.
//
// Only bare Polygon and MultiPolygon geometries are accepted. Every problem in
// the payload is reported with a dotted path, not just the first one.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"orbitaledge/internal/apperror"
)

const (
	TypePolygon      = "Polygon"
	TypeMultiPolygon = "MultiPolygon"

	// SRID is the coordinate reference system of every stored footprint.
	SRID = 4326

	InvalidGeoJSON = "Invalid GeoJSON"

	maxIssues = 50
)

type collector struct {
	issues    []apperror.Issue
	truncated bool
}

func (c *collector) add(path, message string) {
	if c.truncated {
		return
	}
	if len(c.issues) == maxIssues {
		c.issues = append(c.issues, apperror.Issue{Path: "", Message: "too many issues, remaining ones omitted"})
		c.truncated = true
		return
	}
	c.issues = append(c.issues, apperror.Issue{Path: path, Message: message})
}

// ValidateGeometry parses raw as a GeoJSON geometry and returns it as an
// orb.Polygon or orb.MultiPolygon.
func ValidateGeometry(raw []byte) (orb.Geometry, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperror.Validation(InvalidGeoJSON, apperror.Issue{Path: "", Message: decodeMessage(err)})
	}

	c := &collector{}

	typ, isString := doc["type"].(string)
	switch {
	case doc["type"] == nil:
		c.add("type", "required")
	case !isString:
		c.add("type", "must be a string")
	case typ != TypePolygon && typ != TypeMultiPolygon:
		c.add("type", fmt.Sprintf("expected 'Polygon' | 'MultiPolygon', received %q", typ))
	}

	var geom orb.Geometry
	coords, present := doc["coordinates"]
	switch {
	case !present || coords == nil:
		c.add("coordinates", "required")
	case typ == TypePolygon:
		if p, ok := c.polygon("coordinates", coords); ok {
			geom = p
		}
	case typ == TypeMultiPolygon:
		if mp, ok := c.multiPolygon("coordinates", coords); ok {
			geom = mp
		}
	default:
		if _, ok := coords.([]any); !ok {
			c.add("coordinates", "must be an array")
		}
	}

	if len(c.issues) > 0 {
		return nil, apperror.Validation(InvalidGeoJSON, c.issues...)
	}
	return geom, nil
}

// decodeMessage describes why raw could not be decoded into an object.
func decodeMessage(err error) string {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		numErr    *strconv.NumError
	)
	switch {
	case errors.As(err, &syntaxErr):
		return "invalid JSON"
	case errors.As(err, &numErr):
		return "number out of range"
	case errors.As(err, &typeErr) && strings.HasPrefix(typeErr.Value, "number"):
		return "number out of range"
	}
	return "body must be a JSON object"
}

// MarshalGeometry renders g as normalized GeoJSON text.
func MarshalGeometry(g orb.Geometry) ([]byte, error) {
	return geojson.NewGeometry(g).MarshalJSON()
}

func (c *collector) multiPolygon(path string, v any) (orb.MultiPolygon, bool) {
	arr, ok := v.([]any)
	if !ok {
		c.add(path, "expected array of polygons")
		return nil, false
	}
	if len(arr) == 0 {
		c.add(path, "multipolygon must contain at least one polygon")
		return nil, false
	}

	valid := true
	mp := make(orb.MultiPolygon, 0, len(arr))
	for i, pv := range arr {
		p, ok := c.polygon(join(path, i), pv)
		if !ok {
			valid = false
			continue
		}
		mp = append(mp, p)
	}
	return mp, valid
}

func (c *collector) polygon(path string, v any) (orb.Polygon, bool) {
	arr, ok := v.([]any)
	if !ok {
		c.add(path, "expected array of linear rings")
		return nil, false
	}
	if len(arr) == 0 {
		c.add(path, "polygon must contain at least one ring")
		return nil, false
	}

	valid := true
	poly := make(orb.Polygon, 0, len(arr))
	for i, rv := range arr {
		r, ok := c.ring(join(path, i), rv)
		if !ok {
			valid = false
			continue
		}
		poly = append(poly, r)
	}
	return poly, valid
}

func (c *collector) ring(path string, v any) (orb.Ring, bool) {
	arr, ok := v.([]any)
	if !ok {
		c.add(path, "expected array of positions")
		return nil, false
	}

	valid := true
	if len(arr) < 4 {
		c.add(path, "linear ring must have at least 4 positions")
		valid = false
	}

	ring := make(orb.Ring, 0, len(arr))
	for i, pv := range arr {
		pt, ok := c.position(join(path, i), pv)
		if !ok {
			valid = false
			continue
		}
		ring = append(ring, pt)
	}

	if valid && !ring.Closed() {
		c.add(path, "linear ring must be closed (first and last positions equal)")
		valid = false
	}
	return ring, valid
}

func (c *collector) position(path string, v any) (orb.Point, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		c.add(path, "expected [longitude, latitude] pair of two numbers")
		return orb.Point{}, false
	}

	lon, lonOK := arr[0].(float64)
	lat, latOK := arr[1].(float64)
	valid := true
	if !lonOK || math.IsNaN(lon) || math.IsInf(lon, 0) {
		c.add(join(path, 0), "expected number")
		valid = false
	} else if lon < -180 || lon > 180 {
		c.add(join(path, 0), "longitude must be between -180 and 180")
		valid = false
	}
	if !latOK || math.IsNaN(lat) || math.IsInf(lat, 0) {
		c.add(join(path, 1), "expected number")
		valid = false
	} else if lat < -90 || lat > 90 {
		c.add(join(path, 1), "latitude must be between -90 and 90")
		valid = false
	}
	return orb.Point{lon, lat}, valid
}

func join(path string, i int) string {
	return path + "." + strconv.Itoa(i)
}
