package geo

import (
	"bytes"
	"encoding/json"

	"orbitaledge/internal/apperror"
)

type featureHead struct {
	Type     string          `json:"type"`
	Geometry json.RawMessage `json:"geometry"`
	Features []struct {
		Geometry json.RawMessage `json:"geometry"`
	} `json:"features"`
}

// ExtractAOI unwraps an uploaded area of interest to a bare geometry.
// A Feature yields its geometry and a FeatureCollection yields the first
// polygonal feature geometry, or the first geometry if none is polygonal.
// Anything else is returned unchanged for ValidateGeometry to judge.
func ExtractAOI(raw []byte) (json.RawMessage, error) {
	var head featureHead
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, apperror.Validation(InvalidGeoJSON, apperror.Issue{Path: "", Message: "body must be a JSON object"})
	}

	switch head.Type {
	case "Feature":
		if isNull(head.Geometry) {
			return nil, apperror.Validation(InvalidGeoJSON, apperror.Issue{Path: "geometry", Message: "feature has no geometry"})
		}
		return head.Geometry, nil

	case "FeatureCollection":
		if len(head.Features) == 0 {
			return nil, apperror.Validation(InvalidGeoJSON, apperror.Issue{Path: "features", Message: "feature collection is empty"})
		}
		for _, f := range head.Features {
			if isPolygonal(f.Geometry) {
				return f.Geometry, nil
			}
		}
		if isNull(head.Features[0].Geometry) {
			return nil, apperror.Validation(InvalidGeoJSON, apperror.Issue{Path: "features.0.geometry", Message: "feature has no geometry"})
		}
		return head.Features[0].Geometry, nil
	}

	return json.RawMessage(raw), nil
}

func isPolygonal(raw json.RawMessage) bool {
	if isNull(raw) {
		return false
	}
	var g struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return false
	}
	return g.Type == TypePolygon || g.Type == TypeMultiPolygon
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
