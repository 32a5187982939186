package geo

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbitaledge/internal/apperror"
)

const insideSquare = `{"type":"Polygon","coordinates":[[[0.1,0.1],[0.1,0.2],[0.2,0.2],[0.2,0.1],[0.1,0.1]]]}`

func issuesOf(t *testing.T, err error) []apperror.Issue {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected *apperror.Error, got %T", err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	return appErr.Issues
}

func paths(issues []apperror.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Path)
	}
	return out
}

func TestValidateGeometry_Polygon(t *testing.T) {
	g, err := ValidateGeometry([]byte(insideSquare))
	require.NoError(t, err)

	poly, ok := g.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, poly, 1)
	assert.Len(t, poly[0], 5)
	assert.Equal(t, orb.Point{0.1, 0.1}, poly[0][0])
}

func TestValidateGeometry_MultiPolygon(t *testing.T) {
	raw := `{"type":"MultiPolygon","coordinates":[
		[[[0,0],[0,1],[1,1],[1,0],[0,0]]],
		[[[10,10],[10,11],[11,11],[11,10],[10,10]]]
	]}`

	g, err := ValidateGeometry([]byte(raw))
	require.NoError(t, err)

	mp, ok := g.(orb.MultiPolygon)
	require.True(t, ok)
	assert.Len(t, mp, 2)
}

func TestValidateGeometry_RejectsOtherTypes(t *testing.T) {
	for _, typ := range []string{"Point", "LineString", "MultiPoint", "MultiLineString", "GeometryCollection", "Feature"} {
		t.Run(typ, func(t *testing.T) {
			raw := `{"type":"` + typ + `","coordinates":[1,2]}`
			issues := issuesOf(t, validate(raw))
			require.Len(t, issues, 1)
			assert.Equal(t, "type", issues[0].Path)
			assert.Contains(t, issues[0].Message, typ)
		})
	}
}

func TestValidateGeometry_EnumeratesEveryIssue(t *testing.T) {
	raw := `{"type":"Polygon","coordinates":[[[0,0],[0,"x"],[200,1],[1,0,5],[0,0]]]}`

	issues := issuesOf(t, validate(raw))

	assert.ElementsMatch(t, []string{
		"coordinates.0.1.1",
		"coordinates.0.2.0",
		"coordinates.0.3",
	}, paths(issues))
}

func TestValidateGeometry_MissingFields(t *testing.T) {
	issues := issuesOf(t, validate(`{}`))
	assert.ElementsMatch(t, []string{"type", "coordinates"}, paths(issues))

	issues = issuesOf(t, validate(`{"type":7,"coordinates":null}`))
	assert.ElementsMatch(t, []string{"type", "coordinates"}, paths(issues))
}

func TestValidateGeometry_RingRules(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		path    string
		message string
	}{
		{
			name:    "too few positions",
			raw:     `{"type":"Polygon","coordinates":[[[0,0],[1,1],[0,0]]]}`,
			path:    "coordinates.0",
			message: "at least 4 positions",
		},
		{
			name:    "not closed",
			raw:     `{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[1,0]]]}`,
			path:    "coordinates.0",
			message: "closed",
		},
		{
			name:    "empty polygon",
			raw:     `{"type":"Polygon","coordinates":[]}`,
			path:    "coordinates",
			message: "at least one ring",
		},
		{
			name:    "latitude out of range",
			raw:     `{"type":"Polygon","coordinates":[[[0,0],[0,91],[1,1],[1,0],[0,0]]]}`,
			path:    "coordinates.0.1.1",
			message: "latitude",
		},
		{
			name:    "multipolygon nesting too shallow",
			raw:     `{"type":"MultiPolygon","coordinates":[[[0,0],[0,1],[1,1],[1,0],[0,0]]]}`,
			path:    "coordinates.0.0",
			message: "at least 4 positions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := issuesOf(t, validate(tt.raw))
			require.NotEmpty(t, issues)
			assert.Equal(t, tt.path, issues[0].Path)
			assert.Contains(t, issues[0].Message, tt.message)
		})
	}
}

func TestValidateGeometry_NotAnObject(t *testing.T) {
	for _, raw := range []string{`[1,2,3]`, `"Polygon"`, `not json`} {
		issues := issuesOf(t, validate(raw))
		require.Len(t, issues, 1)
		assert.Equal(t, "", issues[0].Path)
	}
}

func TestValidateGeometry_DecodeMessages(t *testing.T) {
	for _, tc := range []struct {
		raw, want string
	}{
		{`not json`, "invalid JSON"},
		{`{"type":`, "invalid JSON"},
		{`[1,2,3]`, "body must be a JSON object"},
		{`"Polygon"`, "body must be a JSON object"},
		{`{"type":"Polygon","coordinates":[[[1e400,0],[0,1],[1,1],[0,0]]]}`, "number out of range"},
	} {
		raw, want := tc.raw, tc.want
		t.Run(raw, func(t *testing.T) {
			issues := issuesOf(t, validate(raw))
			require.Len(t, issues, 1)
			assert.Equal(t, "", issues[0].Path)
			assert.Equal(t, want, issues[0].Message)
		})
	}
}

func TestValidateGeometry_CapsIssueCount(t *testing.T) {
	positions := make([]string, 0, 80)
	for i := 0; i < 80; i++ {
		positions = append(positions, `["a","b"]`)
	}
	raw := `{"type":"Polygon","coordinates":[[` + strings.Join(positions, ",") + `]]}`

	issues := issuesOf(t, validate(raw))

	assert.Len(t, issues, maxIssues+1)
	assert.Contains(t, issues[maxIssues].Message, "omitted")
}

func TestMarshalGeometry_RoundTripsValidatedInput(t *testing.T) {
	g, err := ValidateGeometry([]byte(`{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[1,0],[0,0]]],"crs":{"type":"name"}}`))
	require.NoError(t, err)

	out, err := MarshalGeometry(g)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "Polygon", decoded["type"])
	assert.NotContains(t, decoded, "crs")
}

func validate(raw string) error {
	_, err := ValidateGeometry([]byte(raw))
	return err
}
