package query

import (
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbitaledge/internal/apperror"
)

func TestParseImageFilter(t *testing.T) {
	f, err := ParseImageFilter(url.Values{
		"minResolution":    {"0.5"},
		"maxCloudCoverage": {"20"},
		"bbox":             {"-10.5,-5,10,5.25"},
		"unrelated":        {"x"},
	})
	require.NoError(t, err)

	require.NotNil(t, f.MinResolution)
	assert.Equal(t, 0.5, *f.MinResolution)
	require.NotNil(t, f.MaxCloudCoverage)
	assert.Equal(t, 20.0, *f.MaxCloudCoverage)
	require.NotNil(t, f.BBox)
	assert.Equal(t, orb.Point{-10.5, -5}, f.BBox.Min)
	assert.Equal(t, orb.Point{10, 5.25}, f.BBox.Max)
	assert.Nil(t, f.Geometry)
}

func TestParseImageFilter_EmptyValuesAreAbsent(t *testing.T) {
	f, err := ParseImageFilter(url.Values{"minResolution": {""}, "bbox": {"  "}})
	require.NoError(t, err)
	assert.True(t, f.IsEmpty())
}

func TestParseImageFilter_EnumeratesIssues(t *testing.T) {
	_, err := ParseImageFilter(url.Values{
		"minResolution":    {"high"},
		"maxCloudCoverage": {"1e"},
		"bbox":             {"1,2,3"},
	})
	require.Error(t, err)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)

	var got []string
	for _, i := range appErr.Issues {
		got = append(got, i.Path)
	}
	assert.Equal(t, []string{"minResolution", "maxCloudCoverage", "bbox"}, got)
}

func TestParseImageFilter_RejectsNonDecimalNumbers(t *testing.T) {
	for _, raw := range []string{"NaN", "nan", "Inf", "-Inf", "+Inf", "infinity", "0x1p-2", "1_000", "1e400", ".5", "+1"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseImageFilter(url.Values{
				"minResolution":    {raw},
				"maxCloudCoverage": {raw},
			})
			require.Error(t, err)

			appErr, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
			require.Len(t, appErr.Issues, 2)
			assert.Equal(t, "minResolution", appErr.Issues[0].Path)
			assert.Equal(t, "maxCloudCoverage", appErr.Issues[1].Path)
		})
	}
}

func TestParseImageFilter_AcceptsExponent(t *testing.T) {
	f, err := ParseImageFilter(url.Values{"minResolution": {"5e-1"}, "maxCloudCoverage": {"2E+1"}})
	require.NoError(t, err)
	assert.Equal(t, 0.5, *f.MinResolution)
	assert.Equal(t, 20.0, *f.MaxCloudCoverage)
}

func TestParseImageFilter_BBoxShape(t *testing.T) {
	for _, raw := range []string{"1,2,3,4,5", "a,b,c,d", "1 ,2,3,4", "1e3,2,3,4", "+1,2,3,4", "1.,2,3,4"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseImageFilter(url.Values{"bbox": {raw}})
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}
}

func TestPredicate_Empty(t *testing.T) {
	sql, args, err := ImageFilter{}.Predicate()
	require.NoError(t, err)
	assert.Equal(t, "TRUE", sql)
	assert.Empty(t, args)
}

func TestPredicate_AllFilters(t *testing.T) {
	minRes, maxCloud := 1.0, 30.0
	bound := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}
	aoi := orb.Polygon{{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}}

	f := ImageFilter{MinResolution: &minRes, MaxCloudCoverage: &maxCloud, BBox: &bound}.WithGeometry(aoi)
	sql, args, err := f.Predicate()
	require.NoError(t, err)

	assert.Equal(t,
		"resolution >= ? AND cloud_coverage <= ? AND "+
			"ST_Intersects(geometry, ST_MakeEnvelope(?, ?, ?, ?, 4326)) AND "+
			"ST_Intersects(geometry, ST_SetSRID(ST_GeomFromGeoJSON(?), 4326))",
		sql)
	require.Len(t, args, 7)
	assert.Equal(t, []any{1.0, 30.0, 0.0, 0.0, 1.0, 1.0}, args[:6])
	assert.Contains(t, args[6], `"type":"Polygon"`)
	assert.Equal(t, strings.Count(sql, "?"), len(args))
}

func TestPredicate_ValuesNeverInlined(t *testing.T) {
	injected := "1; DROP TABLE orders"
	_, err := ParseImageFilter(url.Values{"minResolution": {injected}})
	require.Error(t, err)

	aoi := orb.Polygon{{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}}
	sql, args, err := ImageFilter{}.WithGeometry(aoi).Predicate()
	require.NoError(t, err)

	assert.NotContains(t, sql, "Polygon")
	assert.Len(t, args, 1)
}

func TestPredicate_UnencodableGeometry(t *testing.T) {
	minRes := 1.0
	aoi := orb.Polygon{{{math.NaN(), 0}, {0, 1}, {1, 1}, {1, 0}, {math.NaN(), 0}}}

	sql, args, err := ImageFilter{MinResolution: &minRes}.WithGeometry(aoi).Predicate()
	assert.Error(t, err)
	assert.Empty(t, sql)
	assert.Nil(t, args)
}

func TestWithGeometry_DoesNotMutateReceiver(t *testing.T) {
	base := ImageFilter{}
	_ = base.WithGeometry(orb.Polygon{{{0, 0}, {0, 1}, {1, 1}, {0, 0}}})
	assert.Nil(t, base.Geometry)
}
