package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orbitaledge/internal/apperror"
	"orbitaledge/internal/query"
	"orbitaledge/internal/repository/repotest"
)

const (
	insidePolygon   = `{"type":"Polygon","coordinates":[[[0.1,0.1],[0.1,0.2],[0.2,0.2],[0.2,0.1],[0.1,0.1]]]}`
	disjointPolygon = `{"type":"Polygon","coordinates":[[[10,10],[10,11],[11,11],[11,10],[10,10]]]}`
)

func newImageFixture() (*repotest.ImageRepository, *repotest.Cache, ImageService) {
	repo := repotest.NewImageRepository(repotest.Image("ABC1234567", repotest.Square(0, 0, 1)))
	cache := repotest.NewCache()
	return repo, cache, NewImageService(repo, cache, time.Minute, zap.NewNop())
}

func TestImageService_SearchIntersecting(t *testing.T) {
	_, _, svc := newImageFixture()

	images, err := svc.Search(context.Background(), []byte(insidePolygon))
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "ABC1234567", images[0].CatalogID)

	var geometry map[string]any
	require.NoError(t, json.Unmarshal(images[0].Geometry, &geometry))
	assert.Equal(t, "Polygon", geometry["type"])
}

func TestImageService_SearchDisjointIsEmptyNotNil(t *testing.T) {
	_, _, svc := newImageFixture()

	images, err := svc.Search(context.Background(), []byte(disjointPolygon))
	require.NoError(t, err)
	assert.NotNil(t, images)
	assert.Empty(t, images)
}

func TestImageService_SearchInvalidNeverReachesStore(t *testing.T) {
	repo, _, svc := newImageFixture()

	for _, body := range []string{
		`{"type":"Point","coordinates":[0,0]}`,
		`{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1]]]}`,
		`not json`,
	} {
		_, err := svc.Search(context.Background(), []byte(body))
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err), body)
	}
	assert.Zero(t, repo.Calls)
}

func TestImageService_SearchStoreFailure(t *testing.T) {
	repo, _, svc := newImageFixture()
	repo.Err = repotest.ErrStore

	_, err := svc.Search(context.Background(), []byte(insidePolygon))
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.ErrorIs(t, err, repotest.ErrStore)
}

func TestImageService_List(t *testing.T) {
	_, _, svc := newImageFixture()
	ctx := context.Background()

	all, err := svc.List(ctx, query.ImageFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	maxCloud := 5.0
	none, err := svc.List(ctx, query.ImageFilter{MaxCloudCoverage: &maxCloud})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestImageService_GetReadThrough(t *testing.T) {
	repo, cache, svc := newImageFixture()
	ctx := context.Background()

	first, err := svc.Get(ctx, "ABC1234567")
	require.NoError(t, err)
	assert.Equal(t, "ABC1234567", first.CatalogID)
	assert.Equal(t, 1, cache.Len())

	second, err := svc.Get(ctx, "ABC1234567")
	require.NoError(t, err)
	assert.Equal(t, first.CatalogID, second.CatalogID)
	assert.JSONEq(t, string(first.Geometry), string(second.Geometry))
	assert.Equal(t, 1, repo.Calls)
}

func TestImageService_GetMissing(t *testing.T) {
	_, cache, svc := newImageFixture()

	_, err := svc.Get(context.Background(), "ZZZ0000000")
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, "Image not found", err.Error())
	assert.Zero(t, cache.Len())
}

func TestImageService_GetCacheFailureFallsBackToStore(t *testing.T) {
	_, cache, svc := newImageFixture()
	cache.Err = repotest.ErrStore

	image, err := svc.Get(context.Background(), "ABC1234567")
	require.NoError(t, err)
	assert.Equal(t, "ABC1234567", image.CatalogID)
}

func TestImageService_GetStoreFailure(t *testing.T) {
	repo, _, svc := newImageFixture()
	repo.Err = repotest.ErrStore

	_, err := svc.Get(context.Background(), "ABC1234567")
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}
