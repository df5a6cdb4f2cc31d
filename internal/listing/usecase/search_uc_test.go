package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo    *MockListingRepository
	cache   *MockListingCache
	photos  *MockPhotoStorage
	metrics *metrics.MetricsManager
	uc      *SearchUsecase
}

func newFixture() *fixture {
	f := &fixture{
		repo:    new(MockListingRepository),
		cache:   new(MockListingCache),
		photos:  new(MockPhotoStorage),
		metrics: metrics.NewMetricsManager("property-service"),
	}
	f.uc = NewSearchUsecase(f.repo, f.cache, f.photos, logger.NewNop(), f.metrics)
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.photos.AssertExpectations(t)
}

func TestSearchUsecase_ListAvailable(t *testing.T) {
	f := newFixture()
	listings := []*domain.Listing{
		{ID: "l-1", Active: true, Approved: true, PhotoKeys: []string{"photos/a.jpg"}},
		{ID: "l-2", Active: true, Approved: true},
	}
	f.repo.On("FindAvailable", mock.Anything).Return(listings, nil).Once()
	f.repo.On("Count", mock.Anything).Return(int64(7), nil).Once()
	f.photos.On("PhotoURLs", mock.Anything, []string{"photos/a.jpg"}).Return([]string{"http://minio/a.jpg?sig"}, nil).Once()

	page, err := f.uc.ListAvailable(context.Background())
	require.NoError(t, err)

	assert.Len(t, page.Listings, 2)
	assert.Equal(t, int64(7), page.TotalCount)
	assert.Equal(t, []string{"http://minio/a.jpg?sig"}, page.Listings[0].PhotoURLs)
	assert.Empty(t, page.Listings[1].PhotoURLs)
	f.assertExpectations(t)
}

func TestSearchUsecase_ListAvailable_RepositoryError(t *testing.T) {
	f := newFixture()
	dbErr := errors.New("connection refused")
	f.repo.On("FindAvailable", mock.Anything).Return(nil, dbErr).Once()

	_, err := f.uc.ListAvailable(context.Background())
	assert.ErrorIs(t, err, domain.ErrRepository)
	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SearchErrorsTotal.WithLabelValues("list")))
	f.assertExpectations(t)
}

func TestSearchUsecase_Search(t *testing.T) {
	f := newFixture()
	criteria := domain.Criteria{Location: domain.Ptr("austin"), MinGuests: domain.Ptr(2)}
	matched := []*domain.Listing{{ID: "l-1"}, {ID: "l-3"}}
	f.repo.On("Search", mock.Anything, criteria).Return(matched, nil).Once()
	f.repo.On("Count", mock.Anything).Return(int64(10), nil).Once()

	result, err := f.uc.Search(context.Background(), criteria)
	require.NoError(t, err)

	assert.Equal(t, int64(10), result.TotalCount)
	assert.Equal(t, int64(2), result.FilteredCount)
	assert.Equal(t, matched, result.Listings)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SearchRequestsTotal.WithLabelValues("search")))
	f.assertExpectations(t)
}

func TestSearchUsecase_Search_NoMatches(t *testing.T) {
	f := newFixture()
	f.repo.On("Search", mock.Anything, domain.Criteria{}).Return([]*domain.Listing{}, nil).Once()
	f.repo.On("Count", mock.Anything).Return(int64(3), nil).Once()

	result, err := f.uc.Search(context.Background(), domain.Criteria{})
	require.NoError(t, err)
	assert.Empty(t, result.Listings)
	assert.Equal(t, int64(0), result.FilteredCount)
	assert.Equal(t, int64(3), result.TotalCount)
}

func TestSearchUsecase_Search_CountError(t *testing.T) {
	f := newFixture()
	f.repo.On("Search", mock.Anything, domain.Criteria{}).Return([]*domain.Listing{}, nil).Once()
	f.repo.On("Count", mock.Anything).Return(int64(0), errors.New("timeout")).Once()

	_, err := f.uc.Search(context.Background(), domain.Criteria{})
	assert.ErrorIs(t, err, domain.ErrRepository)
}

func TestSearchUsecase_GetDetails_CacheHit(t *testing.T) {
	f := newFixture()
	cached := &domain.Listing{ID: "l-1", Name: "Cabin", PhotoKeys: []string{"k"}}
	f.cache.On("GetListing", mock.Anything, "l-1").Return(cached, nil).Once()
	f.photos.On("PhotoURLs", mock.Anything, []string{"k"}).Return([]string{"u"}, nil).Once()

	got, err := f.uc.GetDetails(context.Background(), "l-1")
	require.NoError(t, err)
	assert.Equal(t, "Cabin", got.Name)
	assert.Equal(t, []string{"u"}, got.PhotoURLs)
	f.repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestSearchUsecase_GetDetails_CacheMissLoadsAndStores(t *testing.T) {
	f := newFixture()
	stored := &domain.Listing{ID: "l-1", Name: "Cabin"}
	f.cache.On("GetListing", mock.Anything, "l-1").Return(nil, nil).Once()
	f.repo.On("FindByID", mock.Anything, "l-1").Return(stored, nil).Once()
	f.cache.On("SetListing", mock.Anything, stored).Return(nil).Once()

	got, err := f.uc.GetDetails(context.Background(), " l-1 ")
	require.NoError(t, err)
	assert.Same(t, stored, got)
	f.assertExpectations(t)
}

func TestSearchUsecase_GetDetails_CacheErrorsAreNotFatal(t *testing.T) {
	f := newFixture()
	stored := &domain.Listing{ID: "l-1"}
	f.cache.On("GetListing", mock.Anything, "l-1").Return(nil, errors.New("redis down")).Once()
	f.repo.On("FindByID", mock.Anything, "l-1").Return(stored, nil).Once()
	f.cache.On("SetListing", mock.Anything, stored).Return(errors.New("redis down")).Once()

	got, err := f.uc.GetDetails(context.Background(), "l-1")
	require.NoError(t, err)
	assert.Equal(t, "l-1", got.ID)
	f.assertExpectations(t)
}

func TestSearchUsecase_GetDetails_NotFound(t *testing.T) {
	f := newFixture()
	f.cache.On("GetListing", mock.Anything, "missing").Return(nil, nil).Once()
	f.repo.On("FindByID", mock.Anything, "missing").Return(nil, domain.ErrListingNotFound).Once()

	_, err := f.uc.GetDetails(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
	assert.NotErrorIs(t, err, domain.ErrRepository)
	f.cache.AssertNotCalled(t, "SetListing", mock.Anything, mock.Anything)
}

func TestSearchUsecase_GetDetails_ReturnsInactiveAndUnapprovedListings(t *testing.T) {
	tests := []struct {
		name    string
		listing *domain.Listing
	}{
		{"inactive", &domain.Listing{ID: "l-9", Active: false, Approved: true}},
		{"unapproved", &domain.Listing{ID: "l-9", Active: true, Approved: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.cache.On("GetListing", mock.Anything, "l-9").Return(nil, nil).Once()
			f.repo.On("FindByID", mock.Anything, "l-9").Return(tt.listing, nil).Once()
			f.cache.On("SetListing", mock.Anything, tt.listing).Return(nil).Once()

			got, err := f.uc.GetDetails(context.Background(), "l-9")
			require.NoError(t, err)
			assert.Same(t, tt.listing, got)
			assert.False(t, got.Eligible())
			f.assertExpectations(t)
		})
	}
}

func TestSearchUsecase_GetDetails_EmptyID(t *testing.T) {
	f := newFixture()

	for _, id := range []string{"", "   "} {
		_, err := f.uc.GetDetails(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrListingNotFound)
	}
	f.cache.AssertNotCalled(t, "GetListing", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestSearchUsecase_GetDetails_RepositoryError(t *testing.T) {
	f := newFixture()
	f.cache.On("GetListing", mock.Anything, "l-1").Return(nil, nil).Once()
	f.repo.On("FindByID", mock.Anything, "l-1").Return(nil, errors.New("boom")).Once()

	_, err := f.uc.GetDetails(context.Background(), "l-1")
	assert.ErrorIs(t, err, domain.ErrRepository)
}

func TestSearchUsecase_GetDetails_PhotoFailureKeepsListing(t *testing.T) {
	f := newFixture()
	stored := &domain.Listing{ID: "l-1", PhotoKeys: []string{"k"}}
	f.cache.On("GetListing", mock.Anything, "l-1").Return(stored, nil).Once()
	f.photos.On("PhotoURLs", mock.Anything, []string{"k"}).Return(nil, errors.New("bad creds")).Once()

	got, err := f.uc.GetDetails(context.Background(), "l-1")
	require.NoError(t, err)
	assert.Empty(t, got.PhotoURLs)
}

func TestSearchUsecase_ListCategories(t *testing.T) {
	cats := []domain.Category{{ID: "a", Name: "Apartment"}}

	t.Run("cache hit", func(t *testing.T) {
		f := newFixture()
		f.cache.On("GetCategories", mock.Anything).Return(cats, nil).Once()

		got, err := f.uc.ListCategories(context.Background())
		require.NoError(t, err)
		assert.Equal(t, cats, got)
		f.repo.AssertNotCalled(t, "ListCategories", mock.Anything)
	})

	t.Run("cache miss", func(t *testing.T) {
		f := newFixture()
		f.cache.On("GetCategories", mock.Anything).Return(nil, nil).Once()
		f.repo.On("ListCategories", mock.Anything).Return(cats, nil).Once()
		f.cache.On("SetCategories", mock.Anything, cats).Return(nil).Once()

		got, err := f.uc.ListCategories(context.Background())
		require.NoError(t, err)
		assert.Equal(t, cats, got)
		f.assertExpectations(t)
	})

	t.Run("store error", func(t *testing.T) {
		f := newFixture()
		f.cache.On("GetCategories", mock.Anything).Return(nil, nil).Once()
		f.repo.On("ListCategories", mock.Anything).Return(nil, errors.New("boom")).Once()

		_, err := f.uc.ListCategories(context.Background())
		assert.ErrorIs(t, err, domain.ErrRepository)
	})
}

func TestSearchUsecase_WithoutOptionalCollaborators(t *testing.T) {
	repo := new(MockListingRepository)
	uc := NewSearchUsecase(repo, nil, nil, logger.NewNop(), nil)
	stored := &domain.Listing{ID: "l-1", PhotoKeys: []string{"k"}}
	repo.On("FindByID", mock.Anything, "l-1").Return(stored, nil).Once()

	got, err := uc.GetDetails(context.Background(), "l-1")
	require.NoError(t, err)
	assert.Empty(t, got.PhotoURLs)
	repo.AssertExpectations(t)
}
