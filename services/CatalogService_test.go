package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"emarket/handlers"
	"emarket/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_FetchPageAndFetchAll(t *testing.T) {
	server := httptest.NewServer(handlers.NewHandler(catalogPage(1, 10)).Router())
	defer server.Close()
	catalog := NewCatalogService(server.URL)

	page, err := catalog.FetchPage(context.Background(), 2, 4)
	require.NoError(t, err)
	require.Len(t, page, 4)
	assert.Equal(t, "5", page[0].Id)

	all, err := catalog.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestCatalogService_PagePastEndIsEmpty(t *testing.T) {
	server := httptest.NewServer(handlers.NewHandler(catalogPage(1, 4)).Router())
	defer server.Close()
	catalog := NewCatalogService(server.URL)

	page, err := catalog.FetchPage(context.Background(), 5, 4)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestCatalogService_ServerFailureIsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	catalog := NewCatalogService(server.URL)

	_, err := catalog.FetchPage(context.Background(), 1, 4)
	assert.Equal(t, models.ErrServerError, err)
}

func TestCatalogService_BrokenBodyIsInvalidData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()
	catalog := NewCatalogService(server.URL)

	_, err := catalog.FetchAll(context.Background())
	assert.Equal(t, models.ErrInvalidData, err)
}

func TestCatalogService_UnreachableHostIsClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()
	catalog := NewCatalogService(url)

	_, err := catalog.FetchPage(context.Background(), 1, 4)
	require.Error(t, err)
	assert.Equal(t, models.ErrNetworkUnavailable, err)
}
