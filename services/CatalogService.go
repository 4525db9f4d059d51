package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"emarket/entities"
	"emarket/models"
)

// CatalogClient is the remote catalog collaborator. Auth, base URL and retry
// policy are internal to the implementation; callers only see classified
// error kinds.
type CatalogClient interface {
	FetchPage(ctx context.Context, page int, limit int) (products []entities.Product, err error)
	FetchAll(ctx context.Context) (products []entities.Product, err error)
}

type CatalogService struct {
	client  *http.Client
	baseURL string
}

func NewCatalogService(baseURL string) *CatalogService {
	return &CatalogService{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
	}
}

func (c *CatalogService) FetchPage(ctx context.Context, page int, limit int) (products []entities.Product, err error) {
	url := fmt.Sprintf("%s/products?page=%d&limit=%d", c.baseURL, page, limit)
	return c.fetch(ctx, url)
}

func (c *CatalogService) FetchAll(ctx context.Context) (products []entities.Product, err error) {
	return c.fetch(ctx, c.baseURL+"/products")
}

func (c *CatalogService) fetch(ctx context.Context, url string) (products []entities.Product, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("fetch[1]: %v", err)
		err = models.ErrUnknown
		return
	}
	resp, e := c.client.Do(req)
	if e != nil {
		log.Printf("fetch[2]: %v", e)
		err = models.ClassifyError(e)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("fetch[3]: unexpected status %d", resp.StatusCode)
		err = models.ErrServerError
		return
	}
	err = json.NewDecoder(resp.Body).Decode(&products)
	if err != nil {
		log.Printf("fetch[4]: %v", err)
		err = models.ErrInvalidData
	}
	return
}
