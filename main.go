package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"emarket/entities"
	"emarket/handlers"
	"emarket/repository"
	"emarket/services"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
)

var db *sql.DB

func main() {
	_ = godotenv.Load()
	initDB()
	defer db.Close()

	cartR, err := initCartRepository()
	if err != nil {
		panic(err)
	}
	favR, err := repository.NewFavoriteRepository(db)
	if err != nil {
		panic(err)
	}
	log.Printf("stores ready")

	notifier := services.NewNotificationService()

	baseURL := os.Getenv("CATALOG_BASE_URL")
	if baseURL == "" {
		baseURL = startMockCatalog()
	}
	catalog := services.NewCatalogService(baseURL)

	carts := services.NewCartService(cartR, notifier)
	favorites := services.NewFavoriteService(favR, notifier)
	list := services.NewProductListService(catalog, carts, favorites, notifier, pageLimit())
	defer list.Close()

	done := make(chan struct{}, 8)
	list.OnChange(func(snap entities.ListSnapshot) {
		log.Printf("state=%s products=%d fetching=%v lastPage=%v cart=%d favorites=%d",
			snap.State, len(snap.Products), snap.IsFetching, snap.IsLastPage,
			snap.CartTotalQuantity, len(snap.FavoriteIds))
		if !snap.IsFetching {
			select {
			case done <- struct{}{}:
			default:
			}
		}
	})

	list.ResetAndFetchFirstPage()
	waitSettled(done)
	list.FetchNextPage()
	waitSettled(done)

	snap := list.Snapshot()
	if len(snap.Products) > 0 {
		first := snap.Products[0]
		if err := list.AddToCart(first); err != nil {
			log.Printf("add to cart: %v", err)
		}
		if _, err := list.ToggleFavorite(first.Id); err != nil {
			log.Printf("toggle favorite: %v", err)
		}
	}

	summary, err := carts.Summary()
	if err != nil {
		log.Printf("cart summary: %v", err)
		return
	}
	log.Printf("cart lines=%d total=%.2f", len(summary.Items), summary.TotalPrice)
}

func waitSettled(done chan struct{}) {
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Printf("timed out waiting for fetch")
	}
}

func pageLimit() int {
	limit := services.DefaultPageLimit
	if v := os.Getenv("PAGE_LIMIT"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	return limit
}

func initDB() {
	driver := os.Getenv("DATABASE_DRIVER")
	var err error
	if driver == "postgres" {
		host := os.Getenv("DATABASE_HOST")
		port := os.Getenv("DATABASE_PORT")
		user := os.Getenv("DATABASE_USER")
		pass := os.Getenv("DATABASE_PASSWORD")
		dbname := os.Getenv("DATABASE_NAME")
		connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, dbname)
		db, err = sql.Open("postgres", connStr)
	} else {
		path := os.Getenv("DATABASE_PATH")
		if path == "" {
			path = "emarket.db"
		}
		db, err = sql.Open("sqlite3", path)
	}
	if err != nil {
		panic(err)
	}
}

// initCartRepository prefers redis for the cart when configured, matching the
// SQL-backed favorites either way.
func initCartRepository() (repository.CartRepository, error) {
	redis_host := os.Getenv("REDIS_HOST")
	if redis_host == "" {
		return repository.NewCartRepository(db)
	}
	redis_port := os.Getenv("REDIS_PORT")
	rdb := redis.NewClient(&redis.Options{
		Addr:     redis_host + ":" + redis_port,
		Password: "",
		DB:       0,
	})
	ctx, cncl := context.WithTimeout(context.Background(), 5*time.Second)
	defer cncl()
	if status := rdb.Ping(ctx); status.Err() != nil {
		return nil, fmt.Errorf("redis is not working: %w", status.Err())
	}
	log.Printf("redis connected")
	return repository.NewRedisCartRepository(rdb, context.Background())
}

func startMockCatalog() string {
	ha := handlers.NewHandler(sampleProducts())
	go func() {
		if err := http.ListenAndServe(":8080", ha.Router()); err != nil {
			log.Printf("mock catalog: %v", err)
		}
	}()
	log.Printf("serving built-in catalog on :8080")
	return "http://localhost:8080"
}

func sampleProducts() []entities.Product {
	return []entities.Product{
		{Id: "1", CreatedAt: "2023-07-17T07:21:02.529Z", Name: "iPhone 15 Pro", Image: "https://placeimg.com/640/480/tech/1", Price: "999.99 ₺", Description: "Apple flagship", Model: "15 Pro", Brand: "Apple"},
		{Id: "2", CreatedAt: "2023-07-17T08:12:40.123Z", Name: "Samsung Galaxy S24", Image: "https://placeimg.com/640/480/tech/2", Price: "849.50 ₺", Description: "Samsung flagship", Model: "Galaxy S24", Brand: "Samsung"},
		{Id: "3", CreatedAt: "2023-07-18T01:02:03.456Z", Name: "Pixel 8", Image: "https://placeimg.com/640/480/tech/3", Price: "699.00 ₺", Description: "Google phone", Model: "Pixel 8", Brand: "Google"},
		{Id: "4", CreatedAt: "2023-07-18T09:30:00.000Z", Name: "Xiaomi 13T", Image: "https://placeimg.com/640/480/tech/4", Price: "449.90 ₺", Description: "Value flagship", Model: "13T", Brand: "Xiaomi"},
		{Id: "5", CreatedAt: "2023-07-19T11:45:10.987Z", Name: "iPhone SE", Image: "https://placeimg.com/640/480/tech/5", Price: "479.00 ₺", Description: "Compact Apple", Model: "SE", Brand: "Apple"},
		{Id: "6", CreatedAt: "2023-07-19T15:20:30.222Z", Name: "Galaxy A54", Image: "https://placeimg.com/640/480/tech/6", Price: "329.99 ₺", Description: "Midrange Samsung", Model: "A54", Brand: "Samsung"},
		{Id: "7", CreatedAt: "2023-07-20T10:00:00.000Z", Name: "OnePlus 12", Image: "https://placeimg.com/640/480/tech/7", Price: "799.00 ₺", Description: "Fast charging", Model: "12", Brand: "OnePlus"},
		{Id: "8", CreatedAt: "2023-07-20T18:05:45.111Z", Name: "Pixel 8 Pro", Image: "https://placeimg.com/640/480/tech/8", Price: "1.099,00 ₺", Description: "Google flagship", Model: "Pixel 8 Pro", Brand: "Google"},
	}
}
