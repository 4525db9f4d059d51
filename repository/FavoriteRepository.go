package repository

import (
	"database/sql"
	"errors"
	"log"

	"emarket/models"
)

type FavoriteRepository interface {
	Add(productId string) (err error)
	Remove(productId string) (err error)
	LoadAll() (ids map[string]struct{}, err error)
}

type FavoriteRepo struct {
	db *sql.DB
}

func NewFavoriteRepository(conn *sql.DB) (FavoriteRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	_, err = conn.Exec(`CREATE TABLE IF NOT EXISTS FavoriteProducts (
		ProductId TEXT PRIMARY KEY
	)`)
	if err != nil {
		return nil, err
	}
	return &FavoriteRepo{
		db: conn,
	}, nil
}

// Add is duplicate-tolerant: inserting a member twice leaves one row.
func (f *FavoriteRepo) Add(productId string) (err error) {
	_, err = f.db.Exec("INSERT INTO FavoriteProducts (ProductId) VALUES ($1) ON CONFLICT (ProductId) DO NOTHING", productId)
	if err != nil {
		log.Printf("Add: %v", err)
		err = models.ErrPersistenceFailure
	}
	return
}

func (f *FavoriteRepo) Remove(productId string) (err error) {
	_, err = f.db.Exec("DELETE FROM FavoriteProducts WHERE ProductId = $1", productId)
	if err != nil {
		log.Printf("Remove: %v", err)
		err = models.ErrPersistenceFailure
	}
	return
}

func (f *FavoriteRepo) LoadAll() (ids map[string]struct{}, err error) {
	ids = map[string]struct{}{}
	rows, e := f.db.Query("SELECT ProductId FROM FavoriteProducts")
	if e != nil {
		log.Printf("LoadAll[1]: %v", e)
		err = models.ErrPersistenceFailure
		return
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		err = rows.Scan(&id)
		if err != nil {
			log.Printf("LoadAll[2]: %v", err)
			err = models.ErrPersistenceFailure
			return
		}
		ids[id] = struct{}{}
	}
	return
}
