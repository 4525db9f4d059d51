package repository

import (
	"database/sql"
	"errors"
	"log"

	"emarket/entities"
	"emarket/models"
)

type CartRepository interface {
	AddOrIncrement(line entities.CartLine) (err error)
	SetQuantity(productId string, quantity int) (err error)
	Remove(productId string) (err error)
	Clear() (err error)
	LoadAll() (lines []entities.CartLine, err error)
}

type CartRepo struct {
	db *sql.DB
}

func NewCartRepository(conn *sql.DB) (CartRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	_, err = conn.Exec(`CREATE TABLE IF NOT EXISTS CartItems (
		ProductId TEXT PRIMARY KEY,
		Name TEXT NOT NULL,
		Price TEXT NOT NULL,
		Image TEXT NOT NULL,
		Quantity INTEGER NOT NULL CHECK (Quantity >= 1)
	)`)
	if err != nil {
		return nil, err
	}
	return &CartRepo{
		db: conn,
	}, nil
}

func (c *CartRepo) AddOrIncrement(line entities.CartLine) (err error) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	var current int
	row := c.db.QueryRow("SELECT Quantity FROM CartItems WHERE ProductId = $1", line.ProductId)
	err = row.Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			_, err = c.db.Exec("INSERT INTO CartItems (ProductId, Name, Price, Image, Quantity) VALUES ($1, $2, $3, $4, $5)",
				line.ProductId, line.Name, line.Price, line.Image, line.Quantity)
			if err != nil {
				log.Printf("AddOrIncrement[1]: %v", err)
				err = models.ErrPersistenceFailure
			}
			return
		}
		log.Printf("AddOrIncrement[2]: %v", err)
		err = models.ErrPersistenceFailure
		return
	}
	_, err = c.db.Exec("UPDATE CartItems SET Quantity = $1 WHERE ProductId = $2", current+line.Quantity, line.ProductId)
	if err != nil {
		log.Printf("AddOrIncrement[3]: %v", err)
		err = models.ErrPersistenceFailure
	}
	return
}

// SetQuantity overwrites a line's quantity. A requested quantity below 1 is
// treated as removal so a stored line can never drop under 1.
func (c *CartRepo) SetQuantity(productId string, quantity int) (err error) {
	if quantity < 1 {
		return c.Remove(productId)
	}
	_, err = c.db.Exec("UPDATE CartItems SET Quantity = $1 WHERE ProductId = $2", quantity, productId)
	if err != nil {
		log.Printf("SetQuantity: %v", err)
		err = models.ErrPersistenceFailure
	}
	return
}

func (c *CartRepo) Remove(productId string) (err error) {
	_, err = c.db.Exec("DELETE FROM CartItems WHERE ProductId = $1", productId)
	if err != nil {
		log.Printf("Remove: %v", err)
		err = models.ErrPersistenceFailure
	}
	return
}

func (c *CartRepo) Clear() (err error) {
	_, err = c.db.Exec("DELETE FROM CartItems")
	if err != nil {
		log.Printf("Clear: %v", err)
		err = models.ErrPersistenceFailure
	}
	return
}

func (c *CartRepo) LoadAll() (lines []entities.CartLine, err error) {
	rows, e := c.db.Query("SELECT ProductId, Name, Price, Image, Quantity FROM CartItems ORDER BY ProductId")
	if e != nil {
		log.Printf("LoadAll[1]: %v", e)
		err = models.ErrPersistenceFailure
		return
	}
	defer rows.Close()
	for rows.Next() {
		line := entities.CartLine{}
		err = rows.Scan(&line.ProductId, &line.Name, &line.Price, &line.Image, &line.Quantity)
		if err != nil {
			log.Printf("LoadAll[2]: %v", err)
			err = models.ErrPersistenceFailure
			return
		}
		lines = append(lines, line)
	}
	return
}
