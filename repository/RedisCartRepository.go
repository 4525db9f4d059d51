package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"

	"emarket/entities"
	"emarket/models"

	"github.com/redis/go-redis/v9"
)

const cartKey = "cart:lines"

// RedisCartRepo keeps the whole cart as one JSON blob keyed by product id.
// No expiration: the cart must survive restarts the same way the SQL store does.
type RedisCartRepo struct {
	rdb *redis.Client
	ctx context.Context
}

func NewRedisCartRepository(redis_conn *redis.Client, _ctx context.Context) (CartRepository, error) {
	if redis_conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := redis_conn.Ping(_ctx).Err()
	if err != nil {
		return nil, err
	}
	return &RedisCartRepo{
		rdb: redis_conn,
		ctx: _ctx,
	}, nil
}

func (c *RedisCartRepo) getLines() (lines map[string]entities.CartLine, err error) {
	lines = map[string]entities.CartLine{}
	val, e := c.rdb.Get(c.ctx, cartKey).Result()
	if e != nil {
		if e == redis.Nil {
			return
		}
		log.Printf("getLines: %v", e)
		err = models.ErrPersistenceFailure
		return
	}
	err = json.Unmarshal([]byte(val), &lines)
	if err != nil {
		log.Printf("getLines: Unmarshal: %v", err)
		err = models.ErrPersistenceFailure
	}
	return
}

func (c *RedisCartRepo) setLines(lines map[string]entities.CartLine) (err error) {
	jsonData, err := json.Marshal(lines)
	if err != nil {
		log.Printf("setLines: Marshal: %v", err)
		err = models.ErrPersistenceFailure
		return
	}
	err = c.rdb.Set(c.ctx, cartKey, jsonData, 0).Err()
	if err != nil {
		log.Printf("setLines: %v", err)
		err = models.ErrPersistenceFailure
	}
	return
}

func (c *RedisCartRepo) AddOrIncrement(line entities.CartLine) (err error) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	lines, e := c.getLines()
	if e != nil {
		err = e
		return
	}
	if existing, ok := lines[line.ProductId]; ok {
		existing.Quantity = existing.Quantity + line.Quantity
		lines[line.ProductId] = existing
	} else {
		lines[line.ProductId] = line
	}
	err = c.setLines(lines)
	return
}

func (c *RedisCartRepo) SetQuantity(productId string, quantity int) (err error) {
	if quantity < 1 {
		return c.Remove(productId)
	}
	lines, e := c.getLines()
	if e != nil {
		err = e
		return
	}
	existing, ok := lines[productId]
	if !ok {
		return
	}
	existing.Quantity = quantity
	lines[productId] = existing
	err = c.setLines(lines)
	return
}

func (c *RedisCartRepo) Remove(productId string) (err error) {
	lines, e := c.getLines()
	if e != nil {
		err = e
		return
	}
	if _, ok := lines[productId]; !ok {
		return
	}
	delete(lines, productId)
	err = c.setLines(lines)
	return
}

func (c *RedisCartRepo) Clear() (err error) {
	err = c.rdb.Del(c.ctx, cartKey).Err()
	if err != nil {
		log.Printf("Clear: %v", err)
		err = models.ErrPersistenceFailure
	}
	return
}

func (c *RedisCartRepo) LoadAll() (result []entities.CartLine, err error) {
	lines, e := c.getLines()
	if e != nil {
		err = e
		return
	}
	for _, line := range lines {
		result = append(result, line)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ProductId < result[j].ProductId
	})
	return
}
