package services

import (
	"sort"

	"emarket/entities"
	"emarket/repository"
)

// CartService layers quantity policy on top of the persistent cart store:
// lines merge by product id, decrementing a quantity-1 line removes it, and
// every successful mutation publishes the catalog-mutated topic. Failed store
// calls publish nothing.
type CartService struct {
	cr repository.CartRepository
	ns Notifier
}

func NewCartService(cartRepo repository.CartRepository, notifier Notifier) CartService {
	return CartService{
		cr: cartRepo,
		ns: notifier,
	}
}

func (cs *CartService) AddToCart(product entities.Product, quantity int) (err error) {
	if quantity < 1 {
		quantity = 1
	}
	line := entities.CartLine{
		ProductId: product.Id,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Quantity:  quantity,
	}
	err = cs.cr.AddOrIncrement(line)
	if err != nil {
		return
	}
	cs.ns.Publish(TopicCatalogMutated)
	return
}

// LoadItems returns the cart with duplicate lines merged by product id,
// ordered by product id.
func (cs *CartService) LoadItems() (items []entities.CartLine, err error) {
	lines, e := cs.cr.LoadAll()
	if e != nil {
		err = e
		return
	}
	merged := map[string]entities.CartLine{}
	for _, line := range lines {
		if existing, ok := merged[line.ProductId]; ok {
			existing.Quantity = existing.Quantity + line.Quantity
			merged[line.ProductId] = existing
		} else {
			merged[line.ProductId] = line
		}
	}
	for _, line := range merged {
		items = append(items, line)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProductId < items[j].ProductId
	})
	return
}

func (cs *CartService) IncreaseQuantity(productId string) (err error) {
	return cs.changeQuantity(productId, 1)
}

// DecreaseQuantity steps a line down by one; at quantity 1 the line is
// removed rather than stored at 0.
func (cs *CartService) DecreaseQuantity(productId string) (err error) {
	return cs.changeQuantity(productId, -1)
}

func (cs *CartService) changeQuantity(productId string, change int) (err error) {
	items, e := cs.LoadItems()
	if e != nil {
		err = e
		return
	}
	for _, item := range items {
		if item.ProductId != productId {
			continue
		}
		if item.Quantity+change < 1 {
			err = cs.cr.Remove(productId)
		} else {
			err = cs.cr.SetQuantity(productId, item.Quantity+change)
		}
		if err != nil {
			return
		}
		cs.ns.Publish(TopicCatalogMutated)
		return
	}
	return
}

func (cs *CartService) RemoveItem(productId string) (err error) {
	err = cs.cr.Remove(productId)
	if err != nil {
		return
	}
	cs.ns.Publish(TopicCatalogMutated)
	return
}

func (cs *CartService) ClearCart() (err error) {
	err = cs.cr.Clear()
	if err != nil {
		return
	}
	cs.ns.Publish(TopicCatalogMutated)
	return
}

func (cs *CartService) Summary() (summary entities.CartSummary, err error) {
	items, e := cs.LoadItems()
	if e != nil {
		err = e
		return
	}
	var total float64
	for _, item := range items {
		total = total + ParsePrice(item.Price)*float64(item.Quantity)
	}
	summary = entities.CartSummary{
		Items:      items,
		TotalPrice: total,
	}
	return
}

func (cs *CartService) TotalQuantity() (total int, err error) {
	items, e := cs.LoadItems()
	if e != nil {
		err = e
		return
	}
	for _, item := range items {
		total = total + item.Quantity
	}
	return
}
