// Package cart holds in-memory shopping cart state for a single client
// session. It never talks to the server; callers feed it catalog
// products and render from the snapshots it hands out.
package cart

import "sync"

// Product is the subset of a catalog record the cart needs. UnitPrice
// is captured into the line item at add time and does not change if the
// catalog later reprices the product.
type Product struct {
	ID        string
	Name      string
	UnitPrice float64
}

// Item is one cart line: a product with a quantity of at least 1.
type Item struct {
	Product  Product
	Quantity int
}

// Subscriber is invoked after every mutation with a snapshot of the
// cart contents. UI layers hang rendering off of it.
type Subscriber func(items []Item)

// Cart keys line items by product id. All methods are safe for
// concurrent use.
type Cart struct {
	mu    sync.Mutex
	items map[string]*Item
	order []string
	subs  []Subscriber
}

func New() *Cart {
	return &Cart{items: make(map[string]*Item)}
}

// Add inserts the product with quantity 1, or bumps the quantity if a
// line for it already exists. The existing line keeps the price it was
// added at.
func (c *Cart) Add(p Product) {
	c.mu.Lock()
	if item, ok := c.items[p.ID]; ok {
		item.Quantity++
	} else {
		c.items[p.ID] = &Item{Product: p, Quantity: 1}
		c.order = append(c.order, p.ID)
	}
	c.notify()
}

// Decrement lowers the quantity by one, removing the line entirely when
// it reaches zero. Unknown ids are a no-op.
func (c *Cart) Decrement(productID string) {
	c.mu.Lock()
	item, ok := c.items[productID]
	if !ok {
		c.mu.Unlock()
		return
	}
	if item.Quantity == 1 {
		c.drop(productID)
	} else {
		item.Quantity--
	}
	c.notify()
}

// Remove deletes the line regardless of quantity. Unknown ids are a
// no-op.
func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	if _, ok := c.items[productID]; !ok {
		c.mu.Unlock()
		return
	}
	c.drop(productID)
	c.notify()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = make(map[string]*Item)
	c.order = nil
	c.notify()
}

// Items returns the lines in the order their products were first added.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// TotalCount is the sum of quantities across all lines.
func (c *Cart) TotalCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// TotalPrice sums unit price times quantity, at add-time prices.
func (c *Cart) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, item := range c.items {
		total += item.Product.UnitPrice * float64(item.Quantity)
	}
	return total
}

// Subscribe registers fn to run after every mutation. Subscriptions
// last for the life of the cart.
func (c *Cart) Subscribe(fn Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// drop removes a line and its position entry. Caller holds mu.
func (c *Cart) drop(productID string) {
	delete(c.items, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// notify snapshots under the lock, releases it, then runs subscribers
// so they can call back into the cart.
func (c *Cart) notify() {
	items := c.snapshot()
	subs := c.subs
	c.mu.Unlock()
	for _, fn := range subs {
		fn(items)
	}
}

// snapshot copies the lines in insertion order. Caller holds mu.
func (c *Cart) snapshot() []Item {
	items := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, *c.items[id])
	}
	return items
}
