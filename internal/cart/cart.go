// Package cart holds the shopping-cart reducer. It is pure state: persistence
// lives in service.CartService.
package cart

// Product is the subset of a menu product the cart needs.
type Product struct {
	ID        int64
	Name      string
	UnitPrice int64
	ImageURL  string
}

// Item is one line of the cart. Prices are in XOF.
type Item struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	ImageURL  string `json:"image_url,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Subtotal returns unit price × quantity.
func (i Item) Subtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// Cart keeps items in insertion order. Product IDs are unique and every
// quantity is positive.
type Cart struct {
	Items []Item `json:"items"`
}

// Add puts one unit of p in the cart.
func (c *Cart) Add(p Product) {
	c.AddQuantity(p, 1)
}

// AddQuantity adds n units of p, merging with an existing line. n < 1 is ignored.
func (c *Cart) AddQuantity(p Product, n int) {
	if n < 1 || p.ID == 0 {
		return
	}
	if idx := c.index(p.ID); idx >= 0 {
		c.Items[idx].Quantity += n
		return
	}
	c.Items = append(c.Items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		ImageURL:  p.ImageURL,
		Quantity:  n,
	})
}

// Remove drops the line for productID. Unknown IDs are a no-op.
func (c *Cart) Remove(productID int64) {
	idx := c.index(productID)
	if idx < 0 {
		return
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
}

// UpdateQuantity sets the quantity of productID; q <= 0 removes the line.
func (c *Cart) UpdateQuantity(productID int64, q int) {
	if q <= 0 {
		c.Remove(productID)
		return
	}
	if idx := c.index(productID); idx >= 0 {
		c.Items[idx].Quantity = q
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Load replaces the contents with items, dropping invalid lines and merging
// duplicates in first-seen order.
func (c *Cart) Load(items []Item) {
	c.Items = nil
	for _, it := range items {
		if it.ProductID == 0 || it.Quantity <= 0 {
			continue
		}
		if idx := c.index(it.ProductID); idx >= 0 {
			c.Items[idx].Quantity += it.Quantity
			continue
		}
		c.Items = append(c.Items, it)
	}
}

// Reprice refreshes name, price and image from the catalog. Lines whose
// product is missing from products are removed and their IDs returned.
func (c *Cart) Reprice(products map[int64]Product) []int64 {
	var dropped []int64
	kept := c.Items[:0]
	for _, it := range c.Items {
		p, ok := products[it.ProductID]
		if !ok {
			dropped = append(dropped, it.ProductID)
			continue
		}
		it.Name = p.Name
		it.UnitPrice = p.UnitPrice
		it.ImageURL = p.ImageURL
		kept = append(kept, it)
	}
	c.Items = kept
	if len(c.Items) == 0 {
		c.Items = nil
	}
	return dropped
}

// Quantity returns the quantity of productID, 0 when absent.
func (c Cart) Quantity(productID int64) int {
	if idx := c.index(productID); idx >= 0 {
		return c.Items[idx].Quantity
	}
	return 0
}

// TotalPrice returns Σ unit price × quantity.
func (c Cart) TotalPrice() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.Subtotal()
	}
	return total
}

// TotalItems returns Σ quantity.
func (c Cart) TotalItems() int {
	var n int
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) index(productID int64) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
