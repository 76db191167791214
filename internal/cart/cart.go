// Package cart holds the customer's working selection and prices it.
//
// Cart is a value type: every mutating method returns a new Cart and leaves
// the receiver untouched, so a caller can keep the previous state around and
// swap in the new one only when the operation succeeds.
package cart

import (
	"maps"
	"reflect"
	"slices"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/google/uuid"
)

var ErrItemNotFound = apperr.NotFound("Item not found in cart")

// newID is swapped in tests for deterministic line ids.
var newID = uuid.NewString

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type Vendor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is one product line. A line added from a menu item keeps the menu's
// price schedule so its unit price follows the bulk tiers as quantity changes.
type Item struct {
	ID             string         `json:"id"`
	ProductID      string         `json:"productId"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	UnitPrice      float64        `json:"unitPrice"`
	Quantity       int            `json:"quantity"`
	Customizations map[string]any `json:"customizations,omitempty"`
	Note           string         `json:"note,omitempty"`
	VendorID       string         `json:"vendorId"`
	VendorName     string         `json:"vendorName"`

	menu *MenuItem
}

func (i Item) TotalPrice() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// withQuantity returns the line at quantity q, re-pricing menu lines.
func (i Item) withQuantity(q int) Item {
	i.Quantity = q
	if i.menu != nil {
		i.UnitPrice = i.menu.PriceAt(q)
	}
	return i
}

type Cart struct {
	Items          []Item         `json:"items"`
	DeliveryMethod DeliveryMethod `json:"deliveryMethod"`
}

// New returns an empty cart. Delivery defaults to the own fleet.
func New() Cart {
	return Cart{DeliveryMethod: OwnFleet}
}

// AddItem merges into an existing line with the same product and equal
// customizations, or appends a new line. Quantities below one count as one.
func (c Cart) AddItem(p Product, v Vendor, quantity int, customizations map[string]any, note string) Cart {
	if quantity < 1 {
		quantity = 1
	}

	if idx := c.findLine(p.ID, customizations); idx >= 0 {
		items := slices.Clone(c.Items)
		items[idx] = items[idx].withQuantity(items[idx].Quantity + quantity)
		return c.withItems(items)
	}

	line := Item{
		ID:             newID(),
		ProductID:      p.ID,
		Name:           p.Name,
		Description:    p.Description,
		UnitPrice:      p.Price,
		Quantity:       quantity,
		Customizations: maps.Clone(customizations),
		Note:           note,
		VendorID:       v.ID,
		VendorName:     v.Name,
	}
	return c.withItems(append(slices.Clone(c.Items), line))
}

// AddMenuItem is AddItem for a vendor menu entry. The requested quantity and
// the resulting line quantity must both be valid for the menu item; on error
// the cart is returned unchanged. The whole line is priced at the bulk tier of
// its new quantity.
func (c Cart) AddMenuItem(m MenuItem, vendorName string, quantity int, customizations map[string]any, note string) (Cart, error) {
	if quantity < 1 {
		return c, apperr.Validation("Quantity must be at least 1")
	}

	idx := c.findLine(m.ID, customizations)
	total := quantity
	if idx >= 0 {
		total += c.Items[idx].Quantity
	}
	if err := m.ValidateQuantity(total); err != nil {
		return c, err
	}

	menu := m
	if idx >= 0 {
		items := slices.Clone(c.Items)
		line := items[idx]
		line.menu = &menu
		items[idx] = line.withQuantity(total)
		return c.withItems(items), nil
	}

	line := Item{
		ID:             newID(),
		ProductID:      m.ID,
		Name:           m.Name,
		Description:    m.Description,
		Customizations: maps.Clone(customizations),
		Note:           note,
		VendorID:       m.VendorID,
		VendorName:     vendorName,
		menu:           &menu,
	}
	return c.withItems(append(slices.Clone(c.Items), line.withQuantity(total))), nil
}

// UpdateItemQuantity sets the quantity of a line. Zero or less removes it.
func (c Cart) UpdateItemQuantity(itemID string, quantity int) (Cart, error) {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return c, ErrItemNotFound
	}
	if quantity <= 0 {
		return c.RemoveItem(itemID), nil
	}
	items := slices.Clone(c.Items)
	items[idx] = items[idx].withQuantity(quantity)
	return c.withItems(items), nil
}

func (c Cart) Increment(itemID string) (Cart, error) {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return c, ErrItemNotFound
	}
	return c.UpdateItemQuantity(itemID, c.Items[idx].Quantity+1)
}

func (c Cart) Decrement(itemID string) (Cart, error) {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return c, ErrItemNotFound
	}
	return c.UpdateItemQuantity(itemID, c.Items[idx].Quantity-1)
}

// RemoveItem drops the line; removing an unknown id is a no-op.
func (c Cart) RemoveItem(itemID string) Cart {
	return c.withItems(slices.DeleteFunc(slices.Clone(c.Items), func(i Item) bool {
		return i.ID == itemID
	}))
}

func (c Cart) Clear() Cart {
	return Cart{DeliveryMethod: c.DeliveryMethod}
}

func (c Cart) ClearVendorItems(vendorID string) Cart {
	return c.withItems(slices.DeleteFunc(slices.Clone(c.Items), func(i Item) bool {
		return i.VendorID == vendorID
	}))
}

func (c Cart) UpdateDeliveryMethod(m DeliveryMethod) Cart {
	c.Items = slices.Clone(c.Items)
	c.DeliveryMethod = m
	return c
}

func (c Cart) Item(itemID string) (Item, bool) {
	idx := c.indexOf(itemID)
	if idx < 0 {
		return Item{}, false
	}
	return c.Items[idx], true
}

func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

func (c Cart) TotalItems() int {
	n := 0
	for _, i := range c.Items {
		n += i.Quantity
	}
	return n
}

func (c Cart) Subtotal() float64 {
	var sum float64
	for _, i := range c.Items {
		sum += i.TotalPrice()
	}
	return sum
}

func (c Cart) TaxAmount() float64 {
	return c.Subtotal() * TaxRate
}

func (c Cart) DeliveryFee() float64 {
	return DeliveryFee(c.DeliveryMethod, c.Subtotal())
}

func (c Cart) TotalAmount() float64 {
	subtotal := c.Subtotal()
	return subtotal + subtotal*TaxRate + DeliveryFee(c.DeliveryMethod, subtotal)
}

type VendorGroup struct {
	VendorID   string `json:"vendorId"`
	VendorName string `json:"vendorName"`
	Items      []Item `json:"items"`
}

// VendorGroups groups lines by vendor, ordered by each vendor's first line.
// Lines keep their cart order within a group.
func (c Cart) VendorGroups() []VendorGroup {
	var groups []VendorGroup
	pos := map[string]int{}
	for _, i := range c.Items {
		g, ok := pos[i.VendorID]
		if !ok {
			g = len(groups)
			pos[i.VendorID] = g
			groups = append(groups, VendorGroup{VendorID: i.VendorID, VendorName: i.VendorName})
		}
		groups[g].Items = append(groups[g].Items, i)
	}
	return groups
}

func (c Cart) ItemsByVendor() map[string][]Item {
	out := make(map[string][]Item)
	for _, i := range c.Items {
		out[i.VendorID] = append(out[i.VendorID], i)
	}
	return out
}

func (c Cart) HasMultipleVendors() bool {
	return len(c.ItemsByVendor()) > 1
}

func (c Cart) withItems(items []Item) Cart {
	c.Items = items
	return c
}

func (c Cart) indexOf(itemID string) int {
	return slices.IndexFunc(c.Items, func(i Item) bool { return i.ID == itemID })
}

func (c Cart) findLine(productID string, customizations map[string]any) int {
	return slices.IndexFunc(c.Items, func(i Item) bool {
		return i.ProductID == productID && customizationsEqual(i.Customizations, customizations)
	})
}

// customizationsEqual compares selections key by key, ignoring order. Two nil
// maps are equal; a nil map never equals a non-nil one.
func customizationsEqual(a, b map[string]any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return maps.EqualFunc(a, b, func(x, y any) bool { return reflect.DeepEqual(x, y) })
}
