package cart

import "github.com/01moynul/taptoeat-golang/internal/apperr"

// TaxRate is the Malaysian SST applied to the subtotal.
const TaxRate = 0.06

type DeliveryMethod string

const (
	CustomerPickup   DeliveryMethod = "customerPickup"
	SalesAgentPickup DeliveryMethod = "salesAgentPickup"
	OwnFleet         DeliveryMethod = "ownFleet"
	Lalamove         DeliveryMethod = "lalamove"
)

var deliveryMethodNames = map[DeliveryMethod]string{
	CustomerPickup:   "Customer Pickup",
	SalesAgentPickup: "Sales Agent Pickup",
	OwnFleet:         "Own Fleet Delivery",
	Lalamove:         "Lalamove Delivery",
}

func (m DeliveryMethod) Valid() bool { _, ok := deliveryMethodNames[m]; return ok }

func (m DeliveryMethod) DisplayName() string { return deliveryMethodNames[m] }

func (m DeliveryMethod) IsPickup() bool {
	return m == CustomerPickup || m == SalesAgentPickup
}

// feeTier charges Fee when the subtotal is at least MinSubtotal. Tiers are
// listed from the highest threshold down.
type feeTier struct {
	MinSubtotal float64
	Fee         float64
}

var deliveryFeeTiers = map[DeliveryMethod][]feeTier{
	OwnFleet: {{200, 0}, {100, 5}, {0, 10}},
	Lalamove: {{200, 0}, {100, 15}, {0, 20}},
}

// DeliveryFee is a pure function of method and subtotal. Pickup methods are
// always free; delivery fees step down as the subtotal crosses RM100 and RM200.
func DeliveryFee(method DeliveryMethod, subtotal float64) float64 {
	for _, tier := range deliveryFeeTiers[method] {
		if subtotal >= tier.MinSubtotal {
			return tier.Fee
		}
	}
	return 0
}

// BulkTier prices a menu item at Price per unit once MinQuantity is reached.
type BulkTier struct {
	MinQuantity int     `json:"minQuantity"`
	Price       float64 `json:"price"`
}

// MenuItem is a vendor menu entry with order bounds and bulk pricing.
// MaxOrderQuantity of zero means no upper bound.
type MenuItem struct {
	ID               string     `json:"id"`
	VendorID         string     `json:"vendorId"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Price            float64    `json:"price"`
	MinOrderQuantity int        `json:"minOrderQuantity"`
	MaxOrderQuantity int        `json:"maxOrderQuantity,omitempty"`
	BulkTiers        []BulkTier `json:"bulkTiers,omitempty"`
}

// PriceAt returns the unit price at quantity q: the price of the tier with
// the highest MinQuantity not above q, or the base price.
func (m MenuItem) PriceAt(q int) float64 {
	price := m.Price
	best := 0
	for _, t := range m.BulkTiers {
		if t.MinQuantity <= q && t.MinQuantity > best {
			best = t.MinQuantity
			price = t.Price
		}
	}
	return price
}

func (m MenuItem) ValidateQuantity(q int) error {
	if q < 1 {
		return apperr.Validation("Quantity must be at least 1")
	}
	if m.MinOrderQuantity > 0 && q < m.MinOrderQuantity {
		return apperr.Validationf("Minimum order quantity for %s is %d", m.Name, m.MinOrderQuantity)
	}
	if m.MaxOrderQuantity > 0 && q > m.MaxOrderQuantity {
		return apperr.Validationf("Maximum order quantity for %s is %d", m.Name, m.MaxOrderQuantity)
	}
	return nil
}
