package cart

import "github.com/shopspring/decimal"

// Line is an Item as rendered to clients, with its line total.
type Line struct {
	Item
	LineTotal float64 `json:"totalPrice"`
}

type GroupView struct {
	VendorID   string  `json:"vendorId"`
	VendorName string  `json:"vendorName"`
	Subtotal   float64 `json:"subtotal"`
	Lines      []Line  `json:"items"`
}

// Summary is the checkout view of a cart. Amounts are rounded to the sen for
// display only; the unrounded values stay on Cart.
type Summary struct {
	Items              []Line         `json:"items"`
	Vendors            []GroupView    `json:"vendors"`
	HasMultipleVendors bool           `json:"hasMultipleVendors"`
	DeliveryMethod     DeliveryMethod `json:"deliveryMethod"`
	DeliveryMethodName string         `json:"deliveryMethodName"`
	TotalItems         int            `json:"totalItems"`
	Subtotal           float64        `json:"subtotal"`
	TaxAmount          float64        `json:"taxAmount"`
	DeliveryFee        float64        `json:"deliveryFee"`
	TotalAmount        float64        `json:"totalAmount"`
	Display            DisplayAmounts `json:"display"`
}

type DisplayAmounts struct {
	Subtotal    string `json:"subtotal"`
	TaxAmount   string `json:"taxAmount"`
	DeliveryFee string `json:"deliveryFee"`
	TotalAmount string `json:"totalAmount"`
}

func (c Cart) Summary() Summary {
	subtotal := decimal.NewFromFloat(c.Subtotal()).Round(2)
	tax := decimal.NewFromFloat(c.TaxAmount()).Round(2)
	fee := decimal.NewFromFloat(c.DeliveryFee()).Round(2)
	total := decimal.NewFromFloat(c.TotalAmount()).Round(2)

	s := Summary{
		Items:              make([]Line, 0, len(c.Items)),
		HasMultipleVendors: c.HasMultipleVendors(),
		DeliveryMethod:     c.DeliveryMethod,
		DeliveryMethodName: c.DeliveryMethod.DisplayName(),
		TotalItems:         c.TotalItems(),
		Subtotal:           subtotal.InexactFloat64(),
		TaxAmount:          tax.InexactFloat64(),
		DeliveryFee:        fee.InexactFloat64(),
		TotalAmount:        total.InexactFloat64(),
		Display: DisplayAmounts{
			Subtotal:    ringgit(subtotal),
			TaxAmount:   ringgit(tax),
			DeliveryFee: ringgit(fee),
			TotalAmount: ringgit(total),
		},
	}

	for _, i := range c.Items {
		s.Items = append(s.Items, toLine(i))
	}
	for _, g := range c.VendorGroups() {
		view := GroupView{VendorID: g.VendorID, VendorName: g.VendorName}
		sum := decimal.Zero
		for _, i := range g.Items {
			view.Lines = append(view.Lines, toLine(i))
			sum = sum.Add(decimal.NewFromFloat(i.TotalPrice()))
		}
		view.Subtotal = sum.Round(2).InexactFloat64()
		s.Vendors = append(s.Vendors, view)
	}
	return s
}

func toLine(i Item) Line {
	return Line{Item: i, LineTotal: decimal.NewFromFloat(i.TotalPrice()).Round(2).InexactFloat64()}
}

func ringgit(d decimal.Decimal) string {
	return "RM " + d.StringFixed(2)
}
