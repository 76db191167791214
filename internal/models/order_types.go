package models

import "time"

// OrderStatus is the delivery status of an order as seen by drivers.
type OrderStatus string

const (
	OrderAvailable         OrderStatus = "available"
	OrderAssigned          OrderStatus = "assigned"
	OrderOnRouteToVendor   OrderStatus = "on_route_to_vendor"
	OrderArrivedAtVendor   OrderStatus = "arrived_at_vendor"
	OrderPickedUp          OrderStatus = "picked_up"
	OrderOnRouteToCustomer OrderStatus = "on_route_to_customer"
	OrderArrivedAtCustomer OrderStatus = "arrived_at_customer"
	OrderDelivered         OrderStatus = "delivered"
	OrderCancelled         OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// DriverOrder is the model for the 'orders' table from the driver's side.
// Rows are never deleted; they end in 'delivered' or 'cancelled'.
type DriverOrder struct {
	ID                  int64         `json:"id" db:"id"`
	OrderNumber         string        `json:"orderNumber" db:"order_number"`
	CustomerID          int64         `json:"customerId" db:"customer_id"`
	DriverID            *int64        `json:"driverId,omitempty" db:"driver_id"`
	VendorName          string        `json:"vendorName" db:"vendor_name"`
	VendorAddress       string        `json:"vendorAddress" db:"vendor_address"`
	CustomerName        string        `json:"customerName" db:"customer_name"`
	CustomerPhone       string        `json:"customerPhone" db:"customer_phone"`
	DeliveryAddress     string        `json:"deliveryAddress" db:"delivery_address"`
	TotalAmount         float64       `json:"totalAmount" db:"total_amount"`
	DeliveryFee         float64       `json:"deliveryFee" db:"delivery_fee"`
	SpecialInstructions *string       `json:"specialInstructions,omitempty" db:"special_instructions"`
	Status              OrderStatus   `json:"status" db:"status"`
	PaymentStatus       PaymentStatus `json:"paymentStatus" db:"payment_status"`
	AssignedAt          *time.Time    `json:"assignedAt,omitempty" db:"assigned_at"`
	PickedUpAt          *time.Time    `json:"pickedUpAt,omitempty" db:"picked_up_at"`
	DeliveredAt         *time.Time    `json:"deliveredAt,omitempty" db:"delivered_at"`
	CreatedAt           time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time     `json:"updatedAt" db:"updated_at"`
}
