package models

import "time"

type VendorStatus string

const (
	VendorPending  VendorStatus = "pending"
	VendorApproved VendorStatus = "approved"
	VendorRejected VendorStatus = "rejected"
)

// Vendor is the model for the 'vendors' table.
type Vendor struct {
	ID              int64        `json:"id" db:"id"`
	OwnerID         int64        `json:"ownerId" db:"owner_id"`
	Name            string       `json:"name" db:"name"`
	Address         string       `json:"address" db:"address"`
	Status          VendorStatus `json:"status" db:"status"`
	RejectionReason *string      `json:"rejectionReason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time    `json:"updatedAt" db:"updated_at"`
}
