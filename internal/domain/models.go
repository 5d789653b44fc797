package domain

import "time"

type Profile struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

type Product struct {
	SKU       string
	Bundles   SKUSet
	ActiveFor *time.Duration
}

// IsLeaf reports whether the product bundles nothing.
func (p Product) IsLeaf() bool {
	return p.Bundles.Len() == 0
}

type ProductRegistration struct {
	ID           uint64     `json:"id"`
	ProfileID    uint64     `json:"profile_id"`
	ParentID     *uint64    `json:"parent_id,omitempty"`
	PurchaseDate time.Time  `json:"purchase_date"`
	ExpiryAt     *time.Time `json:"expiry_at,omitempty"`
	Product      string     `json:"product"`
	SerialCode   string     `json:"serial_code"`
}

func (r ProductRegistration) IsRoot() bool {
	return r.ParentID == nil
}

// ProductRegistrationRecord is a root registration with the child
// registrations created for its resolved leaves.
type ProductRegistrationRecord struct {
	Registration ProductRegistration   `json:"registration"`
	Children     []ProductRegistration `json:"children"`
}
