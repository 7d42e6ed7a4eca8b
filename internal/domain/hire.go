package domain

import "time"

// HireItem is a party-hire stock line (tables, chairs, marquees).
// Allocated counts units out on active orders; the invariant
// 0 <= Allocated <= Total holds after every reserve/release pair.
type HireItem struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Total     int       `json:"total"`
	Allocated int       `json:"allocated"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Available returns the unallocated unit count.
func (i *HireItem) Available() int {
	return i.Total - i.Allocated
}

// HireOrderStatus is the lifecycle state of a hire order.
type HireOrderStatus string

const (
	HireOrderActive   HireOrderStatus = "active"
	HireOrderReturned HireOrderStatus = "returned"
)

// HireOrder records a party-hire reservation. Stock is released only
// when the return is verified, not when the gear merely comes back.
type HireOrder struct {
	ID             string          `json:"id"`
	TenantID       string          `json:"tenant_id"`
	ItemID         string          `json:"item_id"`
	CustomerName   string          `json:"customer_name"`
	Quantity       int             `json:"quantity"`
	Status         HireOrderStatus `json:"status"`
	ReturnVerified bool            `json:"return_verified"`
	CreatedAt      time.Time       `json:"created_at"`
	ReturnedAt     *time.Time      `json:"returned_at,omitempty"`
}

// IsReturned reports whether the order's return has been verified.
func (o *HireOrder) IsReturned() bool {
	return o.Status == HireOrderReturned && o.ReturnVerified
}
