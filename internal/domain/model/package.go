package model

import "time"

// PricingPackage is the catalog entry a checkout references. Price is the
// list price in whole currency units; DiscountPercentage in [0,100].
// The catalog is owned by the admin console; this service only reads it.
type PricingPackage struct {
	ID                 string
	Name               string
	Price              int64
	DiscountPercentage float64
	Active             bool
	UpdatedAt          time.Time
}
