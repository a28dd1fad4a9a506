// Package kernel provides the value objects shared by the order domain.
//
// The package includes:
//   - ID: the opaque numeric identifier of orders and customers
//   - Money: a non-negative amount backed by shopspring/decimal
//   - DeliveryEstimate: the "<min>-<max>" minute range communicated to customers
//
// Value objects are immutable; the zero value of each is invalid and fails Validate,
// so they must be created through their constructors.
package kernel
