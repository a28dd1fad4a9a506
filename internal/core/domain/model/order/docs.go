// Package order implements the Order aggregate and its lifecycle.
//
// The package includes:
//   - Order: the aggregate root holding line items, payment data, status and delivery estimate
//   - Status: the state machine Requested -> Pending -> Completed with the side exits
//     Cancelled and Rejected from any non-terminal status
//   - LineItem: a product line with a price snapshot and customizations
//   - StatusChanged: the event raised by every transition
//
// Key business rules:
//   - Only Requested orders can be accepted, and only with a well formed delivery estimate
//   - Completing a Completed order is a no-op, never an error, and never reverts the status
//   - Terminal orders (Completed, Cancelled, Rejected) accept no further transitions
//   - Refunds require a captured payment and an order that is still open
package order
