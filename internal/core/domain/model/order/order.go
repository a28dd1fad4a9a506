package order

import (
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrOrderIDAlreadyAssigned is returned when the store tries to assign an id twice.
	ErrOrderIDAlreadyAssigned = errors.New("order id is already assigned")
)

// Order is the aggregate root of the ordering domain. It owns its line items and
// enforces the status state machine.
//
// Invariants:
//   - status is always a valid Status
//   - the total equals the sum of the line subtotals and is non-negative
//   - a delivery estimate, once set, is a well formed range
//   - an order has at least one line item
//
// Every transition is recorded as a StatusChanged event, drained by the unit of work
// after a successful commit. PersistedStatus keeps the status the aggregate had when it
// was loaded so the store can write conditionally on it.
type Order struct {
	id            kernel.ID
	customerID    kernel.ID
	customerEmail string
	items         []LineItem
	total         kernel.Money
	paid          bool
	paymentRef    string
	status        Status
	estimate      *kernel.DeliveryEstimate
	deliveryDueAt *time.Time
	rejectionSeen bool
	createdAt     time.Time
	updatedAt     time.Time

	persistedStatus Status
	events          []StatusChanged
	isConstructed   bool
}

// NewOrder places an order in Requested status. paid reports whether the payment
// provider confirmed the payment referenced by paymentRef.
func NewOrder(
	customerID kernel.ID,
	customerEmail string,
	items []LineItem,
	paymentRef string,
	paid bool,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:        Requested,
		paid:          paid,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setCustomer(customerID, customerEmail),
		o.setItems(items),
		o.setPaymentRef(paymentRef),
	); err != nil {
		return nil, err
	}

	o.raise(Unknown, Requested, now)
	return o, nil
}

// State is the full persisted state of an order, used by the store to rehydrate it.
type State struct {
	ID            kernel.ID
	CustomerID    kernel.ID
	CustomerEmail string
	Items         []LineItem
	Total         kernel.Money
	Paid          bool
	PaymentRef    string
	Status        Status
	Estimate      *kernel.DeliveryEstimate
	DeliveryDueAt *time.Time
	RejectionSeen bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RestoreOrder rebuilds an order read from the store. The stored total is kept as is
// since item prices may have been rounded independently.
func RestoreOrder(state State) (*Order, error) {
	if err := errors.Join(
		state.ID.Validate(),
		state.Status.Validate(),
		state.Total.Validate(),
	); err != nil {
		return nil, err
	}

	return &Order{
		id:              state.ID,
		customerID:      state.CustomerID,
		customerEmail:   state.CustomerEmail,
		items:           slices.Clone(state.Items),
		total:           state.Total,
		paid:            state.Paid,
		paymentRef:      state.PaymentRef,
		status:          state.Status,
		estimate:        state.Estimate,
		deliveryDueAt:   state.DeliveryDueAt,
		rejectionSeen:   state.RejectionSeen,
		createdAt:       state.CreatedAt,
		updatedAt:       state.UpdatedAt,
		persistedStatus: state.Status,
		isConstructed:   true,
	}, nil
}

// Validate ensures the order was built through a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() kernel.ID {
	return o.id
}

func (o *Order) CustomerID() kernel.ID {
	return o.customerID
}

func (o *Order) CustomerEmail() string {
	return o.customerEmail
}

func (o *Order) Items() []LineItem {
	return slices.Clone(o.items)
}

func (o *Order) Total() kernel.Money {
	return o.total
}

func (o *Order) IsPaid() bool {
	return o.paid
}

func (o *Order) PaymentRef() string {
	return o.paymentRef
}

func (o *Order) Status() Status {
	return o.status
}

// PersistedStatus is the status the order had when it was last read from or written to the store.
func (o *Order) PersistedStatus() Status {
	return o.persistedStatus
}

// DeliveryEstimate returns the estimate and whether one was set.
func (o *Order) DeliveryEstimate() (kernel.DeliveryEstimate, bool) {
	if o.estimate == nil {
		return kernel.DeliveryEstimate{}, false
	}
	return *o.estimate, true
}

// DeliveryDueAt is the instant automatic completion is scheduled for, nil unless Pending.
func (o *Order) DeliveryDueAt() *time.Time {
	return o.deliveryDueAt
}

func (o *Order) RejectionSeen() bool {
	return o.rejectionSeen
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// AssignID is called by the store once the row was inserted.
func (o *Order) AssignID(id kernel.ID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if o.id != 0 {
		return ErrOrderIDAlreadyAssigned
	}
	o.id = id
	for i := range o.events {
		o.events[i].OrderID = id
	}
	return nil
}

// MarkPersisted records that the current status is now stored.
func (o *Order) MarkPersisted() {
	o.persistedStatus = o.status
}

// Events returns the status changes raised since the order was loaded.
func (o *Order) Events() []StatusChanged {
	return slices.Clone(o.events)
}

// ClearEvents drops the recorded events once they were published.
func (o *Order) ClearEvents() {
	o.events = nil
}

// Accept moves a Requested order to Pending, stores the estimate and schedules
// completion after the estimate's lower bound.
func (o *Order) Accept(estimate kernel.DeliveryEstimate, now time.Time) error {
	if err := estimate.Validate(); err != nil {
		return err
	}

	next, err := o.status.Accept()
	if err != nil {
		return err
	}

	due := now.Add(estimate.Delay())
	o.estimate = &estimate
	o.deliveryDueAt = &due
	o.transition(next, now)
	return nil
}

// Cancel withdraws a non-terminal order. Refunds are a separate step.
func (o *Order) Cancel(now time.Time) error {
	next, err := o.status.Cancel()
	if err != nil {
		return err
	}

	o.deliveryDueAt = nil
	o.transition(next, now)
	return nil
}

// Reject declines a non-terminal order; the customer has not seen the rejection yet.
func (o *Order) Reject(now time.Time) error {
	next, err := o.status.Reject()
	if err != nil {
		return err
	}

	o.deliveryDueAt = nil
	o.rejectionSeen = false
	o.transition(next, now)
	return nil
}

// Complete marks the order delivered. It reports false without error when the order
// already was Completed, so callers can treat repeated completion as a no-op.
func (o *Order) Complete(now time.Time) (bool, error) {
	if o.status == Completed {
		return false, nil
	}

	next, err := o.status.Complete()
	if err != nil {
		return false, err
	}

	o.deliveryDueAt = nil
	o.transition(next, now)
	return true, nil
}

// MarkRejectionSeen records that the customer acknowledged the rejection.
// It reports false when the flag was already set.
func (o *Order) MarkRejectionSeen(now time.Time) (bool, error) {
	if o.status != Rejected {
		return false, errs.NewStatusTransitionIsInvalidError(o.status.String(), "mark rejection seen")
	}
	if o.rejectionSeen {
		return false, nil
	}

	o.rejectionSeen = true
	o.updatedAt = now
	return true, nil
}

// AdjustDeliveryEstimate shifts the estimate of a Pending order. currentRange is the
// range the operator saw; the stored estimate reconciles edits made meanwhile.
// The scheduled completion is left untouched.
func (o *Order) AdjustDeliveryEstimate(deltaMinutes int, currentRange kernel.DeliveryEstimate, now time.Time) error {
	if o.status != Pending || o.estimate == nil {
		return errs.NewStatusTransitionIsInvalidError(o.status.String(), "adjust delivery time")
	}

	adjusted, err := currentRange.Adjust(deltaMinutes, *o.estimate)
	if err != nil {
		return err
	}

	o.estimate = &adjusted
	o.updatedAt = now
	return nil
}

// ValidateRefund checks that amount can be refunded and that the order can still be
// cancelled or rejected afterwards.
func (o *Order) ValidateRefund(amount kernel.Money) error {
	if !o.paid || o.paymentRef == "" {
		return errs.NewValueIsInvalidErrorWithCause("order", fmt.Errorf("order %s has no captured payment", o.id))
	}
	if o.status.IsTerminal() {
		return errs.NewStatusTransitionIsInvalidError(o.status.String(), "refund")
	}
	if err := amount.Validate(); err != nil {
		return err
	}
	if amount.IsZero() || amount.GreaterThan(o.total) {
		return errs.NewValueIsOutOfRangeError("amount", amount.String(), "0.01", o.total.String())
	}
	return nil
}

func (o *Order) transition(next Status, now time.Time) {
	prev := o.status
	o.status = next
	o.updatedAt = now
	o.raise(prev, next, now)
}

func (o *Order) raise(from, to Status, at time.Time) {
	o.events = append(o.events, StatusChanged{
		OrderID:    o.id,
		From:       from,
		To:         to,
		OccurredAt: at,
	})
}

func (o *Order) setCustomer(customerID kernel.ID, email string) error {
	if err := customerID.Validate(); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("customerEmail", err)
	}
	o.customerID = customerID
	o.customerEmail = email
	return nil
}

func (o *Order) setItems(items []LineItem) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	total := kernel.ZeroMoney()
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	o.items = slices.Clone(items)
	o.total = total
	return nil
}

func (o *Order) setPaymentRef(paymentRef string) error {
	if strings.TrimSpace(paymentRef) == "" {
		return errs.NewValueIsRequiredError("paymentRef")
	}
	o.paymentRef = paymentRef
	return nil
}
