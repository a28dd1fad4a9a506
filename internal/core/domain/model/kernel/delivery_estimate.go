package kernel

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"souvlaki/internal/pkg/errs"
	"souvlaki/internal/pkg/guard"
)

var estimatePattern = regexp.MustCompile(`^(\d+)-(\d+)$`)

// MaxDeliveryMinutes caps both bounds at one week.
const MaxDeliveryMinutes = 7 * 24 * 60

// ErrDeliveryEstimateIsNotConstructed is returned when a zero value DeliveryEstimate is used.
var ErrDeliveryEstimateIsNotConstructed = errs.NewValueIsRequiredError(
	"delivery estimate must be created via NewDeliveryEstimate or ParseDeliveryEstimate")

// DeliveryEstimate is the minute range told to the customer, e.g. "25-30".
// The lower bound is the delay used to schedule automatic completion.
type DeliveryEstimate struct { //nolint:recvcheck //using for validation
	lower int
	upper int
	guard guard.ConstructorGuard
}

// NewDeliveryEstimate requires 0 <= lower <= upper <= MaxDeliveryMinutes.
func NewDeliveryEstimate(lower, upper int) (DeliveryEstimate, error) {
	if lower < 0 || lower > MaxDeliveryMinutes {
		return DeliveryEstimate{}, errs.NewValueIsOutOfRangeError("deliveryTime lower bound", lower, 0, MaxDeliveryMinutes)
	}
	if upper > MaxDeliveryMinutes {
		return DeliveryEstimate{}, errs.NewValueIsOutOfRangeError("deliveryTime upper bound", upper, 0, MaxDeliveryMinutes)
	}
	if upper < lower {
		return DeliveryEstimate{}, errs.NewValueIsInvalidErrorWithCause(
			"deliveryTime",
			fmt.Errorf("upper bound %d is less than lower bound %d", upper, lower),
		)
	}
	return DeliveryEstimate{lower: lower, upper: upper, guard: guard.NewConstructorGuard()}, nil
}

// ParseDeliveryEstimate parses "<minutes>-<minutes>". Anything not matching ^\d+-\d+$
// is rejected with a ValueIsInvalidError.
func ParseDeliveryEstimate(s string) (DeliveryEstimate, error) {
	m := estimatePattern.FindStringSubmatch(s)
	if m == nil {
		return DeliveryEstimate{}, errs.NewValueIsInvalidErrorWithCause(
			"deliveryTime",
			fmt.Errorf("%q does not match <minutes>-<minutes>", s),
		)
	}

	lower, err := strconv.Atoi(m[1])
	if err != nil {
		return DeliveryEstimate{}, errs.NewValueIsInvalidErrorWithCause("deliveryTime", err)
	}
	upper, err := strconv.Atoi(m[2])
	if err != nil {
		return DeliveryEstimate{}, errs.NewValueIsInvalidErrorWithCause("deliveryTime", err)
	}

	return NewDeliveryEstimate(lower, upper)
}

func (e DeliveryEstimate) Validate() error {
	return e.guard.Validate(ErrDeliveryEstimateIsNotConstructed)
}

func (e DeliveryEstimate) Lower() int {
	return e.lower
}

func (e DeliveryEstimate) Upper() int {
	return e.upper
}

// Delay is the time until automatic completion: the lower bound in minutes.
func (e DeliveryEstimate) Delay() time.Duration {
	return time.Duration(e.lower) * time.Minute
}

func (e DeliveryEstimate) Equal(other DeliveryEstimate) bool {
	return e.lower == other.lower && e.upper == other.upper
}

func (e DeliveryEstimate) String() string {
	return fmt.Sprintf("%d-%d", e.lower, e.upper)
}

// Adjust shifts the range an operator was looking at (the receiver) by deltaMinutes.
// When previous, the estimate currently stored, differs from the receiver, another operator
// edited it after the receiver was read, and each bound is further offset by that difference
// so both edits are kept.
func (e DeliveryEstimate) Adjust(deltaMinutes int, previous DeliveryEstimate) (DeliveryEstimate, error) {
	if err := e.Validate(); err != nil {
		return DeliveryEstimate{}, err
	}
	if err := previous.Validate(); err != nil {
		return DeliveryEstimate{}, err
	}

	lower := e.lower + deltaMinutes
	upper := e.upper + deltaMinutes
	if !previous.Equal(e) {
		lower += previous.lower - e.lower
		upper += previous.upper - e.upper
	}

	return NewDeliveryEstimate(lower, upper)
}
