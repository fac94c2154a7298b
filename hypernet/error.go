package hypernet

import "fmt"

const (
	FIND_PATH_FAILED = iota
	PAYMENT_INFEASIBLE
)

// PaymentError reports why a payment could not be executed. Payment
// failures are ordinary values; callers are expected to record them
// and continue.
type PaymentError struct {
	Code        int
	Description string
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("error code %d : %s", e.Code, e.Description)
}
