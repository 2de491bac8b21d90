package engine

import "errors"

// ErrInvalidLoanTerms marks input-validation failures on loan terms
// (non-positive principal or tenure, negative rate). Callers must fix the
// input; nothing downstream retries these.
var ErrInvalidLoanTerms = errors.New("invalid loan terms")
