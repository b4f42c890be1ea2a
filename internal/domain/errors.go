package domain

import "errors"

// Fatal configuration errors. Startup validation matches these with
// errors.Is and aborts before anything is scheduled.
var (
	ErrMissingCredentials  = errors.New("binance credentials are not set")
	ErrEmptyTradeList      = errors.New("no trades configured")
	ErrConflictingSizeSpec = errors.New("both quantity and quote_order_qty are set")
	ErrInvalidWeightSpec   = errors.New("invalid weight spec")
)
