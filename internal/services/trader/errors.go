package trader

import (
	"github.com/adshao/go-binance/v2/common"
	"github.com/pkg/errors"
)

// Binance API error codes that matter for classification.
const (
	codeUnauthorized   = -1002 // request not authorized
	codeBadSignature   = -1022 // signature mismatch
	codeOrderRejected  = -2010 // new order rejected (e.g. insufficient balance)
	codeBadAPIKeyFmt   = -2014 // API key format invalid
	codeRejectedAPIKey = -2015 // invalid key, IP or permissions
)

// apiError unwraps a binance API error if there is one.
func apiError(err error) (*common.APIError, bool) {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsCredentialError reports whether the error is an authentication or
// permission failure. Retrying cannot help; the operator has to fix keys.
func IsCredentialError(err error) bool {
	apiErr, ok := apiError(err)
	if !ok {
		return false
	}
	switch apiErr.Code {
	case codeUnauthorized, codeBadSignature, codeBadAPIKeyFmt, codeRejectedAPIKey:
		return true
	}
	return false
}

// IsOrderRejection reports whether the exchange rejected the order itself,
// e.g. for insufficient balance, as opposed to a transport failure.
func IsOrderRejection(err error) bool {
	apiErr, ok := apiError(err)
	return ok && apiErr.Code == codeOrderRejected
}

// ErrorMessage extracts the upstream error message for notifications,
// falling back to the wrapped error text when the exchange gave none.
func ErrorMessage(err error) string {
	if apiErr, ok := apiError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return "order submission failed for an unknown reason"
}
