package domain

import "errors"

var (
	ErrDeliveryNotFound   = errors.New("delivery not found")
	ErrNegativeAmount     = errors.New("monetary amount must be non-negative")
	ErrTooManyBulkRows    = errors.New("bulk insert accepts at most 100 rows")
	ErrPhoneAlreadyOpen   = errors.New("target phone already has an open delivery")
)
