package rest

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	deliverydomain "github.com/doualaexpress/deligate/delivery/domain"
	"github.com/doualaexpress/deligate/pkg/apperror"
)

// validate* functions mirror validations/newsletter_validation.go's shape:
// one function per request type, wrapping ozzo-validation's field rules and
// translating its error into an apperror.GenericError.

func validateLoginRequest(ctx context.Context, req loginRequest) error {
	err := validation.ValidateStructWithContext(ctx, &req,
		validation.Field(&req.Email, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Password, validation.Required),
	)
	if err != nil {
		return apperror.InvalidArgumentError(err.Error())
	}
	return nil
}

func validateCreateAgencyRequest(ctx context.Context, req createAgencyRequest) error {
	err := validation.ValidateStructWithContext(ctx, &req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Email, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Password, validation.Required, validation.Length(8, 0)),
	)
	if err != nil {
		return apperror.InvalidArgumentError(err.Error())
	}
	return nil
}

func validateCreateDeliveryRequest(ctx context.Context, req createDeliveryRequest) error {
	err := validation.ValidateStructWithContext(ctx, &req,
		validation.Field(&req.Phone, validation.Required),
		validation.Field(&req.Items, validation.Required),
		validation.Field(&req.AmountDue, validation.Required, validation.Min(int64(1))),
	)
	if err != nil {
		return apperror.InvalidArgumentError(err.Error())
	}
	return nil
}

func validateBulkCreateRequest(reqs []createDeliveryRequest) error {
	if len(reqs) == 0 || len(reqs) > 100 {
		return apperror.InvalidArgumentError("bulk create accepts 1 to 100 rows")
	}
	return nil
}

func validateUpdateDeliveryRequest(ctx context.Context, req updateDeliveryRequest) error {
	err := validation.ValidateStructWithContext(ctx, &req,
		validation.Field(&req.Status, validation.Required, validation.In(
			deliverydomain.StatusPending, deliverydomain.StatusPickup,
			deliverydomain.StatusDelivered, deliverydomain.StatusFailed,
			deliverydomain.StatusClientAbsent, deliverydomain.StatusPresentZone1,
			deliverydomain.StatusPresentZone2,
		)),
	)
	if err != nil {
		return apperror.InvalidArgumentError(err.Error())
	}
	return nil
}
