// Package apiresponse defines the uniform JSON envelope used by ui/rest and
// the PanicIfNeeded convention handlers use to hand errors to the Recovery
// middleware instead of threading error returns through every call site.
package apiresponse

import (
	"github.com/doualaexpress/deligate/pkg/apperror"
)

// ResponseData is the success envelope: {success:true, data, pagination?}.
type ResponseData struct {
	Success bool `json:"success"`
	Data any `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination mirrors the list_deliveries response contract.
type Pagination struct {
	Page int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ErrorData is the failure envelope: {success:false, error, message}.
type ErrorData struct {
	Success bool `json:"success"`
	Error string `json:"error"`
	Message string `json:"message"`
}

// Ok builds a bare success envelope.
func Ok(data any) ResponseData {
	return ResponseData{Success: true, Data: data}
}

// OkPaginated builds a success envelope carrying pagination metadata.
func OkPaginated(data any, p Pagination) ResponseData {
	return ResponseData{Success: true, Data: data, Pagination: &p}
}

// FromError builds the error envelope for a given GenericError.
func FromError(err apperror.GenericError) ErrorData {
	return ErrorData{Success: false, Error: err.ErrCode(), Message: err.Error()}
}

// PanicIfNeeded panics with err when non-nil. Handlers call this instead of
// returning the error directly; the Recovery middleware turns the panic back
// into the right HTTP status and error envelope.
func PanicIfNeeded(err error) {
	if err != nil {
		panic(err)
	}
}
