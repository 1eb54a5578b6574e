package dto

// BaseError — универсальный формат ошибки.
// Code машинный (snake_case), Message для человека.
type BaseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type ValidationErrorResponse BaseError
type ConflictErrorResponse BaseError
type NotFoundErrorResponse BaseError
type InternalErrorResponse BaseError

func NewValidationError(msg string) ValidationErrorResponse {
	return ValidationErrorResponse(BaseError{Code: "validation_error", Message: msg})
}
func NewConflictError(msg string) ConflictErrorResponse {
	return ConflictErrorResponse(BaseError{Code: "conflict", Message: msg})
}
func NewNotFoundError(msg string) NotFoundErrorResponse {
	return NotFoundErrorResponse(BaseError{Code: "not_found", Message: msg})
}
func NewInternalError(details string) InternalErrorResponse {
	return InternalErrorResponse(BaseError{Code: "internal_error", Message: "internal server error", Details: details})
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func NewSuccessResponse(msg string) SuccessResponse {
	return SuccessResponse{Message: msg}
}
