package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidPackage  = errors.New("invalid package selected")
	ErrAmountMismatch  = errors.New("amount does not match package price")
	ErrGatewayFailure  = errors.New("payment gateway request failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrRateLimited     = errors.New("too many failed attempts")

	// Infra-level errors surfaced by repositories
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")
)
