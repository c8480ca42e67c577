package domain

import "errors"

var (
	// ErrInvalidCredentials intentionally does not distinguish "no such
	// user" from "bad password".
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAgencyInactive = errors.New("agency account is inactive")
	ErrSessionExpired = errors.New("session has expired, please log in again")
	ErrSessionRevoked = errors.New("session has been revoked")
)
