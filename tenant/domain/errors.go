package domain

import "errors"

var (
	ErrAgencyNotFound     = errors.New("agency not found")
	ErrDuplicateAgency    = errors.New("agency with this email already exists")
	ErrGroupNotFound      = errors.New("group not found")
	ErrDuplicateGroup     = errors.New("group with this external id already exists")
	ErrNoTenantAvailable  = errors.New("no tenant available for auto-provisioning")
	ErrAgencyInactive     = errors.New("agency is inactive")
)
