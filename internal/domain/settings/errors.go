package settings

import "errors"

var (
	ErrSettingsNotFound  = errors.New("settings not found")
	ErrForbidden         = errors.New("insufficient permissions")
	ErrMemberNotFound    = errors.New("member not found")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidPermission = errors.New("invalid permission")
	ErrOwnerMustBeAdmin  = errors.New("family owner must stay admin")
)
