package store

import "errors"

// Share types.
const (
	ShareTypeConnection = "connection"
	ShareTypePublic     = "public"
	ShareTypePassword   = "password"
)

// Permission tiers, totally ordered: view < comment < edit.
const (
	PermissionView    = "view"
	PermissionComment = "comment"
	PermissionEdit    = "edit"
)

var (
	// ErrInvalidItemType is returned when an item type is not one of the
	// shareable resource kinds.
	ErrInvalidItemType = errors.New("item type must be one of: project, task, note, folder, file")

	// ErrInvalidShareType is returned when a share type is not recognized.
	ErrInvalidShareType = errors.New("share type must be one of: connection, public, password")

	// ErrInvalidPermission is returned when a permission tier is not recognized.
	ErrInvalidPermission = errors.New("permission must be one of: view, comment, edit")

	// ErrPasswordMissing is returned when a password share is created without
	// a password.
	ErrPasswordMissing = errors.New("password shares require a password")

	permissionLevels = map[string]int{
		PermissionView:    1,
		PermissionComment: 2,
		PermissionEdit:    3,
	}

	itemTypes = map[string]bool{
		"project": true,
		"task":    true,
		"note":    true,
		"folder":  true,
		"file":    true,
	}
)

// PermissionAllows reports whether the granted tier covers an action that
// requires the given tier. Unknown tiers never allow anything.
func PermissionAllows(granted, required string) bool {
	g, ok := permissionLevels[granted]
	if !ok {
		return false
	}
	r, ok := permissionLevels[required]
	if !ok {
		return false
	}
	return g >= r
}

// ValidateItemType checks that t names a shareable resource kind.
func ValidateItemType(t string) error {
	if !itemTypes[t] {
		return ErrInvalidItemType
	}
	return nil
}

// ValidateShareType checks that t is a supported authorization mode.
func ValidateShareType(t string) error {
	switch t {
	case ShareTypeConnection, ShareTypePublic, ShareTypePassword:
		return nil
	default:
		return ErrInvalidShareType
	}
}

// ValidatePermission checks that p is a known permission tier.
func ValidatePermission(p string) error {
	if _, ok := permissionLevels[p]; !ok {
		return ErrInvalidPermission
	}
	return nil
}
