package store_test

import (
	"testing"

	"github.com/joestump/joe-share/internal/store"
)

func TestValidateItemType(t *testing.T) {
	for _, valid := range []string{"project", "task", "note", "folder", "file"} {
		if err := store.ValidateItemType(valid); err != nil {
			t.Errorf("ValidateItemType(%q) = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"", "document", "PROJECT", "task "} {
		if err := store.ValidateItemType(invalid); err == nil {
			t.Errorf("ValidateItemType(%q) = nil, want error", invalid)
		}
	}
}

func TestValidateShareType(t *testing.T) {
	for _, valid := range []string{store.ShareTypeConnection, store.ShareTypePublic, store.ShareTypePassword} {
		if err := store.ValidateShareType(valid); err != nil {
			t.Errorf("ValidateShareType(%q) = %v, want nil", valid, err)
		}
	}
	if err := store.ValidateShareType("link"); err == nil {
		t.Error("ValidateShareType(\"link\") = nil, want error")
	}
}

func TestValidatePermission(t *testing.T) {
	for _, valid := range []string{store.PermissionView, store.PermissionComment, store.PermissionEdit} {
		if err := store.ValidatePermission(valid); err != nil {
			t.Errorf("ValidatePermission(%q) = %v, want nil", valid, err)
		}
	}
	if err := store.ValidatePermission("admin"); err == nil {
		t.Error("ValidatePermission(\"admin\") = nil, want error")
	}
}

func TestPermissionAllows(t *testing.T) {
	tests := []struct {
		granted  string
		required string
		want     bool
	}{
		{store.PermissionView, store.PermissionView, true},
		{store.PermissionView, store.PermissionComment, false},
		{store.PermissionView, store.PermissionEdit, false},
		{store.PermissionComment, store.PermissionView, true},
		{store.PermissionComment, store.PermissionComment, true},
		{store.PermissionComment, store.PermissionEdit, false},
		{store.PermissionEdit, store.PermissionView, true},
		{store.PermissionEdit, store.PermissionComment, true},
		{store.PermissionEdit, store.PermissionEdit, true},
		{"", store.PermissionView, false},
		{store.PermissionEdit, "", false},
	}
	for _, tt := range tests {
		if got := store.PermissionAllows(tt.granted, tt.required); got != tt.want {
			t.Errorf("PermissionAllows(%q, %q) = %v, want %v", tt.granted, tt.required, got, tt.want)
		}
	}
}
