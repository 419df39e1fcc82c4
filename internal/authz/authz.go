// Package authz decides whether a verified requester may perform an action on
// a user record.
//
// Reads are deliberately not owner-gated: any authenticated requester may list
// users and read any user record. Writes, deletes and uploads are limited to
// the record owner and admins. Granting admin is limited to admins.
package authz

import "kali/internal/auth"

// Action is an operation on a user record.
type Action string

const (
	ActionList      Action = "list"
	ActionRead      Action = "read"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionUpload    Action = "upload"
	ActionMakeAdmin Action = "make_admin"
)

// Decision is the outcome of Authorize.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}

// Authorize evaluates the access rules in order: admins may do anything,
// only admins may grant admin, any requester may read, and owners may
// update, delete and upload for their own record.
func Authorize(requester auth.Principal, ownerID string, action Action) Decision {
	if requester.IsAdmin() {
		return Allow
	}
	if !requester.Authenticated() {
		return Deny
	}

	switch action {
	case ActionMakeAdmin:
		return Deny
	case ActionList, ActionRead:
		return Allow
	case ActionUpdate, ActionDelete, ActionUpload:
		if requester.UserID == ownerID {
			return Allow
		}
	}
	return Deny
}
