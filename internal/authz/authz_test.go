package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kali/internal/auth"
)

var allActions = []Action{ActionList, ActionRead, ActionUpdate, ActionDelete, ActionUpload, ActionMakeAdmin}

func TestAuthorize(t *testing.T) {
	owner := auth.Principal{UserID: "alice"}
	other := auth.Principal{UserID: "bob"}
	admin := auth.Principal{UserID: "root", Role: auth.RoleAdmin}

	tests := []struct {
		name      string
		requester auth.Principal
		ownerID   string
		action    Action
		want      Decision
	}{
		{"owner reads own record", owner, "alice", ActionRead, Allow},
		{"owner updates own record", owner, "alice", ActionUpdate, Allow},
		{"owner deletes own record", owner, "alice", ActionDelete, Allow},
		{"owner uploads own asset", owner, "alice", ActionUpload, Allow},
		{"owner cannot self-elevate", owner, "alice", ActionMakeAdmin, Deny},
		{"other reads record", other, "alice", ActionRead, Allow},
		{"other lists records", other, "", ActionList, Allow},
		{"other updates record", other, "alice", ActionUpdate, Deny},
		{"other deletes record", other, "alice", ActionDelete, Deny},
		{"other uploads asset", other, "alice", ActionUpload, Deny},
		{"other grants admin", other, "alice", ActionMakeAdmin, Deny},
		{"admin updates other record", admin, "alice", ActionUpdate, Allow},
		{"admin grants admin", admin, "alice", ActionMakeAdmin, Allow},
		{"anonymous with empty owner", auth.Principal{}, "", ActionUpdate, Deny},
		{"anonymous reads", auth.Principal{}, "alice", ActionRead, Deny},
		{"unknown action", owner, "alice", Action("rename"), Deny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.requester, tt.ownerID, tt.action))
		})
	}
}

func TestAuthorize_AdminDominates(t *testing.T) {
	admin := auth.Principal{UserID: "root", Role: auth.RoleAdmin}
	for _, action := range allActions {
		for _, ownerID := range []string{"", "root", "someone"} {
			assert.Equal(t, Allow, Authorize(admin, ownerID, action), "action %s owner %q", action, ownerID)
		}
	}
}

func TestAuthorize_Deterministic(t *testing.T) {
	requesters := []auth.Principal{{}, {UserID: "a"}, {UserID: "b"}, {UserID: "a", Role: auth.RoleAdmin}}
	for _, r := range requesters {
		for _, action := range allActions {
			first := Authorize(r, "a", action)
			for i := 0; i < 5; i++ {
				assert.Equal(t, first, Authorize(r, "a", action))
			}
		}
	}
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "deny", Deny.String())
}
