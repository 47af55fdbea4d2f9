package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListScopeAnalyst(t *testing.T) {
	analyst := Actor{ID: "an-1", Role: RoleAnalyst}

	for _, res := range []Resource{ResourceSample, ResourceTest, ResourceReport} {
		assert.Equal(t, Scope{AssignedUserID: "an-1"}, ListScope(analyst, res))
	}
	assert.Equal(t, Scope{}, ListScope(analyst, ResourceTemplate))
}

func TestListScopeClient(t *testing.T) {
	client := Actor{ID: "c-1", Role: RoleClient}

	assert.Equal(t, Scope{ClientID: "c-1"}, ListScope(client, ResourceJob))
	assert.Equal(t, Scope{ClientID: "c-1"}, ListScope(client, ResourceSample))
	assert.Equal(t, Scope{ClientID: "c-1", ReleasedOnly: true}, ListScope(client, ResourceReport))
}

func TestListScopeUnrestrictedRoles(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleLabManager, RoleSalesAccounting} {
		for _, res := range Resources {
			assert.Equal(t, Scope{}, ListScope(Actor{ID: "u-1", Role: role}, res))
		}
	}
}
