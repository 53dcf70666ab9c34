package yieldshift

import (
	"fmt"

	"github.com/iov-one/yieldshift/errors"
)

// Role is a capability that a caller can be granted.
type Role int32

const (
	// RoleGovernance can change parameters and yield sources.
	RoleGovernance Role = iota + 1
	// RoleEmergency can bypass claim rules to unwind the accumulators.
	RoleEmergency
	// RoleUserPool is granted to the user pool collaborator.
	RoleUserPool
	// RoleHedgerPool is granted to the hedger pool collaborator.
	RoleHedgerPool
)

var roleNames = map[Role]string{
	RoleGovernance: "governance",
	RoleEmergency:  "emergency",
	RoleUserPool:   "user_pool",
	RoleHedgerPool: "hedger_pool",
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return fmt.Sprintf("role(%d)", int32(r))
}

// ParseRole returns the role represented by given name.
func ParseRole(name string) (Role, error) {
	for r, n := range roleNames {
		if n == name {
			return r, nil
		}
	}
	return 0, errors.Wrapf(errors.ErrInput, "unknown role %q", name)
}

// Authorizer is the authorization collaborator. It answers if a caller was
// granted a role. This should be passed into the constructor of the engine,
// so that any authorization system can be plugged in.
type Authorizer interface {
	HasRole(caller Address, role Role) bool
}

// RequireRole returns ErrNotAuthorized unless the caller has the role.
// Call it at the top of every operation that requires a capability.
func RequireRole(auth Authorizer, caller Address, role Role) error {
	if len(caller) == 0 {
		return errors.Wrap(errors.ErrNotAuthorized, "no caller")
	}
	if !auth.HasRole(caller, role) {
		return errors.Wrapf(errors.ErrNotAuthorized, "%s is not %s", caller, role)
	}
	return nil
}

// StaticRoles is an Authorizer that grants roles from a fixed table.
type StaticRoles map[Role][]Address

var _ Authorizer = StaticRoles(nil)

// Grant adds a role to given addresses.
func (s StaticRoles) Grant(role Role, addrs ...Address) StaticRoles {
	s[role] = append(s[role], addrs...)
	return s
}

// HasRole implements Authorizer.
func (s StaticRoles) HasRole(caller Address, role Role) bool {
	for _, a := range s[role] {
		if a.Equals(caller) {
			return true
		}
	}
	return false
}
