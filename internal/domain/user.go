package domain

import "github.com/google/uuid"

type (
	// Role represents an account role issued by the auth collaborator.
	Role string
	// Activity represents whether an account may take part in deliveries.
	Activity string
)

// List of roles
const (
	RoleSuperAdmin        Role = "super_admin"
	RoleAdmin             Role = "admin"
	RoleSender            Role = "sender"
	RoleReceiver          Role = "receiver"
	RoleDeliveryPersonnel Role = "delivery_personnel"
)

// List of account activity states
const (
	ActivityActive   Activity = "active"
	ActivityInactive Activity = "inactive"
	ActivityBlocked  Activity = "blocked"
)

var allowedRoles = [...]Role{
	RoleSuperAdmin, RoleAdmin, RoleSender, RoleReceiver, RoleDeliveryPersonnel,
}

// Valid checks if the Role is valid
func (r Role) Valid() bool {
	for _, v := range allowedRoles {
		if r == v {
			return true
		}
	}
	return false
}

// IsAdmin reports admin-class roles.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User is the slice of a user account the workflow needs.
// Accounts are owned by the user-account service.
type User struct {
	ID             uuid.UUID
	Email          string
	Name           string
	Phone          *string
	DefaultAddress *string
	Role           Role
	IsVerified     bool
	Activity       Activity
	IsDeleted      bool
}

// Usable reports whether the account is verified, active and not deleted.
func (u *User) Usable() bool {
	return u.IsVerified && u.Activity == ActivityActive && !u.IsDeleted
}

// Actor is the identity performing a workflow operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// SystemActor is used by background consumers. It has admin rights and no identity.
func SystemActor() Actor {
	return Actor{ID: uuid.Nil, Role: RoleSuperAdmin}
}

// Ref returns the actor id for audit fields, nil for the system actor.
func (a Actor) Ref() *uuid.UUID {
	if a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}
