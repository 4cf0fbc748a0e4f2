package parcel

import (
	"service-parcel-tracking/internal/apperr"
	"service-parcel-tracking/internal/domain"
)

type operation string

const (
	opCreate          operation = "create"
	opCreateForSender operation = "create for sender"
	opCancel          operation = "cancel"
	opDelete          operation = "delete"
	opConfirm         operation = "confirm delivery"
	opUpdateStatus    operation = "update status"
	opBlock           operation = "change block status"
	opDetails         operation = "view details"
	opListAll         operation = "list all parcels"
	opStats           operation = "view statistics"
	opListOwn         operation = "list own parcels"
	opIncoming        operation = "list incoming parcels"
	opHistory         operation = "list delivery history"
	opStatusLog       operation = "view status log"
)

// ownership says which party of the parcel an actor must be.
type ownership int

const (
	ownerNone ownership = iota
	ownerSender
	ownerReceiver
	ownerParty
)

// capability is "role in roles AND (ownership OR admin override)".
type capability struct {
	roles         []domain.Role
	owner         ownership
	adminOverride bool
}

var admins = []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}

var policy = map[operation]capability{
	opCreate:          {roles: []domain.Role{domain.RoleSender}},
	opCreateForSender: {roles: admins},
	opCancel:          {roles: []domain.Role{domain.RoleSender}, owner: ownerSender},
	opDelete:          {roles: []domain.Role{domain.RoleSender}, owner: ownerSender},
	opConfirm:         {roles: []domain.Role{domain.RoleReceiver}, owner: ownerReceiver},
	opUpdateStatus:    {roles: admins},
	opBlock:           {roles: admins},
	opDetails:         {roles: admins},
	opListAll:         {roles: admins},
	opStats:           {roles: admins},
	opListOwn:         {roles: []domain.Role{domain.RoleSender}},
	opIncoming:        {roles: []domain.Role{domain.RoleReceiver}},
	opHistory:         {roles: []domain.Role{domain.RoleReceiver}},
	opStatusLog:       {roles: []domain.Role{domain.RoleSender, domain.RoleReceiver}, owner: ownerParty, adminOverride: true},
}

// authorize checks the role part of the capability. It must pass before any I/O.
func authorize(op operation, actor domain.Actor) error {
	c, ok := policy[op]
	if !ok {
		return apperr.Forbiddenf("operation %q is not allowed", op)
	}
	if c.adminOverride && actor.Role.IsAdmin() {
		return nil
	}
	for _, r := range c.roles {
		if r == actor.Role {
			return nil
		}
	}
	return apperr.Forbiddenf("role %q cannot %s", actor.Role, op)
}

// authorizeParcel checks the role and the ownership part against a loaded parcel.
func authorizeParcel(op operation, actor domain.Actor, p *domain.Parcel) error {
	if err := authorize(op, actor); err != nil {
		return err
	}
	c := policy[op]
	if c.adminOverride && actor.Role.IsAdmin() {
		return nil
	}

	var owns bool
	switch c.owner {
	case ownerNone:
		owns = true
	case ownerSender:
		owns = p.SenderID == actor.ID
	case ownerReceiver:
		owns = p.ReceiverID == actor.ID
	case ownerParty:
		owns = p.SenderID == actor.ID || p.ReceiverID == actor.ID
	}
	if !owns {
		return apperr.Forbiddenf("parcel %s does not belong to the actor", p.TrackingID)
	}
	return nil
}
