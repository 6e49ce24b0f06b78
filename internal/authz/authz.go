// Package authz holds the single decision table that gates every farmer
// operation.
package authz

import (
	"fmt"

	"farmverify/internal/auth"
	apperrors "farmverify/internal/errors"
	"farmverify/internal/model"
)

// Operation is an action a caller asks to perform.
type Operation int

const (
	OpListFarmers Operation = iota
	OpViewStats
	OpViewAnyFarmer
	OpSetStatus
	OpViewOwnFarmer
	OpDownloadCertificate
	OpUpdateLocation
)

func (o Operation) String() string {
	switch o {
	case OpListFarmers:
		return "list farmers"
	case OpViewStats:
		return "view stats"
	case OpViewAnyFarmer:
		return "view farmer"
	case OpSetStatus:
		return "set certification status"
	case OpViewOwnFarmer:
		return "view own farmer"
	case OpDownloadCertificate:
		return "download certificate"
	case OpUpdateLocation:
		return "update location"
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

type access int

const (
	deny access = iota
	allow
	allowSelf
)

// policy maps operation to per-role access. Operations that target a farmer
// use allowSelf for callers restricted to their own record.
var policy = map[Operation]map[model.Role]access{
	OpListFarmers:         {model.RoleAdmin: allow},
	OpViewStats:           {model.RoleAdmin: allow},
	OpViewAnyFarmer:       {model.RoleAdmin: allow},
	OpSetStatus:           {model.RoleAdmin: allow},
	OpViewOwnFarmer:       {model.RoleFarmer: allow},
	OpDownloadCertificate: {model.RoleAdmin: allow, model.RoleFarmer: allowSelf},
	OpUpdateLocation:      {model.RoleAdmin: allow, model.RoleFarmer: allowSelf},
}

func lookup(caller *auth.Identity, op Operation) (access, error) {
	if caller == nil {
		return deny, apperrors.ErrUnauthenticated
	}
	a := policy[op][caller.Role]
	if a == deny {
		return deny, fmt.Errorf("%s may not %s: %w", caller.Role, op, apperrors.ErrForbidden)
	}
	return a, nil
}

// Authorize decides operations that do not target a specific farmer. A nil
// caller is unauthenticated.
func Authorize(caller *auth.Identity, op Operation) error {
	a, err := lookup(caller, op)
	if err != nil {
		return err
	}
	if a == allowSelf {
		return fmt.Errorf("%s requires a target: %w", op, apperrors.ErrForbidden)
	}
	return nil
}

// AuthorizeFarmer decides operations on target, which is nil when the farmer
// does not exist. Ownership is decided by the target's owning user id against
// the verified caller id. Callers limited to their own record get forbidden
// rather than not found for absent targets.
func AuthorizeFarmer(caller *auth.Identity, op Operation, target *model.Farmer) error {
	a, err := lookup(caller, op)
	if err != nil {
		return err
	}

	switch a {
	case allow:
		if target == nil {
			return apperrors.ErrFarmerNotFound
		}
		return nil
	case allowSelf:
		if target == nil || target.UserID != caller.UserID {
			return fmt.Errorf("%s on another farmer: %w", op, apperrors.ErrForbidden)
		}
		return nil
	}
	return apperrors.ErrForbidden
}
