package domain

import (
	"errors"
	"strings"
)

// Role enumerates the backend user roles.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleCafe     Role = "Café"
	RoleConvenio Role = "Convenio"
)

// Permission refines a role. Convenio users are either consolidated
// (one order per company) or individual (each employee orders alone).
type Permission string

const (
	PermissionConsolidated Permission = "Consolidado"
	PermissionIndividual   Permission = "Individual"
)

// Validation errors surface verbatim in the login form.
var (
	ErrEmailRequired    = errors.New("El correo electrónico es obligatorio.")
	ErrPasswordRequired = errors.New("La contraseña es obligatoria.")
)

// User is the authenticated account, as reported by the backend on login.
type User struct {
	ID         int64
	Name       string
	Email      string
	Role       Role
	Permission Permission
	// IsMaster marks accounts allowed to manage subordinate users' orders.
	IsMaster bool
}

// ValidateCredentials applies the client-side required-field checks the
// login form runs before touching the network.
func ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	if strings.TrimSpace(password) == "" {
		return ErrPasswordRequired
	}
	return nil
}

// Capabilities is the explicit capability set resolved once per user.
// UI features branch on these instead of re-deriving role combinations.
type Capabilities struct {
	CanSeePrices         bool
	CanUseQuantityInput  bool
	CanSchedulePartially bool
	// SkipAutoOpenCartOnMobile suppresses the side-cart auto-open on
	// mobile viewports; Convenio/Individual users go through a separate
	// mobile checkout flow.
	SkipAutoOpenCartOnMobile bool
}

// ResolveCapabilities computes the capability set for a user.
func ResolveCapabilities(u User) Capabilities {
	adminOrCafe := u.Role == RoleAdmin || u.Role == RoleCafe
	agreementIndividual := u.Role == RoleConvenio && u.Permission == PermissionIndividual
	return Capabilities{
		CanSeePrices:             adminOrCafe || u.Permission == PermissionConsolidated,
		CanUseQuantityInput:      adminOrCafe || u.Permission == PermissionConsolidated,
		CanSchedulePartially:     adminOrCafe,
		SkipAutoOpenCartOnMobile: agreementIndividual,
	}
}

// Delegation carries the query context master users thread through every
// navigation: the dispatch date plus the impersonated subordinate.
type Delegation struct {
	Date         string
	DelegateUser string
	UserRole     Role
}
