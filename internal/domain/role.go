package domain

import (
	"fmt"
	"strings"
)

// Role роль оператора. Ровно два варианта.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// ParseRole разбирает роль, неизвестные значения отклоняются
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSuperAdmin:
		return RoleSuperAdmin, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
}

// IsPrivileged роль с полным доступом
func (r Role) IsPrivileged() bool {
	return r == RoleSuperAdmin
}

// Actor аутентифицированный оператор, выполняющий действие
type Actor struct {
	ID   int64
	Role Role
}
