package models

// Роли, которые сервис различает в custom claims провайдера идентификации.
const (
	RoleAdmin = "admin"
)

// Claims - результат верификации ID-токена: uid пользователя и его роли.
type Claims struct {
	UserID string
	Roles  []string
}

// HasRole проверяет наличие роли в списке.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin - шорткат для проверки админской роли.
func (c *Claims) IsAdmin() bool {
	return HasRole(c.Roles, RoleAdmin)
}
