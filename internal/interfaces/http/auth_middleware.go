package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/transfers-api/internal/domain"
	"github.com/tu-usuario/transfers-api/internal/domain/entity"
	"github.com/tu-usuario/transfers-api/pkg/jwt"
)

// Locals keys para identidad del actor en Fiber.
const (
	LocalUserID   = "user_id"
	LocalTenantID = "tenant_id"
	LocalRole     = "role"
)

// Permisos de la API de stock. Los roles se traducen a permisos aquí, en la
// frontera HTTP; los usecases solo ven identidad y nivel de aprobación.
const (
	PermStockRead  = "stock:read"
	PermStockWrite = "stock:write"
)

var rolePermissions = map[string][]string{
	entity.RoleAdmin:      {PermStockRead, PermStockWrite},
	entity.RoleSupervisor: {PermStockRead, PermStockWrite},
	entity.RoleBodeguero:  {PermStockRead, PermStockWrite},
}

// AuthMiddleware valida el Bearer Token JWT y extrae UserID, TenantID y Role
// a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fail(c, fmt.Errorf("Authorization header requerido: %w", domain.ErrUnauthorized))
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fail(c, fmt.Errorf("formato: Bearer <token>: %w", domain.ErrUnauthorized))
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return fail(c, fmt.Errorf("token vacío: %w", domain.ErrUnauthorized))
		}
		userID, tenantID, role, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return fail(c, fmt.Errorf("token inválido o expirado: %w", domain.ErrUnauthorized))
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalTenantID, tenantID)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

// RequirePermission exige que el rol del actor tenga el permiso dado.
func RequirePermission(perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		for _, p := range rolePermissions[role] {
			if p == perm {
				return c.Next()
			}
		}
		return fail(c, fmt.Errorf("se requiere %s: %w", perm, domain.ErrPermissionDenied))
	}
}

// RequireRole exige que el actor tenga alguno de los roles dados.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return fail(c, fmt.Errorf("rol insuficiente: %w", domain.ErrPermissionDenied))
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetTenantID devuelve el TenantID del contexto (después del middleware de auth).
func GetTenantID(c *fiber.Ctx) string { return localString(c, LocalTenantID) }

// GetRole devuelve el rol del contexto (después del middleware de auth).
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }

func localString(c *fiber.Ctx, key string) string {
	v := c.Locals(key)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
