package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/pkg/jwt"
)

// Locals keys para EmployeeID y Role en Fiber.
const (
	LocalEmployeeID = "employee_id"
	LocalRole       = "role"
)

// AuthMiddleware valida el Bearer Token JWT y extrae EmployeeID y Role a
// c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		employeeID, role, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalEmployeeID, employeeID)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

// RequireRole autoriza solo a los roles indicados. Debe ir después de
// AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "token sin rol"})
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
	}
}

// GetEmployeeID devuelve el EmployeeID del contexto (después del middleware
// de auth). 0 si no hay.
func GetEmployeeID(c *fiber.Ctx) int64 {
	v := c.Locals(LocalEmployeeID)
	if v == nil {
		return 0
	}
	id, _ := v.(int64)
	return id
}

// EmployeeIDPtr devuelve el EmployeeID como puntero para atribución en el
// stock log; nil si no hay empleado autenticado.
func EmployeeIDPtr(c *fiber.Ctx) *int64 {
	id := GetEmployeeID(c)
	if id <= 0 {
		return nil
	}
	return &id
}

// GetRole devuelve el rol del contexto (después del middleware de auth).
func GetRole(c *fiber.Ctx) string {
	v := c.Locals(LocalRole)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
