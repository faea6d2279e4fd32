package http

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
)

// SwaggerUI devuelve el middleware de Swagger UI si el archivo de
// especificación existe en disco; si no, devuelve nil y el API arranca sin
// documentación en vez de caerse.
func SwaggerUI(filePath, title string) fiber.Handler {
	if _, err := os.Stat(filePath); err != nil {
		return nil
	}
	return swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: filePath,
		Path:     "docs",
		Title:    title,
	})
}
