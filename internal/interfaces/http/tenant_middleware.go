package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/autotaller-api/internal/application/dto"
	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/pkg/logger"
	"github.com/jhoicas/autotaller-api/pkg/tenant"
)

// HeaderTenantDomain identifica al tenant de la petición.
const HeaderTenantDomain = "X-Tenant-Domain"

// LocalTenantID key de Locals con el tenant resuelto.
const LocalTenantID = "tenant_id"

// TenantResolver busca tenants por dominio.
type TenantResolver interface {
	GetByDomain(ctx context.Context, domain string) (*entity.Tenant, error)
}

// TenantMiddleware resuelve el tenant y lo deja en c.Locals y en el UserContext.
// Sin cabecera se usa defaultTenantID; si también está vacío responde 400.
func TenantMiddleware(resolver TenantResolver, defaultTenantID string, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := defaultTenantID
		if domain := c.Get(HeaderTenantDomain); domain != "" {
			t, err := resolver.GetByDomain(c.UserContext(), domain)
			if err != nil {
				log.Error().Err(err).Str("domain", domain).Msg("resolver tenant")
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "TENANT_LOOKUP_FAILED", Message: "no se pudo resolver el tenant"})
			}
			if t == nil {
				return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "TENANT_NOT_FOUND", Message: "tenant no registrado"})
			}
			if !t.IsActive {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "TENANT_INACTIVE", Message: "tenant inactivo"})
			}
			tenantID = t.ID
		}
		if tenantID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_TENANT", Message: HeaderTenantDomain + " requerido"})
		}
		c.Locals(LocalTenantID, tenantID)
		c.SetUserContext(tenant.WithID(c.UserContext(), tenantID))
		return c.Next()
	}
}

// GetTenantID devuelve el tenant resuelto de la petición.
func GetTenantID(c *fiber.Ctx) string { return localString(c, LocalTenantID) }
