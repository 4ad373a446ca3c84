package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/staffhub/internal/middleware"
	"github.com/lalith-99/staffhub/internal/models"
	"github.com/lalith-99/staffhub/internal/repository"
	"go.uber.org/zap"
)

// EmployeeHandler exposes the read-only employee directory.
type EmployeeHandler struct {
	repo   repository.EmployeeRepository
	logger *zap.Logger
}

func NewEmployeeHandler(repo repository.EmployeeRepository, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{repo: repo, logger: logger}
}

// GetMe handles GET /v1/employees/me
//
// Returns the caller's own directory entry, including role.
func (h *EmployeeHandler) GetMe(c *gin.Context) {
	userID := middleware.GetUserID(c)
	tenantID := middleware.GetTenantID(c)

	employee, err := h.repo.GetByID(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.logger.Error("failed to get employee", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get employee"})
		return
	}

	// A valid token for someone the directory does not know means the
	// identity provider and the directory are out of sync.
	if employee == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}

	c.JSON(http.StatusOK, employee)
}

// List handles GET /v1/employees
//
// Only display projections leave the service; roles stay private.
func (h *EmployeeHandler) List(c *gin.Context) {
	employees, err := h.repo.ListByTenant(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		h.logger.Error("failed to list employees", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list employees"})
		return
	}

	refs := make([]models.EmployeeRef, 0, len(employees))
	for _, e := range employees {
		refs = append(refs, e.Ref())
	}
	c.JSON(http.StatusOK, refs)
}
