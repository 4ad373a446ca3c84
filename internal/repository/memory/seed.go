package memory

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/lalith-99/staffhub/internal/models"
	"gopkg.in/yaml.v3"
)

// SeedFile is the employee directory the memory driver starts with. YAML
// is a superset of JSON, so either format loads.
//
//	employees:
//	  - id: 7b0c...
//	    tenant_id: 1f3a...
//	    name: Ana
//	    email: ana@example.com
//	    role: admin
type SeedFile struct {
	Employees []SeedEmployee `yaml:"employees"`
}

// SeedEmployee keeps ids as strings so a bad id is reported with its
// position instead of as a decoder type error.
type SeedEmployee struct {
	ID       string `yaml:"id"`
	TenantID string `yaml:"tenant_id"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Role     string `yaml:"role"`
}

// LoadSeed reads path and puts every employee into the directory. Ids
// must be fixed in the file because tokens refer to them. Nothing is
// stored if any entry is invalid.
func (s *Store) LoadSeed(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed: %w", err)
	}

	var file SeedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("parse seed: %w", err)
	}

	employees := make([]models.Employee, 0, len(file.Employees))
	seen := make(map[uuid.UUID]bool, len(file.Employees))
	for i, se := range file.Employees {
		e, err := se.employee()
		if err != nil {
			return 0, fmt.Errorf("seed employee %d: %w", i, err)
		}
		if seen[e.ID] {
			return 0, fmt.Errorf("seed employee %d: duplicate id %s", i, e.ID)
		}
		seen[e.ID] = true
		employees = append(employees, e)
	}

	for _, e := range employees {
		s.PutEmployee(e)
	}
	return len(employees), nil
}

func (se SeedEmployee) employee() (models.Employee, error) {
	id, err := uuid.Parse(se.ID)
	if err != nil {
		return models.Employee{}, fmt.Errorf("invalid id %q", se.ID)
	}
	tenantID, err := uuid.Parse(se.TenantID)
	if err != nil {
		return models.Employee{}, fmt.Errorf("invalid tenant_id %q", se.TenantID)
	}
	if id == uuid.Nil || tenantID == uuid.Nil {
		return models.Employee{}, fmt.Errorf("id and tenant_id must not be nil")
	}
	if se.Name == "" {
		return models.Employee{}, fmt.Errorf("name is required")
	}
	return models.Employee{
		ID:       id,
		TenantID: tenantID,
		Name:     se.Name,
		Email:    se.Email,
		Role:     se.Role,
	}, nil
}
