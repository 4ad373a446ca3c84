package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	seedTenant = uuid.MustParse("99999999-9999-4999-8999-999999999999")
	seedAna    = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	seedBen    = uuid.MustParse("22222222-2222-4222-8222-222222222222")
)

func writeSeed(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSeedYAML(t *testing.T) {
	s := New()
	n, err := s.LoadSeed(filepath.Join("testdata", "seed.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ctx := context.Background()
	ana, err := s.Employees().GetByID(ctx, seedTenant, seedAna)
	require.NoError(t, err)
	require.NotNil(t, ana)
	assert.Equal(t, "Ana", ana.Name)
	assert.Equal(t, "admin", ana.Role)

	ben, err := s.Employees().GetByID(ctx, seedTenant, seedBen)
	require.NoError(t, err)
	require.NotNil(t, ben)
	assert.Equal(t, "employee", ben.Role, "role defaults when omitted")
	assert.False(t, ben.CreatedAt.IsZero())

	other, err := s.Employees().GetByID(ctx, uuid.New(), seedAna)
	require.NoError(t, err)
	assert.Nil(t, other, "seeded employees stay in their tenant")
}

func TestLoadSeedJSON(t *testing.T) {
	path := writeSeed(t, "seed.json", `{"employees":[
		{"id":"`+seedAna.String()+`","tenant_id":"`+seedTenant.String()+`","name":"Ana"}
	]}`)

	s := New()
	n, err := s.LoadSeed(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := s.Employees().ListByTenant(context.Background(), seedTenant)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, seedAna, all[0].ID)
}

func TestLoadSeedRejectsBadEntries(t *testing.T) {
	tenant := seedTenant.String()
	cases := map[string]string{
		"bad id":       `employees: [{id: nope, tenant_id: ` + tenant + `, name: A}]`,
		"missing name": `employees: [{id: ` + seedAna.String() + `, tenant_id: ` + tenant + `}]`,
		"nil tenant":   `employees: [{id: ` + seedAna.String() + `, tenant_id: ` + uuid.Nil.String() + `, name: A}]`,
		"duplicate id": `employees: [{id: ` + seedAna.String() + `, tenant_id: ` + tenant + `, name: A}, {id: ` + seedAna.String() + `, tenant_id: ` + tenant + `, name: B}]`,
		"not yaml":     `employees: [`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			s := New()
			_, err := s.LoadSeed(writeSeed(t, "seed.yaml", body))
			assert.Error(t, err)

			all, err := s.Employees().ListByTenant(context.Background(), seedTenant)
			require.NoError(t, err)
			assert.Empty(t, all, "a rejected seed stores nothing")
		})
	}
}

func TestLoadSeedMissingFile(t *testing.T) {
	_, err := New().LoadSeed(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
