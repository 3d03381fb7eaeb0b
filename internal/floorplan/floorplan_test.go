package floorplan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPlan(t *testing.T) {
	p := Default()
	assert.Equal(t, 54, p.Capacity())
	assert.True(t, p.Contains(Seat{Table: "A", Index: 0}))
	assert.True(t, p.Contains(Seat{Table: "F", Index: 8}))
	assert.False(t, p.Contains(Seat{Table: "F", Index: 9}))
}

func TestParse(t *testing.T) {
	p := Default()

	cases := []struct {
		token string
		want  string
		ok    bool
	}{
		{"A3", "A3", true},
		{" b0 ", "B0", true},
		{"F8", "F8", true},
		{"F9", "", false},
		{"G1", "", false},
		{"A", "", false},
		{"3A", "", false},
		{"A-1", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			s, err := p.Parse(tc.token)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, s.Token())
		})
	}
}

func TestResolve(t *testing.T) {
	p := Default()
	res := p.Resolve([]string{"B2", "a1", "Z9", "A1", "A0"})

	assert.Equal(t, []string{"A0", "A1", "B2"}, Tokens(res.Seats))
	assert.Equal(t, []string{"Z9"}, res.Invalid)
	assert.Equal(t, []string{"A1"}, res.Duplicates)
}

func TestLoad(t *testing.T) {
	t.Run("EmptyPathIsDefault", func(t *testing.T) {
		p, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultTables, p.Tables)
	})

	t.Run("FromFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plan.yaml")
		require.NoError(t, os.WriteFile(path, []byte("tables: [a, b]\nseats_per_table: 4\n"), 0o644))

		p, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, p.Tables)
		assert.Equal(t, 8, p.Capacity())

		_, err = p.Parse("C0")
		assert.Error(t, err)
		_, err = p.Parse("B3")
		assert.NoError(t, err)
	})

	t.Run("RejectsDuplicateTables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plan.yaml")
		require.NoError(t, os.WriteFile(path, []byte("tables: [A, a]\n"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
