package postgres

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func migrationFS(files map[string]string) fstest.MapFS {
	fsys := make(fstest.MapFS, len(files))
	for name, body := range files {
		fsys[migrationsDir+"/"+name] = &fstest.MapFile{Data: []byte(body)}
	}
	return fsys
}

func TestLoadMigrationsFromFS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   map[string]string
		want    []int64
		wantErr string
	}{
		{
			name: "sorted pairs",
			files: map[string]string{
				"0002_products.up.sql":   "CREATE TABLE p (id INT);",
				"0002_products.down.sql": "DROP TABLE p;",
				"0001_init.up.sql":       "CREATE TABLE r (id INT);",
				"0001_init.down.sql":     "DROP TABLE r;",
			},
			want: []int64{1, 2},
		},
		{
			name:    "missing down",
			files:   map[string]string{"0001_init.up.sql": "CREATE TABLE r (id INT);"},
			wantErr: "both up and down",
		},
		{
			name:    "bad file name",
			files:   map[string]string{"seed.sql": "SELECT 1;"},
			wantErr: "invalid migration file name",
		},
		{
			name: "blank body",
			files: map[string]string{
				"0001_init.up.sql":   "  \n",
				"0001_init.down.sql": "DROP TABLE r;",
			},
			wantErr: "is empty",
		},
		{
			name: "name mismatch",
			files: map[string]string{
				"0001_init.up.sql":    "CREATE TABLE r (id INT);",
				"0001_other.down.sql": "DROP TABLE r;",
			},
			wantErr: "two names",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loadMigrationsFromFS(migrationFS(tt.files))
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			versions := make([]int64, 0, len(got))
			for _, m := range got {
				versions = append(versions, m.Version)
			}
			require.Equal(t, tt.want, versions)
		})
	}
}

func TestLoadMigrationsFromFS_Embedded(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrationsFromFS(embeddedMigrations)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	require.Equal(t, int64(1), migrations[0].Version)
	require.Equal(t, "init", migrations[0].Name)
	require.Equal(t, "idempotency_keys", migrations[len(migrations)-1].Name)
}

func TestPlanMigrations(t *testing.T) {
	t.Parallel()

	all := []migration{
		{Version: 1, Name: "init", up: "u1", down: "d1"},
		{Version: 2, Name: "status", up: "u2", down: "d2"},
		{Version: 3, Name: "index", up: "u3", down: "d3"},
	}
	versions := func(plan []migration) []int64 {
		out := make([]int64, 0, len(plan))
		for _, m := range plan {
			out = append(out, m.Version)
		}
		return out
	}

	plan, err := planMigrations(all, []int64{1}, up, 0)
	require.NoError(t, err)
	require.Equal(t, []int64{2, 3}, versions(plan))

	plan, err = planMigrations(all, nil, up, 2)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, versions(plan))

	plan, err = planMigrations(all, []int64{1, 2, 3}, down, 2)
	require.NoError(t, err)
	require.Equal(t, []int64{3, 2}, versions(plan))

	plan, err = planMigrations(all, []int64{1}, down, 5)
	require.NoError(t, err)
	require.Equal(t, []int64{1}, versions(plan))

	_, err = planMigrations(all, []int64{7}, down, 1)
	require.ErrorContains(t, err, "unknown migration version 7")
}

func TestMigrationScriptByDirection(t *testing.T) {
	t.Parallel()

	m := migration{Version: 4, Name: "orders", up: "CREATE", down: "DROP"}
	require.Equal(t, "CREATE", m.script(up))
	require.Equal(t, "DROP", m.script(down))
	require.Equal(t, "0004_orders", m.String())
	require.Equal(t, "down", down.String())
}
