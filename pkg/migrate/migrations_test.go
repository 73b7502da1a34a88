package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/angelmondragon/tillpoint/pkg/config"
	"github.com/angelmondragon/tillpoint/pkg/db"
	"github.com/angelmondragon/tillpoint/pkg/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestEntitlementMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "create_entitlement_tables")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS business_types",
		"CREATE TABLE IF NOT EXISTS modules",
		"parent_module_id uuid REFERENCES modules (id)",
		"CREATE TABLE IF NOT EXISTS business_type_modules",
		"PRIMARY KEY (business_type_id, module_id)",
		"CREATE TABLE IF NOT EXISTS tenants",
		"CREATE TABLE IF NOT EXISTS tenant_modules",
		"PRIMARY KEY (tenant_id, module_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_modules_code",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPromoMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "create_promo_tables")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS promos",
		"CREATE TABLE IF NOT EXISTS promo_products",
		"quantity_tiers jsonb NOT NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_promo_products_promo_product ON promo_products (promo_id, product_id)",
		"CREATE TABLE IF NOT EXISTS promo_categories",
		"CREATE TABLE IF NOT EXISTS promo_bundles",
		"bundle_products jsonb NOT NULL",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_things.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestValidateDirRejectsMissingDown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_things.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Promo Priority!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_promo_priority.sql"), path)
	require.NoError(t, ValidateDir(dir))
}

func TestMaybeRunDevAutoMigratesSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:autorun_dev?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvDev},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true, UseSQLite: true},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: os.Stderr})

	require.NoError(t, MaybeRunDev(context.Background(), cfg, logg, db.FromConn(conn)))
	require.True(t, conn.Migrator().HasTable("tenant_modules"))
	require.True(t, conn.Migrator().HasTable("promo_bundles"))
}

func TestMaybeRunDevSkipsOutsideDev(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvProd}}
	require.NoError(t, MaybeRunDev(context.Background(), cfg, nil, nil))
}

func TestValidateEmbeddedMatchesDisk(t *testing.T) {
	require.NoError(t, ValidateEmbedded())

	onDisk, err := LatestVersion(os.DirFS("migrations"), ".")
	require.NoError(t, err)
	compiled, err := LatestVersion(embedded, embeddedDir)
	require.NoError(t, err)
	require.Equal(t, onDisk, compiled)
}

func TestValidateFSRejectsMisorderedAnnotations(t *testing.T) {
	cases := map[string]string{
		"down before up": "-- +goose Down\nDROP TABLE x;\n-- +goose Up\nCREATE TABLE x ();\n",
		"open statement": "-- +goose Up\n-- +goose StatementBegin\nCREATE TABLE x ();\n-- +goose Down\nDROP TABLE x;\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			fsys := fstest.MapFS{"sql/20260101000000_things.sql": {Data: []byte(body)}}
			require.Error(t, ValidateFS(fsys, "sql"))
		})
	}
}

func TestValidateFSRejectsDuplicateVersions(t *testing.T) {
	body := []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")
	fsys := fstest.MapFS{
		"sql/20260101000000_a.sql": {Data: body},
		"sql/20260101000000_b.sql": {Data: body},
	}
	require.Error(t, ValidateFS(fsys, "sql"))
}

func TestCreateSQLMigrationUsesClock(t *testing.T) {
	dir := t.TempDir()
	clock := func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	path, err := createSQLMigration(dir, "tenant promo caps", clock)
	require.NoError(t, err)
	require.Equal(t, "20260304050607_tenant_promo_caps.sql", filepath.Base(path))
}

func TestCreateSQLMigrationSortsAfterLatest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20990101000000_future.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	clock := func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	path, err := createSQLMigration(dir, "late", clock)
	require.NoError(t, err)
	require.Equal(t, "20990101000001_late.sql", filepath.Base(path))
	require.NoError(t, ValidateDir(dir))
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	_, err := CreateSQLMigration(t.TempDir(), " !! ")
	require.Error(t, err)
}
