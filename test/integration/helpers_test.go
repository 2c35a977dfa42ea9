//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/discovery"
	"github.com/reloquent/modelts/internal/emit"
	"github.com/reloquent/modelts/internal/model"
	"github.com/reloquent/modelts/internal/tsgen"
	"github.com/reloquent/modelts/internal/typemap"
)

func pgSource(t *testing.T) *config.SourceConfig {
	t.Helper()
	var port int
	fmt.Sscanf(envOrDefault("MODELTS_TEST_PG_PORT", "25432"), "%d", &port)
	return &config.SourceConfig{
		Type:     "postgresql",
		Host:     envOrDefault("MODELTS_TEST_PG_HOST", "localhost"),
		Port:     port,
		Database: envOrDefault("MODELTS_TEST_PG_DATABASE", "pagila"),
		Schema:   "public",
		Username: envOrDefault("MODELTS_TEST_PG_USER", "postgres"),
		Password: envOrDefault("MODELTS_TEST_PG_PASSWORD", "postgres"),
	}
}

func mongoURI(t *testing.T) string {
	t.Helper()
	return envOrDefault("MODELTS_TEST_MONGO_URI", "mongodb://localhost:37017/?directConnection=true")
}

func mongoDatabase(t *testing.T) string {
	t.Helper()
	return envOrDefault("MODELTS_TEST_MONGO_DATABASE", "modelts_test")
}

func skipIfNoPostgres(t *testing.T) {
	t.Helper()
	if os.Getenv("MODELTS_TEST_PG_HOST") == "" && os.Getenv("MODELTS_TEST_PG_PORT") == "" {
		t.Skip("skipping: MODELTS_TEST_PG_HOST/PORT not set")
	}
}

func skipIfNoMongo(t *testing.T) {
	t.Helper()
	if os.Getenv("MODELTS_TEST_MONGO_URI") == "" {
		t.Skip("skipping: MODELTS_TEST_MONGO_URI not set")
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// generateDeclarations runs the whole pipeline against src and returns the
// rendered declaration file.
func generateDeclarations(t *testing.T, manifest string, src *config.SourceConfig) string {
	t.Helper()
	ctx := context.Background()

	reg, err := model.ParseManifest([]byte(manifest))
	require.NoError(t, err)

	d, err := discovery.New(src)
	require.NoError(t, err)
	defer d.Close()
	require.NoError(t, d.Connect(ctx))

	runner := &tsgen.Runner{
		Generator: tsgen.New(reg, d, typemap.ForDatabase(src.Type), nil),
		Workers:   2,
	}
	types, err := runner.Run(ctx)
	require.NoError(t, err)

	out, err := emit.Build(types, reg).Render()
	require.NoError(t, err)
	return out
}
