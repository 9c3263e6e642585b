package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/medigenie/internal/client/inference"
	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demographics() models.Demographics {
	return models.Demographics{
		Name: "Ada", Age: 36, Gender: "Female", Weight: 61.5, Height: 170,
		BloodGroup: "A-", PreferredLanguage: "English",
	}
}

func TestOpen_SQLiteSealedStatePersists(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "state.db")
	cfg.Passphrase = "correct horse"

	gen := inference.GeneratorFunc(func(context.Context, inference.Request) (inference.Response, error) {
		return inference.Response{Text: "ok"}, nil
	})

	svc, closeFn, err := open(ctx, cfg, nil, gen)
	require.NoError(t, err)
	_, err = svc.Profiles.Register(ctx, demographics())
	require.NoError(t, err)
	require.NoError(t, closeFn())

	svc, closeFn, err = open(ctx, cfg, nil, gen)
	require.NoError(t, err)
	defer closeFn()
	p, err := svc.Profiles.Registered(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)

	cfg.Passphrase = "wrong"
	svc2, close2, err := open(ctx, cfg, nil, gen)
	require.NoError(t, err)
	defer close2()
	_, err = svc2.Profiles.Get(ctx)
	assert.Error(t, err)
}

func TestOpen_MemoryUsesGemini(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StorageBackend = config.BackendMemory

	svc, closeFn, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer closeFn()
	assert.NotNil(t, svc.Orchestrator)
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := &config.Config{StorageBackend: "floppy"}
	_, _, err := Open(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "storage init error")
}
