package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/dojosmash/dojo-smash/internal/storage"
	"github.com/dojosmash/dojo-smash/internal/storage/storagetest"
)

// testURIEnv names the replica-set URI the suite runs against. Without it the
// tests are skipped.
const testURIEnv = "DOJO_TEST_MONGO_URI"

// throwaway drops its database on Close
type throwaway struct {
	*Storage
}

func (t throwaway) Close() error {
	_ = t.db.Drop(context.Background())
	return t.Storage.Close()
}

func TestStorageSuite(t *testing.T) {
	uri := os.Getenv(testURIEnv)
	if uri == "" {
		t.Skipf("%s not set", testURIEnv)
	}

	suite.Run(t, &storagetest.Suite{
		NewStorage: func() storage.Storage {
			cfg := DefaultConfig()
			cfg.URI = uri
			cfg.Database = "dojo_test_" + uuid.NewString()[:8]
			cfg.Timeout = 5 * time.Second

			s, err := New(context.Background(), cfg)
			require.NoError(t, err)
			return throwaway{s}
		},
	})
}
