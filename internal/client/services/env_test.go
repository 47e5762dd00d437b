package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamtracer/internal/client/client"
	"github.com/dmitrijs2005/dreamtracer/internal/client/models"
	"github.com/dmitrijs2005/dreamtracer/internal/logging"
	"github.com/dmitrijs2005/dreamtracer/internal/server/api"
	"github.com/dmitrijs2005/dreamtracer/internal/server/store"
	"github.com/stretchr/testify/require"
)

var dbSeq atomic.Int64

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:services_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := client.InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// testEnv is a signed-in client stack talking to an in-process backend.
type testEnv struct {
	server  *api.Server
	api     *client.HTTPClient
	db      *sql.DB
	auth    *AuthService
	local   *LocalStorageService
	sync    *ServerSyncService
	manager *HybridDataManager
	userID  string
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	srv := api.NewServer(store.New(models.PlanFree), []byte("test-secret"), time.Hour, logging.Nop())
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	db := openDB(t)
	hc := client.NewHTTPClient(ts.URL)
	auth := NewAuthService(hc, db, logging.Nop())
	hc.SetTokenSource(auth)

	user, err := auth.FirebaseAuth(ctx, "firebase-"+t.Name())
	require.NoError(t, err)

	local := NewLocalStorageService(db, logging.Nop())
	syncSvc := NewServerSyncService(hc, local, models.DefaultLimits(), logging.Nop(), WithHealthCheckTimeout(time.Second))
	manager := NewHybridDataManager(local, syncSvc, hc, models.DefaultLimits(), logging.Nop())

	return &testEnv{
		server:  srv,
		api:     hc,
		db:      db,
		auth:    auth,
		local:   local,
		sync:    syncSvc,
		manager: manager,
		userID:  user.ID,
	}
}

func intPtr(v int) *int { return &v }

func sampleInput() models.DreamInput {
	return models.DreamInput{
		DreamDate:     time.Now().Format(models.DateLayout),
		Title:         "Flying over the sea",
		BodyText:      "I was flying over a dark sea and felt free.",
		LucidityLevel: intPtr(4),
		EmotionTags:   []string{"joy", "awe"},
		DreamType:     "lucid",
		SleepQuality:  intPtr(3),
		Symbols:       []string{"sea"},
	}
}
