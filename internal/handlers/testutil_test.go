package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/campuspool/campuspool-backend/internal/middleware"
	"github.com/campuspool/campuspool-backend/internal/models"
	"github.com/campuspool/campuspool-backend/internal/pools"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	testDBSeq atomic.Int64
	userSeq   atomic.Int64
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handlerstest%d?mode=memory&cache=shared&_busy_timeout=5000", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Pool{},
		&models.PoolMember{},
		&models.PoolRequest{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, gender models.Gender) *models.User {
	t.Helper()

	n := userSeq.Add(1)
	phone := fmt.Sprintf("97%08d", n)
	user := &models.User{
		Email:       fmt.Sprintf("handler%d@thapar.edu", n),
		FullName:    fmt.Sprintf("Handler User %d", n),
		PhoneNumber: &phone,
		Gender:      gender,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// asUser stands in for AuthMiddleware+RequireCompleteProfile so handler
// tests can pick the acting user per request.
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", user.ID)
		c.Set("email", user.Email)
		c.Set("scope", "session")
		c.Set(middleware.CurrentUserKey, user)
		c.Next()
	}
}

// poolTestEnv wires the pool routes the way cmd/api does, with a swappable
// acting user.
type poolTestEnv struct {
	db       *gorm.DB
	registry *pools.Registry
	workflow *pools.Workflow
	router   *gin.Engine
	actor    *models.User
}

func newPoolTestEnv(t *testing.T, policy pools.JoinPolicy) *poolTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &poolTestEnv{db: openTestDB(t)}
	env.registry = pools.NewRegistry(env.db, "Thapar University")
	env.workflow = pools.NewWorkflow(env.db)

	r := gin.New()
	auth := func(c *gin.Context) {
		asUser(env.actor)(c)
	}

	r.GET("/api/pools", auth, GetPools(env.registry))
	r.GET("/api/pools/:id", auth, GetPool(env.registry))
	r.GET("/api/pools/:id/requests", auth, ListPoolRequests(env.workflow))
	r.POST("/api/pools", auth, CreatePool(env.registry))
	r.PUT("/api/pools/:id", auth, UpdatePool(env.registry))
	r.DELETE("/api/pools/:id", auth, DeletePool(env.registry))
	r.POST("/api/pools/:id/join", auth, JoinPool(env.registry, env.workflow, policy))
	r.POST("/api/pool-requests/:id/accept", auth, AcceptPoolRequest(env.workflow))
	r.POST("/api/pool-requests/:id/reject", auth, RejectPoolRequest(env.workflow))
	env.router = r
	return env
}

func (env *poolTestEnv) as(user *models.User) *poolTestEnv {
	env.actor = user
	return env
}

func (env *poolTestEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func performRequest(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func putJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return performRequest(r, req)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func poolPayload(total int) gin.H {
	departure := time.Date(2026, 9, 20, 10, 0, 0, 0, time.UTC)
	return gin.H{
		"endPoint":      "Chandigarh Airport",
		"departureTime": departure.Format(time.RFC3339),
		"arrivalTime":   departure.Add(time.Hour).Format(time.RFC3339),
		"transportMode": "Cab",
		"totalPersons":  total,
	}
}

func (env *poolTestEnv) createPool(t *testing.T, creator *models.User, total int) uint {
	t.Helper()
	w := env.as(creator).do(t, http.MethodPost, "/api/pools", poolPayload(total))
	require.Equal(t, 201, w.Code, w.Body.String())
	body := decodeBody(t, w)
	return uint(body["ID"].(float64))
}
