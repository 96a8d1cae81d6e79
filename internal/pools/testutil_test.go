package pools

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/campuspool/campuspool-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	testDBSeq atomic.Int64
	userSeq   atomic.Int64
)

// openTestDB gives every test its own named in-memory database. A single
// open connection keeps concurrent transactions serialized the way the
// postgres deployment serializes them with row locks.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:poolstest%d?mode=memory&cache=shared&_busy_timeout=5000", testDBSeq.Add(1))
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

func newTestRegistry(t *testing.T) (*Registry, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewRegistry(db, "Thapar University"), db
}

func createUser(t *testing.T, db *gorm.DB, gender models.Gender) *models.User {
	t.Helper()

	n := userSeq.Add(1)
	phone := fmt.Sprintf("98%08d", n)
	user := &models.User{
		Email:       fmt.Sprintf("user%d@thapar.edu", n),
		FullName:    fmt.Sprintf("User %d", n),
		PhoneNumber: &phone,
		Gender:      gender,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func basePoolInput(total int) CreatePoolInput {
	departure := time.Date(2026, 9, 12, 14, 0, 0, 0, time.UTC)
	return CreatePoolInput{
		EndPoint:      "Chandigarh Airport",
		DepartureTime: departure,
		ArrivalTime:   departure.Add(90 * time.Minute),
		TransportMode: "Cab",
		TotalPersons:  total,
	}
}

func createPool(t *testing.T, reg *Registry, creator *models.User, total int) *models.Pool {
	t.Helper()
	pool, err := reg.Create(creator, basePoolInput(total))
	require.NoError(t, err)
	return pool
}

func memberCount(t *testing.T, db *gorm.DB, poolID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.PoolMember{}).Where("pool_id = ?", poolID).Count(&count).Error)
	return count
}

func requestCount(t *testing.T, db *gorm.DB, poolID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.PoolRequest{}).Where("pool_id = ?", poolID).Count(&count).Error)
	return count
}

func reloadPool(t *testing.T, db *gorm.DB, poolID uint) *models.Pool {
	t.Helper()
	var pool models.Pool
	require.NoError(t, db.First(&pool, poolID).Error)
	return &pool
}

// requireCounterInvariant asserts the core bookkeeping rule: the stored
// counter equals the member-row count and stays within [1, total].
func requireCounterInvariant(t *testing.T, db *gorm.DB, poolID uint) {
	t.Helper()
	pool := reloadPool(t, db, poolID)
	require.Equal(t, int64(pool.CurrentPersons), memberCount(t, db, poolID))
	require.GreaterOrEqual(t, pool.CurrentPersons, 1)
	require.LessOrEqual(t, pool.CurrentPersons, pool.TotalPersons)
}
