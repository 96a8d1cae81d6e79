package pools

import (
	"fmt"

	"github.com/campuspool/campuspool-backend/internal/models"
	"gorm.io/gorm"
)

// Workflow owns PoolRequest rows and the pending -> accepted/rejected state
// machine. Acceptance finalizes membership through the registry's seat
// reservation, inside one transaction.
type Workflow struct {
	db *gorm.DB
}

func NewWorkflow(db *gorm.DB) *Workflow {
	return &Workflow{db: db}
}

// RequestJoin files a pending request against a gated pool. The same join
// gate as the direct path applies; a user with an outstanding request gets a
// conflict, enforced by the unique (pool, user) index rather than only the
// advisory pre-check.
func (w *Workflow) RequestJoin(actor *models.User, poolID uint) (*models.PoolRequest, error) {
	var request *models.PoolRequest
	err := w.db.Transaction(func(tx *gorm.DB) error {
		pool, err := checkJoinPreconditions(tx, actor, poolID)
		if err != nil {
			return err
		}
		var pending int64
		if err := tx.Model(&models.PoolRequest{}).
			Where("pool_id = ? AND user_id = ?", pool.ID, actor.ID).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return fmt.Errorf("%w: a pending request for this pool already exists", ErrConflict)
		}
		request = &models.PoolRequest{
			PoolID: pool.ID,
			UserID: actor.ID,
			Status: models.RequestStatusPending,
		}
		if err := tx.Create(request).Error; err != nil {
			return mapDuplicateError(err, "a pending request for this pool already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ListRequests returns every request filed against the pool, in append
// order. Listing is not restricted to the creator.
func (w *Workflow) ListRequests(poolID uint) ([]models.PoolRequest, error) {
	var pool models.Pool
	if err := w.db.First(&pool, poolID).Error; err != nil {
		return nil, mapRecordError(err, "pool")
	}
	var requests []models.PoolRequest
	err := w.db.Preload("User").
		Where("pool_id = ?", poolID).
		Order("id").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// Accept finalizes a pending request: the request row is removed, a seat is
// reserved and the membership row is created, all in one transaction. The
// delete runs first with a rows-affected guard, so a concurrent accept of
// the same request fails with not found instead of double-counting, and a
// capacity failure rolls the delete back leaving the request intact.
func (w *Workflow) Accept(actor *models.User, requestID uint) error {
	return w.db.Transaction(func(tx *gorm.DB) error {
		request, pool, err := loadRequestForDecision(tx, actor, requestID)
		if err != nil {
			return err
		}

		res := tx.Where("id = ?", request.ID).Delete(&models.PoolRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: pool request", ErrNotFound)
		}
		if err := reserveSeat(tx, pool.ID); err != nil {
			return err
		}
		member := models.PoolMember{PoolID: pool.ID, UserID: request.UserID}
		if err := tx.Create(&member).Error; err != nil {
			return mapDuplicateError(err, "requesting user is already a member of this pool")
		}
		return nil
	})
}

// Reject removes a pending request. No membership or capacity side effects.
func (w *Workflow) Reject(actor *models.User, requestID uint) error {
	return w.db.Transaction(func(tx *gorm.DB) error {
		request, _, err := loadRequestForDecision(tx, actor, requestID)
		if err != nil {
			return err
		}
		res := tx.Where("id = ?", request.ID).Delete(&models.PoolRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: pool request", ErrNotFound)
		}
		return nil
	})
}

func loadRequestForDecision(tx *gorm.DB, actor *models.User, requestID uint) (*models.PoolRequest, *models.Pool, error) {
	var request models.PoolRequest
	if err := tx.First(&request, requestID).Error; err != nil {
		return nil, nil, mapRecordError(err, "pool request")
	}
	var pool models.Pool
	if err := tx.First(&pool, request.PoolID).Error; err != nil {
		return nil, nil, mapRecordError(err, "pool")
	}
	if d := CanModeratePool(actor.ID, &pool); !d.Allowed {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotAuthorized, d.Reason)
	}
	return &request, &pool, nil
}
