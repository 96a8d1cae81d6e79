package pools

import (
	"errors"
	"fmt"
	"time"

	"github.com/campuspool/campuspool-backend/internal/models"
	"gorm.io/gorm"
)

// Registry owns Pool and PoolMember rows: creation rules, capacity and the
// direct-join path. Every write runs inside a single transaction so a pool is
// never observable without its creator's membership row and current_persons
// always equals the member-row count.
type Registry struct {
	db                *gorm.DB
	defaultStartPoint string
}

func NewRegistry(db *gorm.DB, defaultStartPoint string) *Registry {
	return &Registry{db: db, defaultStartPoint: defaultStartPoint}
}

type CreatePoolInput struct {
	StartPoint    string
	EndPoint      string
	DepartureTime time.Time
	ArrivalTime   time.Time
	TransportMode string
	TotalPersons  int
	FarePerHead   *float64
	Description   string
	IsFemaleOnly  bool
}

type UpdatePoolInput struct {
	StartPoint    *string
	EndPoint      *string
	DepartureTime *time.Time
	ArrivalTime   *time.Time
	TransportMode *string
	TotalPersons  *int
	FarePerHead   *float64
	Description   *string
	IsFemaleOnly  *bool
}

// Create persists a new pool with the acting user as creator and first
// member. The pool row and the creator's membership row commit together or
// not at all.
func (r *Registry) Create(actor *models.User, in CreatePoolInput) (*models.Pool, error) {
	if in.StartPoint == "" {
		in.StartPoint = r.defaultStartPoint
	}
	if in.EndPoint == "" {
		return nil, fmt.Errorf("%w: end point is required", ErrValidation)
	}
	if in.TransportMode == "" {
		return nil, fmt.Errorf("%w: transport mode is required", ErrValidation)
	}
	if in.TotalPersons < 1 {
		return nil, fmt.Errorf("%w: total persons must be at least 1", ErrValidation)
	}
	if in.ArrivalTime.Before(in.DepartureTime) {
		return nil, fmt.Errorf("%w: arrival time cannot precede departure time", ErrValidation)
	}
	if in.FarePerHead != nil && *in.FarePerHead < 0 {
		return nil, fmt.Errorf("%w: fare per head cannot be negative", ErrValidation)
	}
	if in.IsFemaleOnly {
		if d := CanSetFemaleOnly(actor.Gender); !d.Allowed {
			return nil, fmt.Errorf("%w: %s", ErrNotAuthorized, d.Reason)
		}
	}

	pool := &models.Pool{
		StartPoint:     in.StartPoint,
		EndPoint:       in.EndPoint,
		DepartureTime:  in.DepartureTime,
		ArrivalTime:    in.ArrivalTime,
		TransportMode:  in.TransportMode,
		TotalPersons:   in.TotalPersons,
		CurrentPersons: 1,
		FarePerHead:    in.FarePerHead,
		CreatedByID:    actor.ID,
		Description:    in.Description,
		IsFemaleOnly:   in.IsFemaleOnly,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(pool).Error; err != nil {
			return err
		}
		member := models.PoolMember{
			PoolID:    pool.ID,
			UserID:    actor.ID,
			IsCreator: true,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	return r.Get(pool.ID)
}

// Update applies a partial patch. Only the creator may update a pool, the
// capacity ceiling may not drop below the seats already taken, and flipping
// a pool to female-only requires a Female actor.
func (r *Registry) Update(actor *models.User, poolID uint, in UpdatePoolInput) (*models.Pool, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var pool models.Pool
		if err := tx.First(&pool, poolID).Error; err != nil {
			return mapRecordError(err, "pool")
		}
		if d := CanModeratePool(actor.ID, &pool); !d.Allowed {
			return fmt.Errorf("%w: %s", ErrNotAuthorized, d.Reason)
		}
		if in.IsFemaleOnly != nil && *in.IsFemaleOnly && !pool.IsFemaleOnly {
			if d := CanSetFemaleOnly(actor.Gender); !d.Allowed {
				return fmt.Errorf("%w: %s", ErrNotAuthorized, d.Reason)
			}
		}
		if in.TotalPersons != nil && *in.TotalPersons < pool.CurrentPersons {
			return fmt.Errorf("%w: total persons cannot be less than the current number of members", ErrValidation)
		}
		if in.FarePerHead != nil && *in.FarePerHead < 0 {
			return fmt.Errorf("%w: fare per head cannot be negative", ErrValidation)
		}

		departure := pool.DepartureTime
		arrival := pool.ArrivalTime
		if in.DepartureTime != nil {
			departure = *in.DepartureTime
		}
		if in.ArrivalTime != nil {
			arrival = *in.ArrivalTime
		}
		if arrival.Before(departure) {
			return fmt.Errorf("%w: arrival time cannot precede departure time", ErrValidation)
		}

		// Write only the patched columns. current_persons is never among
		// them: reserveSeat is its sole writer, and a full-row save here
		// would overwrite a seat reserved since the read above.
		updates := map[string]interface{}{}
		if in.StartPoint != nil {
			updates["start_point"] = *in.StartPoint
		}
		if in.EndPoint != nil {
			updates["end_point"] = *in.EndPoint
		}
		if in.DepartureTime != nil {
			updates["departure_time"] = *in.DepartureTime
		}
		if in.ArrivalTime != nil {
			updates["arrival_time"] = *in.ArrivalTime
		}
		if in.TransportMode != nil {
			updates["transport_mode"] = *in.TransportMode
		}
		if in.TotalPersons != nil {
			updates["total_persons"] = *in.TotalPersons
		}
		if in.FarePerHead != nil {
			updates["fare_per_head"] = *in.FarePerHead
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.IsFemaleOnly != nil {
			updates["is_female_only"] = *in.IsFemaleOnly
		}
		if len(updates) == 0 {
			return nil
		}

		q := tx.Model(&models.Pool{}).Where("id = ?", pool.ID)
		if in.TotalPersons != nil {
			// The floor check above used the counter as read; re-check it
			// in the write so a seat reserved in between cannot slip under
			// a shrinking ceiling.
			q = q.Where("current_persons <= ?", *in.TotalPersons)
		}
		res := q.Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if in.TotalPersons != nil && res.RowsAffected == 0 {
			return fmt.Errorf("%w: total persons cannot be less than the current number of members", ErrValidation)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.Get(poolID)
}

// Delete always fails: pools are an append-only ledger of ride history.
func (r *Registry) Delete(actor *models.User, poolID uint) error {
	return fmt.Errorf("%w: pools cannot be deleted", ErrOperationNotAllowed)
}

// JoinDirect adds the acting user to an open pool. Preconditions run in a
// fixed order so the caller always sees the same kind for the same state:
// creator, existing membership, capacity, then eligibility.
func (r *Registry) JoinDirect(actor *models.User, poolID uint) (*models.PoolMember, error) {
	var member *models.PoolMember
	err := r.db.Transaction(func(tx *gorm.DB) error {
		pool, err := checkJoinPreconditions(tx, actor, poolID)
		if err != nil {
			return err
		}
		if err := reserveSeat(tx, pool.ID); err != nil {
			return err
		}
		member = &models.PoolMember{PoolID: pool.ID, UserID: actor.ID}
		if err := tx.Create(member).Error; err != nil {
			return mapDuplicateError(err, "already a member of this pool")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// Get returns a pool with its member list and creator.
func (r *Registry) Get(poolID uint) (*models.Pool, error) {
	var pool models.Pool
	err := r.db.Preload("Members").Preload("Members.User").Preload("CreatedBy").
		First(&pool, poolID).Error
	if err != nil {
		return nil, mapRecordError(err, "pool")
	}
	return &pool, nil
}

// checkJoinPreconditions enforces the shared join gate for both the direct
// and the request-gated path. First failure wins.
func checkJoinPreconditions(tx *gorm.DB, actor *models.User, poolID uint) (*models.Pool, error) {
	var pool models.Pool
	if err := tx.First(&pool, poolID).Error; err != nil {
		return nil, mapRecordError(err, "pool")
	}
	if pool.CreatedByID == actor.ID {
		return nil, fmt.Errorf("%w: creators cannot join their own pool", ErrInvalidOperation)
	}
	var memberships int64
	if err := tx.Model(&models.PoolMember{}).
		Where("pool_id = ? AND user_id = ?", pool.ID, actor.ID).
		Count(&memberships).Error; err != nil {
		return nil, err
	}
	if memberships > 0 {
		return nil, fmt.Errorf("%w: already a member of this pool", ErrConflict)
	}
	if pool.CurrentPersons >= pool.TotalPersons {
		return nil, fmt.Errorf("%w: this pool is already full", ErrCapacityExceeded)
	}
	if d := MeetsEligibility(actor.Gender, &pool); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrNotAuthorized, d.Reason)
	}
	return &pool, nil
}

// reserveSeat is the only code path allowed to mutate current_persons. The
// guarded update is a compare-and-swap: concurrent callers racing for the
// last seat observe the post-increment count and exactly one wins.
func reserveSeat(tx *gorm.DB, poolID uint) error {
	res := tx.Model(&models.Pool{}).
		Where("id = ? AND current_persons < total_persons", poolID).
		Update("current_persons", gorm.Expr("current_persons + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: this pool is already full", ErrCapacityExceeded)
	}
	return nil
}

func mapRecordError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

func mapDuplicateError(err error, detail string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", ErrConflict, detail)
	}
	return err
}
