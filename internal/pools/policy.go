package pools

import (
	"github.com/campuspool/campuspool-backend/internal/models"
)

// Decision is the outcome of an authorization policy check, evaluated before
// any mutation so the rules stay testable apart from the writes they guard.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// CanModeratePool reports whether actor holds creator authority over the
// pool: updating it, accepting and rejecting its requests.
func CanModeratePool(actorID uint, pool *models.Pool) Decision {
	if pool.CreatedByID != actorID {
		return Deny("only the pool creator can perform this action")
	}
	return Allow()
}

// CanSetFemaleOnly gates the female-only flag at creation and update time.
func CanSetFemaleOnly(gender models.Gender) Decision {
	if gender != models.GenderFemale {
		return Deny("only female users can create or modify a pool to be female-only")
	}
	return Allow()
}

// MeetsEligibility checks a prospective member against the pool's
// restrictions.
func MeetsEligibility(gender models.Gender, pool *models.Pool) Decision {
	if pool.IsFemaleOnly && gender != models.GenderFemale {
		return Deny("only female users can join this pool")
	}
	return Allow()
}
