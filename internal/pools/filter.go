package pools

import (
	"fmt"
	"strings"
	"time"

	"github.com/campuspool/campuspool-backend/internal/models"
)

// JoinPolicy selects what joining a pool does: open pools seat the caller
// immediately, gated pools file a request for the creator to decide.
type JoinPolicy string

const (
	JoinPolicyOpen  JoinPolicy = "open"
	JoinPolicyGated JoinPolicy = "gated"
)

func ParseJoinPolicy(s string) (JoinPolicy, bool) {
	switch p := JoinPolicy(strings.ToLower(s)); p {
	case JoinPolicyOpen, JoinPolicyGated:
		return p, true
	case "":
		return JoinPolicyGated, true
	}
	return "", false
}

// Filter is the read-only query surface over the pool collection.
type Filter struct {
	StartPoint   string
	EndPoint     string
	Search       string
	FemaleOnly   *bool
	DepartAfter  *time.Time
	DepartBefore *time.Time
	ArriveAfter  *time.Time
	ArriveBefore *time.Time
	MinFare      *float64
	MaxFare      *float64
	OrderBy      string
}

// Ordering columns a caller may request, optionally prefixed with "-" for
// descending.
var orderableColumns = map[string]string{
	"departure_time": "departure_time",
	"arrival_time":   "arrival_time",
	"fare_per_head":  "fare_per_head",
}

// List applies the filter and returns matching pools with their creators
// preloaded.
func (r *Registry) List(f Filter) ([]models.Pool, error) {
	q := r.db.Model(&models.Pool{}).Preload("CreatedBy")

	if f.StartPoint != "" {
		q = q.Where("start_point = ?", f.StartPoint)
	}
	if f.EndPoint != "" {
		q = q.Where("end_point = ?", f.EndPoint)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(start_point) LIKE ? OR LOWER(end_point) LIKE ?", pattern, pattern)
	}
	if f.FemaleOnly != nil {
		q = q.Where("is_female_only = ?", *f.FemaleOnly)
	}
	if f.DepartAfter != nil {
		q = q.Where("departure_time >= ?", *f.DepartAfter)
	}
	if f.DepartBefore != nil {
		q = q.Where("departure_time <= ?", *f.DepartBefore)
	}
	if f.ArriveAfter != nil {
		q = q.Where("arrival_time >= ?", *f.ArriveAfter)
	}
	if f.ArriveBefore != nil {
		q = q.Where("arrival_time <= ?", *f.ArriveBefore)
	}
	if f.MinFare != nil {
		q = q.Where("fare_per_head >= ?", *f.MinFare)
	}
	if f.MaxFare != nil {
		q = q.Where("fare_per_head <= ?", *f.MaxFare)
	}

	order, err := resolveOrder(f.OrderBy)
	if err != nil {
		return nil, err
	}
	q = q.Order(order)

	var pools []models.Pool
	if err := q.Find(&pools).Error; err != nil {
		return nil, err
	}
	return pools, nil
}

func resolveOrder(requested string) (string, error) {
	if requested == "" {
		return "departure_time", nil
	}
	direction := ""
	column := requested
	if strings.HasPrefix(requested, "-") {
		direction = " DESC"
		column = requested[1:]
	}
	resolved, ok := orderableColumns[column]
	if !ok {
		return "", fmt.Errorf("%w: cannot order by %q", ErrValidation, column)
	}
	return resolved + direction, nil
}
