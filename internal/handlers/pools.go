package handlers

import (
	"strconv"
	"time"

	"github.com/campuspool/campuspool-backend/internal/middleware"
	"github.com/campuspool/campuspool-backend/internal/pools"
	"github.com/gin-gonic/gin"
)

// CreatePool handles the creation of a new pool by the acting user
func CreatePool(registry *pools.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)

		var input struct {
			StartPoint    string    `json:"startPoint"`
			EndPoint      string    `json:"endPoint" binding:"required"`
			DepartureTime time.Time `json:"departureTime" binding:"required"`
			ArrivalTime   time.Time `json:"arrivalTime" binding:"required"`
			TransportMode string    `json:"transportMode" binding:"required"`
			TotalPersons  int       `json:"totalPersons" binding:"required,min=1"`
			FarePerHead   *float64  `json:"farePerHead"`
			Description   string    `json:"description"`
			IsFemaleOnly  bool      `json:"isFemaleOnly"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error(), "code": "validation_error"})
			return
		}

		pool, err := registry.Create(actor, pools.CreatePoolInput{
			StartPoint:    input.StartPoint,
			EndPoint:      input.EndPoint,
			DepartureTime: input.DepartureTime,
			ArrivalTime:   input.ArrivalTime,
			TransportMode: input.TransportMode,
			TotalPersons:  input.TotalPersons,
			FarePerHead:   input.FarePerHead,
			Description:   input.Description,
			IsFemaleOnly:  input.IsFemaleOnly,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(201, pool)
	}
}

// GetPools lists pools through the filter/search/sort query surface
func GetPools(registry *pools.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := pools.Filter{
			StartPoint: c.Query("startPoint"),
			EndPoint:   c.Query("endPoint"),
			Search:     c.Query("search"),
			OrderBy:    c.Query("ordering"),
		}

		if v := c.Query("isFemaleOnly"); v != "" {
			femaleOnly, err := strconv.ParseBool(v)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid isFemaleOnly value", "code": "validation_error"})
				return
			}
			filter.FemaleOnly = &femaleOnly
		}

		timeParams := []struct {
			name string
			dest **time.Time
		}{
			{"departAfter", &filter.DepartAfter},
			{"departBefore", &filter.DepartBefore},
			{"arriveAfter", &filter.ArriveAfter},
			{"arriveBefore", &filter.ArriveBefore},
		}
		for _, p := range timeParams {
			if v := c.Query(p.name); v != "" {
				t, err := time.Parse(time.RFC3339, v)
				if err != nil {
					c.JSON(400, gin.H{"error": "Invalid " + p.name + " timestamp", "code": "validation_error"})
					return
				}
				*p.dest = &t
			}
		}

		fareParams := []struct {
			name string
			dest **float64
		}{
			{"minFare", &filter.MinFare},
			{"maxFare", &filter.MaxFare},
		}
		for _, p := range fareParams {
			if v := c.Query(p.name); v != "" {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					c.JSON(400, gin.H{"error": "Invalid " + p.name + " value", "code": "validation_error"})
					return
				}
				*p.dest = &f
			}
		}

		result, err := registry.List(filter)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, result)
	}
}

// GetPool retrieves a single pool with its member list
func GetPool(registry *pools.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		poolID, ok := parseID(c, c.Param("id"))
		if !ok {
			return
		}

		pool, err := registry.Get(poolID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, pool)
	}
}

// UpdatePool applies a creator-only partial update
func UpdatePool(registry *pools.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		poolID, ok := parseID(c, c.Param("id"))
		if !ok {
			return
		}

		var input struct {
			StartPoint    *string    `json:"startPoint"`
			EndPoint      *string    `json:"endPoint"`
			DepartureTime *time.Time `json:"departureTime"`
			ArrivalTime   *time.Time `json:"arrivalTime"`
			TransportMode *string    `json:"transportMode"`
			TotalPersons  *int       `json:"totalPersons"`
			FarePerHead   *float64   `json:"farePerHead"`
			Description   *string    `json:"description"`
			IsFemaleOnly  *bool      `json:"isFemaleOnly"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error(), "code": "validation_error"})
			return
		}

		pool, err := registry.Update(actor, poolID, pools.UpdatePoolInput{
			StartPoint:    input.StartPoint,
			EndPoint:      input.EndPoint,
			DepartureTime: input.DepartureTime,
			ArrivalTime:   input.ArrivalTime,
			TransportMode: input.TransportMode,
			TotalPersons:  input.TotalPersons,
			FarePerHead:   input.FarePerHead,
			Description:   input.Description,
			IsFemaleOnly:  input.IsFemaleOnly,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, pool)
	}
}

// DeletePool always refuses: pools are a permanent record once created
func DeletePool(registry *pools.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		poolID, ok := parseID(c, c.Param("id"))
		if !ok {
			return
		}

		respondError(c, registry.Delete(actor, poolID))
	}
}

// JoinPool seats the caller directly or files a request, depending on the
// configured join policy
func JoinPool(registry *pools.Registry, workflow *pools.Workflow, policy pools.JoinPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		poolID, ok := parseID(c, c.Param("id"))
		if !ok {
			return
		}

		if policy == pools.JoinPolicyOpen {
			member, err := registry.JoinDirect(actor, poolID)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(201, member)
			return
		}

		request, err := workflow.RequestJoin(actor, poolID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(201, request)
	}
}

func parseID(c *gin.Context, raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid id", "code": "validation_error"})
		return 0, false
	}
	return uint(id), true
}
