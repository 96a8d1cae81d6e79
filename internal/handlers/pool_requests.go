package handlers

import (
	"github.com/campuspool/campuspool-backend/internal/middleware"
	"github.com/campuspool/campuspool-backend/internal/pools"
	"github.com/gin-gonic/gin"
)

// ListPoolRequests returns every request filed against a pool
func ListPoolRequests(workflow *pools.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		poolID, ok := parseID(c, c.Param("id"))
		if !ok {
			return
		}

		requests, err := workflow.ListRequests(poolID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, requests)
	}
}

// AcceptPoolRequest lets the pool creator approve a pending request
func AcceptPoolRequest(workflow *pools.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		requestID, ok := parseID(c, c.Param("id"))
		if !ok {
			return
		}

		if err := workflow.Accept(actor, requestID); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, gin.H{"message": "Request accepted"})
	}
}

// RejectPoolRequest lets the pool creator turn down a pending request
func RejectPoolRequest(workflow *pools.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.CurrentUser(c)
		requestID, ok := parseID(c, c.Param("id"))
		if !ok {
			return
		}

		if err := workflow.Reject(actor, requestID); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(200, gin.H{"message": "Request rejected"})
	}
}
