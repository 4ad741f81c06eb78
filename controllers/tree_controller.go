package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/middleware"
	"github.com/stackvest/stackvest_backend/models"
	"github.com/stackvest/stackvest_backend/services"
)

const defaultTreeDepth = 3

// TreeController returns the authenticated user's binary-tree view:
// business volumes, carries and downline counts per node.
type TreeController struct {
	Tree services.TreeStore
}

func NewTreeController(tree services.TreeStore) *TreeController {
	return &TreeController{Tree: tree}
}

// GetBinaryTree returns the subtree rooted at the authenticated user,
// limited to the requested depth (default 3, max 6).
func (tc *TreeController) GetBinaryTree(c echo.Context) error {
	userID := middleware.GetUserIDFromToken(c)
	if userID == primitive.NilObjectID {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	depth := defaultTreeDepth
	if d := c.QueryParam("depth"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 1 || parsed > 6 {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Depth must be between 1 and 6",
			})
		}
		depth = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := tc.subtreeStats(ctx, userID, depth)
	if err != nil {
		log.Printf("GetBinaryTree: user %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve binary tree",
		})
	}
	if stats == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Binary tree retrieved successfully",
		Data:    stats,
	})
}

// subtreeStats loads the node and recurses into its children until depth
// is exhausted.
func (tc *TreeController) subtreeStats(ctx context.Context, nodeID primitive.ObjectID, depth int) (*models.BinaryTreeStats, error) {
	node, err := tc.Tree.Node(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}

	stats := &models.BinaryTreeStats{
		UserID:         node.ID,
		LeftBusiness:   node.LeftBusiness,
		RightBusiness:  node.RightBusiness,
		LeftCarry:      node.LeftCarry,
		RightCarry:     node.RightCarry,
		LeftDownlines:  node.LeftDownlines,
		RightDownlines: node.RightDownlines,
	}
	if depth <= 1 {
		return stats, nil
	}

	if node.LeftChild != nil {
		stats.LeftChild, err = tc.subtreeStats(ctx, *node.LeftChild, depth-1)
		if err != nil {
			return nil, err
		}
	}
	if node.RightChild != nil {
		stats.RightChild, err = tc.subtreeStats(ctx, *node.RightChild, depth-1)
		if err != nil {
			return nil, err
		}
	}
	return stats, nil
}
