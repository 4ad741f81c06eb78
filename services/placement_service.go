package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/models"
)

// DefaultMaxTreeDepth is a soft safety bound on spillover search, not a
// business rule. A subtree full to this depth fails placement with TreeFull.
const DefaultMaxTreeDepth = 64

// PlacementService assigns new users to a binary-tree slot by spillover:
// breadth-first search through the referrer's preferred-side subtree,
// preferring the requested side at every node, until a free slot turns up.
type PlacementService struct {
	tree     TreeStore
	maxDepth int
}

func NewPlacementService(tree TreeStore) *PlacementService {
	return &PlacementService{tree: tree, maxDepth: DefaultMaxTreeDepth}
}

// Place links newUserID into the tree under referrerID's subtree. The
// distinguished root node bypasses the search and accepts unlimited direct
// children. Placement only sets pointers and downline counts; business
// volume is the aggregator's job.
func (s *PlacementService) Place(ctx context.Context, newUserID, referrerID primitive.ObjectID, preferred models.Position) (*models.User, error) {
	if !preferred.Valid() {
		return nil, ErrInvalidPosition
	}

	referrer, err := s.tree.Node(ctx, referrerID)
	if err != nil || referrer == nil || referrer.Status != models.UserActive {
		return nil, ErrReferrerNotFound
	}

	if referrer.IsRoot() {
		if err := s.tree.AttachRootChild(ctx, referrer.ID, preferred, newUserID); err != nil {
			return nil, fmt.Errorf("attach root child: %w", err)
		}
		return s.finishPlacement(ctx, newUserID, referrer.ID, preferred)
	}

	parentID, side, err := s.findSlot(ctx, referrer, preferred)
	if err != nil {
		return nil, err
	}
	if err := s.tree.AttachChild(ctx, parentID, side, newUserID); err != nil {
		return nil, fmt.Errorf("attach child: %w", err)
	}
	return s.finishPlacement(ctx, newUserID, parentID, side)
}

type slotCandidate struct {
	id    primitive.ObjectID
	depth int
}

// findSlot runs the breadth-first spillover search. The referrer's own
// preferred slot counts as depth zero; below that the search walks the
// preferred-side subtree level by level, checking the preferred slot before
// the opposite one at every node.
func (s *PlacementService) findSlot(ctx context.Context, referrer *models.User, preferred models.Position) (primitive.ObjectID, models.Position, error) {
	if referrer.Child(preferred) == nil {
		return referrer.ID, preferred, nil
	}

	queue := []slotCandidate{{id: *referrer.Child(preferred), depth: 1}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth > s.maxDepth {
			return primitive.NilObjectID, "", ErrTreeFull
		}

		node, err := s.tree.Node(ctx, cur.id)
		if err != nil {
			return primitive.NilObjectID, "", fmt.Errorf("load node %s: %w", cur.id.Hex(), err)
		}

		if node.Child(preferred) == nil {
			return node.ID, preferred, nil
		}
		if node.Child(preferred.Opposite()) == nil {
			return node.ID, preferred.Opposite(), nil
		}

		queue = append(queue,
			slotCandidate{id: *node.Child(preferred), depth: cur.depth + 1},
			slotCandidate{id: *node.Child(preferred.Opposite()), depth: cur.depth + 1},
		)
	}
	return primitive.NilObjectID, "", ErrTreeFull
}

// finishPlacement bumps downline counters up the ancestor chain and returns
// the freshly placed node.
func (s *PlacementService) finishPlacement(ctx context.Context, placedID, parentID primitive.ObjectID, side models.Position) (*models.User, error) {
	curID := parentID
	curSide := side
	for i := 0; i < s.maxDepth+1; i++ {
		if err := s.tree.IncrementDownlines(ctx, curID, curSide); err != nil {
			return nil, fmt.Errorf("increment downlines %s: %w", curID.Hex(), err)
		}
		node, err := s.tree.Node(ctx, curID)
		if err != nil {
			return nil, err
		}
		if node.Parent == nil {
			break
		}
		curSide = node.Position
		curID = *node.Parent
	}
	return s.tree.Node(ctx, placedID)
}
