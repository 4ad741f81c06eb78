package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VolumeService propagates confirmed investment amounts up the ancestor
// chain into each ancestor's left or right business volume.
type VolumeService struct {
	tree        TreeStore
	investments InvestmentStore
	maxDepth    int
}

func NewVolumeService(tree TreeStore, investments InvestmentStore) *VolumeService {
	return &VolumeService{tree: tree, investments: investments, maxDepth: DefaultMaxTreeDepth}
}

// OnInvestmentConfirmed walks from the investor to the root and adds the
// invested amount to the side each ancestor was reached from. Idempotent
// per investment: the isBinaryUpdated flag is claimed up front, so a
// retried batch job re-running an already-processed investment is a no-op
// returning success.
func (s *VolumeService) OnInvestmentConfirmed(ctx context.Context, investmentID primitive.ObjectID) error {
	inv, err := s.investments.Investment(ctx, investmentID)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrInvestmentNotFound
	}
	if inv.IsBinaryUpdated {
		return nil
	}

	claimed, err := s.investments.MarkBinaryUpdated(ctx, inv.ID)
	if err != nil {
		return fmt.Errorf("claim binary update for %s: %w", inv.ID.Hex(), err)
	}
	if !claimed {
		return nil
	}

	return s.propagate(ctx, inv.UserID, inv.InvestedAmount)
}

func (s *VolumeService) propagate(ctx context.Context, from primitive.ObjectID, amount float64) error {
	node, err := s.tree.Node(ctx, from)
	if err != nil {
		return err
	}

	for i := 0; i < s.maxDepth+1; i++ {
		if node.Parent == nil {
			return nil
		}
		side := node.Position
		parentID := *node.Parent

		if err := s.tree.AddBusiness(ctx, parentID, side, amount); err != nil {
			return fmt.Errorf("add business to %s: %w", parentID.Hex(), err)
		}

		node, err = s.tree.Node(ctx, parentID)
		if err != nil {
			return err
		}
	}
	return nil
}
