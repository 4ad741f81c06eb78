package services

import (
	"context"
	"log"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/models"
)

// BinaryService computes the daily binary matching bonus: the smaller leg's
// business volume (plus matched carry from earlier cycles) is paid out at
// the package's binary percentage, capped by its power capacity, with the
// unpaid remainder carried forward.
type BinaryService struct {
	tree        TreeStore
	ledger      LedgerStore
	investments InvestmentStore
	packages    PackageStore
	notifier    Notifier
}

func NewBinaryService(tree TreeStore, ledger LedgerStore, investments InvestmentStore, packages PackageStore, notifier Notifier) *BinaryService {
	return &BinaryService{tree: tree, ledger: ledger, investments: investments, packages: packages, notifier: notifier}
}

// MatchResult is the outcome of one node's matching cycle.
type MatchResult struct {
	Matched    float64 // volume consumed from both legs
	Bonus      float64 // credited to the binary wallet
	LeftCarry  float64 // new left carry
	RightCarry float64 // new right carry
}

// ComputeMatch runs the matching arithmetic for one node.
//
// matchable = min(leftBV, rightBV) + min(leftCarry, rightCarry); the raw
// bonus is matchable * binaryPct/100, capped at powerCapacity (a capacity
// of zero or less means uncapped). Whatever portion of matchable the cap
// left unpaid is retained symmetrically in both carries so it participates
// in the next cycle; the unmatched excess of the larger carry stays on its
// own side. The matched volume itself is deducted from both legs by the
// caller via ApplyMatch, which zeroes the smaller leg.
func ComputeMatch(leftBV, rightBV, leftCarry, rightCarry, binaryPct, powerCapacity float64) MatchResult {
	matched := minF(leftBV, rightBV)
	carryMatched := minF(leftCarry, rightCarry)
	matchable := matched + carryMatched

	if matchable <= 0 || binaryPct <= 0 {
		return MatchResult{LeftCarry: leftCarry, RightCarry: rightCarry}
	}

	raw := matchable * binaryPct / 100
	bonus := raw
	consumed := matchable
	if powerCapacity > 0 && raw > powerCapacity {
		bonus = powerCapacity
		consumed = bonus * 100 / binaryPct
	}
	unpaid := matchable - consumed

	return MatchResult{
		Matched:    matched,
		Bonus:      bonus,
		LeftCarry:  unpaid + (leftCarry - carryMatched),
		RightCarry: unpaid + (rightCarry - carryMatched),
	}
}

// binaryTerms are the package parameters governing a node's matching cycle.
type binaryTerms struct {
	binaryPct     float64
	powerCapacity float64
}

// resolveBinaryTerms picks the governing package when a node holds several
// active investments: highest power capacity wins, ties broken by the most
// recent investment.
func (s *BinaryService) resolveBinaryTerms(ctx context.Context, userID primitive.ObjectID) (*binaryTerms, error) {
	invs, err := s.investments.ActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(invs) == 0 {
		return nil, nil
	}

	sort.Slice(invs, func(i, j int) bool {
		return invs[i].CreatedAt.After(invs[j].CreatedAt)
	})

	var best *models.Package
	for i := range invs {
		pkg, err := s.packages.Package(ctx, invs[i].PackageID)
		if err != nil || pkg == nil {
			continue
		}
		if best == nil || pkg.PowerCapacity > best.PowerCapacity {
			best = pkg
		}
	}
	if best == nil {
		return nil, nil
	}
	return &binaryTerms{binaryPct: best.BinaryPct, powerCapacity: best.PowerCapacity}, nil
}

// Run executes the matching batch for the given day (YYYY-MM-DD). A
// per-node failure is logged and skipped; the per-node lastBinaryOn guard
// makes re-running the batch for the same day a no-op per node.
func (s *BinaryService) Run(ctx context.Context, day string) models.JobSummary {
	summary := models.JobSummary{Job: models.JobBinaryBonus, Date: day}

	nodes, err := s.tree.MatchableNodes(ctx, day)
	if err != nil {
		log.Printf("binary bonus: listing matchable nodes failed: %v", err)
		summary.Failed++
		return summary
	}

	for i := range nodes {
		node := &nodes[i]
		if err := s.matchNode(ctx, node, day, &summary); err != nil {
			log.Printf("binary bonus: node %s failed: %v", node.ID.Hex(), err)
			summary.Failed++
		}
	}
	return summary
}

func (s *BinaryService) matchNode(ctx context.Context, node *models.User, day string, summary *models.JobSummary) error {
	terms, err := s.resolveBinaryTerms(ctx, node.ID)
	if err != nil {
		return err
	}
	if terms == nil {
		summary.Skipped++
		return nil
	}

	res := ComputeMatch(node.LeftBusiness, node.RightBusiness, node.LeftCarry, node.RightCarry, terms.binaryPct, terms.powerCapacity)
	if res.Matched <= 0 && res.Bonus <= 0 {
		summary.Skipped++
		return nil
	}

	ok, err := s.tree.ApplyMatch(ctx, node.ID, day, res.Matched, res.LeftCarry, res.RightCarry)
	if err != nil {
		return err
	}
	if !ok {
		// Another trigger already matched this node today.
		summary.Skipped++
		return nil
	}

	if res.Bonus > 0 {
		_, err = s.ledger.Credit(ctx, node.ID, models.WalletBinary, res.Bonus, models.TxMeta{
			"source":  "binary_bonus",
			"date":    day,
			"matched": res.Matched,
		})
		if err != nil {
			// Put the consumed volume back and clear the day stamp so the
			// matched value is not lost when the credit never landed.
			if rerr := s.tree.RevertMatch(ctx, node.ID, day, res.Matched, node.LeftCarry, node.RightCarry); rerr != nil {
				log.Printf("binary bonus: reverting match for node %s: %v", node.ID.Hex(), rerr)
			}
			return err
		}
		if s.notifier != nil {
			s.notifier.WalletCredited(node.ID, models.WalletBinary, res.Bonus, "binary matching bonus")
		}
	}
	summary.Processed++
	return nil
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
