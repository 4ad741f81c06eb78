package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/models"
)

// CareerService evaluates career levels against a user's cumulative
// lifetime investment and pays the level reward exactly once per level, in
// level order.
type CareerService struct {
	users    UserStore
	levels   CareerLevelStore
	ledger   LedgerStore
	notifier Notifier
}

func NewCareerService(users UserStore, levels CareerLevelStore, ledger LedgerStore, notifier Notifier) *CareerService {
	return &CareerService{users: users, levels: levels, ledger: ledger, notifier: notifier}
}

// Evaluate checks every unachieved level in ascending order against the
// user's cumulative total and credits each crossed level independently, one
// transaction per level. A large investment crossing several thresholds
// earns every one of them, but never out of order. Returns the number of
// levels credited.
func (s *CareerService) Evaluate(ctx context.Context, userID primitive.ObjectID) (int, error) {
	user, err := s.users.User(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrUserNotFound
	}

	levels, err := s.levels.LevelsAbove(ctx, user.CareerLevel)
	if err != nil {
		return 0, err
	}

	credited := 0
	achieved := user.CareerLevel
	for i := range levels {
		level := &levels[i]
		if user.TotalInvestment < level.InvestmentThreshold {
			break
		}
		// Levels cannot be skipped: each advance is guarded on the exact
		// previous order, so a concurrent evaluation credits a level at
		// most once.
		ok, err := s.users.AdvanceCareerLevel(ctx, userID, achieved, level.Order)
		if err != nil {
			return credited, err
		}
		if !ok {
			break
		}
		achieved = level.Order

		_, err = s.ledger.Credit(ctx, userID, models.WalletCareerLevel, level.RewardAmount, models.TxMeta{
			"source": "career_level",
			"level":  level.Order,
			"name":   level.Name,
		})
		if err != nil {
			return credited, err
		}
		if s.notifier != nil {
			s.notifier.WalletCredited(userID, models.WalletCareerLevel, level.RewardAmount, "career level reward")
		}
		credited++
	}
	return credited, nil
}
