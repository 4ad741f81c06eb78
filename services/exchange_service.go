package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/models"
)

// exchangeSources is the allow-listed set of wallets value may leave
// through an exchange. The only sink is the withdrawal wallet.
var exchangeSources = map[models.WalletType]bool{
	models.WalletROI:         true,
	models.WalletReferral:    true,
	models.WalletBinary:      true,
	models.WalletInterest:    true,
	models.WalletCareerLevel: true,
}

// dailyLimitedSources may be exchanged at most once per calendar day.
var dailyLimitedSources = map[models.WalletType]bool{
	models.WalletROI:         true,
	models.WalletCareerLevel: true,
}

// ExchangeService moves value from an earning wallet into the withdrawal
// wallet. The rate is configurable; the product runs it at 1.0.
type ExchangeService struct {
	ledger LedgerStore
	rate   float64
	now    func() time.Time
}

func NewExchangeService(ledger LedgerStore, rate float64) *ExchangeService {
	if rate <= 0 {
		rate = 1.0
	}
	return &ExchangeService{ledger: ledger, rate: rate, now: time.Now}
}

// Exchange debits the source wallet and credits amount * rate to the
// withdrawal wallet. The two legs share a reference; if the credit leg
// fails the debit is compensated so the ledger nets to zero.
func (s *ExchangeService) Exchange(ctx context.Context, userID primitive.ObjectID, from, to models.WalletType, amount float64) (*models.ExchangeResult, error) {
	if from == to {
		return nil, ErrSameWallet
	}
	if !exchangeSources[from] || to != models.WalletWithdrawal {
		return nil, ErrInvalidWalletPair
	}

	day := s.now().Format("2006-01-02")
	if dailyLimitedSources[from] {
		used, err := s.ledger.HasExchangeDebitOn(ctx, userID, from, day)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, ErrDailyLimitReached
		}
	}

	meta := models.TxMeta{
		"source":   "exchange",
		"fromType": string(from),
		"toType":   string(to),
		"rate":     s.rate,
		"date":     day,
	}

	debit, err := s.ledger.Debit(ctx, userID, from, amount, meta)
	if err != nil {
		return nil, err
	}

	credited := amount * s.rate
	credit, err := s.ledger.Credit(ctx, userID, to, credited, meta)
	if err != nil {
		// Compensate the debit so no value is lost.
		if _, cerr := s.ledger.Credit(ctx, userID, from, amount, models.TxMeta{
			"source":    "exchange_reversal",
			"reversing": debit.Reference,
		}); cerr != nil {
			log.Printf("exchange: compensation failed for user %s: %v", userID.Hex(), cerr)
		}
		return nil, err
	}

	return &models.ExchangeResult{
		FromType:  from,
		ToType:    to,
		Debited:   amount,
		Credited:  credited,
		Rate:      s.rate,
		DebitRef:  debit.Reference,
		CreditRef: credit.Reference,
	}, nil
}
