package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/models"
)

// In-memory store implementations shared by the service tests. They mirror
// the guarded-update semantics of the Mongo repositories: conditional
// writes fail closed instead of clobbering.

type fakeLedger struct {
	wallets   map[string]*models.Wallet
	txs       []models.Transaction
	seq       int
	creditErr error // when set, Credit fails without touching the wallet
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{wallets: make(map[string]*models.Wallet)}
}

func (l *fakeLedger) key(userID primitive.ObjectID, t models.WalletType) string {
	return userID.Hex() + "/" + string(t)
}

func (l *fakeLedger) wallet(userID primitive.ObjectID, t models.WalletType) *models.Wallet {
	k := l.key(userID, t)
	w, ok := l.wallets[k]
	if !ok {
		w = &models.Wallet{ID: primitive.NewObjectID(), UserID: userID, Type: t}
		l.wallets[k] = w
	}
	return w
}

// setBalance seeds a wallet for a test scenario.
func (l *fakeLedger) setBalance(userID primitive.ObjectID, t models.WalletType, balance float64) {
	l.wallet(userID, t).Balance = balance
}

func (l *fakeLedger) balance(userID primitive.ObjectID, t models.WalletType) float64 {
	return l.wallet(userID, t).Balance
}

func (l *fakeLedger) reserved(userID primitive.ObjectID, t models.WalletType) float64 {
	return l.wallet(userID, t).Reserved
}

func (l *fakeLedger) EnsureWallets(ctx context.Context, userID primitive.ObjectID) error {
	for _, t := range models.DefaultWalletTypes {
		l.wallet(userID, t)
	}
	return nil
}

func (l *fakeLedger) Wallet(ctx context.Context, userID primitive.ObjectID, t models.WalletType) (*models.Wallet, error) {
	w := *l.wallet(userID, t)
	return &w, nil
}

func (l *fakeLedger) Wallets(ctx context.Context, userID primitive.ObjectID) ([]models.Wallet, error) {
	var out []models.Wallet
	for _, w := range l.wallets {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (l *fakeLedger) appendTx(w *models.Wallet, txType models.TransactionType, amount, before float64, meta models.TxMeta) *models.Transaction {
	l.seq++
	tx := models.Transaction{
		ID:            primitive.NewObjectID(),
		WalletID:      w.ID,
		UserID:        w.UserID,
		WalletType:    w.Type,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  w.Balance,
		Status:        models.TransactionCompleted,
		Reference:     fmt.Sprintf("tx-%d", l.seq),
		Meta:          meta,
		CreatedAt:     time.Now(),
	}
	l.txs = append(l.txs, tx)
	return &tx
}

func (l *fakeLedger) Credit(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64, meta models.TxMeta) (*models.Transaction, error) {
	if l.creditErr != nil {
		return nil, l.creditErr
	}
	w := l.wallet(userID, t)
	before := w.Balance
	w.Balance += amount
	return l.appendTx(w, models.TransactionCredit, amount, before, meta), nil
}

func (l *fakeLedger) Debit(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64, meta models.TxMeta) (*models.Transaction, error) {
	w := l.wallet(userID, t)
	if w.Available() < amount {
		return nil, ErrInsufficientBalance
	}
	before := w.Balance
	w.Balance -= amount
	return l.appendTx(w, models.TransactionDebit, amount, before, meta), nil
}

func (l *fakeLedger) Reserve(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64) error {
	w := l.wallet(userID, t)
	if w.Available() < amount {
		return ErrInsufficientBalance
	}
	w.Reserved += amount
	return nil
}

func (l *fakeLedger) Release(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64) error {
	w := l.wallet(userID, t)
	w.Reserved -= amount
	return nil
}

func (l *fakeLedger) CaptureReserved(ctx context.Context, userID primitive.ObjectID, t models.WalletType, amount float64, meta models.TxMeta) (*models.Transaction, error) {
	w := l.wallet(userID, t)
	if w.Reserved < amount {
		return nil, ErrInsufficientBalance
	}
	before := w.Balance
	w.Balance -= amount
	w.Reserved -= amount
	return l.appendTx(w, models.TransactionDebit, amount, before, meta), nil
}

func (l *fakeLedger) HasExchangeDebitOn(ctx context.Context, userID primitive.ObjectID, t models.WalletType, day string) (bool, error) {
	for i := range l.txs {
		tx := &l.txs[i]
		if tx.UserID == userID && tx.WalletType == t && tx.Type == models.TransactionDebit &&
			tx.Meta["source"] == "exchange" && tx.Meta["date"] == day {
			return true, nil
		}
	}
	return false, nil
}

func (l *fakeLedger) Transactions(ctx context.Context, userID primitive.ObjectID, f models.TransactionFilter) ([]models.Transaction, error) {
	var out []models.Transaction
	for i := range l.txs {
		tx := l.txs[i]
		if tx.UserID != userID {
			continue
		}
		if f.WalletType != "" && tx.WalletType != f.WalletType {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

// checkInvariant verifies every wallet balance equals the fold of its
// transactions plus its seeded starting balance.
func (l *fakeLedger) checkInvariant() map[string]float64 {
	folds := make(map[string]float64)
	for i := range l.txs {
		tx := &l.txs[i]
		k := tx.UserID.Hex() + "/" + string(tx.WalletType)
		if tx.Type == models.TransactionCredit {
			folds[k] += tx.Amount
		} else {
			folds[k] -= tx.Amount
		}
	}
	return folds
}

// fakeTree implements both TreeStore and UserStore over an in-memory node
// map.
type fakeTree struct {
	nodes map[primitive.ObjectID]*models.User
}

func newFakeTree() *fakeTree {
	return &fakeTree{nodes: make(map[primitive.ObjectID]*models.User)}
}

func (t *fakeTree) add(u *models.User) *models.User {
	if u.ID == primitive.NilObjectID {
		u.ID = primitive.NewObjectID()
	}
	if u.Status == "" {
		u.Status = models.UserActive
	}
	if u.NodeType == "" {
		u.NodeType = models.NodeBinary
	}
	t.nodes[u.ID] = u
	return u
}

func (t *fakeTree) Node(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, nil
	}
	c := *n
	return &c, nil
}

func (t *fakeTree) NodeByReferralCode(ctx context.Context, code string) (*models.User, error) {
	for _, n := range t.nodes {
		if n.ReferralCode == code {
			c := *n
			return &c, nil
		}
	}
	return nil, nil
}

func (t *fakeTree) AttachChild(ctx context.Context, parentID primitive.ObjectID, side models.Position, childID primitive.ObjectID) error {
	parent, ok := t.nodes[parentID]
	if !ok {
		return fmt.Errorf("parent %s not found", parentID.Hex())
	}
	if parent.Child(side) != nil {
		return fmt.Errorf("slot %s of %s occupied", side, parentID.Hex())
	}
	if side == models.PositionLeft {
		parent.LeftChild = &childID
	} else {
		parent.RightChild = &childID
	}
	return t.setParent(childID, parentID, side)
}

func (t *fakeTree) AttachRootChild(ctx context.Context, rootID primitive.ObjectID, side models.Position, childID primitive.ObjectID) error {
	root, ok := t.nodes[rootID]
	if !ok {
		return fmt.Errorf("root %s not found", rootID.Hex())
	}
	root.DirectChildren = append(root.DirectChildren, childID)
	return t.setParent(childID, rootID, side)
}

func (t *fakeTree) setParent(childID, parentID primitive.ObjectID, side models.Position) error {
	child, ok := t.nodes[childID]
	if !ok {
		return fmt.Errorf("child %s not found", childID.Hex())
	}
	child.Parent = &parentID
	child.Position = side
	return nil
}

func (t *fakeTree) IncrementDownlines(ctx context.Context, nodeID primitive.ObjectID, side models.Position) error {
	n, ok := t.nodes[nodeID]
	if !ok {
		return fmt.Errorf("node %s not found", nodeID.Hex())
	}
	if side == models.PositionLeft {
		n.LeftDownlines++
	} else {
		n.RightDownlines++
	}
	return nil
}

func (t *fakeTree) AddBusiness(ctx context.Context, nodeID primitive.ObjectID, side models.Position, amount float64) error {
	n, ok := t.nodes[nodeID]
	if !ok {
		return fmt.Errorf("node %s not found", nodeID.Hex())
	}
	if side == models.PositionLeft {
		n.LeftBusiness += amount
	} else {
		n.RightBusiness += amount
	}
	return nil
}

func (t *fakeTree) MatchableNodes(ctx context.Context, day string) ([]models.User, error) {
	var out []models.User
	for _, n := range t.nodes {
		if n.Status != models.UserActive || n.LastBinaryOn == day {
			continue
		}
		volumeMatch := n.LeftBusiness > 0 && n.RightBusiness > 0
		carryMatch := n.LeftCarry > 0 && n.RightCarry > 0
		if volumeMatch || carryMatch {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (t *fakeTree) ApplyMatch(ctx context.Context, nodeID primitive.ObjectID, day string, matched, leftCarry, rightCarry float64) (bool, error) {
	n, ok := t.nodes[nodeID]
	if !ok {
		return false, fmt.Errorf("node %s not found", nodeID.Hex())
	}
	if n.LastBinaryOn == day {
		return false, nil
	}
	n.LeftBusiness -= matched
	n.RightBusiness -= matched
	n.LeftCarry = leftCarry
	n.RightCarry = rightCarry
	n.LastBinaryOn = day
	return true, nil
}

func (t *fakeTree) RevertMatch(ctx context.Context, nodeID primitive.ObjectID, day string, matched, leftCarry, rightCarry float64) error {
	n, ok := t.nodes[nodeID]
	if !ok {
		return fmt.Errorf("node %s not found", nodeID.Hex())
	}
	if n.LastBinaryOn != day {
		return nil
	}
	n.LeftBusiness += matched
	n.RightBusiness += matched
	n.LeftCarry = leftCarry
	n.RightCarry = rightCarry
	n.LastBinaryOn = ""
	return nil
}

func (t *fakeTree) User(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return t.Node(ctx, id)
}

func (t *fakeTree) AddTotalInvestment(ctx context.Context, id primitive.ObjectID, amount float64) (float64, error) {
	n, ok := t.nodes[id]
	if !ok {
		return 0, ErrUserNotFound
	}
	n.TotalInvestment += amount
	return n.TotalInvestment, nil
}

func (t *fakeTree) AdvanceCareerLevel(ctx context.Context, id primitive.ObjectID, from, to int) (bool, error) {
	n, ok := t.nodes[id]
	if !ok {
		return false, ErrUserNotFound
	}
	if n.CareerLevel != from {
		return false, nil
	}
	n.CareerLevel = to
	return true, nil
}

type fakePackages struct {
	packages map[primitive.ObjectID]*models.Package
}

func newFakePackages() *fakePackages {
	return &fakePackages{packages: make(map[primitive.ObjectID]*models.Package)}
}

func (p *fakePackages) add(pkg *models.Package) *models.Package {
	if pkg.ID == primitive.NilObjectID {
		pkg.ID = primitive.NewObjectID()
	}
	if pkg.Status == "" {
		pkg.Status = models.PackageActive
	}
	p.packages[pkg.ID] = pkg
	return pkg
}

func (p *fakePackages) Package(ctx context.Context, id primitive.ObjectID) (*models.Package, error) {
	pkg, ok := p.packages[id]
	if !ok {
		return nil, nil
	}
	c := *pkg
	return &c, nil
}

func (p *fakePackages) ActivePackages(ctx context.Context) ([]models.Package, error) {
	var out []models.Package
	for _, pkg := range p.packages {
		if pkg.IsActive() {
			out = append(out, *pkg)
		}
	}
	return out, nil
}

type fakeInvestments struct {
	investments map[primitive.ObjectID]*models.Investment
	order       []primitive.ObjectID
	insertErr   error // when set, Insert fails without recording anything
}

func newFakeInvestments() *fakeInvestments {
	return &fakeInvestments{investments: make(map[primitive.ObjectID]*models.Investment)}
}

func (s *fakeInvestments) Insert(ctx context.Context, inv *models.Investment) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	if inv.ID == primitive.NilObjectID {
		inv.ID = primitive.NewObjectID()
	}
	c := *inv
	s.investments[inv.ID] = &c
	s.order = append(s.order, inv.ID)
	return nil
}

func (s *fakeInvestments) Investment(ctx context.Context, id primitive.ObjectID) (*models.Investment, error) {
	inv, ok := s.investments[id]
	if !ok {
		return nil, nil
	}
	c := *inv
	return &c, nil
}

func (s *fakeInvestments) all() []models.Investment {
	out := make([]models.Investment, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.investments[id])
	}
	return out
}

func (s *fakeInvestments) ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Investment, error) {
	var out []models.Investment
	for _, inv := range s.all() {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *fakeInvestments) ActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Investment, error) {
	var out []models.Investment
	for _, inv := range s.all() {
		if inv.UserID == userID && inv.Status == models.InvestmentActive {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *fakeInvestments) Accruable(ctx context.Context, day string) ([]models.Investment, error) {
	var out []models.Investment
	for _, inv := range s.all() {
		if inv.Status == models.InvestmentActive && inv.LastAccruedOn != day {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *fakeInvestments) MarkAccrued(ctx context.Context, id primitive.ObjectID, day string) (bool, error) {
	inv, ok := s.investments[id]
	if !ok {
		return false, ErrInvestmentNotFound
	}
	if inv.LastAccruedOn == day || inv.Status != models.InvestmentActive {
		return false, nil
	}
	inv.LastAccruedOn = day
	inv.DaysCredited++
	return true, nil
}

func (s *fakeInvestments) UnmarkAccrued(ctx context.Context, id primitive.ObjectID, day string) error {
	inv, ok := s.investments[id]
	if !ok {
		return ErrInvestmentNotFound
	}
	if inv.LastAccruedOn != day {
		return nil
	}
	inv.LastAccruedOn = ""
	inv.DaysCredited--
	return nil
}

func (s *fakeInvestments) MarkMatured(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	inv, ok := s.investments[id]
	if !ok {
		return ErrInvestmentNotFound
	}
	inv.Status = models.InvestmentMatured
	inv.MaturedAt = &at
	return nil
}

func (s *fakeInvestments) MarkBinaryUpdated(ctx context.Context, id primitive.ObjectID) (bool, error) {
	inv, ok := s.investments[id]
	if !ok {
		return false, ErrInvestmentNotFound
	}
	if inv.IsBinaryUpdated {
		return false, nil
	}
	inv.IsBinaryUpdated = true
	return true, nil
}

func (s *fakeInvestments) MarkReferralPaid(ctx context.Context, id primitive.ObjectID) (bool, error) {
	inv, ok := s.investments[id]
	if !ok {
		return false, ErrInvestmentNotFound
	}
	if inv.ReferralPaid {
		return false, nil
	}
	inv.ReferralPaid = true
	return true, nil
}

func (s *fakeInvestments) UnpaidReferrals(ctx context.Context) ([]models.Investment, error) {
	var out []models.Investment
	for _, inv := range s.all() {
		if !inv.ReferralPaid {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeLevels struct {
	levels []models.CareerLevel
}

func (s *fakeLevels) LevelsAbove(ctx context.Context, order int) ([]models.CareerLevel, error) {
	var out []models.CareerLevel
	for _, l := range s.levels {
		if l.Order > order {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

type fakeVouchers struct {
	vouchers map[primitive.ObjectID]*models.Voucher
}

func newFakeVouchers() *fakeVouchers {
	return &fakeVouchers{vouchers: make(map[primitive.ObjectID]*models.Voucher)}
}

func (s *fakeVouchers) Insert(ctx context.Context, v *models.Voucher) error {
	if v.ID == primitive.NilObjectID {
		v.ID = primitive.NewObjectID()
	}
	c := *v
	s.vouchers[v.ID] = &c
	return nil
}

func (s *fakeVouchers) Voucher(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error) {
	v, ok := s.vouchers[id]
	if !ok {
		return nil, nil
	}
	c := *v
	return &c, nil
}

func (s *fakeVouchers) ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Voucher, error) {
	var out []models.Voucher
	for _, v := range s.vouchers {
		if v.UserID == userID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *fakeVouchers) MarkUsed(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	v, ok := s.vouchers[id]
	if !ok {
		return false, ErrVoucherNotFound
	}
	if v.Status != models.VoucherActive {
		return false, nil
	}
	v.Status = models.VoucherUsed
	v.UsedAt = &at
	return true, nil
}

func (s *fakeVouchers) Restore(ctx context.Context, id primitive.ObjectID) error {
	v, ok := s.vouchers[id]
	if !ok {
		return ErrVoucherNotFound
	}
	if v.Status != models.VoucherUsed {
		return nil
	}
	v.Status = models.VoucherActive
	v.UsedAt = nil
	return nil
}

func (s *fakeVouchers) MarkExpired(ctx context.Context, id primitive.ObjectID) error {
	v, ok := s.vouchers[id]
	if !ok {
		return ErrVoucherNotFound
	}
	v.Status = models.VoucherExpired
	return nil
}

type fakeWithdrawals struct {
	withdrawals map[primitive.ObjectID]*models.Withdrawal
}

func newFakeWithdrawals() *fakeWithdrawals {
	return &fakeWithdrawals{withdrawals: make(map[primitive.ObjectID]*models.Withdrawal)}
}

func (s *fakeWithdrawals) Insert(ctx context.Context, w *models.Withdrawal) error {
	if w.ID == primitive.NilObjectID {
		w.ID = primitive.NewObjectID()
	}
	c := *w
	s.withdrawals[w.ID] = &c
	return nil
}

func (s *fakeWithdrawals) Withdrawal(ctx context.Context, id primitive.ObjectID) (*models.Withdrawal, error) {
	w, ok := s.withdrawals[id]
	if !ok {
		return nil, nil
	}
	c := *w
	return &c, nil
}

func (s *fakeWithdrawals) ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Withdrawal, error) {
	var out []models.Withdrawal
	for _, w := range s.withdrawals {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (s *fakeWithdrawals) Pending(ctx context.Context) ([]models.Withdrawal, error) {
	var out []models.Withdrawal
	for _, w := range s.withdrawals {
		if w.Status == models.WithdrawalPending {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (s *fakeWithdrawals) Decide(ctx context.Context, id primitive.ObjectID, status string, adminID primitive.ObjectID, note string, at time.Time) (bool, error) {
	w, ok := s.withdrawals[id]
	if !ok {
		return false, ErrWithdrawalNotFound
	}
	if w.Status != models.WithdrawalPending {
		return false, nil
	}
	w.Status = status
	w.AdminID = &adminID
	w.ProcessedAt = &at
	if status == models.WithdrawalRejected {
		w.RejectionReason = note
	} else {
		w.AdminNote = note
	}
	return true, nil
}

type fakeJobRuns struct {
	runs []models.JobRun
}

func (s *fakeJobRuns) Record(ctx context.Context, run models.JobRun) error {
	s.runs = append(s.runs, run)
	return nil
}

type fakeLocker struct {
	held map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) Acquire(ctx context.Context, job, day string) (bool, error) {
	key := job + "/" + day
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

type notifierEvent struct {
	userID primitive.ObjectID
	wallet models.WalletType
	amount float64
	reason string
}

type fakeNotifier struct {
	events []notifierEvent
}

func (n *fakeNotifier) WalletCredited(userID primitive.ObjectID, t models.WalletType, amount float64, reason string) {
	n.events = append(n.events, notifierEvent{userID: userID, wallet: t, amount: amount, reason: reason})
}

type fakeMailer struct {
	decided []string
}

func (m *fakeMailer) WithdrawalDecided(email, fullName string, w *models.Withdrawal) {
	m.decided = append(m.decided, email+"/"+w.Status)
}
