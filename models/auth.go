package models

// SignupRequest registers a new user under a referrer and requests a
// preferred tree side for placement.
type SignupRequest struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=8"`
	FullName          string `json:"fullName" validate:"required"`
	ReferralCode      string `json:"referralCode" validate:"required"`
	PreferredPosition string `json:"preferredPosition" validate:"required,oneof=left right"`
	PayoutAddress     string `json:"payoutAddress,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token alongside the user record.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ExchangeRequest is the wallet exchange payload.
type ExchangeRequest struct {
	FromType string  `json:"fromType" validate:"required"`
	ToType   string  `json:"toType" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

// ExchangeResult reports the outcome of a wallet exchange.
type ExchangeResult struct {
	FromType  WalletType `json:"fromType"`
	ToType    WalletType `json:"toType"`
	Debited   float64    `json:"debited"`
	Credited  float64    `json:"credited"`
	Rate      float64    `json:"rate"`
	DebitRef  string     `json:"debitRef"`
	CreditRef string     `json:"creditRef"`
}
