package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountKind identifies the tax treatment of an account. Allocation and tax
// rules switch exhaustively on this tag; adding a kind is a compile-visible
// extension, not a silent fallthrough.
type AccountKind string

const (
	AccountGeneral        AccountKind = "general"
	AccountTaxFreeWrapper AccountKind = "tax_free_wrapper"
	AccountPension        AccountKind = "pension"
)

// Valid reports whether the kind is one of the known variants.
func (k AccountKind) Valid() bool {
	switch k {
	case AccountGeneral, AccountTaxFreeWrapper, AccountPension:
		return true
	}
	return false
}

func (k AccountKind) String() string { return string(k) }

// PensionSource identifies a sub-balance inside a pension account.
type PensionSource string

const (
	SourceTaxFreePrincipal    PensionSource = "tax_free_principal"
	SourceDeferredSeverance   PensionSource = "deferred_severance"
	SourceTaxableContribution PensionSource = "taxable_contribution"
)

// PensionSourceOrder is the fixed withdrawal priority inside a pension
// account, lowest marginal tax first.
var PensionSourceOrder = []PensionSource{
	SourceTaxFreePrincipal,
	SourceDeferredSeverance,
	SourceTaxableContribution,
}

func (s PensionSource) String() string { return string(s) }

// Account is a single holding with one tax treatment. For pension accounts
// the three sub-balances must sum to Balance; for other kinds they are zero.
type Account struct {
	ID      string          `yaml:"id" json:"id"`
	Kind    AccountKind     `yaml:"kind" json:"kind"`
	Balance decimal.Decimal `yaml:"balance" json:"balance"`

	TaxFreePrincipal    decimal.Decimal `yaml:"tax_free_principal,omitempty" json:"tax_free_principal,omitempty"`
	DeferredSeverance   decimal.Decimal `yaml:"deferred_severance,omitempty" json:"deferred_severance,omitempty"`
	TaxableContribution decimal.Decimal `yaml:"taxable_contribution,omitempty" json:"taxable_contribution,omitempty"`

	// Informational only; contributions are out of scope for withdrawal runs.
	AnnualContributionLimit decimal.Decimal `yaml:"annual_contribution_limit,omitempty" json:"annual_contribution_limit,omitempty"`
}

// SourceBalance returns the balance available in a pension sub-balance.
func (a *Account) SourceBalance(src PensionSource) decimal.Decimal {
	switch src {
	case SourceTaxFreePrincipal:
		return a.TaxFreePrincipal
	case SourceDeferredSeverance:
		return a.DeferredSeverance
	case SourceTaxableContribution:
		return a.TaxableContribution
	}
	return decimal.Zero
}

// DrawSource deducts amount from a pension sub-balance and the account
// balance. Amount must not exceed the sub-balance; callers cap first.
func (a *Account) DrawSource(src PensionSource, amount decimal.Decimal) {
	switch src {
	case SourceTaxFreePrincipal:
		a.TaxFreePrincipal = a.TaxFreePrincipal.Sub(amount)
	case SourceDeferredSeverance:
		a.DeferredSeverance = a.DeferredSeverance.Sub(amount)
	case SourceTaxableContribution:
		a.TaxableContribution = a.TaxableContribution.Sub(amount)
	}
	a.Balance = a.Balance.Sub(amount)
}

// Draw deducts amount from a non-pension account balance.
func (a *Account) Draw(amount decimal.Decimal) {
	a.Balance = a.Balance.Sub(amount)
}

// Validate checks the per-account invariants.
func (a *Account) Validate() error {
	if a.ID == "" {
		return &InvalidInputError{Field: "account.id", Reason: "must not be empty"}
	}
	if !a.Kind.Valid() {
		return &InvalidInputError{Field: "account.kind", Reason: fmt.Sprintf("unknown kind %q for account %s", a.Kind, a.ID)}
	}
	if a.Balance.IsNegative() {
		return &InvalidInputError{Field: "account.balance", Reason: fmt.Sprintf("account %s balance is negative", a.ID)}
	}
	switch a.Kind {
	case AccountPension:
		for _, src := range PensionSourceOrder {
			if a.SourceBalance(src).IsNegative() {
				return &InvalidInputError{Field: "account." + string(src), Reason: fmt.Sprintf("account %s sub-balance is negative", a.ID)}
			}
		}
		sum := a.TaxFreePrincipal.Add(a.DeferredSeverance).Add(a.TaxableContribution)
		if !sum.Equal(a.Balance) {
			return &InvalidInputError{Field: "account.balance", Reason: fmt.Sprintf("account %s sub-balances sum to %s, balance is %s", a.ID, sum.String(), a.Balance.String())}
		}
	case AccountGeneral, AccountTaxFreeWrapper:
		if !a.TaxFreePrincipal.IsZero() || !a.DeferredSeverance.IsZero() || !a.TaxableContribution.IsZero() {
			return &InvalidInputError{Field: "account", Reason: fmt.Sprintf("account %s carries pension sub-balances but is not a pension account", a.ID)}
		}
	}
	return nil
}

// AccountSet is an ordered collection of accounts. The order is the default
// withdrawal preference within a priority tier.
type AccountSet struct {
	Accounts []Account `yaml:"accounts" json:"accounts"`
}

// TotalBalance sums every account balance.
func (s *AccountSet) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Accounts {
		total = total.Add(s.Accounts[i].Balance)
	}
	return total
}

// InvestableBalance sums the balances of general and tax-free wrapper
// accounts, the portion of the portfolio the bucket structure covers.
func (s *AccountSet) InvestableBalance() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Accounts {
		switch s.Accounts[i].Kind {
		case AccountGeneral, AccountTaxFreeWrapper:
			total = total.Add(s.Accounts[i].Balance)
		case AccountPension:
		}
	}
	return total
}

// ByKind returns pointers to the accounts of one kind in set order.
func (s *AccountSet) ByKind(kind AccountKind) []*Account {
	var out []*Account
	for i := range s.Accounts {
		if s.Accounts[i].Kind == kind {
			out = append(out, &s.Accounts[i])
		}
	}
	return out
}

// Clone returns a deep copy so concurrent scenario runs share nothing.
func (s *AccountSet) Clone() *AccountSet {
	accounts := make([]Account, len(s.Accounts))
	copy(accounts, s.Accounts)
	return &AccountSet{Accounts: accounts}
}

// Validate checks every member account and ID uniqueness.
func (s *AccountSet) Validate() error {
	if len(s.Accounts) == 0 {
		return &InvalidInputError{Field: "accounts", Reason: "at least one account is required"}
	}
	seen := make(map[string]bool, len(s.Accounts))
	for i := range s.Accounts {
		if err := s.Accounts[i].Validate(); err != nil {
			return err
		}
		if seen[s.Accounts[i].ID] {
			return &InvalidInputError{Field: "account.id", Reason: fmt.Sprintf("duplicate account id %s", s.Accounts[i].ID)}
		}
		seen[s.Accounts[i].ID] = true
	}
	return nil
}
