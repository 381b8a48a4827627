package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountValidate(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		wantErr bool
	}{
		{
			name:    "valid general account",
			account: Account{ID: "brokerage", Kind: AccountGeneral, Balance: decimal.NewFromInt(1000)},
		},
		{
			name: "valid pension with matching sub-balances",
			account: Account{
				ID: "pension-1", Kind: AccountPension, Balance: decimal.NewFromInt(300),
				TaxFreePrincipal: decimal.NewFromInt(100), DeferredSeverance: decimal.NewFromInt(100),
				TaxableContribution: decimal.NewFromInt(100),
			},
		},
		{
			name:    "missing id",
			account: Account{Kind: AccountGeneral, Balance: decimal.NewFromInt(1)},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			account: Account{ID: "x", Kind: "offshore", Balance: decimal.NewFromInt(1)},
			wantErr: true,
		},
		{
			name:    "negative balance",
			account: Account{ID: "x", Kind: AccountGeneral, Balance: decimal.NewFromInt(-1)},
			wantErr: true,
		},
		{
			name: "pension sub-balances do not sum",
			account: Account{
				ID: "pension-1", Kind: AccountPension, Balance: decimal.NewFromInt(300),
				TaxFreePrincipal: decimal.NewFromInt(100),
			},
			wantErr: true,
		},
		{
			name: "general account carrying pension sub-balances",
			account: Account{
				ID: "x", Kind: AccountGeneral, Balance: decimal.NewFromInt(100),
				TaxFreePrincipal: decimal.NewFromInt(100),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if tt.wantErr {
				var invalid *InvalidInputError
				assert.ErrorAs(t, err, &invalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAccountSetValidateRejectsDuplicateIDs(t *testing.T) {
	set := AccountSet{Accounts: []Account{
		{ID: "a", Kind: AccountGeneral, Balance: decimal.NewFromInt(1)},
		{ID: "a", Kind: AccountTaxFreeWrapper, Balance: decimal.NewFromInt(1)},
	}}
	var invalid *InvalidInputError
	assert.ErrorAs(t, set.Validate(), &invalid)
}

func TestAccountSetBalances(t *testing.T) {
	set := AccountSet{Accounts: []Account{
		{ID: "brokerage", Kind: AccountGeneral, Balance: decimal.NewFromInt(300)},
		{ID: "isa", Kind: AccountTaxFreeWrapper, Balance: decimal.NewFromInt(100)},
		{
			ID: "pension-1", Kind: AccountPension, Balance: decimal.NewFromInt(600),
			TaxFreePrincipal: decimal.NewFromInt(600),
		},
	}}

	assert.True(t, set.TotalBalance().Equal(decimal.NewFromInt(1000)))
	assert.True(t, set.InvestableBalance().Equal(decimal.NewFromInt(400)))
	require.Len(t, set.ByKind(AccountPension), 1)
}

func TestAccountSetCloneSharesNothing(t *testing.T) {
	set := AccountSet{Accounts: []Account{
		{ID: "brokerage", Kind: AccountGeneral, Balance: decimal.NewFromInt(100)},
	}}

	clone := set.Clone()
	clone.Accounts[0].Draw(decimal.NewFromInt(40))

	assert.True(t, set.Accounts[0].Balance.Equal(decimal.NewFromInt(100)))
	assert.True(t, clone.Accounts[0].Balance.Equal(decimal.NewFromInt(60)))
}

func TestDrawSourceKeepsBalanceInSync(t *testing.T) {
	acct := Account{
		ID: "pension-1", Kind: AccountPension, Balance: decimal.NewFromInt(300),
		TaxFreePrincipal: decimal.NewFromInt(100), DeferredSeverance: decimal.NewFromInt(100),
		TaxableContribution: decimal.NewFromInt(100),
	}

	acct.DrawSource(SourceDeferredSeverance, decimal.NewFromInt(60))

	assert.True(t, acct.DeferredSeverance.Equal(decimal.NewFromInt(40)))
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(240)))
	assert.NoError(t, acct.Validate())
}
