//go:build integration

package steps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/owninstead/backend/internal/domain/entity"
	"github.com/owninstead/backend/internal/domain/valueobject"
	"github.com/owninstead/backend/internal/integration/adapters"
	"github.com/owninstead/backend/internal/integration/persistence"
	"github.com/owninstead/backend/internal/integration/persistence/model"
)

func registerSetupSteps(ctx *godog.ScenarioContext, t *TestContext) {
	ctx.Given(`^the current time is "([^"]*)"$`, t.theCurrentTimeIs)
	ctx.Given(`^a user exists with email "([^"]*)" and password "([^"]*)"$`, t.aUserExistsWithEmailAndPassword)
	ctx.Given(`^I am logged in as "([^"]*)"$`, t.iAmLoggedInAs)
	ctx.Given(`^the user has completed onboarding$`, t.theUserHasCompletedOnboarding)
	ctx.Given(`^the user has paused investing$`, t.theUserHasPausedInvesting)
	ctx.Given(`^the user has the push token "([^"]*)"$`, t.theUserHasThePushToken)
	ctx.Given(`^the user has a rule "([^"]*)":$`, t.theUserHasARule)
	ctx.Given(`^the user has a bank connection "([^"]*)"$`, t.theUserHasABankConnection)
	ctx.Given(`^the user has a brokerage account "([^"]*)"$`, t.theUserHasABrokerageAccount)
	ctx.Given(`^the user has the transactions:$`, t.theUserHasTheTransactions)
}

func hashPassword(password string) string {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("failed to hash password: %v", err))
	}
	return string(hashedBytes)
}

func (t *TestContext) aUserExistsWithEmailAndPassword(email, password string) error {
	_, err := t.ensureUser(email, password)
	return err
}

// ensureUser creates the user and its profile unless the email is taken.
func (t *TestContext) ensureUser(email, password string) (*entity.User, error) {
	ctx := context.Background()
	users := persistence.NewUserRepository(t.db.DbConn)

	if existing, err := users.FindByEmail(ctx, email); err == nil {
		return existing, nil
	}

	user := entity.NewUser(email, "Test User", hashPassword(password))
	if err := users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	profile := entity.NewProfile(
		user.ID,
		t.cfg.Brokerage.DefaultSymbol,
		t.cfg.Investing.DefaultMaxPerTrade,
		t.cfg.Investing.DefaultMaxPerMonth,
	)
	if err := persistence.NewProfileRepository(t.db.DbConn).Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return user, nil
}

// iAmLoggedInAs issues real tokens for the user, creating it if needed.
func (t *TestContext) iAmLoggedInAs(email string) error {
	user, err := t.ensureUser(email, "SecurePass123!")
	if err != nil {
		return err
	}

	tokens := adapters.NewTokenService(
		t.cfg.JWT.Secret,
		t.cfg.JWT.AccessTokenExpiry,
		t.cfg.JWT.RefreshTokenExpiry,
		persistence.NewTokenRepository(t.db.DbConn),
	)
	pair, err := tokens.GenerateTokenPair(context.Background(), user.ID, user.Email)
	if err != nil {
		return fmt.Errorf("failed to issue tokens: %w", err)
	}

	t.currentUserID = user.ID
	t.currentEmail = user.Email
	t.accessToken = pair.AccessToken
	t.refreshToken = pair.RefreshToken
	return nil
}

func (t *TestContext) updateProfile(columns map[string]any) error {
	if t.currentUserID == uuid.Nil {
		return errors.New("no user is logged in")
	}
	return t.db.DbConn.Model(&model.ProfileModel{}).
		Where("user_id = ?", t.currentUserID).
		Updates(columns).Error
}

func (t *TestContext) theUserHasCompletedOnboarding() error {
	return t.updateProfile(map[string]any{"onboarding_completed": true})
}

func (t *TestContext) theUserHasPausedInvesting() error {
	return t.updateProfile(map[string]any{"investing_paused": true})
}

func (t *TestContext) theUserHasThePushToken(token string) error {
	return t.updateProfile(map[string]any{"push_token": token})
}

type ruleFixture struct {
	Category        string  `json:"category"`
	MerchantPattern string  `json:"merchant_pattern"`
	TargetSpend     string  `json:"target_spend"`
	InvestType      string  `json:"invest_type"`
	InvestAmount    *string `json:"invest_amount"`
	StreakEnabled   *bool   `json:"streak_enabled"`
}

// theUserHasARule stores a rule and remembers its id as {{<name>_rule_id}}.
func (t *TestContext) theUserHasARule(name string, body *godog.DocString) error {
	var fixture ruleFixture
	if err := json.Unmarshal([]byte(body.Content), &fixture); err != nil {
		return fmt.Errorf("invalid rule fixture: %w", err)
	}

	target, err := decimal.NewFromString(fixture.TargetSpend)
	if err != nil {
		return fmt.Errorf("invalid target_spend: %w", err)
	}
	var amount decimal.NullDecimal
	if fixture.InvestAmount != nil {
		value, err := decimal.NewFromString(*fixture.InvestAmount)
		if err != nil {
			return fmt.Errorf("invalid invest_amount: %w", err)
		}
		amount = decimal.NewNullDecimal(value)
	}
	streak := true
	if fixture.StreakEnabled != nil {
		streak = *fixture.StreakEnabled
	}

	rule := entity.NewRule(
		t.currentUserID,
		name,
		valueobject.Category(fixture.Category),
		fixture.MerchantPattern,
		target,
		entity.InvestType(fixture.InvestType),
		amount,
		streak,
	)
	if err := persistence.NewRuleRepository(t.db.DbConn).Create(context.Background(), rule); err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	t.placeholders[placeholderName(name)+"_rule_id"] = rule.ID.String()
	return nil
}

func (t *TestContext) theUserHasABankConnection(itemID string) error {
	conn := entity.NewBankConnection(t.currentUserID, itemID, "access-"+itemID, "Test Bank")
	if err := persistence.NewBankConnectionRepository(t.db.DbConn).Create(context.Background(), conn); err != nil {
		return fmt.Errorf("failed to create bank connection: %w", err)
	}
	t.placeholders["bank_connection_id"] = conn.ID.String()
	return nil
}

func (t *TestContext) theUserHasABrokerageAccount(accountID string) error {
	conn := &entity.BrokerageConnection{
		ID:                  uuid.New(),
		UserID:              t.currentUserID,
		BrokerageUserID:     "snap-" + t.currentUserID.String(),
		BrokerageUserSecret: "secret",
		AccountID:           accountID,
		BrokerageName:       "Test Brokerage",
		SupportsNotional:    true,
		CreatedAt:           time.Now().UTC(),
	}
	if err := persistence.NewBrokerageConnectionRepository(t.db.DbConn).Create(context.Background(), conn); err != nil {
		return fmt.Errorf("failed to create brokerage connection: %w", err)
	}
	return nil
}

// theUserHasTheTransactions stores bank transactions from a table with the
// columns alias, merchant, amount, date and category. Each id is remembered
// as {{<alias>_transaction_id}}.
func (t *TestContext) theUserHasTheTransactions(table *godog.Table) error {
	connectionID, err := uuid.Parse(t.placeholders["bank_connection_id"])
	if err != nil {
		return errors.New("a bank connection is required before transactions")
	}

	rows, err := tableRows(table)
	if err != nil {
		return err
	}

	var txs []*entity.Transaction
	for _, row := range rows {
		amount, err := decimal.NewFromString(row["amount"])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", row["amount"], err)
		}
		date, err := time.Parse(time.DateOnly, row["date"])
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", row["date"], err)
		}

		tx := entity.NewSyncedTransaction(
			t.currentUserID,
			connectionID,
			"plaid-"+uuid.NewString(),
			amount,
			row["merchant"],
			splitCategory(row["category"]),
			date,
		)
		txs = append(txs, tx)
		if alias := row["alias"]; alias != "" {
			t.placeholders[placeholderName(alias)+"_transaction_id"] = tx.ID.String()
		}
	}

	if _, err := persistence.NewTransactionRepository(t.db.DbConn).Upsert(context.Background(), txs); err != nil {
		return fmt.Errorf("failed to store transactions: %w", err)
	}
	return nil
}

func tableRows(table *godog.Table) ([]map[string]string, error) {
	if len(table.Rows) < 1 {
		return nil, errors.New("table has no header")
	}

	header := table.Rows[0].Cells
	rows := make([]map[string]string, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		values := make(map[string]string, len(header))
		for i, cell := range row.Cells {
			values[header[i].Value] = cell.Value
		}
		rows = append(rows, values)
	}
	return rows, nil
}

func splitCategory(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ">")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func placeholderName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
