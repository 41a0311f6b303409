// Package token maintains the scholarship reward token. Balances, the total
// supply and the token metadata live in their own ledger store, separate from
// the escrow records.
package token

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/scholarstream/escrow/foundation/escrow/auth"
	"github.com/scholarstream/escrow/foundation/escrow/database"
)

// Decimals is the number of decimal places every token uses.
const Decimals = 7

// MaxProgress is the largest progress value that can be distributed.
const MaxProgress = 100

// Set of errors returned by the token ledger.
var (
	ErrAlreadyInitialized  = errors.New("token already initialized")
	ErrNotInitialized      = errors.New("token not initialized")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidProgress     = errors.New("progress cannot exceed 100")
)

// Info is the token metadata set once by Initialize.
type Info struct {
	Admin    database.AccountID `json:"admin"`
	Name     string             `json:"name"`
	Symbol   string             `json:"symbol"`
	Decimals uint32             `json:"decimals"`
}

// Config represents the configuration required to construct the ledger.
type Config struct {
	Storage   database.Storage
	Oracle    auth.Oracle
	EvHandler func(v string, args ...any)
}

// Ledger manages token balances.
type Ledger struct {
	mu        sync.RWMutex
	db        *database.Database
	oracle    auth.Oracle
	evHandler func(v string, args ...any)
}

// New constructs a token ledger over the configured storage.
func New(cfg Config) (*Ledger, error) {
	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	if cfg.Oracle == nil {
		return nil, errors.New("authorization oracle is required")
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	l := Ledger{
		db:        database.New(cfg.Storage),
		oracle:    cfg.Oracle,
		evHandler: ev,
	}

	return &l, nil
}

// Close closes the underlying storage.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Initialize records the admin and metadata of the token. It can only be
// done once per store.
func (l *Ledger) Initialize(admin database.AccountID, name string, symbol string) error {
	admin, err := database.ToAccountID(string(admin))
	if err != nil {
		return fmt.Errorf("initialize: admin: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.info(); err == nil {
		return ErrAlreadyInitialized
	}

	info := Info{
		Admin:    admin,
		Name:     name,
		Symbol:   symbol,
		Decimals: Decimals,
	}

	batch := database.NewBatch()
	if err := batch.PutRecord(keyInfo(), info); err != nil {
		return err
	}
	if err := batch.PutRecord(keySupply(), big.NewInt(0)); err != nil {
		return err
	}

	if err := l.db.Commit(batch); err != nil {
		return fmt.Errorf("initialize: commit: %w", err)
	}

	l.evHandler("token: initialize: admin[%s] name[%s] symbol[%s]", admin, name, symbol)

	return nil
}

// Info returns the token metadata.
func (l *Ledger) Info() (Info, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.info()
}

// Name returns the token name.
func (l *Ledger) Name() (string, error) {
	info, err := l.Info()
	return info.Name, err
}

// Symbol returns the token symbol.
func (l *Ledger) Symbol() (string, error) {
	info, err := l.Info()
	return info.Symbol, err
}

// BalanceOf returns the balance of the account. An unknown account has a
// balance of 0.
func (l *Ledger) BalanceOf(account database.AccountID) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.amount(keyBalance(account))
}

// TotalSupply returns the number of tokens minted so far.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.amount(keySupply())
}

// Mint creates new tokens for the account. Only the admin can mint.
func (l *Ledger) Mint(ctx context.Context, to database.AccountID, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("mint: %w", ErrInvalidAmount)
	}

	if err := l.Credit(ctx, to, amount); err != nil {
		return fmt.Errorf("mint: %w", err)
	}

	return nil
}

// Credit adds the amount to the account and the total supply. Only the admin
// can credit. A zero amount changes nothing.
func (l *Ledger) Credit(ctx context.Context, to database.AccountID, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorizeAdmin(ctx); err != nil {
		return err
	}

	if amount.Sign() == 0 {
		return nil
	}

	balance, err := l.amount(keyBalance(to))
	if err != nil {
		return err
	}

	supply, err := l.amount(keySupply())
	if err != nil {
		return err
	}

	batch := database.NewBatch()
	if err := batch.PutRecord(keyBalance(to), balance.Add(balance, amount)); err != nil {
		return err
	}
	if err := batch.PutRecord(keySupply(), supply.Add(supply, amount)); err != nil {
		return err
	}

	if err := l.db.Commit(batch); err != nil {
		return fmt.Errorf("credit: commit: %w", err)
	}

	l.evHandler("token: credit: to[%s] amount[%s] balance[%s] supply[%s]", to, amount, balance, supply)

	return nil
}

// Transfer moves tokens between accounts. The sender must authorize it.
func (l *Ledger) Transfer(ctx context.Context, from database.AccountID, to database.AccountID, amount *big.Int) error {
	if err := l.oracle.Authorize(ctx, from); err != nil {
		return fmt.Errorf("transfer: %s: %w", err, ErrUnauthorized)
	}

	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("transfer: %w", ErrInvalidAmount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fromBalance, err := l.amount(keyBalance(from))
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("transfer: %s has %s, needs %s: %w", from, fromBalance, amount, ErrInsufficientBalance)
	}

	// Sending to yourself leaves the balance as is.
	if keyBalance(from) == keyBalance(to) {
		return nil
	}

	toBalance, err := l.amount(keyBalance(to))
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	batch := database.NewBatch()
	if err := batch.PutRecord(keyBalance(from), fromBalance.Sub(fromBalance, amount)); err != nil {
		return err
	}
	if err := batch.PutRecord(keyBalance(to), toBalance.Add(toBalance, amount)); err != nil {
		return err
	}

	if err := l.db.Commit(batch); err != nil {
		return fmt.Errorf("transfer: commit: %w", err)
	}

	l.evHandler("token: transfer: from[%s] to[%s] amount[%s]", from, to, amount)

	return nil
}

// DistributeForProgress credits the student one token per percent of
// progress and returns the amount credited. Only the admin can distribute.
func (l *Ledger) DistributeForProgress(ctx context.Context, student database.AccountID, progress uint32) (*big.Int, error) {
	if progress > MaxProgress {
		return nil, fmt.Errorf("distribute: %d: %w", progress, ErrInvalidProgress)
	}

	amount := big.NewInt(int64(progress))
	if err := l.Credit(ctx, student, amount); err != nil {
		return nil, fmt.Errorf("distribute: %w", err)
	}

	return amount, nil
}

// =============================================================================

// authorizeAdmin confirms the admin authorized the call. The caller must
// hold the lock.
func (l *Ledger) authorizeAdmin(ctx context.Context) error {
	info, err := l.info()
	if err != nil {
		return err
	}

	if err := l.oracle.Authorize(ctx, info.Admin); err != nil {
		return fmt.Errorf("admin %s: %s: %w", info.Admin, err, ErrUnauthorized)
	}

	return nil
}

func (l *Ledger) info() (Info, error) {
	var info Info
	if err := l.db.Record(keyInfo(), &info); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return Info{}, ErrNotInitialized
		}
		return Info{}, err
	}

	return info, nil
}

func (l *Ledger) amount(key database.Key) (*big.Int, error) {
	var v big.Int
	if err := l.db.Record(key, &v); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return big.NewInt(0), nil
		}
		return nil, err
	}

	return &v, nil
}

func keyInfo() database.Key {
	return database.KeyRecord("token", "info")
}

func keySupply() database.Key {
	return database.KeyRecord("token", "supply")
}

func keyBalance(account database.AccountID) database.Key {
	return database.KeyRecord("token", "balance", strings.ToLower(string(account)))
}
