// Package orchestrate is the facade over the quote, balance, blockhash,
// sequencing and submission collaborators. One Service call runs one
// complete flow: resolve pool state, price the input, sequence the
// instructions, assemble, sign and submit.
package orchestrate

import (
	"context"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lugondev/go-swapkit/internal/balance"
	"github.com/lugondev/go-swapkit/internal/blockhash"
	"github.com/lugondev/go-swapkit/internal/errors"
	"github.com/lugondev/go-swapkit/internal/metrics"
	ledgerrpc "github.com/lugondev/go-swapkit/internal/solana"
	"github.com/lugondev/go-swapkit/internal/swap"
	"github.com/lugondev/go-swapkit/internal/txn"
)

// PoolReader resolves pool state and mint metadata from the ledger.
type PoolReader interface {
	FetchState(ctx context.Context, mint1, mint2 solana.PublicKey) (swap.State, error)
	MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
}

// BalanceReader resolves holding accounts.
type BalanceReader interface {
	Resolve(ctx context.Context, owner, mint solana.PublicKey, decimals uint8) (balance.Record, error)
}

// BlockhashSource issues single-use freshness tokens.
type BlockhashSource interface {
	Consume(ctx context.Context) (blockhash.Token, error)
}

// Broadcaster submits serialized transactions and awaits the outcome.
type Broadcaster interface {
	SubmitRaw(ctx context.Context, raw []byte, expiryHeight uint64) txn.Outcome
}

type ledgerPoolReader struct {
	accounts  swap.AccountFetcher
	programID solana.PublicKey
}

// NewPoolReader creates a PoolReader backed by the ledger RPC client.
func NewPoolReader(accounts swap.AccountFetcher, programID solana.PublicKey) PoolReader {
	return &ledgerPoolReader{accounts: accounts, programID: programID}
}

func (r *ledgerPoolReader) FetchState(ctx context.Context, mint1, mint2 solana.PublicKey) (swap.State, error) {
	return swap.FetchState(ctx, r.accounts, r.programID, mint1, mint2)
}

func (r *ledgerPoolReader) MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	return swap.FetchMintDecimals(ctx, r.accounts, mint)
}

// Options configure a Service.
type Options struct {
	Pools       PoolReader
	Balances    BalanceReader
	Blockhashes BlockhashSource
	Submitter   Broadcaster
	Wallet      ledgerrpc.Signer

	FeeReceiverWallet solana.PublicKey

	// Slippage is the default tolerance for bounded swaps.
	Slippage swap.Slippage

	Logger  *slog.Logger
	Metrics metrics.Metrics
}

// Service runs swap, deposit and initialization flows end to end.
type Service struct {
	pools       PoolReader
	balances    BalanceReader
	blockhashes BlockhashSource
	submitter   Broadcaster
	wallet      ledgerrpc.Signer

	feeReceiverWallet solana.PublicKey
	slippage          swap.Slippage

	logger  *slog.Logger
	metrics metrics.Metrics
}

// NewService creates a Service from its collaborators.
func NewService(opts Options) (*Service, error) {
	if opts.Pools == nil || opts.Balances == nil || opts.Blockhashes == nil ||
		opts.Submitter == nil || opts.Wallet == nil {
		return nil, errors.ConfigError("service options", errors.NewError(errors.ErrCodeConfig, "missing collaborator"))
	}
	if err := opts.Slippage.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewNoopMetrics()
	}
	return &Service{
		pools:             opts.Pools,
		balances:          opts.Balances,
		blockhashes:       opts.Blockhashes,
		submitter:         opts.Submitter,
		wallet:            opts.Wallet,
		feeReceiverWallet: opts.FeeReceiverWallet,
		slippage:          opts.Slippage,
		logger:            logger,
		metrics:           m,
	}, nil
}

// Owner returns the wallet public key the service acts for.
func (s *Service) Owner() solana.PublicKey {
	return s.wallet.PublicKey()
}

// BuildResult is an assembled, ephemeral-cosigned transaction awaiting
// the wallet's primary signature.
type BuildResult struct {
	Transaction  *solana.Transaction
	ExpiryHeight uint64
	Plan         *swap.Plan

	// ExpectedShares is the pool share amount the opening deposit mints,
	// at the share mint's fixed precision. Set by BuildInitialize only.
	ExpectedShares uint64
}

// SwapRequest describes one swap flow.
type SwapRequest struct {
	MintIn  solana.PublicKey
	MintOut solana.PublicKey

	AmountIn uint64

	// Unbounded disables the minimum-output guard entirely.
	Unbounded bool
}

func (r SwapRequest) validate() error {
	if r.AmountIn == 0 {
		return errors.InvalidInput("swap requires a positive input amount")
	}
	if r.MintIn.Equals(r.MintOut) {
		return errors.InvalidInput("swap mints must differ")
	}
	return nil
}

// PoolState resolves the current state of the pool for a mint pair.
func (s *Service) PoolState(ctx context.Context, mint1, mint2 solana.PublicKey) (swap.State, error) {
	return s.pools.FetchState(ctx, mint1, mint2)
}

// Balance resolves the caller's holding account for a mint.
func (s *Service) Balance(ctx context.Context, mint solana.PublicKey) (balance.Record, error) {
	decimals, err := s.pools.MintDecimals(ctx, mint)
	if err != nil {
		return balance.Record{}, err
	}
	return s.balances.Resolve(ctx, s.Owner(), mint, decimals)
}

// QuoteSwap prices a swap against current pool state without building
// anything. Quotes are pure and recomputed per call, never cached.
func (s *Service) QuoteSwap(ctx context.Context, req SwapRequest) (swap.SwapQuote, error) {
	if err := req.validate(); err != nil {
		return swap.SwapQuote{}, err
	}
	state, err := s.pools.FetchState(ctx, req.MintIn, req.MintOut)
	if err != nil {
		return swap.SwapQuote{}, err
	}
	if !state.Exists {
		return swap.SwapQuote{}, errors.ErrPoolNotFound
	}
	return s.quoteAgainst(ctx, state, req)
}

func (s *Service) quoteAgainst(ctx context.Context, state swap.State, req SwapRequest) (swap.SwapQuote, error) {
	sideIn, err := state.SideOf(req.MintIn)
	if err != nil {
		return swap.SwapQuote{}, err
	}
	sideOut, err := state.SideOf(req.MintOut)
	if err != nil {
		return swap.SwapQuote{}, err
	}
	if sideIn == sideOut {
		return swap.SwapQuote{}, errors.InvalidInput("swap mints must differ")
	}

	reserveIn, inDecimals := state.ReserveDecimals(sideIn)
	reserveOut, outDecimals := state.ReserveDecimals(sideOut)

	var tolerance *swap.Slippage
	if !req.Unbounded {
		tolerance = &s.slippage
	}

	quote, err := swap.QuoteSwap(req.AmountIn, reserveIn, reserveOut, inDecimals, outDecimals, state.Fees, tolerance)
	if err != nil {
		return swap.SwapQuote{}, err
	}
	_ = s.metrics.IncrementCounter(ctx, metrics.MetricQuotesComputed, 1)
	return quote, nil
}

// BuildSwap runs the swap flow up to the signing boundary: pool state
// and a fresh blockhash are fetched concurrently, the input is priced,
// the source balance is checked, and the sequenced plan is assembled.
func (s *Service) BuildSwap(ctx context.Context, req SwapRequest) (*BuildResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	logger := s.logger.With("flow_id", uuid.NewString(), "flow", "swap")

	state, token, err := s.fetchStateAndToken(ctx, req.MintIn, req.MintOut)
	if err != nil {
		return nil, err
	}
	if !state.Exists {
		return nil, errors.ErrPoolNotFound
	}

	quote, err := s.quoteAgainst(ctx, state, req)
	if err != nil {
		return nil, err
	}

	owner := s.Owner()
	source, err := s.balances.Resolve(ctx, owner, req.MintIn, quote.InDecimals)
	if err != nil {
		return nil, err
	}
	if source.Amount < req.AmountIn {
		return nil, errors.InvalidInput("balance %d is below swap input %d", source.Amount, req.AmountIn)
	}

	dest, err := s.balances.Resolve(ctx, owner, req.MintOut, quote.OutDecimals)
	if err != nil {
		return nil, err
	}
	var destAddr *solana.PublicKey
	if dest.Exists {
		destAddr = &dest.Address
	}

	plan, err := swap.BuildSwap(state, swap.SwapParams{
		Owner:             owner,
		SourceMint:        req.MintIn,
		AmountIn:          req.AmountIn,
		MinimumOut:        quote.MinimumOut,
		Unbounded:         quote.Unbounded,
		Source:            source.Address,
		Dest:              destAddr,
		FeeReceiverWallet: s.feeReceiverWallet,
	})
	if err != nil {
		return nil, err
	}

	tx, err := txn.Assemble(plan, owner, token)
	if err != nil {
		return nil, err
	}

	logger.Info("swap built",
		"amount_in", req.AmountIn,
		"amount_out", quote.AmountOut,
		"minimum_out", quote.MinimumOut,
		"unbounded", quote.Unbounded,
		"expiry_height", token.LastValidBlockHeight,
	)
	return &BuildResult{Transaction: tx, ExpiryHeight: token.LastValidBlockHeight, Plan: plan}, nil
}

// DepositRequest describes one liquidity-deposit flow. Mints may be
// given in either order; sides are independent and either amount may be
// zero, but not both.
type DepositRequest struct {
	Mint1 solana.PublicKey
	Mint2 solana.PublicKey

	Amount1 uint64
	Amount2 uint64
}

func (r DepositRequest) validate() error {
	if r.Amount1 == 0 && r.Amount2 == 0 {
		return errors.InvalidInput("deposit requires a positive amount on at least one side")
	}
	if r.Mint1.Equals(r.Mint2) {
		return errors.InvalidInput("deposit mints must differ")
	}
	return nil
}

// QuoteDeposit quotes the pool shares owed for a single-sided deposit.
func (s *Service) QuoteDeposit(ctx context.Context, mint1, mint2, depositMint solana.PublicKey, amount uint64) (uint64, error) {
	state, err := s.pools.FetchState(ctx, mint1, mint2)
	if err != nil {
		return 0, err
	}
	if !state.Exists {
		return 0, errors.ErrPoolNotFound
	}
	side, err := state.SideOf(depositMint)
	if err != nil {
		return 0, err
	}
	reserve, _ := state.ReserveDecimals(side)
	shares, err := swap.SharesOut(amount, reserve, state.ShareSupply)
	if err != nil {
		return 0, err
	}
	_ = s.metrics.IncrementCounter(ctx, metrics.MetricQuotesComputed, 1)
	return shares, nil
}

// BuildDeposit runs the deposit flow up to the signing boundary.
func (s *Service) BuildDeposit(ctx context.Context, req DepositRequest) (*BuildResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	logger := s.logger.With("flow_id", uuid.NewString(), "flow", "deposit")

	state, token, err := s.fetchStateAndToken(ctx, req.Mint1, req.Mint2)
	if err != nil {
		return nil, err
	}
	if !state.Exists {
		return nil, errors.ErrPoolNotFound
	}

	params, err := s.depositParams(ctx, state, req)
	if err != nil {
		return nil, err
	}

	plan, err := swap.BuildDeposit(state, params)
	if err != nil {
		return nil, err
	}
	tx, err := txn.Assemble(plan, s.Owner(), token)
	if err != nil {
		return nil, err
	}

	logger.Info("deposit built",
		"amount_a", params.AmountA,
		"amount_b", params.AmountB,
		"expiry_height", token.LastValidBlockHeight,
	)
	return &BuildResult{Transaction: tx, ExpiryHeight: token.LastValidBlockHeight, Plan: plan}, nil
}

// depositParams maps the caller's mint order onto the pool's canonical
// sides and resolves the source account of each positive leg.
func (s *Service) depositParams(ctx context.Context, state swap.State, req DepositRequest) (swap.DepositParams, error) {
	side1, err := state.SideOf(req.Mint1)
	if err != nil {
		return swap.DepositParams{}, err
	}

	params := swap.DepositParams{Owner: s.Owner()}
	if side1 == swap.SideA {
		params.AmountA, params.AmountB = req.Amount1, req.Amount2
	} else {
		params.AmountA, params.AmountB = req.Amount2, req.Amount1
	}

	type leg struct {
		side   swap.Side
		mint   solana.PublicKey
		amount uint64
		dest   *solana.PublicKey
	}
	legs := []leg{
		{swap.SideA, state.Addresses.MintA, params.AmountA, &params.SourceA},
		{swap.SideB, state.Addresses.MintB, params.AmountB, &params.SourceB},
	}
	for _, l := range legs {
		if l.amount == 0 {
			continue
		}
		_, decimals := state.ReserveDecimals(l.side)
		record, err := s.balances.Resolve(ctx, params.Owner, l.mint, decimals)
		if err != nil {
			return swap.DepositParams{}, err
		}
		if record.Amount < l.amount {
			return swap.DepositParams{}, errors.InvalidInput("balance %d is below deposit amount %d", record.Amount, l.amount)
		}
		*l.dest = record.Address
	}
	return params, nil
}

// InitializeRequest describes pool creation. Both amounts must be
// positive; their ratio sets the opening price.
type InitializeRequest struct {
	Mint1 solana.PublicKey
	Mint2 solana.PublicKey

	Amount1 uint64
	Amount2 uint64

	// Fees is the pool's fee schedule. A zero value selects the
	// deployment default.
	Fees FeeSchedule
}

// FeeSchedule aliases the swap package's schedule so callers of the
// facade need only this package.
type FeeSchedule = swap.FeeSchedule

func (r InitializeRequest) validate() error {
	if r.Amount1 == 0 || r.Amount2 == 0 {
		return errors.InvalidInput("initialization requires positive amounts on both sides")
	}
	if r.Mint1.Equals(r.Mint2) {
		return errors.InvalidInput("pool mints must differ")
	}
	return nil
}

// BuildInitialize runs the pool-creation flow up to the signing
// boundary.
func (s *Service) BuildInitialize(ctx context.Context, req InitializeRequest) (*BuildResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	logger := s.logger.With("flow_id", uuid.NewString(), "flow", "initialize")

	state, token, err := s.fetchStateAndToken(ctx, req.Mint1, req.Mint2)
	if err != nil {
		return nil, err
	}
	if state.Exists {
		return nil, errors.ErrPoolExists
	}

	fees := req.Fees
	if fees == (FeeSchedule{}) {
		fees = swap.DefaultFeeSchedule()
	}

	side1, err := state.SideOf(req.Mint1)
	if err != nil {
		return nil, err
	}
	amountA, amountB := req.Amount1, req.Amount2
	if side1 == swap.SideB {
		amountA, amountB = amountB, amountA
	}

	owner := s.Owner()
	sourceA, err := s.balances.Resolve(ctx, owner, state.Addresses.MintA, state.MintADecimals)
	if err != nil {
		return nil, err
	}
	sourceB, err := s.balances.Resolve(ctx, owner, state.Addresses.MintB, state.MintBDecimals)
	if err != nil {
		return nil, err
	}
	if sourceA.Amount < amountA || sourceB.Amount < amountB {
		return nil, errors.InvalidInput("balances do not cover the initial deposits")
	}

	plan, err := swap.BuildInitialize(state, swap.InitializeParams{
		Owner:             owner,
		MaxAmountA:        amountA,
		MaxAmountB:        amountB,
		SourceA:           sourceA.Address,
		SourceB:           sourceB.Address,
		Fees:              fees,
		FeeReceiverWallet: s.feeReceiverWallet,
	})
	if err != nil {
		return nil, err
	}
	tx, err := txn.Assemble(plan, owner, token)
	if err != nil {
		return nil, err
	}

	// The opening deposit prices shares off side A, rescaled to the
	// share mint's precision.
	expectedShares := swap.InitialShares(amountA, state.MintADecimals)

	logger.Info("pool initialization built",
		"pool", state.Addresses.Pool,
		"amount_a", amountA,
		"amount_b", amountB,
		"expected_shares", expectedShares,
		"expiry_height", token.LastValidBlockHeight,
	)
	return &BuildResult{
		Transaction:    tx,
		ExpiryHeight:   token.LastValidBlockHeight,
		Plan:           plan,
		ExpectedShares: expectedShares,
	}, nil
}

// SignAndSubmit collects the wallet's primary signature, wipes the
// plan's ephemeral key material, and submits the transaction. A
// declined signing prompt is reported as a user-cancelled outcome, not
// an error.
func (s *Service) SignAndSubmit(ctx context.Context, res *BuildResult) txn.Outcome {
	defer res.Plan.Zeroize()

	if err := s.wallet.SignTransaction(res.Transaction); err != nil {
		if errors.Is(err, errors.ErrUserCancelled) {
			s.logger.Info("signing declined")
			return txn.UserCancelled()
		}
		return txn.Unavailable(err)
	}

	raw, err := res.Transaction.MarshalBinary()
	if err != nil {
		return txn.Unavailable(err)
	}
	return s.submitter.SubmitRaw(ctx, raw, res.ExpiryHeight)
}

// ExecuteSwap builds, signs and submits a swap in one call.
func (s *Service) ExecuteSwap(ctx context.Context, req SwapRequest) (txn.Outcome, error) {
	res, err := s.BuildSwap(ctx, req)
	if err != nil {
		return txn.Outcome{}, err
	}
	return s.SignAndSubmit(ctx, res), nil
}

// ExecuteDeposit builds, signs and submits a deposit in one call.
func (s *Service) ExecuteDeposit(ctx context.Context, req DepositRequest) (txn.Outcome, error) {
	res, err := s.BuildDeposit(ctx, req)
	if err != nil {
		return txn.Outcome{}, err
	}
	return s.SignAndSubmit(ctx, res), nil
}

// fetchStateAndToken resolves pool state and consumes a freshness token
// concurrently. Both reads are independent; neither is allowed to block
// the other.
func (s *Service) fetchStateAndToken(ctx context.Context, mint1, mint2 solana.PublicKey) (swap.State, blockhash.Token, error) {
	var (
		state swap.State
		token blockhash.Token
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		state, err = s.pools.FetchState(gctx, mint1, mint2)
		return err
	})
	g.Go(func() error {
		var err error
		token, err = s.blockhashes.Consume(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return swap.State{}, blockhash.Token{}, err
	}
	return state, token, nil
}
