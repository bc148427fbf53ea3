package client

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ethaccount/aa4337/erc4337"
	"github.com/ethaccount/aa4337/erc4337/aaerrors"
	"github.com/ethaccount/aa4337/erc4337/accounts"
)

// Client orchestrates one account through prepare → sign → send: it
// owns no state beyond what's passed in at construction, and every
// prepare independently walks collect_factory through gas_estimate and
// paymaster_final.
type Client struct {
	Account     accounts.Account
	Bundler     Bundler
	Paymaster   Paymaster // optional
	Public      accounts.PublicClient // optional, used for the deployed-hint and address resolution
	EntryPoint  common.Address
	ChainID     *big.Int
	Multipliers erc4337.GasMultipliers
}

// NewClient constructs a Client with the default gas multipliers (every
// estimate scaled to 130%, i.e. 30% headroom).
func NewClient(account accounts.Account, bundler Bundler, entryPoint common.Address, chainID *big.Int) *Client {
	return &Client{
		Account:     account,
		Bundler:     bundler,
		EntryPoint:  entryPoint,
		ChainID:     chainID,
		Multipliers: erc4337.DefaultGasMultipliers,
	}
}

// Prepare runs S1–S6 for a v0.7 UserOperation executing calls, returning
// an operation ready for Sign (its signature field is still the
// account's stub).
func (c *Client) Prepare(ctx context.Context, calls []erc4337.Call, maxFeePerGas, maxPriorityFeePerGas *big.Int) (*erc4337.UserOperationV07, error) {
	if len(calls) == 0 {
		return nil, aaerrors.BadInputf("prepare requires at least one call")
	}

	// S1: collect_factory.
	deployed, err := c.Account.Deployed(ctx, c.Public)
	if err != nil {
		return nil, err
	}

	// S2: assemble_skeleton.
	callData, err := c.Account.EncodeCalls(calls)
	if err != nil {
		return nil, err
	}
	sender, err := c.Account.Address(ctx, c.Public)
	if err != nil {
		return nil, err
	}

	uo := &erc4337.UserOperationV07{
		Sender:               sender,
		Nonce:                erc4337.EncodeNonce(c.Account.NonceKey(), 0),
		CallData:             callData,
		CallGasLimit:         big.NewInt(0),
		VerificationGasLimit: big.NewInt(0),
		PreVerificationGas:   big.NewInt(0),
		MaxFeePerGas:         maxFeePerGas,
		MaxPriorityFeePerGas: maxPriorityFeePerGas,
		Signature:            c.Account.StubSignature(),
	}
	if !deployed {
		factory := c.Account.Factory()
		uo.Factory = &factory
		uo.FactoryData = c.Account.FactoryData()
	}

	// S3: paymaster_stub.
	paymasterFinal := false
	if c.Paymaster != nil {
		stub, err := c.Paymaster.GetPaymasterStubData(ctx, uo, c.EntryPoint, c.ChainID, nil)
		if err != nil {
			return nil, err
		}
		uo.Paymaster = &stub.Paymaster
		uo.PaymasterData = stub.PaymasterData
		uo.PaymasterVerificationGasLimit = stub.PaymasterVerificationGasLimit.ToInt()
		uo.PaymasterPostOpGasLimit = stub.PaymasterPostOpGasLimit.ToInt()
		paymasterFinal = stub.IsFinal
	}

	// S4: gas_estimate.
	estimates, err := c.Bundler.EstimateUserOperationGas(ctx, uo, c.EntryPoint)
	if err != nil {
		return nil, err
	}
	uo.CallGasLimit = c.Multipliers.CallGasLimit.Apply(estimates.CallGasLimit.ToInt())
	uo.VerificationGasLimit = c.Multipliers.VerificationGasLimit.Apply(estimates.VerificationGasLimit.ToInt())
	uo.PreVerificationGas = c.Multipliers.PreVerificationGas.Apply(estimates.PreVerificationGas.ToInt())
	if c.Paymaster != nil {
		if estimates.PaymasterVerificationGasLimit != nil {
			uo.PaymasterVerificationGasLimit = estimates.PaymasterVerificationGasLimit.ToInt()
		}
		if estimates.PaymasterPostOpGasLimit != nil {
			uo.PaymasterPostOpGasLimit = estimates.PaymasterPostOpGasLimit.ToInt()
		}
	}

	// S5: paymaster_final, skipped when S3's response was already final.
	if c.Paymaster != nil && !paymasterFinal {
		final, err := c.Paymaster.GetPaymasterData(ctx, uo, c.EntryPoint, c.ChainID, nil)
		if err != nil {
			return nil, err
		}
		uo.Paymaster = &final.Paymaster
		uo.PaymasterData = final.PaymasterData
		if final.PaymasterVerificationGasLimit != nil {
			uo.PaymasterVerificationGasLimit = final.PaymasterVerificationGasLimit.ToInt()
		}
		if final.PaymasterPostOpGasLimit != nil {
			uo.PaymasterPostOpGasLimit = final.PaymasterPostOpGasLimit.ToInt()
		}
	}

	// S6.
	return uo, nil
}

// Sign replaces uo's stub signature with the account's real signature.
// Families that implement UserOpSigner (Safe, whose signature is an
// EIP-712 struct over the whole operation rather than a bare hash) are
// routed through it directly; every other family signs the v0.7
// userOpHash.
func (c *Client) Sign(uo *erc4337.UserOperationV07) error {
	if signer, ok := c.Account.(accounts.UserOpSigner); ok {
		sig, err := signer.SignUserOp(c.ChainID, uo.Sender, uo)
		if err != nil {
			return err
		}
		uo.Signature = sig
		return nil
	}

	hash, err := erc4337.UserOpHashV07(uo, c.EntryPoint, c.ChainID)
	if err != nil {
		return err
	}
	sig, err := c.Account.SignUserOpHash(hash)
	if err != nil {
		return err
	}
	uo.Signature = sig
	return nil
}

// Send submits uo to the bundler and returns the userOpHash it accepted.
func (c *Client) Send(ctx context.Context, uo *erc4337.UserOperationV07) (common.Hash, error) {
	return c.Bundler.SendUserOperation(ctx, uo, c.EntryPoint)
}

// PrepareV06 mirrors Prepare for EntryPoint v0.6: the v0.6-only families
// (Kernel v0.2.4, Biconomy v2 legacy, Trust/Barz) and any dual-mode
// family constructed against EntryPointV06 are driven through this path
// instead, since UserOperationV06 carries a combined initCode and
// paymasterAndData rather than v0.7's split fields.
func (c *Client) PrepareV06(ctx context.Context, calls []erc4337.Call, maxFeePerGas, maxPriorityFeePerGas *big.Int) (*erc4337.UserOperationV06, error) {
	if len(calls) == 0 {
		return nil, aaerrors.BadInputf("prepare requires at least one call")
	}

	deployed, err := c.Account.Deployed(ctx, c.Public)
	if err != nil {
		return nil, err
	}

	callData, err := c.Account.EncodeCalls(calls)
	if err != nil {
		return nil, err
	}
	sender, err := c.Account.Address(ctx, c.Public)
	if err != nil {
		return nil, err
	}

	uo := &erc4337.UserOperationV06{
		Sender:               sender,
		Nonce:                erc4337.EncodeNonce(c.Account.NonceKey(), 0),
		InitCode:             []byte{},
		CallData:             callData,
		CallGasLimit:         big.NewInt(0),
		VerificationGasLimit: big.NewInt(0),
		PreVerificationGas:   big.NewInt(0),
		MaxFeePerGas:         maxFeePerGas,
		MaxPriorityFeePerGas: maxPriorityFeePerGas,
		PaymasterAndData:     []byte{},
		Signature:            c.Account.StubSignature(),
	}
	if !deployed {
		uo.InitCode = append(append([]byte{}, c.Account.Factory().Bytes()...), c.Account.FactoryData()...)
	}

	paymasterFinal := false
	if c.Paymaster != nil {
		stub, err := c.Paymaster.GetPaymasterStubData(ctx, uo, c.EntryPoint, c.ChainID, nil)
		if err != nil {
			return nil, err
		}
		uo.PaymasterAndData = append(append([]byte{}, stub.Paymaster.Bytes()...), stub.PaymasterData...)
		paymasterFinal = stub.IsFinal
	}

	estimates, err := c.Bundler.EstimateUserOperationGas(ctx, uo, c.EntryPoint)
	if err != nil {
		return nil, err
	}
	uo.CallGasLimit = c.Multipliers.CallGasLimit.Apply(estimates.CallGasLimit.ToInt())
	uo.VerificationGasLimit = c.Multipliers.VerificationGasLimit.Apply(estimates.VerificationGasLimit.ToInt())
	uo.PreVerificationGas = c.Multipliers.PreVerificationGas.Apply(estimates.PreVerificationGas.ToInt())

	if c.Paymaster != nil && !paymasterFinal {
		final, err := c.Paymaster.GetPaymasterData(ctx, uo, c.EntryPoint, c.ChainID, nil)
		if err != nil {
			return nil, err
		}
		uo.PaymasterAndData = append(append([]byte{}, final.Paymaster.Bytes()...), final.PaymasterData...)
	}

	return uo, nil
}

// SignV06 mirrors Sign for a v0.6 operation: Kernel v0.2.4, Biconomy v2
// legacy, and Trust/Barz (the v0.6-only families) all sign a plain
// userOpHash rather than a struct-shaped digest, so there's no
// UserOpSigner path to check here.
func (c *Client) SignV06(uo *erc4337.UserOperationV06) error {
	hash, err := erc4337.UserOpHashV06(uo, c.EntryPoint, c.ChainID)
	if err != nil {
		return err
	}
	sig, err := c.Account.SignUserOpHash(hash)
	if err != nil {
		return err
	}
	uo.Signature = sig
	return nil
}

// SendV06 submits uo to the bundler and returns the userOpHash it accepted.
func (c *Client) SendV06(ctx context.Context, uo *erc4337.UserOperationV06) (common.Hash, error) {
	return c.Bundler.SendUserOperation(ctx, uo, c.EntryPoint)
}
