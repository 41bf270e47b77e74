// Package wallet reads the trading wallet's on-chain state on Polygon:
// native POL balance, USDC.e balance and whether the Polymarket exchange
// contracts are approved to spend it.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

const DefaultRPCURL = "https://polygon-rpc.com"

var (
	usdce = common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")

	// The CLOB needs allowances on all three exchange contracts before
	// orders can settle.
	spenders = []common.Address{
		common.HexToAddress("0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"),
		common.HexToAddress("0xC5d563A36AE78145C45a50134d48A1215220f80a"),
		common.HexToAddress("0xd91E80cF2E7be2e162c6513ceD06f1dD0dA35296"),
	}
)

const erc20ABI = `[
  {"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
  {"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"}
]`

// Info is a read-only summary of the trading wallet.
type Info struct {
	Address common.Address
	POL     float64
	USDCe   float64
	// Approved is true when every exchange contract has a non-zero
	// USDC.e allowance.
	Approved bool
}

type Client struct {
	ec    *ethclient.Client
	erc20 abi.ABI
	log   *slog.Logger
}

func New(rpcURL string, log *slog.Logger) (*Client, error) {
	ec, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("couldn't dial RPC %s: %w", rpcURL, err)
	}

	erc20, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse ERC20 ABI: %w", err)
	}

	return &Client{
		ec:    ec,
		erc20: erc20,
		log:   log.With("component", "wallet"),
	}, nil
}

func (c *Client) Close() {
	c.ec.Close()
}

// Info fetches the wallet summary for the given key.
func (c *Client) Info(ctx context.Context, key *ecdsa.PrivateKey) (Info, error) {
	addr := crypto.PubkeyToAddress(key.PublicKey)

	polWei, err := c.ec.BalanceAt(ctx, addr, nil)
	if err != nil {
		return Info{}, fmt.Errorf("couldn't get POL balance: %w", err)
	}

	usdceUnits, err := c.call(ctx, "balanceOf", addr)
	if err != nil {
		return Info{}, fmt.Errorf("couldn't get USDC.e balance: %w", err)
	}

	approved := true
	for _, spender := range spenders {
		allowance, err := c.call(ctx, "allowance", addr, spender)
		if err != nil {
			return Info{}, fmt.Errorf("couldn't get allowance for %s: %w", spender, err)
		}
		if allowance.Sign() == 0 {
			approved = false
		}
	}

	return Info{
		Address:  addr,
		POL:      UnitsToFloat(polWei, 18),
		USDCe:    UnitsToFloat(usdceUnits, 6),
		Approved: approved,
	}, nil
}

func (c *Client) call(ctx context.Context, method string, args ...any) (*big.Int, error) {
	input, err := c.erc20.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	out, err := c.ec.CallContract(ctx, ethereum.CallMsg{To: &usdce, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	vals, err := c.erc20.Methods[method].Outputs.Unpack(out)
	if err != nil || len(vals) == 0 {
		return nil, fmt.Errorf("decode %s result: %w", method, err)
	}

	res, ok := vals[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result type %T", method, vals[0])
	}
	return res, nil
}

// UnitsToFloat converts a raw token amount to a float given the token's
// decimals. Precision loss is fine here; the value is only displayed.
func UnitsToFloat(units *big.Int, decimals int) float64 {
	f := new(big.Float).SetInt(units)
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	out, _ := new(big.Float).Quo(f, scale).Float64()
	return out
}
