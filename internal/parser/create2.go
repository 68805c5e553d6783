package parser

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Deployment-address verification: a pool's address is recomputed from its
// token pair via the CREATE2 scheme and compared to the address observed
// on-chain. A mismatch means the event came from a fork or clone and the
// anchor is rejected. This is a pure function, not a trust list: new pools
// are created continuously.

var (
	v3SaltArgs     abi.Arguments
	v3SaltArgsOnce sync.Once
	v3SaltArgsErr  error
)

func v3SaltArguments() (abi.Arguments, error) {
	v3SaltArgsOnce.Do(func() {
		addressType, err := abi.NewType("address", "", nil)
		if err != nil {
			v3SaltArgsErr = err
			return
		}
		uint24Type, err := abi.NewType("uint24", "", nil)
		if err != nil {
			v3SaltArgsErr = err
			return
		}
		v3SaltArgs = abi.Arguments{
			{Type: addressType},
			{Type: addressType},
			{Type: uint24Type},
		}
	})
	return v3SaltArgs, v3SaltArgsErr
}

func computeCreate2Address(deployer common.Address, salt []byte, initCodeHash common.Hash) string {
	packed := make([]byte, 0, 1+20+32+32)
	packed = append(packed, 0xff)
	packed = append(packed, deployer.Bytes()...)
	packed = append(packed, salt...)
	packed = append(packed, initCodeHash.Bytes()...)
	digest := crypto.Keccak256(packed)
	return "0x" + hex.EncodeToString(digest[12:])
}

// sortTokens orders a token pair ascending by address value, the canonical
// order factories use when deriving the pool salt.
func sortTokens(a, b string) (common.Address, common.Address) {
	addrA := common.HexToAddress(a)
	addrB := common.HexToAddress(b)
	if bytes.Compare(addrA.Bytes(), addrB.Bytes()) < 0 {
		return addrA, addrB
	}
	return addrB, addrA
}

// verifyV2Pair recomputes the v2 pair address from its token pair.
func verifyV2Pair(pairAddress, tokenA, tokenB string) bool {
	token0, token1 := sortTokens(tokenA, tokenB)
	salt := crypto.Keccak256(append(token0.Bytes(), token1.Bytes()...))
	computed := computeCreate2Address(
		common.HexToAddress(uniswapV2Factory),
		salt,
		common.HexToHash(uniswapV2InitCodeHash),
	)
	return sameAddr(computed, pairAddress)
}

// verifyV3Pool recomputes the v3 pool address from its token pair, trying
// each standard fee tier.
func verifyV3Pool(poolAddress, tokenA, tokenB string) bool {
	args, err := v3SaltArguments()
	if err != nil {
		return false
	}

	token0, token1 := sortTokens(tokenA, tokenB)
	for _, fee := range v3FeeTiers {
		encoded, err := args.Pack(token0, token1, new(big.Int).SetUint64(uint64(fee)))
		if err != nil {
			continue
		}
		salt := crypto.Keccak256(encoded)
		computed := computeCreate2Address(
			common.HexToAddress(uniswapV3Factory),
			salt,
			common.HexToHash(uniswapV3InitCodeHash),
		)
		if sameAddr(computed, poolAddress) {
			return true
		}
	}
	return false
}
