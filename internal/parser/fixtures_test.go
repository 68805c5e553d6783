package parser

import (
	"fmt"
	"math/big"
	"strings"

	"txflow/internal/model"
)

// Shared fixture builders for the parser tests.

const (
	testUSDC = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	testUSDT = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	testDAI  = "0x6b175474e89094c44da98b954eedeac495271d0f"

	testUSDCWETHV2Pair = "0xb4e16d0168e52d35cacd2c6185b44281ec28c9dc"
	testDAIWETHV2Pair  = "0xa478c2975ab1ea89e8196811f51a7b7ade33eb11"
	testUSDCWETHV3Pool = "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640"

	testUser  = "0x1111111111111111111111111111111111111111"
	testOther = "0x2222222222222222222222222222222222222222"
)

func topicFromAddress(addr string) string {
	hex := strings.TrimPrefix(strings.ToLower(addr), "0x")
	return "0x" + strings.Repeat("0", 64-len(hex)) + hex
}

func wordFromAddress(addr string) string {
	return strings.TrimPrefix(topicFromAddress(addr), "0x")
}

func wordFromAmount(amount string) string {
	n, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		panic(fmt.Sprintf("bad fixture amount %q", amount))
	}
	hex := n.Text(16)
	return strings.Repeat("0", 64-len(hex)) + hex
}

func buildTransfer(from, to, token, amount string, logIndex uint64) model.TokenTransfer {
	symbol := "TKN"
	decimals := uint8(18)
	switch token {
	case testUSDC:
		symbol, decimals = "USDC", 6
	case testUSDT:
		symbol, decimals = "USDT", 6
	case testDAI:
		symbol = "DAI"
	case wethAddress:
		symbol = "WETH"
	}
	return model.TokenTransfer{
		From:         from,
		To:           to,
		TokenAddress: token,
		TokenName:    symbol,
		TokenSymbol:  symbol,
		Amount:       amount,
		Decimals:     decimals,
		LogIndex:     logIndex,
	}
}

func buildNative(from, to, amount string, logIndex uint64) model.NativeTransfer {
	return model.NativeTransfer{From: from, To: to, Amount: amount, LogIndex: logIndex}
}

func buildLog(address, topic0 string, logIndex uint64, topics ...string) model.EventLog {
	log := model.EventLog{Address: address, Topic0: topic0, LogIndex: logIndex}
	if len(topics) > 0 {
		log.Topic1 = topics[0]
	}
	if len(topics) > 1 {
		log.Topic2 = topics[1]
	}
	if len(topics) > 2 {
		log.Topic3 = topics[2]
	}
	return log
}

func buildTransferLog(from, to, amount string, token string, logIndex uint64) model.EventLog {
	log := buildLog(token, erc20TransferTopic0, logIndex, topicFromAddress(from), topicFromAddress(to))
	log.Data = "0x" + wordFromAmount(amount)
	return log
}
