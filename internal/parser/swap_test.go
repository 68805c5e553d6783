package parser

import (
	"testing"

	"txflow/internal/model"
)

func buildV3SwapLog(pool, sender, recipient string, logIndex uint64) model.EventLog {
	return buildLog(pool, uniswapV3SwapTopic0, logIndex,
		topicFromAddress(sender), topicFromAddress(recipient))
}

func buildV2SwapLog(pair, sender, recipient string, logIndex uint64) model.EventLog {
	return buildLog(pair, uniswapV2SwapTopic0, logIndex,
		topicFromAddress(sender), topicFromAddress(recipient))
}

func TestDetectSwapsDirectVerifiedPair(t *testing.T) {
	logs := []model.EventLog{
		buildV2SwapLog(testUSDCWETHV2Pair, testOther, testUser, 5),
	}
	transfers := []model.TokenTransfer{
		buildTransfer(testUser, testUSDCWETHV2Pair, testUSDC, "1000000", 3),
		buildTransfer(testUSDCWETHV2Pair, testUser, wethAddress, "400000000000000", 6),
	}

	result := DetectSwaps(logs, transfers, nil, testUser)
	if len(result.Operations) != 1 {
		t.Fatalf("expected 1 swap, got %d", len(result.Operations))
	}

	op, ok := result.Operations[0].(model.UniswapSwapOperation)
	if !ok {
		t.Fatalf("operation type mismatch: %T", result.Operations[0])
	}
	if op.Version != "v2" || op.Hops != 1 {
		t.Fatalf("version/hops mismatch: %+v", op)
	}
	if op.TokenIn.Address != testUSDC || op.TokenIn.Amount != "1000000" {
		t.Fatalf("input mismatch: %+v", op.TokenIn)
	}
	if op.TokenOut.Address != wethAddress || op.TokenOut.IsNative {
		t.Fatalf("output mismatch: %+v", op.TokenOut)
	}
	if len(result.ClaimedTransferIndices) != 2 {
		t.Fatalf("expected both legs claimed, got %d", len(result.ClaimedTransferIndices))
	}
}

func TestDetectSwapsRejectsForkedPool(t *testing.T) {
	fakePool := "0x4444444444444444444444444444444444444444"
	logs := []model.EventLog{
		buildV2SwapLog(fakePool, testOther, testUser, 5),
	}
	transfers := []model.TokenTransfer{
		buildTransfer(testUser, fakePool, testUSDC, "1000000", 3),
		buildTransfer(fakePool, testUser, wethAddress, "400000000000000", 6),
	}

	result := DetectSwaps(logs, transfers, nil, testUser)
	if len(result.Operations) != 0 {
		t.Fatalf("forked pool must be rejected, got %d operations", len(result.Operations))
	}
}

func TestDetectSwapsNativeInputViaRouter(t *testing.T) {
	router := uniswapV3SwapRouter02
	logs := []model.EventLog{
		buildV3SwapLog(testUSDCWETHV3Pool, router, testUser, 5),
	}
	transfers := []model.TokenTransfer{
		buildTransfer(router, testUSDCWETHV3Pool, wethAddress, "1000000000000000000", 4),
		buildTransfer(testUSDCWETHV3Pool, testUser, testUSDC, "3000000000", 6),
	}
	natives := []model.NativeTransfer{
		buildNative(testUser, router, "1000000000000000000", 10),
	}

	result := DetectSwaps(logs, transfers, natives, testUser)
	if len(result.Operations) != 1 {
		t.Fatalf("expected 1 swap, got %d", len(result.Operations))
	}

	op := result.Operations[0].(model.UniswapSwapOperation)
	if !op.TokenIn.IsNative {
		t.Fatalf("wrapped router input must be reported as native: %+v", op.TokenIn)
	}
	if op.TokenIn.Symbol != nativeSymbol || op.TokenIn.Amount != "1000000000000000000" {
		t.Fatalf("native input mismatch: %+v", op.TokenIn)
	}
	if op.TokenOut.Address != testUSDC {
		t.Fatalf("output mismatch: %+v", op.TokenOut)
	}
	if len(result.ClaimedNativeTransfers) != 1 {
		t.Fatalf("expected 1 native claim, got %d", len(result.ClaimedNativeTransfers))
	}
	claim := result.ClaimedNativeTransfers[0]
	if claim.From != testUser || claim.To != router || claim.Value != "1000000000000000000" {
		t.Fatalf("native claim mismatch: %+v", claim)
	}
}

func TestDetectSwapsMultiHopRouterGroup(t *testing.T) {
	router := uniswapV2Router02
	hop2Pair := testDAIWETHV2Pair
	logs := []model.EventLog{
		buildV2SwapLog(testUSDCWETHV2Pair, router, hop2Pair, 5),
		buildV2SwapLog(hop2Pair, router, testUser, 7),
	}
	transfers := []model.TokenTransfer{
		buildTransfer(testUser, testUSDCWETHV2Pair, testUSDC, "1000000", 3),
		buildTransfer(testUSDCWETHV2Pair, hop2Pair, wethAddress, "400000000000000", 6),
		buildTransfer(hop2Pair, testUser, testDAI, "990000000000000000", 8),
	}

	result := DetectSwaps(logs, transfers, nil, testUser)
	if len(result.Operations) != 1 {
		t.Fatalf("router hops must merge into one swap, got %d", len(result.Operations))
	}

	op := result.Operations[0].(model.UniswapSwapOperation)
	if op.Hops != 2 {
		t.Fatalf("hop count mismatch: %d", op.Hops)
	}
	if op.TokenIn.Address != testUSDC || op.TokenOut.Address != testDAI {
		t.Fatalf("net input/output mismatch: in=%+v out=%+v", op.TokenIn, op.TokenOut)
	}
	if op.LogIndex != 5 {
		t.Fatalf("group anchored at first hop: %d", op.LogIndex)
	}
	if len(result.ClaimedTransferIndices) != 3 {
		t.Fatalf("all hop legs must be claimed, got %d", len(result.ClaimedTransferIndices))
	}
}

func TestDetectSwapsV4Singleton(t *testing.T) {
	logs := []model.EventLog{
		// Pool identity lives in topic1; topic2 carries the sender.
		buildLog(uniswapV4PoolManager, uniswapV4SwapTopic0, 5,
			"0x00000000000000000000000000000000000000000000000000000000000000aa",
			topicFromAddress(uniswapUniversalRouter)),
	}
	transfers := []model.TokenTransfer{
		buildTransfer(testUser, uniswapV4PoolManager, testUSDC, "1000000", 4),
		buildTransfer(uniswapV4PoolManager, testUser, testDAI, "990000000000000000", 6),
	}

	result := DetectSwaps(logs, transfers, nil, testUser)
	if len(result.Operations) != 1 {
		t.Fatalf("expected 1 swap, got %d", len(result.Operations))
	}

	op := result.Operations[0].(model.UniswapSwapOperation)
	if op.Version != "v4" {
		t.Fatalf("version mismatch: %s", op.Version)
	}
	if op.TokenIn.Address != testUSDC || op.TokenOut.Address != testDAI {
		t.Fatalf("flat-accounting legs mismatch: in=%+v out=%+v", op.TokenIn, op.TokenOut)
	}
	if op.Recipient != testUser {
		t.Fatalf("v4 recipient defaults to the origin: %s", op.Recipient)
	}
}

func TestDetectSwapsContractMediated(t *testing.T) {
	// The effective user is a contract that is neither the origin nor a
	// recognized router; attribution falls back to logIndex proximity.
	mediator := "0x5555555555555555555555555555555555555555"
	logs := []model.EventLog{
		buildV2SwapLog(testUSDCWETHV2Pair, mediator, mediator, 5),
	}
	transfers := []model.TokenTransfer{
		buildTransfer(mediator, testUSDCWETHV2Pair, testUSDC, "1000000", 3),
		buildTransfer(testUSDCWETHV2Pair, mediator, wethAddress, "400000000000000", 4),
	}

	result := DetectSwaps(logs, transfers, nil, testUser)
	if len(result.Operations) != 1 {
		t.Fatalf("expected mediated swap, got %d operations", len(result.Operations))
	}

	op := result.Operations[0].(model.UniswapSwapOperation)
	if op.Sender != mediator {
		t.Fatalf("mediated sender mismatch: %s", op.Sender)
	}
	if op.TokenIn.Address != testUSDC || op.TokenOut.Address != wethAddress {
		t.Fatalf("mediated legs mismatch: in=%+v out=%+v", op.TokenIn, op.TokenOut)
	}
}
