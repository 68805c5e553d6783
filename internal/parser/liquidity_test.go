package parser

import (
	"testing"

	"txflow/internal/model"
)

const (
	testTokenID1 = "0x0000000000000000000000000000000000000000000000000000000000000001"
	testTokenID2 = "0x0000000000000000000000000000000000000000000000000000000000000002"
)

func TestDetectLiquidityV3Remove(t *testing.T) {
	logs := []model.EventLog{
		buildLog(testUSDCWETHV3Pool, v3PoolBurnTopic0, 9),
		buildLog(uniswapV3PositionManager, v3DecreaseLiquidityTopic0, 10, testTokenID1),
		// Same position id: this collect is the remove's fee sweep, not a
		// standalone operation.
		buildLog(uniswapV3PositionManager, v3ManagerCollectTopic0, 15, testTokenID1),
	}
	transfers := []model.TokenTransfer{
		buildTransfer(testUSDCWETHV3Pool, uniswapV3PositionManager, testUSDC, "1000000", 11),
		buildTransfer(testUSDCWETHV3Pool, uniswapV3PositionManager, wethAddress, "400000000000000", 12),
		buildTransfer(uniswapV3PositionManager, testUser, testUSDC, "1000000", 13),
		buildTransfer(uniswapV3PositionManager, testUser, wethAddress, "400000000000000", 14),
	}

	result := DetectLiquidity(logs, transfers, nil, testUser)
	if len(result.Operations) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(result.Operations))
	}

	op, ok := result.Operations[0].(model.UniswapRemoveLiquidityOperation)
	if !ok {
		t.Fatalf("operation type mismatch: %T", result.Operations[0])
	}
	if op.Version != "v3" || op.Recipient != testUser {
		t.Fatalf("remove mismatch: %+v", op)
	}
	if op.Token0.Address != testUSDC || op.Token1.Address != wethAddress {
		t.Fatalf("token slots mismatch: %+v %+v", op.Token0, op.Token1)
	}
	if len(result.ClaimedTransferIndices) != 4 {
		t.Fatalf("both pool and manager legs must be claimed, got %d", len(result.ClaimedTransferIndices))
	}
}

func TestDetectLiquidityV3StandaloneCollect(t *testing.T) {
	logs := []model.EventLog{
		buildLog(uniswapV3PositionManager, v3ManagerCollectTopic0, 20, testTokenID2),
	}
	transfers := []model.TokenTransfer{
		buildTransfer(testUSDCWETHV3Pool, uniswapV3PositionManager, testUSDC, "500", 18),
		buildTransfer(uniswapV3PositionManager, testUser, testUSDC, "500", 21),
		buildTransfer(uniswapV3PositionManager, testUser, wethAddress, "900", 22),
	}

	result := DetectLiquidity(logs, transfers, nil, testUser)
	if len(result.Operations) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(result.Operations))
	}

	op, ok := result.Operations[0].(model.UniswapCollectFeesOperation)
	if !ok {
		t.Fatalf("operation type mismatch: %T", result.Operations[0])
	}
	if op.Collector != testUser {
		t.Fatalf("collector mismatch: %s", op.Collector)
	}
	if len(result.ClaimedTransferIndices) != 3 {
		t.Fatalf("display and sweep legs must be claimed, got %d", len(result.ClaimedTransferIndices))
	}
}

func TestDetectLiquidityV3Add(t *testing.T) {
	logs := []model.EventLog{
		buildLog(testUSDCWETHV3Pool, v3PoolMintTopic0, 9),
		buildLog(uniswapV3PositionManager, v3IncreaseLiquidityTopic0, 10, testTokenID1),
	}
	transfers := []model.TokenTransfer{
		buildTransfer(testUser, testUSDCWETHV3Pool, testUSDC, "1000000", 7),
		buildTransfer(testUser, testUSDCWETHV3Pool, wethAddress, "400000000000000", 8),
	}

	result := DetectLiquidity(logs, transfers, nil, testUser)
	if len(result.Operations) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(result.Operations))
	}

	op, ok := result.Operations[0].(model.UniswapAddLiquidityOperation)
	if !ok {
		t.Fatalf("operation type mismatch: %T", result.Operations[0])
	}
	if op.Version != "v3" || op.Provider != testUser {
		t.Fatalf("add mismatch: %+v", op)
	}
	// Slot 0 is the leg nearest the anchor, here the WETH deposit.
	if op.Token0.Address != wethAddress || op.Token0.Amount != "400000000000000" {
		t.Fatalf("slot 0 mismatch: %+v", op.Token0)
	}
	if op.Token1.Address != testUSDC || op.Token1.Amount != "1000000" {
		t.Fatalf("slot 1 mismatch: %+v", op.Token1)
	}
}

func TestDetectLiquidityV2AddWithLPMint(t *testing.T) {
	logs := []model.EventLog{
		buildLog(testDAIWETHV2Pair, v2PairMintTopic0, 10),
	}
	transfers := []model.TokenTransfer{
		buildTransfer(testUser, testDAIWETHV2Pair, testDAI, "1000000000000000000", 8),
		buildTransfer(testUser, testDAIWETHV2Pair, wethAddress, "400000000000000", 9),
		buildTransfer(zeroAddress, testUser, testDAIWETHV2Pair, "123456", 11),
	}

	result := DetectLiquidity(logs, transfers, nil, testUser)
	if len(result.Operations) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(result.Operations))
	}

	op := result.Operations[0].(model.UniswapAddLiquidityOperation)
	if op.Version != "v2" || op.Provider != testUser {
		t.Fatalf("add mismatch: %+v", op)
	}
	// Both deposit legs plus the LP mint are consumed.
	if len(result.ClaimedTransferIndices) != 3 {
		t.Fatalf("expected 3 claimed transfers, got %d", len(result.ClaimedTransferIndices))
	}
}

func TestDetectLiquidityV2RemoveUnwrapsNative(t *testing.T) {
	router := uniswapV2Router02
	logs := []model.EventLog{
		buildLog(testDAIWETHV2Pair, v2PairBurnTopic0, 10, topicFromAddress(router), topicFromAddress(router)),
	}
	transfers := []model.TokenTransfer{
		buildTransfer(testUser, testDAIWETHV2Pair, testDAIWETHV2Pair, "123456", 8),
		buildTransfer(testDAIWETHV2Pair, router, testDAI, "1000000000000000000", 11),
		buildTransfer(testDAIWETHV2Pair, router, wethAddress, "400000000000000", 12),
	}
	natives := []model.NativeTransfer{
		buildNative(router, testUser, "400000000000000", 20),
	}

	result := DetectLiquidity(logs, transfers, natives, testUser)
	if len(result.Operations) != 1 {
		t.Fatalf("expected 1 operation, got %d", len(result.Operations))
	}

	op := result.Operations[0].(model.UniswapRemoveLiquidityOperation)
	if op.Version != "v2" {
		t.Fatalf("version mismatch: %s", op.Version)
	}
	if op.Recipient != testUser {
		t.Fatalf("unwrapped removal must report the origin as recipient: %s", op.Recipient)
	}
	if !op.Token1.IsNative || op.Token1.Symbol != nativeSymbol {
		t.Fatalf("WETH leg must be reported as native: %+v", op.Token1)
	}
	if op.Token0.IsNative {
		t.Fatalf("DAI leg wrongly marked native: %+v", op.Token0)
	}
	if len(result.ClaimedNativeTransfers) != 1 {
		t.Fatalf("expected 1 native claim, got %d", len(result.ClaimedNativeTransfers))
	}
	if len(result.ClaimedTransferIndices) != 3 {
		t.Fatalf("pair legs and LP burn must be claimed, got %d", len(result.ClaimedTransferIndices))
	}
}
