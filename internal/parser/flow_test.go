package parser

import (
	"testing"

	"txflow/internal/model"
)

func TestAssembleFlowOrderingAndClaims(t *testing.T) {
	transfers := []model.TokenTransfer{
		buildTransfer(testUser, testOther, testUSDC, "1", 1),
		buildTransfer(testUser, testOther, testUSDT, "2", 3),
	}
	operations := []model.Operation{
		model.AaveSupplyOperation{Type: model.OpAaveSupply, LogIndex: 2, Asset: testUSDT, Amount: "2"},
	}
	natives := []model.NativeTransfer{
		buildNative(testUser, testOther, "500", 5),
		buildNative(testOther, testUser, "600", 6),
	}
	claimedNative := []model.NativeClaim{
		{From: testOther, To: testUser, Value: "600"},
	}

	flow := AssembleFlow(transfers, operations, natives, []int{1}, claimedNative)
	if len(flow) != 3 {
		t.Fatalf("expected 3 flow items, got %d", len(flow))
	}

	if flow[0].Transfer == nil || flow[0].Transfer.LogIndex != 1 {
		t.Fatalf("item 0 mismatch: %+v", flow[0])
	}
	if flow[1].Operation == nil || flow[1].Operation.Position() != 2 {
		t.Fatalf("item 1 mismatch: %+v", flow[1])
	}
	if flow[2].NativeTransfer == nil || flow[2].NativeTransfer.Amount != "500" {
		t.Fatalf("item 2 mismatch: %+v", flow[2])
	}
}

func TestAssembleFlowDuplicateClaimsHarmless(t *testing.T) {
	transfers := []model.TokenTransfer{
		buildTransfer(testUser, testOther, testUSDC, "1", 1),
	}

	flow := AssembleFlow(transfers, nil, nil, []int{0, 0}, nil)
	if len(flow) != 0 {
		t.Fatalf("claimed transfer leaked into the flow: %d items", len(flow))
	}
}

func TestAssembleFlowNativeClaimConsumesOnce(t *testing.T) {
	natives := []model.NativeTransfer{
		buildNative(testUser, testOther, "500", 5),
		buildNative(testUser, testOther, "500", 6),
	}
	claims := []model.NativeClaim{
		{From: testUser, To: testOther, Value: "500"},
	}

	flow := AssembleFlow(nil, nil, natives, nil, claims)
	if len(flow) != 1 {
		t.Fatalf("one claim must consume exactly one native transfer, got %d items", len(flow))
	}
	if flow[0].NativeTransfer.LogIndex != 6 {
		t.Fatalf("wrong native consumed: %+v", flow[0].NativeTransfer)
	}
}

func TestAssembleFlowStableOrder(t *testing.T) {
	transfers := []model.TokenTransfer{
		buildTransfer(testUser, testOther, testUSDC, "1", 4),
	}
	operations := []model.Operation{
		model.AaveSupplyOperation{Type: model.OpAaveSupply, LogIndex: 4, Asset: testUSDT},
	}

	flow := AssembleFlow(transfers, operations, nil, nil, nil)
	if len(flow) != 2 {
		t.Fatalf("expected 2 flow items, got %d", len(flow))
	}
	// Equal positions keep insertion order: transfers before operations.
	if flow[0].Transfer == nil || flow[1].Operation == nil {
		t.Fatalf("stable ordering violated: %+v", flow)
	}
}
