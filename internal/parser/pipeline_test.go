package parser

import (
	"context"
	"testing"

	"txflow/internal/model"
)

func TestDecodeTransactionEndToEnd(t *testing.T) {
	lookupCalls := 0
	lookup := MetadataLookupFunc(func(_ context.Context, address string) model.TokenMetadata {
		lookupCalls++
		return model.TokenMetadata{Address: address, Name: "USD Coin", Symbol: "USDC", Decimals: 6}
	})

	in := DecodeInput{
		TxHash: "0xAB00000000000000000000000000000000000000000000000000000000000001",
		From:   testUser,
		To:     testOther,
		Value:  "1000",
		Logs: []model.EventLog{
			buildTransferLog(testUser, testOther, "250", testUSDC, 1),
			buildTransferLog(testOther, testUser, "250", testUSDC, 2),
		},
	}

	flow := DecodeTransaction(context.Background(), in, lookup, nil)
	if flow.TxHash != "0xab00000000000000000000000000000000000000000000000000000000000001" {
		t.Fatalf("tx hash not normalized: %s", flow.TxHash)
	}
	if len(flow.Flow) != 3 {
		t.Fatalf("expected 2 transfers and 1 native, got %d items", len(flow.Flow))
	}
	if lookupCalls != 1 {
		t.Fatalf("metadata lookup must be memoized per address, got %d calls", lookupCalls)
	}

	// Native transfer positions after the last log.
	last := flow.Flow[2]
	if last.NativeTransfer == nil || last.NativeTransfer.LogIndex != 3 {
		t.Fatalf("native transfer misplaced: %+v", last)
	}
	if flow.Flow[0].Transfer == nil || flow.Flow[0].Transfer.TokenSymbol != "USDC" {
		t.Fatalf("enrichment missing: %+v", flow.Flow[0])
	}
}

func TestDecodeTransactionNilLookupFallsBack(t *testing.T) {
	in := DecodeInput{
		TxHash: "0x0000000000000000000000000000000000000000000000000000000000000002",
		From:   testUser,
		Value:  "0",
		Logs: []model.EventLog{
			buildTransferLog(testUser, testOther, "7", testDAI, 0),
		},
	}

	flow := DecodeTransaction(context.Background(), in, nil, nil)
	if len(flow.Flow) != 1 {
		t.Fatalf("expected 1 item, got %d", len(flow.Flow))
	}
	got := flow.Flow[0].Transfer
	if got == nil || got.TokenSymbol != unknownSymbol || got.Decimals != defaultDecimals {
		t.Fatalf("fallback metadata expected: %+v", got)
	}
}
