package parser

import (
	"testing"

	"txflow/internal/model"
)

func TestDecodeTransferLogsRawTopics(t *testing.T) {
	logs := []model.EventLog{
		buildTransferLog(testUser, testOther, "1500000", testUSDC, 3),
		buildLog(testUSDC, "0xdeadbeef00000000000000000000000000000000000000000000000000000000", 4),
	}

	transfers := DecodeTransferLogs(logs, nil)
	if len(transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(transfers))
	}

	got := transfers[0]
	if got.From != testUser || got.To != testOther {
		t.Fatalf("party mismatch: %+v", got)
	}
	if got.TokenAddress != testUSDC {
		t.Fatalf("token mismatch: %s", got.TokenAddress)
	}
	if got.Value != "1500000" {
		t.Fatalf("value mismatch: %s", got.Value)
	}
	if got.LogIndex != 3 {
		t.Fatalf("log index mismatch: %d", got.LogIndex)
	}
}

func TestDecodeTransferLogsDecodedEvent(t *testing.T) {
	log := buildLog(testDAI, erc20TransferTopic0, 7)
	log.DecodedEvent = &model.DecodedEvent{
		Label:     "Transfer",
		Signature: erc20TransferSignature,
		Params: []model.DecodedEventParam{
			{Name: "from", Value: testUser},
			{Name: "to", Value: testOther},
			{Name: "amount", Value: "42"},
		},
	}

	transfers := DecodeTransferLogs([]model.EventLog{log}, nil)
	if len(transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(transfers))
	}
	if transfers[0].Value != "42" {
		t.Fatalf("amount param not honored: %s", transfers[0].Value)
	}
}

func TestDecodeTransferLogsIncompleteDecodedEventFallsBack(t *testing.T) {
	log := buildTransferLog(testUser, testOther, "99", testUSDT, 2)
	log.DecodedEvent = &model.DecodedEvent{
		Label:     "Transfer",
		Signature: erc20TransferSignature,
		Params: []model.DecodedEventParam{
			{Name: "from", Value: testUser},
		},
	}

	transfers := DecodeTransferLogs([]model.EventLog{log}, nil)
	if len(transfers) != 1 {
		t.Fatalf("expected raw fallback to decode, got %d transfers", len(transfers))
	}
	if transfers[0].Value != "99" {
		t.Fatalf("value mismatch: %s", transfers[0].Value)
	}
}

func TestDecodeTransferLogsMissingTopicsSkipped(t *testing.T) {
	log := buildLog(testUSDC, erc20TransferTopic0, 5, topicFromAddress(testUser))

	transfers := DecodeTransferLogs([]model.EventLog{log}, nil)
	if len(transfers) != 0 {
		t.Fatalf("expected skip, got %d transfers", len(transfers))
	}

	errs := CollectDecodeErrors("0xABCDEF", []model.EventLog{log})
	if len(errs) != 1 {
		t.Fatalf("expected 1 decode error, got %d", len(errs))
	}
	if errs[0].TxHash != "0xabcdef" {
		t.Fatalf("tx hash not lowercased: %s", errs[0].TxHash)
	}
	if errs[0].LogIndex != 5 || errs[0].Address != testUSDC {
		t.Fatalf("diagnostic mismatch: %+v", errs[0])
	}
}
