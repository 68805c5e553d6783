package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"txflow/internal/model"
)

// Client wraps go-ethereum RPC and provides helper methods.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}

// TransactionData is everything the decoder needs about one transaction:
// the envelope fields, the receipt's event logs, and the value-bearing
// internal calls recovered from a trace when the endpoint supports one.
type TransactionData struct {
	Hash          string
	From          string
	To            string
	Value         string
	BlockNumber   uint64
	Status        uint64
	Logs          []model.EventLog
	InternalCalls []model.InternalCall
}

type rpcTransaction struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value"`
}

type rpcReceipt struct {
	Status      hexutil.Uint64 `json:"status"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	Logs        []rpcLog       `json:"logs"`
}

type rpcLog struct {
	Address  common.Address `json:"address"`
	Topics   []common.Hash  `json:"topics"`
	Data     hexutil.Bytes  `json:"data"`
	LogIndex hexutil.Uint64 `json:"logIndex"`
}

// callFrame is the callTracer frame shape; only value movement matters here.
type callFrame struct {
	Type  string      `json:"type"`
	From  string      `json:"from"`
	To    string      `json:"to"`
	Value string      `json:"value"`
	Calls []callFrame `json:"calls"`
}

// FetchTransaction loads the transaction envelope and receipt. A trace
// failure is not fatal: many public endpoints disable debug_traceTransaction,
// in which case internal calls stay empty and only the top-level value is
// visible to the decoder.
func (c *Client) FetchTransaction(ctx context.Context, txHash string, logger *zap.Logger) (TransactionData, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var tx rpcTransaction
	if err := c.rpcClient.CallContext(ctx, &tx, "eth_getTransactionByHash", txHash); err != nil {
		return TransactionData{}, fmt.Errorf("fetch transaction: %w", err)
	}

	var receipt rpcReceipt
	if err := c.rpcClient.CallContext(ctx, &receipt, "eth_getTransactionReceipt", txHash); err != nil {
		return TransactionData{}, fmt.Errorf("fetch receipt: %w", err)
	}
	if receipt.Logs == nil && receipt.BlockNumber == 0 {
		return TransactionData{}, fmt.Errorf("receipt not found for %s", txHash)
	}

	data := TransactionData{
		Hash:        strings.ToLower(txHash),
		From:        strings.ToLower(tx.From.Hex()),
		Value:       "0",
		BlockNumber: uint64(receipt.BlockNumber),
		Status:      uint64(receipt.Status),
	}
	if tx.To != nil {
		data.To = strings.ToLower(tx.To.Hex())
	}
	if tx.Value != nil {
		data.Value = tx.Value.ToInt().String()
	}

	data.Logs = make([]model.EventLog, 0, len(receipt.Logs))
	for _, log := range receipt.Logs {
		data.Logs = append(data.Logs, buildEventLog(log))
	}

	calls, err := c.traceInternalCalls(ctx, txHash)
	if err != nil {
		logger.Debug("trace unavailable, native internal calls omitted",
			zap.String("tx", txHash), zap.Error(err))
	} else {
		data.InternalCalls = calls
	}

	return data, nil
}

func buildEventLog(log rpcLog) model.EventLog {
	record := model.EventLog{
		Address:  strings.ToLower(log.Address.Hex()),
		Data:     hexutil.Encode(log.Data),
		LogIndex: uint64(log.LogIndex),
	}
	topics := make([]string, 4)
	for i, topic := range log.Topics {
		if i > 3 {
			break
		}
		topics[i] = strings.ToLower(topic.Hex())
	}
	record.Topic0, record.Topic1, record.Topic2, record.Topic3 = topics[0], topics[1], topics[2], topics[3]
	return record
}

func (c *Client) traceInternalCalls(ctx context.Context, txHash string) ([]model.InternalCall, error) {
	var root callFrame
	err := c.rpcClient.CallContext(ctx, &root, "debug_traceTransaction", txHash,
		map[string]interface{}{"tracer": "callTracer"})
	if err != nil {
		return nil, err
	}

	var calls []model.InternalCall
	var walk func(frame callFrame, depth int)
	walk = func(frame callFrame, depth int) {
		// The root frame is the top-level call; its value is already carried
		// on the transaction envelope.
		if depth > 0 && frame.Type == "CALL" && frame.To != "" {
			value := "0"
			if frame.Value != "" {
				if parsed, ok := new(big.Int).SetString(strings.TrimPrefix(frame.Value, "0x"), 16); ok {
					value = parsed.String()
				}
			}
			calls = append(calls, model.InternalCall{
				From:  strings.ToLower(frame.From),
				To:    strings.ToLower(frame.To),
				Value: value,
			})
		}
		for _, child := range frame.Calls {
			walk(child, depth+1)
		}
	}
	walk(root, 0)

	return calls, nil
}

// FetchFromEndpoints tries each RPC endpoint in order until one yields the
// transaction. The client that answered is returned open so follow-up calls
// (token metadata lookups) hit the same endpoint; the caller closes it.
func FetchFromEndpoints(ctx context.Context, endpoints []string, txHash string, logger *zap.Logger) (TransactionData, *Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(endpoints) == 0 {
		return TransactionData{}, nil, fmt.Errorf("no rpc endpoints configured")
	}

	var lastErr error
	for _, endpoint := range endpoints {
		client, err := NewClient(ctx, endpoint)
		if err != nil {
			logger.Warn("rpc dial failed", zap.String("endpoint", endpoint), zap.Error(err))
			lastErr = err
			continue
		}

		data, err := client.FetchTransaction(ctx, txHash, logger)
		if err != nil {
			client.Close()
			logger.Warn("fetch failed, trying next endpoint",
				zap.String("endpoint", endpoint), zap.Error(err))
			lastErr = err
			continue
		}
		return data, client, nil
	}

	return TransactionData{}, nil, fmt.Errorf("all rpc endpoints failed: %w", lastErr)
}
