package metadata

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"txflow/internal/chain"
	"txflow/internal/model"
)

// Token metadata collaborator: resolves ERC-20 name/symbol/decimals via
// eth_call, with an explicit injected cache so repeated lookups within and
// across transactions stay cheap. Tokens whose calls fail resolve to an
// unknown-token record with 18 decimals; the failure never propagates.

const (
	unknownName     = "Unknown"
	unknownSymbol   = "???"
	defaultDecimals = 18
)

// Cache caches token metadata by lowercase address.
type Cache struct {
	mu   sync.RWMutex
	data map[string]model.TokenMetadata
}

func NewCache() *Cache {
	return &Cache{data: make(map[string]model.TokenMetadata)}
}

func (c *Cache) Get(address string) (model.TokenMetadata, bool) {
	c.mu.RLock()
	meta, ok := c.data[strings.ToLower(address)]
	c.mu.RUnlock()
	return meta, ok
}

func (c *Cache) Set(address string, meta model.TokenMetadata) {
	c.mu.Lock()
	c.data[strings.ToLower(address)] = meta
	c.mu.Unlock()
}

// Service resolves token metadata from chain through a cache.
type Service struct {
	client *chain.Client
	cache  *Cache
	logger *zap.Logger
}

func NewService(client *chain.Client, cache *Cache, logger *zap.Logger) *Service {
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, cache: cache, logger: logger}
}

// TokenMetadata returns the metadata record for a token address. Negative
// results are cached too, so a broken token costs one round of calls.
func (s *Service) TokenMetadata(ctx context.Context, address string) model.TokenMetadata {
	if meta, ok := s.cache.Get(address); ok {
		return meta
	}

	meta, err := s.fetch(ctx, address)
	if err != nil {
		s.logger.Warn("token metadata fetch failed, using fallback",
			zap.String("token", address), zap.Error(err))
		meta = fallbackRecord(address)
	}
	s.cache.Set(address, meta)
	return meta
}

func fallbackRecord(address string) model.TokenMetadata {
	return model.TokenMetadata{
		Address:  strings.ToLower(address),
		Name:     unknownName,
		Symbol:   unknownSymbol,
		Decimals: defaultDecimals,
	}
}

func (s *Service) fetch(ctx context.Context, address string) (model.TokenMetadata, error) {
	if s.client == nil {
		return model.TokenMetadata{}, fmt.Errorf("chain client is nil")
	}

	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return model.TokenMetadata{}, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return model.TokenMetadata{}, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	token := common.HexToAddress(address)
	call := func(method string, parsed abi.ABI) ([]interface{}, error) {
		data, err := parsed.Pack(method)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", method, err)
		}
		msg := ethereum.CallMsg{To: &token, Data: data}
		resp, err := s.client.CallContract(ctx, msg, nil)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", method, err)
		}
		values, err := parsed.Unpack(method, resp)
		if err != nil {
			return nil, fmt.Errorf("unpack %s: %w", method, err)
		}
		return values, nil
	}

	meta := fallbackRecord(address)

	values, err := call("decimals", stringABI)
	if err != nil {
		return meta, err
	}
	if decimals, ok := values[0].(uint8); ok {
		meta.Decimals = decimals
	}

	// Some old tokens return bytes32 instead of string for symbol and name.
	if values, err := call("symbol", stringABI); err == nil {
		if symbol, ok := values[0].(string); ok {
			meta.Symbol = symbol
		}
	} else if values, err := call("symbol", bytes32ABI); err == nil {
		if symbol, ok := bytes32ToString(values[0]); ok {
			meta.Symbol = symbol
		}
	} else {
		s.logger.Debug("symbol call failed", zap.String("token", address), zap.Error(err))
	}

	if values, err := call("name", stringABI); err == nil {
		if name, ok := values[0].(string); ok {
			meta.Name = name
		}
	} else if values, err := call("name", bytes32ABI); err == nil {
		if name, ok := bytes32ToString(values[0]); ok {
			meta.Name = name
		}
	} else {
		s.logger.Debug("name call failed", zap.String("token", address), zap.Error(err))
	}

	return meta, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}
