package parser

import (
	"context"

	"txflow/internal/model"
)

// MetadataLookup is the external collaborator boundary for token metadata.
// Implementations must return a usable record for every address, falling
// back to the unknown-token record rather than failing the whole batch for
// one bad address.
type MetadataLookup interface {
	TokenMetadata(ctx context.Context, address string) model.TokenMetadata
}

// MetadataLookupFunc adapts a function to the MetadataLookup interface.
type MetadataLookupFunc func(ctx context.Context, address string) model.TokenMetadata

func (f MetadataLookupFunc) TokenMetadata(ctx context.Context, address string) model.TokenMetadata {
	return f(ctx, address)
}

// FallbackMetadata is the unknown-token record for an address.
func FallbackMetadata(address string) model.TokenMetadata {
	return model.TokenMetadata{
		Address:  lower(address),
		Name:     unknownName,
		Symbol:   unknownSymbol,
		Decimals: defaultDecimals,
	}
}

// EnrichTransfers attaches token metadata to each plain transfer, producing
// the working set the detectors operate on. Each distinct token address is
// looked up once.
func EnrichTransfers(ctx context.Context, plain []model.PlainTransfer, lookup MetadataLookup) []model.TokenTransfer {
	metaByAddr := make(map[string]model.TokenMetadata)
	enriched := make([]model.TokenTransfer, 0, len(plain))

	for _, t := range plain {
		key := lower(t.TokenAddress)
		meta, ok := metaByAddr[key]
		if !ok {
			if lookup != nil {
				meta = lookup.TokenMetadata(ctx, t.TokenAddress)
			} else {
				meta = FallbackMetadata(t.TokenAddress)
			}
			metaByAddr[key] = meta
		}

		enriched = append(enriched, model.TokenTransfer{
			From:         t.From,
			To:           t.To,
			TokenAddress: t.TokenAddress,
			TokenName:    meta.Name,
			TokenSymbol:  meta.Symbol,
			TokenLogo:    meta.Logo,
			Amount:       t.Value,
			Decimals:     meta.Decimals,
			LogIndex:     t.LogIndex,
		})
	}

	return enriched
}
