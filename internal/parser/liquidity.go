package parser

import "txflow/internal/model"

// LiquidityResult is the output of the liquidity detector.
type LiquidityResult struct {
	Operations             []model.Operation
	ClaimedTransferIndices []int
	ClaimedNativeTransfers []model.NativeClaim
}

// DetectLiquidity finds Uniswap v2/v3 liquidity operations: v3 position
// increases/decreases and standalone fee collections at the position
// manager, plus v2 pair mints and burns. A collect anchor sharing its
// position id with a decrease anchor is folded into the remove operation
// rather than reported standalone.
func DetectLiquidity(
	logs []model.EventLog,
	transfers []model.TokenTransfer,
	nativeTransfers []model.NativeTransfer,
	txFrom string,
) LiquidityResult {
	result := LiquidityResult{}

	// v3 removes first: their position ids suppress standalone collects.
	removeUsed, decreaseIDs := detectV3RemoveLiquidity(logs, transfers, nativeTransfers, &result)
	detectV3CollectFees(logs, transfers, nativeTransfers, decreaseIDs, removeUsed, &result)
	detectV3AddLiquidity(logs, transfers, nativeTransfers, txFrom, &result)
	detectV2AddLiquidity(logs, transfers, nativeTransfers, txFrom, &result)
	detectV2RemoveLiquidity(logs, transfers, nativeTransfers, txFrom, &result)

	return result
}

func liquidityTokenFromTransfer(t model.TokenTransfer, isNative bool) model.LiquidityToken {
	token := model.LiquidityToken{
		Address:  t.TokenAddress,
		Symbol:   t.TokenSymbol,
		Name:     t.TokenName,
		Logo:     t.TokenLogo,
		Decimals: t.Decimals,
		Amount:   t.Amount,
	}
	if isNative {
		token.Symbol = nativeSymbol
		token.Name = nativeName
		token.Logo = ""
		token.IsNative = true
	}
	return token
}

// placeholderToken fills a token slot that could not be resolved; a
// liquidity operation always reports exactly two slots.
func placeholderToken() model.LiquidityToken {
	return model.LiquidityToken{
		Address:  zeroAddress,
		Symbol:   unknownSymbol,
		Name:     unknownName,
		Decimals: defaultDecimals,
		Amount:   "0",
	}
}

// nearestLogByTopic locates the log with the given topic0 closest to the
// anchor position, in either direction.
func nearestLogByTopic(logs []model.EventLog, topic0 string, anchorLogIndex uint64) (model.EventLog, bool) {
	best := -1
	var bestDist uint64
	for i, log := range logs {
		if !sameAddr(log.Topic0, topic0) {
			continue
		}
		dist := logIndexDistance(log.LogIndex, anchorLogIndex)
		if best == -1 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	if best == -1 {
		return model.EventLog{}, false
	}
	return logs[best], true
}

// findRouterNativeIn locates a native transfer from the origin account into
// a recognized router, backing a WETH deposit made on the user's behalf.
func findRouterNativeIn(nativeTransfers []model.NativeTransfer, txFrom string) (model.NativeTransfer, bool) {
	for _, nt := range nativeTransfers {
		if sameAddr(nt.From, txFrom) && isKnownRouter(nt.To) {
			return nt, true
		}
	}
	return model.NativeTransfer{}, false
}

func detectV3AddLiquidity(
	logs []model.EventLog,
	transfers []model.TokenTransfer,
	nativeTransfers []model.NativeTransfer,
	txFrom string,
	result *LiquidityResult,
) {
	used := newIndexSet()

	for _, log := range logs {
		if !sameAddr(log.Topic0, v3IncreaseLiquidityTopic0) || !sameAddr(log.Address, uniswapV3PositionManager) {
			continue
		}
		anchor := log.LogIndex

		mintLog, ok := nearestLogByTopic(logs, v3PoolMintTopic0, anchor)
		if !ok {
			continue
		}
		pool := lower(mintLog.Address)

		token0Match, have0 := findClosestTransfer(transfers, anchor, matchBefore, used,
			func(t model.TokenTransfer) bool { return sameAddr(t.To, pool) })

		var token1Match transferMatch
		have1 := false
		if have0 {
			exclude := used.clone()
			exclude.add(token0Match.index)
			token1Match, have1 = findClosestTransfer(transfers, anchor, matchBefore, exclude,
				func(t model.TokenTransfer) bool {
					return sameAddr(t.To, pool) && !sameAddr(t.TokenAddress, token0Match.transfer.TokenAddress)
				})
		}

		if !have0 && !have1 {
			continue
		}

		// Two-sided adds verify the pool from the token pair; one-sided adds
		// rest on the position-manager address check alone.
		if have0 && have1 {
			if !verifyV3Pool(pool, token0Match.transfer.TokenAddress, token1Match.transfer.TokenAddress) {
				continue
			}
		}

		provider := lower(token0Match.transfer.From)
		if !have0 {
			provider = lower(token1Match.transfer.From)
		}

		token0IsNative, token1IsNative := false, false
		if have0 && sameAddr(token0Match.transfer.TokenAddress, wethAddress) {
			if nt, found := findRouterNativeIn(nativeTransfers, txFrom); found {
				token0IsNative = true
				result.ClaimedNativeTransfers = append(result.ClaimedNativeTransfers,
					model.NativeClaim{From: nt.From, To: nt.To, Value: nt.Amount})
			}
		}
		if have1 && sameAddr(token1Match.transfer.TokenAddress, wethAddress) && !token0IsNative {
			if nt, found := findRouterNativeIn(nativeTransfers, txFrom); found {
				token1IsNative = true
				result.ClaimedNativeTransfers = append(result.ClaimedNativeTransfers,
					model.NativeClaim{From: nt.From, To: nt.To, Value: nt.Amount})
			}
		}

		t0, t1 := placeholderToken(), placeholderToken()
		if have0 {
			t0 = liquidityTokenFromTransfer(token0Match.transfer, token0IsNative)
		}
		if have1 {
			t1 = liquidityTokenFromTransfer(token1Match.transfer, token1IsNative)
		}

		result.Operations = append(result.Operations, model.UniswapAddLiquidityOperation{
			Type:     model.OpUniswapAddLiquidity,
			LogIndex: anchor,
			Version:  "v3",
			Token0:   t0,
			Token1:   t1,
			Provider: provider,
		})

		if have0 {
			used.add(token0Match.index)
			result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, token0Match.index)
		}
		if have1 {
			used.add(token1Match.index)
			result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, token1Match.index)
		}
	}
}

func detectV3RemoveLiquidity(
	logs []model.EventLog,
	transfers []model.TokenTransfer,
	nativeTransfers []model.NativeTransfer,
	result *LiquidityResult,
) (indexSet, map[string]struct{}) {
	used := newIndexSet()
	decreaseIDs := make(map[string]struct{})

	for _, log := range logs {
		if !sameAddr(log.Topic0, v3DecreaseLiquidityTopic0) || !sameAddr(log.Address, uniswapV3PositionManager) {
			continue
		}
		anchor := log.LogIndex
		decreaseIDs[lower(log.Topic1)] = struct{}{}

		burnLog, ok := nearestLogByTopic(logs, v3PoolBurnTopic0, anchor)
		if !ok {
			continue
		}
		pool := lower(burnLog.Address)

		// Pool pays the position manager, which pays the recipient. Both
		// legs are claimed; only the manager→recipient leg is displayed.
		poolToMgr0, havePool0 := findClosestTransfer(transfers, anchor, matchAfter, used,
			func(t model.TokenTransfer) bool {
				return sameAddr(t.From, pool) && sameAddr(t.To, uniswapV3PositionManager)
			})
		var poolToMgr1 transferMatch
		havePool1 := false
		if havePool0 {
			exclude := used.clone()
			exclude.add(poolToMgr0.index)
			poolToMgr1, havePool1 = findClosestTransfer(transfers, anchor, matchAfter, exclude,
				func(t model.TokenTransfer) bool {
					return sameAddr(t.From, pool) && sameAddr(t.To, uniswapV3PositionManager) &&
						!sameAddr(t.TokenAddress, poolToMgr0.transfer.TokenAddress)
				})
		}

		mgrToUser0, haveUser0 := findClosestTransfer(transfers, anchor, matchAfter, used,
			func(t model.TokenTransfer) bool {
				return sameAddr(t.From, uniswapV3PositionManager) && !sameAddr(t.To, pool)
			})
		var mgrToUser1 transferMatch
		haveUser1 := false
		if haveUser0 {
			exclude := used.clone()
			exclude.add(mgrToUser0.index)
			mgrToUser1, haveUser1 = findClosestTransfer(transfers, anchor, matchAfter, exclude,
				func(t model.TokenTransfer) bool {
					return sameAddr(t.From, uniswapV3PositionManager) && !sameAddr(t.To, pool) &&
						!sameAddr(t.TokenAddress, mgrToUser0.transfer.TokenAddress)
				})
		}

		if !haveUser0 {
			continue
		}

		if havePool0 && havePool1 {
			if !verifyV3Pool(pool, poolToMgr0.transfer.TokenAddress, poolToMgr1.transfer.TokenAddress) {
				continue
			}
		}

		recipient := lower(mgrToUser0.transfer.To)

		token0IsNative, token1IsNative := false, false
		if sameAddr(mgrToUser0.transfer.TokenAddress, wethAddress) {
			if nt, found := findManagerNativeOut(nativeTransfers, recipient); found {
				token0IsNative = true
				result.ClaimedNativeTransfers = append(result.ClaimedNativeTransfers,
					model.NativeClaim{From: nt.From, To: nt.To, Value: nt.Amount})
			}
		}
		if haveUser1 && sameAddr(mgrToUser1.transfer.TokenAddress, wethAddress) && !token0IsNative {
			if nt, found := findManagerNativeOut(nativeTransfers, recipient); found {
				token1IsNative = true
				result.ClaimedNativeTransfers = append(result.ClaimedNativeTransfers,
					model.NativeClaim{From: nt.From, To: nt.To, Value: nt.Amount})
			}
		}

		t0 := liquidityTokenFromTransfer(mgrToUser0.transfer, token0IsNative)
		t1 := placeholderToken()
		if haveUser1 {
			t1 = liquidityTokenFromTransfer(mgrToUser1.transfer, token1IsNative)
		}

		result.Operations = append(result.Operations, model.UniswapRemoveLiquidityOperation{
			Type:      model.OpUniswapRemoveLiquidity,
			LogIndex:  anchor,
			Version:   "v3",
			Token0:    t0,
			Token1:    t1,
			Recipient: recipient,
		})

		for _, m := range []struct {
			match transferMatch
			have  bool
		}{{mgrToUser0, haveUser0}, {mgrToUser1, haveUser1}, {poolToMgr0, havePool0}, {poolToMgr1, havePool1}} {
			if m.have {
				used.add(m.match.index)
				result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, m.match.index)
			}
		}
	}

	return used, decreaseIDs
}

// findManagerNativeOut locates a native transfer from the position manager
// to the recipient, i.e. a WETH leg unwrapped before delivery.
func findManagerNativeOut(nativeTransfers []model.NativeTransfer, recipient string) (model.NativeTransfer, bool) {
	for _, nt := range nativeTransfers {
		if sameAddr(nt.To, recipient) && sameAddr(nt.From, uniswapV3PositionManager) {
			return nt, true
		}
	}
	return model.NativeTransfer{}, false
}

// collectWindow bounds how far from a collect anchor the pool→manager
// sweep transfers may sit.
const collectWindow = 5

func detectV3CollectFees(
	logs []model.EventLog,
	transfers []model.TokenTransfer,
	nativeTransfers []model.NativeTransfer,
	decreaseIDs map[string]struct{},
	alreadyUsed indexSet,
	result *LiquidityResult,
) {
	used := alreadyUsed.clone()

	for _, log := range logs {
		if !sameAddr(log.Topic0, v3ManagerCollectTopic0) || !sameAddr(log.Address, uniswapV3PositionManager) {
			continue
		}
		// A collect on a position that also decreased is that remove
		// operation's fee sweep, not a standalone collect.
		if _, ok := decreaseIDs[lower(log.Topic1)]; ok {
			continue
		}
		anchor := log.LogIndex

		mgrToUser0, haveUser0 := findClosestTransfer(transfers, anchor, matchAfter, used,
			func(t model.TokenTransfer) bool { return sameAddr(t.From, uniswapV3PositionManager) })
		var mgrToUser1 transferMatch
		haveUser1 := false
		if haveUser0 {
			exclude := used.clone()
			exclude.add(mgrToUser0.index)
			mgrToUser1, haveUser1 = findClosestTransfer(transfers, anchor, matchAfter, exclude,
				func(t model.TokenTransfer) bool {
					return sameAddr(t.From, uniswapV3PositionManager) &&
						!sameAddr(t.TokenAddress, mgrToUser0.transfer.TokenAddress)
				})
		}

		if !haveUser0 {
			continue
		}

		// Sweep legs into the manager around the anchor are consumed too.
		var poolToMgr []transferMatch
		for i, t := range transfers {
			if used.has(i) {
				continue
			}
			if !sameAddr(t.To, uniswapV3PositionManager) || sameAddr(t.From, uniswapV3PositionManager) {
				continue
			}
			if logIndexDistance(t.LogIndex, anchor) <= collectWindow {
				poolToMgr = append(poolToMgr, transferMatch{index: i, transfer: t})
			}
		}

		collector := lower(mgrToUser0.transfer.To)

		token0IsNative, token1IsNative := false, false
		if sameAddr(mgrToUser0.transfer.TokenAddress, wethAddress) {
			if nt, found := findManagerNativeOut(nativeTransfers, collector); found {
				token0IsNative = true
				result.ClaimedNativeTransfers = append(result.ClaimedNativeTransfers,
					model.NativeClaim{From: nt.From, To: nt.To, Value: nt.Amount})
			}
		}
		if haveUser1 && sameAddr(mgrToUser1.transfer.TokenAddress, wethAddress) && !token0IsNative {
			if nt, found := findManagerNativeOut(nativeTransfers, collector); found {
				token1IsNative = true
				result.ClaimedNativeTransfers = append(result.ClaimedNativeTransfers,
					model.NativeClaim{From: nt.From, To: nt.To, Value: nt.Amount})
			}
		}

		t0 := liquidityTokenFromTransfer(mgrToUser0.transfer, token0IsNative)
		t1 := placeholderToken()
		if haveUser1 {
			t1 = liquidityTokenFromTransfer(mgrToUser1.transfer, token1IsNative)
		}

		result.Operations = append(result.Operations, model.UniswapCollectFeesOperation{
			Type:      model.OpUniswapCollectFees,
			LogIndex:  anchor,
			Version:   "v3",
			Token0:    t0,
			Token1:    t1,
			Collector: collector,
		})

		used.add(mgrToUser0.index)
		result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, mgrToUser0.index)
		if haveUser1 {
			used.add(mgrToUser1.index)
			result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, mgrToUser1.index)
		}
		for _, m := range poolToMgr {
			used.add(m.index)
			result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, m.index)
		}
	}
}

func detectV2AddLiquidity(
	logs []model.EventLog,
	transfers []model.TokenTransfer,
	nativeTransfers []model.NativeTransfer,
	txFrom string,
	result *LiquidityResult,
) {
	used := newIndexSet()

	for _, log := range logs {
		if !sameAddr(log.Topic0, v2PairMintTopic0) {
			continue
		}
		pair := lower(log.Address)
		anchor := log.LogIndex

		token0Match, have0 := findClosestTransfer(transfers, anchor, matchBefore, used,
			func(t model.TokenTransfer) bool {
				return sameAddr(t.To, pair) && !sameAddr(t.From, zeroAddress)
			})
		if !have0 {
			continue
		}

		exclude := used.clone()
		exclude.add(token0Match.index)
		token1Match, have1 := findClosestTransfer(transfers, anchor, matchBefore, exclude,
			func(t model.TokenTransfer) bool {
				return sameAddr(t.To, pair) && !sameAddr(t.From, zeroAddress) &&
					!sameAddr(t.TokenAddress, token0Match.transfer.TokenAddress)
			})
		// A single token cannot verify the pair address; skip.
		if !have1 {
			continue
		}
		if !verifyV2Pair(pair, token0Match.transfer.TokenAddress, token1Match.transfer.TokenAddress) {
			continue
		}

		lpMint, haveLPMint := findClosestTransfer(transfers, anchor, matchAfter, used,
			func(t model.TokenTransfer) bool {
				return sameAddr(t.From, zeroAddress) && sameAddr(t.TokenAddress, pair)
			})

		provider := lower(token0Match.transfer.From)

		token0IsNative, token1IsNative := false, false
		if sameAddr(token0Match.transfer.TokenAddress, wethAddress) {
			if nt, found := findRouterNativeIn(nativeTransfers, txFrom); found {
				token0IsNative = true
				result.ClaimedNativeTransfers = append(result.ClaimedNativeTransfers,
					model.NativeClaim{From: nt.From, To: nt.To, Value: nt.Amount})
			}
		}
		if sameAddr(token1Match.transfer.TokenAddress, wethAddress) && !token0IsNative {
			if nt, found := findRouterNativeIn(nativeTransfers, txFrom); found {
				token1IsNative = true
				result.ClaimedNativeTransfers = append(result.ClaimedNativeTransfers,
					model.NativeClaim{From: nt.From, To: nt.To, Value: nt.Amount})
			}
		}

		result.Operations = append(result.Operations, model.UniswapAddLiquidityOperation{
			Type:     model.OpUniswapAddLiquidity,
			LogIndex: anchor,
			Version:  "v2",
			Token0:   liquidityTokenFromTransfer(token0Match.transfer, token0IsNative),
			Token1:   liquidityTokenFromTransfer(token1Match.transfer, token1IsNative),
			Provider: provider,
		})

		used.add(token0Match.index)
		result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, token0Match.index)
		used.add(token1Match.index)
		result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, token1Match.index)
		if haveLPMint {
			used.add(lpMint.index)
			result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, lpMint.index)
		}
	}
}

func detectV2RemoveLiquidity(
	logs []model.EventLog,
	transfers []model.TokenTransfer,
	nativeTransfers []model.NativeTransfer,
	txFrom string,
	result *LiquidityResult,
) {
	used := newIndexSet()

	for _, log := range logs {
		if !sameAddr(log.Topic0, v2PairBurnTopic0) {
			continue
		}
		pair := lower(log.Address)
		anchor := log.LogIndex

		pairToUser0, have0 := findClosestTransfer(transfers, anchor, matchAfter, used,
			func(t model.TokenTransfer) bool {
				return sameAddr(t.From, pair) && !sameAddr(t.To, zeroAddress)
			})
		if !have0 {
			continue
		}

		exclude := used.clone()
		exclude.add(pairToUser0.index)
		pairToUser1, have1 := findClosestTransfer(transfers, anchor, matchAfter, exclude,
			func(t model.TokenTransfer) bool {
				return sameAddr(t.From, pair) && !sameAddr(t.To, zeroAddress) &&
					!sameAddr(t.TokenAddress, pairToUser0.transfer.TokenAddress)
			})
		if !have1 {
			continue
		}
		if !verifyV2Pair(pair, pairToUser0.transfer.TokenAddress, pairToUser1.transfer.TokenAddress) {
			continue
		}

		lpBurn, haveLPBurn := findClosestTransfer(transfers, anchor, matchBefore, used,
			func(t model.TokenTransfer) bool {
				return (sameAddr(t.To, zeroAddress) || sameAddr(t.To, pair)) && sameAddr(t.TokenAddress, pair)
			})

		effectiveRecipient := lower(pairToUser0.transfer.To)

		// When the pair pays a router, WETH legs are unwrapped before
		// reaching the user; consume the router→origin native transfer.
		token0IsNative, token1IsNative := false, false
		if isKnownRouter(effectiveRecipient) {
			if sameAddr(pairToUser0.transfer.TokenAddress, wethAddress) {
				if nt, found := findRouterNativeOut(nativeTransfers, effectiveRecipient, txFrom); found {
					token0IsNative = true
					result.ClaimedNativeTransfers = append(result.ClaimedNativeTransfers,
						model.NativeClaim{From: nt.From, To: nt.To, Value: nt.Amount})
				}
			}
			if sameAddr(pairToUser1.transfer.TokenAddress, wethAddress) && !token0IsNative {
				if nt, found := findRouterNativeOut(nativeTransfers, effectiveRecipient, txFrom); found {
					token1IsNative = true
					result.ClaimedNativeTransfers = append(result.ClaimedNativeTransfers,
						model.NativeClaim{From: nt.From, To: nt.To, Value: nt.Amount})
				}
			}
		}

		recipient := effectiveRecipient
		if token0IsNative || token1IsNative {
			recipient = lower(txFrom)
		}

		result.Operations = append(result.Operations, model.UniswapRemoveLiquidityOperation{
			Type:      model.OpUniswapRemoveLiquidity,
			LogIndex:  anchor,
			Version:   "v2",
			Token0:    liquidityTokenFromTransfer(pairToUser0.transfer, token0IsNative),
			Token1:    liquidityTokenFromTransfer(pairToUser1.transfer, token1IsNative),
			Recipient: recipient,
		})

		used.add(pairToUser0.index)
		result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, pairToUser0.index)
		used.add(pairToUser1.index)
		result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, pairToUser1.index)
		if haveLPBurn {
			used.add(lpBurn.index)
			result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, lpBurn.index)
		}
	}
}

func findRouterNativeOut(nativeTransfers []model.NativeTransfer, router, txFrom string) (model.NativeTransfer, bool) {
	for _, nt := range nativeTransfers {
		if sameAddr(nt.From, router) && sameAddr(nt.To, txFrom) {
			return nt, true
		}
	}
	return model.NativeTransfer{}, false
}
