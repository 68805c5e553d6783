package parser

import "txflow/internal/model"

// SwapResult is the output of the swap detector.
type SwapResult struct {
	Operations             []model.Operation
	ClaimedTransferIndices []int
	ClaimedNativeTransfers []model.NativeClaim
}

// rawSwapEvent is one verified-or-pending swap anchor.
type rawSwapEvent struct {
	version   string
	pool      string
	sender    string
	recipient string
	logIndex  uint64
}

// DetectSwaps finds Uniswap v2/v3/v4 swap anchors, verifies their pools,
// groups router-mediated hops into logical swaps, and resolves each group's
// net input and output transfer. Groups lacking a resolvable input or
// output contribute nothing; partial swaps are never reported.
func DetectSwaps(
	logs []model.EventLog,
	transfers []model.TokenTransfer,
	nativeTransfers []model.NativeTransfer,
	txFrom string,
) SwapResult {
	events := collectSwapEvents(logs, txFrom)
	if len(events) == 0 {
		return SwapResult{}
	}

	verified := verifySwapEvents(events, transfers)
	if len(verified) == 0 {
		return SwapResult{}
	}

	participants := make(map[string]struct{})
	for _, event := range verified {
		participants[event.pool] = struct{}{}
		if isKnownRouter(event.sender) {
			participants[lower(event.sender)] = struct{}{}
		}
	}

	result := SwapResult{}
	for _, group := range groupSwapEvents(verified) {
		op, claimed, natives, ok := buildSwapOperation(group, transfers, nativeTransfers, participants, txFrom)
		if !ok {
			continue
		}
		result.Operations = append(result.Operations, op)
		result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, claimed...)
		result.ClaimedNativeTransfers = append(result.ClaimedNativeTransfers, natives...)
	}
	return result
}

func collectSwapEvents(logs []model.EventLog, txFrom string) []rawSwapEvent {
	var events []rawSwapEvent
	for _, log := range logs {
		switch lower(log.Topic0) {
		case uniswapV3SwapTopic0:
			if log.Topic1 == "" || log.Topic2 == "" {
				continue
			}
			events = append(events, rawSwapEvent{
				version:   "v3",
				pool:      lower(log.Address),
				sender:    addressFromTopic(log.Topic1),
				recipient: addressFromTopic(log.Topic2),
				logIndex:  log.LogIndex,
			})
		case uniswapV2SwapTopic0:
			if log.Topic1 == "" || log.Topic2 == "" {
				continue
			}
			events = append(events, rawSwapEvent{
				version:   "v2",
				pool:      lower(log.Address),
				sender:    addressFromTopic(log.Topic1),
				recipient: addressFromTopic(log.Topic2),
				logIndex:  log.LogIndex,
			})
		case uniswapV4SwapTopic0:
			// v4 is flat accounting on one singleton; the pool identity
			// lives in a topic and the recipient is the transaction origin.
			if !sameAddr(log.Address, uniswapV4PoolManager) || log.Topic2 == "" {
				continue
			}
			events = append(events, rawSwapEvent{
				version:   "v4",
				pool:      uniswapV4PoolManager,
				sender:    addressFromTopic(log.Topic2),
				recipient: lower(txFrom),
				logIndex:  log.LogIndex,
			})
		}
	}
	return events
}

// verifySwapEvents keeps anchors whose pool address survives CREATE2
// recomputation. Router-sent anchors and the v4 singleton are trusted
// outright; everything else failing verification is a fork and is dropped.
func verifySwapEvents(events []rawSwapEvent, transfers []model.TokenTransfer) []rawSwapEvent {
	var verified []rawSwapEvent
	for _, event := range events {
		if event.version == "v4" || isKnownRouter(event.sender) {
			verified = append(verified, event)
			continue
		}

		tokens := tokensTouchingPool(event.pool, transfers)
		if len(tokens) < 2 {
			continue
		}

		switch event.version {
		case "v2":
			if verifyV2Pair(event.pool, tokens[0], tokens[1]) {
				verified = append(verified, event)
			}
		case "v3":
			if verifyV3Pool(event.pool, tokens[0], tokens[1]) {
				verified = append(verified, event)
			}
		}
	}
	return verified
}

// tokensTouchingPool lists the distinct token addresses transferred into or
// out of a pool, in first-seen order.
func tokensTouchingPool(pool string, transfers []model.TokenTransfer) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, t := range transfers {
		if !sameAddr(t.From, pool) && !sameAddr(t.To, pool) {
			continue
		}
		key := lower(t.TokenAddress)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tokens = append(tokens, key)
	}
	return tokens
}

// groupSwapEvents merges consecutive anchors sharing a recognized router
// into one multi-hop group; anchors without a router sender stand alone.
func groupSwapEvents(events []rawSwapEvent) [][]rawSwapEvent {
	routerIndex := make(map[string]int)
	var routerGroups [][]rawSwapEvent
	var directGroups [][]rawSwapEvent

	for _, event := range events {
		if isKnownRouter(event.sender) {
			key := lower(event.sender)
			idx, ok := routerIndex[key]
			if !ok {
				idx = len(routerGroups)
				routerIndex[key] = idx
				routerGroups = append(routerGroups, nil)
			}
			routerGroups[idx] = append(routerGroups[idx], event)
		} else {
			directGroups = append(directGroups, []rawSwapEvent{event})
		}
	}

	groups := append(routerGroups, directGroups...)
	for _, group := range groups {
		sortSwapGroup(group)
	}
	return groups
}

func sortSwapGroup(group []rawSwapEvent) {
	for i := 1; i < len(group); i++ {
		for j := i; j > 0 && group[j-1].logIndex > group[j].logIndex; j-- {
			group[j-1], group[j] = group[j], group[j-1]
		}
	}
}

func buildSwapOperation(
	group []rawSwapEvent,
	transfers []model.TokenTransfer,
	nativeTransfers []model.NativeTransfer,
	participants map[string]struct{},
	txFrom string,
) (model.UniswapSwapOperation, []int, []model.NativeClaim, bool) {
	txFromLower := lower(txFrom)
	isParticipant := func(addr string) bool {
		_, ok := participants[lower(addr)]
		return ok
	}

	var matched []transferMatch
	var matchedIndices []int
	for i, t := range transfers {
		if isParticipant(t.From) || isParticipant(t.To) {
			matched = append(matched, transferMatch{index: i, transfer: t})
			matchedIndices = append(matchedIndices, i)
		}
	}
	if len(matched) == 0 {
		return model.UniswapSwapOperation{}, nil, nil, false
	}

	findMatch := func(pred func(model.TokenTransfer) bool) *transferMatch {
		for i := range matched {
			if pred(matched[i].transfer) {
				return &matched[i]
			}
		}
		return nil
	}

	// Net input: the origin account sends a token into a swap participant.
	inputTransfer := findMatch(func(t model.TokenTransfer) bool {
		return sameAddr(t.From, txFromLower) && isParticipant(t.To)
	})
	if inputTransfer == nil {
		inputTransfer = findMatch(func(t model.TokenTransfer) bool {
			return sameAddr(t.From, txFromLower)
		})
	}

	// Native input wrapped at the router: the router wraps ETH and forwards
	// WETH to the pool, so the visible input leg is router→pool. Accept it
	// when a native transfer origin→router backs it.
	if inputTransfer == nil {
		wethFromRouter := findMatch(func(t model.TokenTransfer) bool {
			return sameAddr(t.TokenAddress, wethAddress) && isKnownRouter(t.From) && isParticipant(t.To)
		})
		if wethFromRouter != nil {
			for _, nt := range nativeTransfers {
				if sameAddr(nt.From, txFromLower) && sameAddr(nt.To, wethFromRouter.transfer.From) {
					inputTransfer = wethFromRouter
					break
				}
			}
		}
	}

	// Last resort for input: pure native settlement with no WETH leg at all.
	var pureNativeInput *model.NativeTransfer
	if inputTransfer == nil {
		for i := range nativeTransfers {
			nt := nativeTransfers[i]
			if sameAddr(nt.From, txFromLower) && isParticipant(nt.To) {
				pureNativeInput = &nt
				break
			}
		}
	}

	lastEvent := group[len(group)-1]
	outputTransfer := findMatch(func(t model.TokenTransfer) bool {
		return sameAddr(t.To, txFromLower) && isParticipant(t.From)
	})
	if outputTransfer == nil && !sameAddr(lastEvent.recipient, txFromLower) {
		outputTransfer = findMatch(func(t model.TokenTransfer) bool {
			return sameAddr(t.To, lastEvent.recipient)
		})
	}

	if inputTransfer == nil && pureNativeInput == nil && outputTransfer == nil {
		return model.UniswapSwapOperation{}, nil, nil, false
	}

	var nativeClaims []model.NativeClaim
	inputIsNative := false
	outputIsNative := false
	var nativeInputAmount, nativeOutputAmount string

	if inputTransfer != nil && sameAddr(inputTransfer.transfer.TokenAddress, wethAddress) {
		for _, nt := range nativeTransfers {
			if sameAddr(nt.From, txFromLower) && isParticipant(nt.To) {
				inputIsNative = true
				nativeInputAmount = nt.Amount
				nativeClaims = append(nativeClaims, model.NativeClaim{From: nt.From, To: nt.To, Value: nt.Amount})
				break
			}
		}
	}
	if pureNativeInput != nil {
		inputIsNative = true
		nativeInputAmount = pureNativeInput.Amount
		nativeClaims = append(nativeClaims, model.NativeClaim{
			From: pureNativeInput.From, To: pureNativeInput.To, Value: pureNativeInput.Amount,
		})
	}
	if outputTransfer != nil && sameAddr(outputTransfer.transfer.TokenAddress, wethAddress) {
		for _, nt := range nativeTransfers {
			if sameAddr(nt.To, txFromLower) && isParticipant(nt.From) {
				outputIsNative = true
				nativeOutputAmount = nt.Amount
				nativeClaims = append(nativeClaims, model.NativeClaim{From: nt.From, To: nt.To, Value: nt.Amount})
				break
			}
		}
	}

	var tokenIn, tokenOut *model.SwapToken
	switch {
	case pureNativeInput != nil:
		tokenIn = &model.SwapToken{
			Address:  wethAddress,
			Symbol:   nativeSymbol,
			Name:     nativeName,
			Decimals: nativeDecimals,
			Amount:   pureNativeInput.Amount,
			IsNative: true,
		}
	case inputTransfer != nil:
		tokenIn = swapTokenFromTransfer(inputTransfer.transfer, inputIsNative, nativeInputAmount)
	}
	if outputTransfer != nil {
		tokenOut = swapTokenFromTransfer(outputTransfer.transfer, outputIsNative, nativeOutputAmount)
	}

	version := group[0].version
	hops := len(group)

	if tokenIn == nil || tokenOut == nil {
		// Contract-mediated swap: the effective counterparty is neither the
		// origin nor a router. Best-effort logIndex-proximity attribution.
		if op, claimed, ok := buildMediatedSwap(group, transfers, txFrom, version, hops); ok {
			return op, claimed, nil, true
		}
		return model.UniswapSwapOperation{}, nil, nil, false
	}

	recipient := lower(lastEvent.recipient)
	if recipient == "" {
		recipient = txFromLower
	}

	op := model.UniswapSwapOperation{
		Type:      model.OpUniswapSwap,
		LogIndex:  group[0].logIndex,
		Version:   version,
		TokenIn:   *tokenIn,
		TokenOut:  *tokenOut,
		Sender:    txFromLower,
		Recipient: recipient,
		Hops:      hops,
	}
	return op, matchedIndices, nativeClaims, true
}

func swapTokenFromTransfer(t model.TokenTransfer, isNative bool, nativeAmount string) *model.SwapToken {
	token := &model.SwapToken{
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
		// Prefer the native leg's own recorded amount over the wrapped one.
		if nativeAmount != "" {
			token.Amount = nativeAmount
		}
	}
	return token
}

// buildMediatedSwap attributes pool-boundary transfers to a non-router,
// non-pool counterparty by closest preceding log index per anchor. This is
// a heuristic of last resort, not a correctness guarantee.
func buildMediatedSwap(
	group []rawSwapEvent,
	transfers []model.TokenTransfer,
	txFrom string,
	version string,
	hops int,
) (model.UniswapSwapOperation, []int, bool) {
	txFromLower := lower(txFrom)
	pools := make(map[string]struct{}, len(group))
	for _, event := range group {
		pools[event.pool] = struct{}{}
	}

	var candidates []string
	seen := map[string]struct{}{txFromLower: {}}
	for _, event := range group {
		for _, addr := range []string{lower(event.sender), lower(event.recipient)} {
			if _, ok := seen[addr]; ok {
				continue
			}
			if _, ok := pools[addr]; ok {
				continue
			}
			seen[addr] = struct{}{}
			candidates = append(candidates, addr)
		}
	}

	for _, user := range candidates {
		if isKnownRouter(user) {
			continue
		}

		var claimed []int
		var groupInput, groupOutput *transferMatch

		for _, event := range group {
			bestInputIdx, bestOutputIdx := -1, -1
			var bestInputDist, bestOutputDist uint64

			for i, t := range transfers {
				if t.LogIndex > event.logIndex {
					continue
				}
				dist := event.logIndex - t.LogIndex

				if sameAddr(t.To, event.pool) && sameAddr(t.From, user) &&
					(bestInputIdx == -1 || dist < bestInputDist) {
					bestInputIdx = i
					bestInputDist = dist
				}
				if sameAddr(t.From, event.pool) && sameAddr(t.To, user) &&
					(bestOutputIdx == -1 || dist < bestOutputDist) {
					bestOutputIdx = i
					bestOutputDist = dist
				}
			}

			if bestInputIdx != -1 {
				claimed = append(claimed, bestInputIdx)
				groupInput = &transferMatch{index: bestInputIdx, transfer: transfers[bestInputIdx]}
			}
			if bestOutputIdx != -1 {
				claimed = append(claimed, bestOutputIdx)
				if groupOutput == nil {
					groupOutput = &transferMatch{index: bestOutputIdx, transfer: transfers[bestOutputIdx]}
				}
			}
		}

		if groupInput == nil || groupOutput == nil {
			continue
		}

		recipient := lower(group[len(group)-1].recipient)
		if recipient == "" {
			recipient = user
		}

		op := model.UniswapSwapOperation{
			Type:      model.OpUniswapSwap,
			LogIndex:  group[0].logIndex,
			Version:   version,
			TokenIn:   *swapTokenFromTransfer(groupInput.transfer, false, ""),
			TokenOut:  *swapTokenFromTransfer(groupOutput.transfer, false, ""),
			Sender:    user,
			Recipient: recipient,
			Hops:      hops,
		}
		return op, claimed, true
	}

	return model.UniswapSwapOperation{}, nil, false
}
