package parser

import "txflow/internal/model"

// LendingResult is the output of the lending-pool detector: the operations
// found plus the transfer indices they consumed.
type LendingResult struct {
	Operations             []model.Operation
	ClaimedTransferIndices []int
}

// assetInfo is the display metadata resolved for one lending operation.
type assetInfo struct {
	name     string
	symbol   string
	logo     string
	amount   string
	decimals uint8
}

// resolveAssetInfo prefers the matched underlying transfer for metadata and
// amount; without one it degrades to the anchor-supplied amount with
// unknown sentinels, never a silent zero.
func resolveAssetInfo(underlying *transferMatch, anchorAmount string) assetInfo {
	if underlying == nil {
		return assetInfo{
			name:     unknownName,
			symbol:   unknownSymbol,
			amount:   anchorAmount,
			decimals: defaultDecimals,
		}
	}
	return assetInfo{
		name:     underlying.transfer.TokenName,
		symbol:   underlying.transfer.TokenSymbol,
		logo:     underlying.transfer.TokenLogo,
		amount:   underlying.transfer.Amount,
		decimals: underlying.transfer.Decimals,
	}
}

// DetectLendingOperations scans the raw logs for the Aave V3 pool's
// Supply/Borrow/Repay/Withdraw anchors and matches each to its underlying
// transfer and receipt/debt-token mint or burn by closest preceding log
// index. Matched indices are excluded from later anchors in the same scan.
func DetectLendingOperations(logs []model.EventLog, transfers []model.TokenTransfer) LendingResult {
	result := LendingResult{}
	used := newIndexSet()

	for _, log := range logs {
		if !sameAddr(log.Address, aaveV3PoolAddress) {
			continue
		}

		switch lower(log.Topic0) {
		case aaveSupplyTopic0:
			detectSupply(log, transfers, used, &result)
		case aaveBorrowTopic0:
			detectBorrow(log, transfers, used, &result)
		case aaveRepayTopic0:
			detectRepay(log, transfers, used, &result)
		case aaveWithdrawTopic0:
			detectWithdraw(log, transfers, used, &result)
		}
	}

	return result
}

func detectSupply(log model.EventLog, transfers []model.TokenTransfer, used indexSet, result *LendingResult) {
	if log.Topic1 == "" || log.Topic2 == "" {
		return
	}
	reserve := addressFromTopic(log.Topic1)
	onBehalfOf := addressFromTopic(log.Topic2)
	user := dataWordAddress(log.Data, 0)
	anchorAmount := dataWord(log.Data, 1)

	underlying, haveUnderlying := findClosestTransfer(transfers, log.LogIndex, matchBefore, used,
		func(t model.TokenTransfer) bool {
			return sameAddr(t.TokenAddress, reserve) && sameAddr(t.From, user)
		})
	if haveUnderlying {
		used.add(underlying.index)
		result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, underlying.index)
	}

	// Receipt-token mint: zero address → beneficiary.
	mint, haveMint := findClosestTransfer(transfers, log.LogIndex, matchBefore, used,
		func(t model.TokenTransfer) bool {
			return sameAddr(t.From, zeroAddress) && (sameAddr(t.To, onBehalfOf) || sameAddr(t.To, user))
		})
	if haveMint {
		used.add(mint.index)
		result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, mint.index)
	}

	var underlyingRef *transferMatch
	if haveUnderlying {
		underlyingRef = &underlying
	}
	info := resolveAssetInfo(underlyingRef, anchorAmount)

	op := model.AaveSupplyOperation{
		Type:        model.OpAaveSupply,
		LogIndex:    log.LogIndex,
		Asset:       reserve,
		AssetName:   info.name,
		AssetSymbol: info.symbol,
		AssetLogo:   info.logo,
		Amount:      info.amount,
		Decimals:    info.decimals,
		Supplier:    user,
	}
	if !sameAddr(onBehalfOf, user) && !sameAddr(onBehalfOf, zeroAddress) {
		op.OnBehalfOf = onBehalfOf
	}
	result.Operations = append(result.Operations, op)
}

func detectBorrow(log model.EventLog, transfers []model.TokenTransfer, used indexSet, result *LendingResult) {
	if log.Topic1 == "" || log.Topic2 == "" {
		return
	}
	reserve := addressFromTopic(log.Topic1)
	onBehalfOf := addressFromTopic(log.Topic2)
	anchorAmount := dataWord(log.Data, 1)

	// The borrower receives the reserve asset; direction is the opposite of
	// a supply's send.
	underlying, haveUnderlying := findClosestTransfer(transfers, log.LogIndex, matchBefore, used,
		func(t model.TokenTransfer) bool {
			return sameAddr(t.TokenAddress, reserve) && sameAddr(t.To, onBehalfOf)
		})
	if haveUnderlying {
		used.add(underlying.index)
		result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, underlying.index)
	}

	debtMint, haveDebtMint := findClosestTransfer(transfers, log.LogIndex, matchBefore, used,
		func(t model.TokenTransfer) bool {
			return sameAddr(t.From, zeroAddress) && sameAddr(t.To, onBehalfOf)
		})
	if haveDebtMint {
		used.add(debtMint.index)
		result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, debtMint.index)
	}

	var underlyingRef *transferMatch
	if haveUnderlying {
		underlyingRef = &underlying
	}
	info := resolveAssetInfo(underlyingRef, anchorAmount)

	result.Operations = append(result.Operations, model.AaveBorrowOperation{
		Type:        model.OpAaveBorrow,
		LogIndex:    log.LogIndex,
		Asset:       reserve,
		AssetName:   info.name,
		AssetSymbol: info.symbol,
		AssetLogo:   info.logo,
		Amount:      info.amount,
		Decimals:    info.decimals,
		Borrower:    onBehalfOf,
	})
}

func detectRepay(log model.EventLog, transfers []model.TokenTransfer, used indexSet, result *LendingResult) {
	if log.Topic1 == "" || log.Topic2 == "" || log.Topic3 == "" {
		return
	}
	reserve := addressFromTopic(log.Topic1)
	debtor := addressFromTopic(log.Topic2)
	repayer := addressFromTopic(log.Topic3)
	anchorAmount := dataWord(log.Data, 0)

	underlying, haveUnderlying := findClosestTransfer(transfers, log.LogIndex, matchBefore, used,
		func(t model.TokenTransfer) bool {
			return sameAddr(t.TokenAddress, reserve) && sameAddr(t.From, repayer)
		})
	if haveUnderlying {
		used.add(underlying.index)
		result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, underlying.index)
	}

	debtBurn, haveDebtBurn := findClosestTransfer(transfers, log.LogIndex, matchBefore, used,
		func(t model.TokenTransfer) bool {
			return sameAddr(t.From, debtor) && sameAddr(t.To, zeroAddress)
		})
	if haveDebtBurn {
		used.add(debtBurn.index)
		result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, debtBurn.index)
	}

	var underlyingRef *transferMatch
	if haveUnderlying {
		underlyingRef = &underlying
	}
	info := resolveAssetInfo(underlyingRef, anchorAmount)

	op := model.AaveRepayOperation{
		Type:        model.OpAaveRepay,
		LogIndex:    log.LogIndex,
		Asset:       reserve,
		AssetName:   info.name,
		AssetSymbol: info.symbol,
		AssetLogo:   info.logo,
		Amount:      info.amount,
		Decimals:    info.decimals,
		Repayer:     repayer,
	}
	// Surface the debtor only when someone else paid their debt.
	if !sameAddr(repayer, debtor) {
		op.OnBehalfOf = debtor
	}
	result.Operations = append(result.Operations, op)
}

func detectWithdraw(log model.EventLog, transfers []model.TokenTransfer, used indexSet, result *LendingResult) {
	if log.Topic1 == "" || log.Topic2 == "" || log.Topic3 == "" {
		return
	}
	reserve := addressFromTopic(log.Topic1)
	user := addressFromTopic(log.Topic2)
	to := addressFromTopic(log.Topic3)
	anchorAmount := dataWord(log.Data, 0)

	recipient := user
	if !sameAddr(to, user) {
		recipient = to
	}

	burn, haveBurn := findClosestTransfer(transfers, log.LogIndex, matchBefore, used,
		func(t model.TokenTransfer) bool {
			return sameAddr(t.From, user) && sameAddr(t.To, zeroAddress)
		})
	if haveBurn {
		used.add(burn.index)
		result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, burn.index)
	}

	underlying, haveUnderlying := findClosestTransfer(transfers, log.LogIndex, matchBefore, used,
		func(t model.TokenTransfer) bool {
			return sameAddr(t.TokenAddress, reserve) && sameAddr(t.To, recipient)
		})
	if haveUnderlying {
		used.add(underlying.index)
		result.ClaimedTransferIndices = append(result.ClaimedTransferIndices, underlying.index)
	}

	var underlyingRef *transferMatch
	if haveUnderlying {
		underlyingRef = &underlying
	}
	info := resolveAssetInfo(underlyingRef, anchorAmount)

	op := model.AaveWithdrawOperation{
		Type:        model.OpAaveWithdraw,
		LogIndex:    log.LogIndex,
		Asset:       reserve,
		AssetName:   info.name,
		AssetSymbol: info.symbol,
		AssetLogo:   info.logo,
		Amount:      info.amount,
		Decimals:    info.decimals,
		Withdrawer:  user,
	}
	if !sameAddr(to, user) {
		op.To = to
	}
	result.Operations = append(result.Operations, op)
}
