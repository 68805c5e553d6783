package model

// Operation type discriminants. Every operation variant carries exactly one
// of these in its Type field.
const (
	OpAaveSupply             = "aave-supply"
	OpAaveBorrow             = "aave-borrow"
	OpAaveRepay              = "aave-repay"
	OpAaveWithdraw           = "aave-withdraw"
	OpUniswapSwap            = "uniswap-swap"
	OpUniswapAddLiquidity    = "uniswap-add-liquidity"
	OpUniswapRemoveLiquidity = "uniswap-remove-liquidity"
	OpUniswapCollectFees     = "uniswap-collect-fees"
)

// Operation is the closed set of recognized protocol operations. Each
// variant is a concrete struct; consumers switch on OperationType.
type Operation interface {
	OperationType() string
	Position() uint64
}

// AaveSupplyOperation is a lending-pool deposit. OnBehalfOf is set only
// when the beneficiary differs from the supplier.
type AaveSupplyOperation struct {
	Type        string `json:"type"`
	LogIndex    uint64 `json:"logIndex"`
	Asset       string `json:"asset"`
	AssetName   string `json:"assetName"`
	AssetSymbol string `json:"assetSymbol"`
	AssetLogo   string `json:"assetLogo,omitempty"`
	Amount      string `json:"amount"`
	Decimals    uint8  `json:"decimals"`
	Supplier    string `json:"supplier"`
	OnBehalfOf  string `json:"onBehalfOf,omitempty"`
}

func (o AaveSupplyOperation) OperationType() string { return o.Type }
func (o AaveSupplyOperation) Position() uint64      { return o.LogIndex }

// AaveBorrowOperation is a lending-pool borrow.
type AaveBorrowOperation struct {
	Type        string `json:"type"`
	LogIndex    uint64 `json:"logIndex"`
	Asset       string `json:"asset"`
	AssetName   string `json:"assetName"`
	AssetSymbol string `json:"assetSymbol"`
	AssetLogo   string `json:"assetLogo,omitempty"`
	Amount      string `json:"amount"`
	Decimals    uint8  `json:"decimals"`
	Borrower    string `json:"borrower"`
}

func (o AaveBorrowOperation) OperationType() string { return o.Type }
func (o AaveBorrowOperation) Position() uint64      { return o.LogIndex }

// AaveRepayOperation is a debt repayment. OnBehalfOf names the debtor when
// someone else paid.
type AaveRepayOperation struct {
	Type        string `json:"type"`
	LogIndex    uint64 `json:"logIndex"`
	Asset       string `json:"asset"`
	AssetName   string `json:"assetName"`
	AssetSymbol string `json:"assetSymbol"`
	AssetLogo   string `json:"assetLogo,omitempty"`
	Amount      string `json:"amount"`
	Decimals    uint8  `json:"decimals"`
	Repayer     string `json:"repayer"`
	OnBehalfOf  string `json:"onBehalfOf,omitempty"`
}

func (o AaveRepayOperation) OperationType() string { return o.Type }
func (o AaveRepayOperation) Position() uint64      { return o.LogIndex }

// AaveWithdrawOperation is a collateral withdrawal. To is set only when the
// funds went to an address other than the withdrawer.
type AaveWithdrawOperation struct {
	Type        string `json:"type"`
	LogIndex    uint64 `json:"logIndex"`
	Asset       string `json:"asset"`
	AssetName   string `json:"assetName"`
	AssetSymbol string `json:"assetSymbol"`
	AssetLogo   string `json:"assetLogo,omitempty"`
	Amount      string `json:"amount"`
	Decimals    uint8  `json:"decimals"`
	Withdrawer  string `json:"withdrawer"`
	To          string `json:"to,omitempty"`
}

func (o AaveWithdrawOperation) OperationType() string { return o.Type }
func (o AaveWithdrawOperation) Position() uint64      { return o.LogIndex }

// SwapToken is one side of a swap. IsNative marks a leg that was settled in
// native currency through a wrap or unwrap at the router boundary; Amount
// then carries the native transfer's own recorded amount.
type SwapToken struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Logo     string `json:"logo,omitempty"`
	Decimals uint8  `json:"decimals"`
	Amount   string `json:"amount"`
	IsNative bool   `json:"isNative,omitempty"`
}

// UniswapSwapOperation is one logical swap; consecutive pool hops routed
// through the same router collapse into a single operation.
type UniswapSwapOperation struct {
	Type      string    `json:"type"`
	LogIndex  uint64    `json:"logIndex"`
	Version   string    `json:"version"`
	TokenIn   SwapToken `json:"tokenIn"`
	TokenOut  SwapToken `json:"tokenOut"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Hops      int       `json:"hops"`
}

func (o UniswapSwapOperation) OperationType() string { return o.Type }
func (o UniswapSwapOperation) Position() uint64      { return o.LogIndex }

// LiquidityToken is one of the two token slots of a liquidity operation.
// Unresolvable slots are filled with the zero-valued placeholder, never
// omitted.
type LiquidityToken struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Logo     string `json:"logo,omitempty"`
	Decimals uint8  `json:"decimals"`
	Amount   string `json:"amount"`
	IsNative bool   `json:"isNative,omitempty"`
}

// UniswapAddLiquidityOperation is a v2 pair mint or v3 position increase.
type UniswapAddLiquidityOperation struct {
	Type     string         `json:"type"`
	LogIndex uint64         `json:"logIndex"`
	Version  string         `json:"version"`
	Token0   LiquidityToken `json:"token0"`
	Token1   LiquidityToken `json:"token1"`
	Provider string         `json:"provider"`
}

func (o UniswapAddLiquidityOperation) OperationType() string { return o.Type }
func (o UniswapAddLiquidityOperation) Position() uint64      { return o.LogIndex }

// UniswapRemoveLiquidityOperation is a v2 pair burn or v3 position decrease.
type UniswapRemoveLiquidityOperation struct {
	Type      string         `json:"type"`
	LogIndex  uint64         `json:"logIndex"`
	Version   string         `json:"version"`
	Token0    LiquidityToken `json:"token0"`
	Token1    LiquidityToken `json:"token1"`
	Recipient string         `json:"recipient"`
}

func (o UniswapRemoveLiquidityOperation) OperationType() string { return o.Type }
func (o UniswapRemoveLiquidityOperation) Position() uint64      { return o.LogIndex }

// UniswapCollectFeesOperation is a standalone position-manager fee sweep.
// Collects paired with a liquidity decrease on the same position are folded
// into the remove operation instead.
type UniswapCollectFeesOperation struct {
	Type      string         `json:"type"`
	LogIndex  uint64         `json:"logIndex"`
	Version   string         `json:"version"`
	Token0    LiquidityToken `json:"token0"`
	Token1    LiquidityToken `json:"token1"`
	Collector string         `json:"collector"`
}

func (o UniswapCollectFeesOperation) OperationType() string { return o.Type }
func (o UniswapCollectFeesOperation) Position() uint64      { return o.LogIndex }
