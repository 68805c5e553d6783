package parser

// Ethereum mainnet addresses and event topic hashes used by the detectors.
// Addresses are kept lowercase; all comparisons are case-insensitive.

const zeroAddress = "0x0000000000000000000000000000000000000000"

// ERC-20
const (
	erc20TransferSignature = "Transfer(address,address,uint256)"
	erc20TransferTopic0    = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"
)

// Aave V3 pool and its anchor event topics.
const (
	aaveV3PoolAddress = "0x87870bca3f3fd6335c3f4ce8392d69350b4fa4e2"

	aaveSupplyTopic0   = "0x2b627736bca15cd5381dcf80b0bf11fd197d01a037c52b927a881a10fb73ba61"
	aaveBorrowTopic0   = "0xb3d084820fb1a9decffb176436bd02558d15fac9b0ddfed8c465bc7359d7dce0"
	aaveRepayTopic0    = "0xa534c8dbe71f871f9f3530e97a74601fea17b426cae02e1c5aee42c96c784051"
	aaveWithdrawTopic0 = "0x3115d1449a7b732c986cba18244e897a450f61e1bb8d589cd2e69e6c8924f9f7"
)

// Uniswap swap event topics.
const (
	uniswapV2SwapTopic0 = "0xd78ad95fa46c994b6551d0da85fc275fe613ce37657fb8d5e3d130840159d822"
	uniswapV3SwapTopic0 = "0xc42079f94a6350d7e6235f29174924f928cc2ac818eb64fed8004e115fbcca67"
	uniswapV4SwapTopic0 = "0x40e9cecb9f5f1f1c5b9c97dec2917b7ee92e57ba5563708daca94dd84ad7112f"
)

// Uniswap routers. A swap anchor whose sender is one of these is trusted
// without deployment-address verification.
const (
	uniswapV2Router02      = "0x7a250d5630b4cf539739df2c5dacb4c659f2488d"
	uniswapV3SwapRouter    = "0xe592427a0aece92de3edee1f18e0157c05861564"
	uniswapV3SwapRouter02  = "0x68b3465833fb72a70ecdf485e0e4c7bd8665fc45"
	uniswapUniversalRouter = "0x66a9893cc07d91d95644aedd05d03f95e1dba8af"
)

var knownUniswapRouters = map[string]struct{}{
	uniswapV2Router02:      {},
	uniswapV3SwapRouter:    {},
	uniswapV3SwapRouter02:  {},
	uniswapUniversalRouter: {},
}

// Core singletons and CREATE2 deployment constants.
const (
	uniswapV4PoolManager = "0x000000000004444c5dc75cb358380d2e3de08a90"

	uniswapV2Factory      = "0x5c69bee701ef814a2b6a3edd4b1652cb9cc5aa6f"
	uniswapV2InitCodeHash = "0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f"

	uniswapV3Factory      = "0x1f98431c8ad98523631ae4a59f267346ea31f984"
	uniswapV3InitCodeHash = "0xe34f199b19b2b4f47f68442619d555527d244f78a3297ea89325f843f87b8b54"

	// NonfungiblePositionManager is a canonical singleton; checked against
	// this constant rather than recomputed.
	uniswapV3PositionManager = "0xc36442b4a4522e871399cd717abdd847ab11fe88"
)

var v3FeeTiers = []uint32{100, 500, 3000, 10000}

// Liquidity event topics.
const (
	v3IncreaseLiquidityTopic0 = "0x3067048beee31b25b2f1681f88dac838c8bba36af25bfb2b7cf7473a5847e35f"
	v3DecreaseLiquidityTopic0 = "0x26f6a048ee9138f2c0ce266f322cb99228e8d619ae2bff30c67f8dcf9d2377b4"
	v3ManagerCollectTopic0    = "0x40d0efd1a53d60ecbf40971b9daf7dc90178c3aadc7aab1765632738fa8b8f01"
	v3PoolMintTopic0          = "0x7a53080ba414158be7ec69b987b5fb7d07dee101fe85488f0853ae16239d0bde"
	v3PoolBurnTopic0          = "0x0c396cd989a39f4459b5fa1aed6a9a8dcdbc45908acfd67e028cd568da98982c"
	v2PairMintTopic0          = "0x4c209b5fc8ad50758f13e2e1088ba56a560dff690a1c6fef26394f4c03821c4f"
	v2PairBurnTopic0          = "0xdccd412f0b1252819cb1fd330b93224ca42612892bb3f4f789976e6d81936496"
)

const (
	wethAddress     = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	nativeSymbol    = "ETH"
	nativeName      = "Ether"
	nativeDecimals  = 18
	unknownSymbol   = "???"
	unknownName     = "Unknown"
	defaultDecimals = 18
)
