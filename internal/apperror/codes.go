package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Routing-specific error codes
const (
	// Chain RPC errors
	CodeRPCConnectionFailed Code = "RPC_CONNECTION_FAILED"
	CodeRPCError            Code = "RPC_ERROR"
	CodeContractCallFailed  Code = "CONTRACT_CALL_FAILED"
	CodeGasEstimationFailed Code = "GAS_ESTIMATION_FAILED"

	// Per-DEX quote errors
	CodeQuoteFailed           Code = "QUOTE_FAILED"
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"
	CodePoolNotFound          Code = "POOL_NOT_FOUND"
	CodeInvalidQuote          Code = "INVALID_QUOTE"

	// Aggregator API errors
	CodeAggregatorAPIError    Code = "AGGREGATOR_API_ERROR"
	CodeAggregatorRateLimited Code = "AGGREGATOR_RATE_LIMITED"
	CodeAggregatorBadEnvelope Code = "AGGREGATOR_BAD_ENVELOPE"
	CodeAggregatorUnavailable Code = "AGGREGATOR_UNAVAILABLE"

	// Route selection errors
	CodeNoValidRoutes          Code = "NO_VALID_ROUTES"
	CodePriceImpactTooHigh     Code = "PRICE_IMPACT_TOO_HIGH"
	CodeImpliedLiquidityTooLow Code = "IMPLIED_LIQUIDITY_TOO_LOW"

	// Swap construction errors
	CodeTransactionBuildFailed Code = "TX_BUILD_FAILED"
	CodeInvalidTradeSize       Code = "INVALID_TRADE_SIZE"

	// Cache errors
	CodeCacheMiss    Code = "CACHE_MISS"
	CodeCacheExpired Code = "CACHE_EXPIRED"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
