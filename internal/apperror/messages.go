package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Chain RPC errors
	CodeRPCConnectionFailed: "Failed to connect to chain RPC node",
	CodeRPCError:            "Chain RPC call failed",
	CodeContractCallFailed:  "Smart contract call failed",
	CodeGasEstimationFailed: "Gas estimation failed",

	// Per-DEX quote errors
	CodeQuoteFailed:           "Failed to get DEX quote",
	CodeInsufficientLiquidity: "Insufficient liquidity for trade size",
	CodePoolNotFound:          "No pool found for token pair",
	CodeInvalidQuote:          "Invalid quote data",

	// Aggregator API errors
	CodeAggregatorAPIError:    "Aggregator API error",
	CodeAggregatorRateLimited: "Aggregator rate limit exceeded",
	CodeAggregatorBadEnvelope: "Aggregator returned a malformed response envelope",
	CodeAggregatorUnavailable: "Aggregator service unavailable",

	// Route selection errors
	CodeNoValidRoutes:          "No valid routes found for this trade",
	CodePriceImpactTooHigh:     "Price impact exceeds the allowed maximum",
	CodeImpliedLiquidityTooLow: "Implied liquidity below the allowed minimum",

	// Swap construction errors
	CodeTransactionBuildFailed: "Failed to build swap transaction",
	CodeInvalidTradeSize:       "Invalid trade size",

	// Cache errors
	CodeCacheMiss:    "Cache miss",
	CodeCacheExpired: "Cache entry expired",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
