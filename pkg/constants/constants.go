// Package constants provides shared constants for the home-affordability application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// ZeroRateThreshold is the monthly rate below which a loan is amortized
	// as simple principal / months.
	ZeroRateThreshold = 1e-12
)

// Formula tier tags. The tier is the identifier prefix before the first dot.
const (
	// TierConforming marks formulas only valid at or below the conforming limit.
	TierConforming = "C"

	// TierHighBalance marks formulas only valid above conforming and at or
	// below the high-balance limit.
	TierHighBalance = "HB"

	// FormulaIDSeparator splits tier, down payment and seller concession.
	FormulaIDSeparator = "."
)

// Caller-side input ranges applied before evaluation.
const (
	// MinInterestRatePct is the lowest annual rate accepted from a caller
	MinInterestRatePct = 1.0

	// MaxInterestRatePct is the highest annual rate accepted from a caller
	MaxInterestRatePct = 10.0

	// MinLoanTermYears is the shortest term accepted from a caller
	MinLoanTermYears = 5

	// MaxLoanTermYears is the longest term accepted from a caller
	MaxLoanTermYears = 30

	// MinUnits is the smallest occupancy unit count
	MinUnits = 1

	// MaxUnits is the largest occupancy unit count
	MaxUnits = 4

	// MaxCorrectionAttempts caps apply-correction/re-evaluate loops
	MaxCorrectionAttempts = 5
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is merged over the main configuration by serve
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultEnvFile is loaded into the environment when present
	DefaultEnvFile = ".env"

	// EnvPrefix scopes environment overrides read by viper
	EnvPrefix = "AFFORDABILITY"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultMaxUploadSize is DefaultMaxUploadSizeBytes as written in config
	DefaultMaxUploadSize = "256K"
)

// Cache defaults
const (
	// CacheBackendMemory keeps evaluations in process
	CacheBackendMemory = "memory"

	// CacheBackendRedis keeps evaluations in Redis
	CacheBackendRedis = "redis"

	// CacheBackendNone disables caching
	CacheBackendNone = "none"

	// DefaultCacheTTLSeconds is how long a cached evaluation stays valid
	DefaultCacheTTLSeconds = 300

	// DefaultCacheKeyPrefix namespaces Redis keys
	DefaultCacheKeyPrefix = "affordability:"
)
