package constants

const DefaultBaseUrl = "https://api.mlfoundry.com"
const DefaultTimeout = 120
const DefaultMaxRetries = 5
const DefaultCatalogFile = "fcp_auction_catalog.yaml"

// task priorities
const PriorityCritical string = "critical"
const PriorityHigh string = "high"
const PriorityStandard string = "standard"
const PriorityLow string = "low"

// bid status
const BidStatusAllocated string = "allocated"
const BidStatusPending string = "pending"
const BidStatusTerminated string = "terminated"
const BidStatusDuplicate string = "duplicate"

const DiskInterfaceBlock = "Block"
const DiskInterfaceFile = "File"

const SizeUnitGB = "gb"
const SizeUnitTB = "tb"

const IdempotencyKeyHeader = "X-Idempotency-Key"

const UnknownFieldPlaceholder = "unknown"
