// Package model holds the repository-agnostic domain types shared across
// the intake, OCR, extraction, reconciliation, and commit layers.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UploadKind is the allow-listed category of a submitted document.
type UploadKind string

const (
	UploadKindReceiving    UploadKind = "receiving"
	UploadKindShippingLabel UploadKind = "shipping_label"
	UploadKindDiscrepancy  UploadKind = "discrepancy"
	UploadKindPartPhoto    UploadKind = "part_photo"
	UploadKindFinance      UploadKind = "finance"
)

// ProcessingStatus tracks an Upload Record through the pipeline.
type ProcessingStatus string

const (
	ProcessingQueued     ProcessingStatus = "queued"
	ProcessingInProgress ProcessingStatus = "processing"
	ProcessingCompleted  ProcessingStatus = "completed"
	ProcessingFailed     ProcessingStatus = "failed"
)

// QualityMetadata is the computed Document Quality Score breakdown.
type QualityMetadata struct {
	Blur      float64 `json:"blur"`
	Glare     float64 `json:"glare"`
	Contrast  float64 `json:"contrast"`
	DQS       float64 `json:"dqs"`
	Remediation string `json:"remediation,omitempty"`
}

// Upload is one accepted file, scoped to a tenant.
type Upload struct {
	ID               string
	TenantID         string
	UploaderID       string
	OriginalFilename string
	MimeType         string
	ByteSize         int64
	SHA256           string
	StoragePath      string
	Kind             UploadKind
	Status           ProcessingStatus
	Quality          QualityMetadata
	CreatedAt        time.Time
}

// LineFragment is one recognized text span from an OCR pass.
type LineFragment struct {
	Text       string
	Confidence float64
	X1, Y1, X2, Y2 int
}

// OCRResult is the uniform, in-memory contract every OCR engine returns.
type OCRResult struct {
	Text            string
	Confidence      float64
	Fragments       []LineFragment
	Engine          string
	ProcessingTime  time.Duration
	Metadata        map[string]interface{}
}

// DocumentKind is the classifier's best guess at the document's template.
type DocumentKind string

const (
	DocumentPackingList   DocumentKind = "packing_list"
	DocumentInvoice       DocumentKind = "invoice"
	DocumentPurchaseOrder DocumentKind = "purchase_order"
	DocumentWorkOrder     DocumentKind = "work_order"
	DocumentUnknown       DocumentKind = "unknown"
)

// Classification is the Document Classifier's verdict.
type Classification struct {
	Kind        DocumentKind
	Confidence  float64
	MatchedTokens []string
}

// ConfidenceTier buckets a draft line's extraction confidence.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// Provenance records which extraction path produced a draft line.
type Provenance string

const (
	ProvenanceRegex Provenance = "regex"
	ProvenanceLLM   Provenance = "llm"
)

// DiscrepancySeverity buckets the magnitude of a quantity shortfall/overage.
type DiscrepancySeverity string

const (
	SeverityHigh   DiscrepancySeverity = "high"
	SeverityMedium DiscrepancySeverity = "medium"
	SeverityLow    DiscrepancySeverity = "low"
)

// Discrepancy records a mismatch between expected and received quantity.
type Discrepancy struct {
	Expected decimal.Decimal
	Received decimal.Decimal
	Shortage decimal.Decimal
	Severity DiscrepancySeverity
}

// MatchReason names the strategy that produced a SuggestedMatch.
type MatchReason string

const (
	MatchExactPartNumber   MatchReason = "exact_part_number"
	MatchFuzzyPartNumber   MatchReason = "fuzzy_part_number"
	MatchFuzzyDescription  MatchReason = "fuzzy_description"
	MatchOnShoppingList    MatchReason = "on_shopping_list"
	MatchRecentOrder       MatchReason = "recent_order"
	MatchUserOverride      MatchReason = "user_override"
)

// ShoppingListFulfillment describes how a candidate part fulfills an open
// shopping-list entry.
type ShoppingListFulfillment struct {
	RequestedQuantity decimal.Decimal
	ApprovedQuantity  decimal.Decimal
	ReceivedQuantity  decimal.Decimal
	Status            string
	FulfillmentPct    float64
}

// RecentOrderRecord describes a recent purchase-order line for a part.
type RecentOrderRecord struct {
	OrderNumber string
	OrderedAt   time.Time
	Quantity    decimal.Decimal
}

// SuggestedMatch is the Reconciliation Layer's best catalog suggestion for
// one draft line, plus up to three ranked alternatives.
type SuggestedMatch struct {
	PartID          string
	PartNumber      string
	DisplayName     string
	Manufacturer    string
	Confidence      float64
	MatchReason     MatchReason
	StockOnHand     decimal.Decimal
	StorageLocation string
	Alternatives    []SuggestedMatch
	ShoppingList    *ShoppingListFulfillment
	RecentOrder     *RecentOrderRecord
}

// ExtractedLine is one candidate row produced by the Extraction Layer and
// enriched (suggestion, discrepancy) by the Reconciliation Layer.
type ExtractedLine struct {
	ID           string
	SeqNumber    int
	Quantity     decimal.Decimal
	UnitOfMeasure string
	Description  string
	PartNumber   string
	Confidence   ConfidenceTier
	Provenance   Provenance
	RawSourceText string
	IsVerified   bool
	VerifiedBy   string
	VerifiedAt   *time.Time
	UnitPrice    *decimal.Decimal
	Suggestion   *SuggestedMatch
	Discrepancy  *Discrepancy
}

// SessionStatus tracks a Receiving Session's lifecycle.
type SessionStatus string

const (
	SessionDraft     SessionStatus = "draft"
	SessionCommitted SessionStatus = "committed"
	SessionCancelled SessionStatus = "cancelled"
)

// ProcessingSummary aggregates the Extraction Layer's output for one session.
type ProcessingSummary struct {
	LinesExtracted int
	LinesVerified  int
	LLMCalls       int
	TotalCost      decimal.Decimal
	PrimaryMethod  Provenance
}

// ReceivingSession is the mutable batch tied to one tenant and one creator.
type ReceivingSession struct {
	ID               string
	TenantID         string
	CreatorID        string
	SessionNumber    string
	Status           SessionStatus
	UploadIDs        []string
	Lines            []ExtractedLine
	Summary          ProcessingSummary
	CreatedAt        time.Time
	CommittedAt      *time.Time
	CommittedBy      string
	EventID          string
}

// ReceivingEvent is the immutable record produced when a session commits.
type ReceivingEvent struct {
	ID            string
	TenantID      string
	SessionID     string
	EventNumber   string
	CommitterID   string
	Notes         string
	LineCount     int
	TotalCost     *decimal.Decimal
	Signature     string
	CreatedAt     time.Time
}

// InventoryTransactionKind classifies an inventory mutation.
type InventoryTransactionKind string

const (
	InventoryReceiving InventoryTransactionKind = "receiving"
	InventoryDeduction InventoryTransactionKind = "deduction"
	InventoryAdjustment InventoryTransactionKind = "adjustment"
)

// InventoryStock is a part's current on-hand quantity for a tenant.
type InventoryStock struct {
	TenantID        string
	PartID          string
	QuantityOnHand  decimal.Decimal
	MinimumQuantity decimal.Decimal
	Version         int64
}

// InventoryTransaction is an immutable record of one stock mutation.
type InventoryTransaction struct {
	ID            string
	TenantID      string
	PartID        string
	QuantityDelta decimal.Decimal
	Kind          InventoryTransactionKind
	ReferenceID   string
	ReferenceKind string
	ActorID       string
	CreatedAt     time.Time
}

// FinanceTransaction is an immutable per-line expense record.
type FinanceTransaction struct {
	ID            string
	TenantID      string
	ReferenceEventID string
	Kind          string
	Category      string
	Amount        decimal.Decimal
	Currency      string
	ActorID       string
	CreatedAt     time.Time
}

// AuditEntry is an append-only record of a mutating action.
type AuditEntry struct {
	ID         string
	TenantID   string
	ActorID    string
	Action     string
	EntityKind string
	EntityID   string
	OldValue   map[string]interface{}
	NewValue   map[string]interface{}
	Signature  string
	CreatedAt  time.Time
}

// LowStockAlert is emitted post-commit for any part below its minimum.
type LowStockAlert struct {
	PartID          string
	PartNumber      string
	QuantityOnHand  decimal.Decimal
	MinimumQuantity decimal.Decimal
	Shortage        decimal.Decimal
}

// Part is a catalog entry, as seen by the reconciliation layer.
type Part struct {
	ID           string
	TenantID     string
	PartNumber   string
	DisplayName  string
	Manufacturer string
	StockOnHand  decimal.Decimal
	MinQuantity  decimal.Decimal
	StorageLocation string
}

// Order is a purchase order header, used for order-number matching.
type Order struct {
	ID          string
	TenantID    string
	OrderNumber string
	CreatedAt   time.Time
}

// ShoppingListItem is one entry on a tenant's shopping list.
type ShoppingListItem struct {
	ID                string
	TenantID          string
	PartID            string
	Status            string // approved | ordered | ...
	RequestedQuantity decimal.Decimal
	ApprovedQuantity  decimal.Decimal
	ReceivedQuantity  decimal.Decimal
}

// PurchaseOrderLine is one line of a recent purchase order.
type PurchaseOrderLine struct {
	ID          string
	TenantID    string
	OrderID     string
	OrderNumber string
	PartID      string
	Quantity    decimal.Decimal
	OrderedAt   time.Time
}
