package models

// StockTxType classifies a ledger movement.
type StockTxType string

const (
	StockTxTypeIn  StockTxType = "IN"
	StockTxTypeOut StockTxType = "OUT"
)

// StockReferenceType ties a ledger entry back to its source document.
type StockReferenceType string

const (
	StockReferenceTypePurchaseBill  StockReferenceType = "PB"
	StockReferenceTypeMaterialIssue StockReferenceType = "MI"
)

// DeliveredToType discriminates the destination of a purchase bill.
// A bill is delivered either to a godown (stocked) or straight to a site
// (pass-through; see CreatePurchaseBill for the paired IN/OUT posting).
type DeliveredToType string

const (
	DeliveredToGodown DeliveredToType = "GODOWN"
	DeliveredToSite   DeliveredToType = "SITE"
)

// UserRole gates admin-only operations.
type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleStaff UserRole = "STAFF"
)

// DirectGodownKey is the stock-balance key for movements that never touch a
// godown ("direct" purchases to a site and direct issues). Real godown ids
// start at 1.
const DirectGodownKey = 0
