package editrans

import (
	"time"

	"github.com/shopspring/decimal"
)

// The entities below are the engine's side of the ERP boundary: interpreters
// build them as transient, in-memory values, and generators consume ones the
// calling ERP module already persisted and validated. Identity assignment
// and business-rule checks happen in that module, not here.

// PurchaseOrder is the ERP record assembled from an 850 transaction.
type PurchaseOrder struct {
	OrderNumber string
	OrderDate   time.Time
	// RequestedShipDate is zero when the partner did not send one.
	RequestedShipDate time.Time
	BuyerID           string
	VendorID          string
	Lines             []PurchaseOrderLine
}

type PurchaseOrderLine struct {
	ItemID        string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	UnitOfMeasure string
}

// Invoice is the ERP record assembled from an 810 transaction.
type Invoice struct {
	InvoiceNumber string
	InvoiceDate   time.Time
	// OrderNumber references the purchase order being invoiced.
	OrderNumber string
	Terms       string
	// TotalAmount is the partner-declared invoice total. LineTotal is the
	// amount recomputed from the lines; the two are reconciled at
	// interpretation time within a rounding tolerance.
	TotalAmount decimal.Decimal
	Lines       []InvoiceLine
}

type InvoiceLine struct {
	ItemID     string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	LineAmount decimal.Decimal
}

// LineTotal returns the sum of the invoice's line amounts.
func (inv *Invoice) LineTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range inv.Lines {
		total = total.Add(line.LineAmount)
	}
	return total
}

// ShipmentNotice is the ERP record assembled from an 856 transaction.
type ShipmentNotice struct {
	ShipmentID     string
	ShipDate       time.Time
	Carrier        string
	TrackingNumber string
	// OrderNumber references the purchase order being fulfilled.
	OrderNumber string
	Lines       []ShipmentLine
}

type ShipmentLine struct {
	ItemID          string
	QuantityShipped decimal.Decimal
	PackagingUnit   string
}
