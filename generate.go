package editrans

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// canonicalDate is the wire representation generators emit for dates.
const canonicalDate = "2006-01-02"

func formatDate(t time.Time) string {
	return t.Format(canonicalDate)
}

// The generators are the outbound mirror of the interpreters: entity in,
// canonical rows out. They are pure and never fail, since the entities come
// from the ERP's own persisted, validated data. Each emits exactly one
// header row, one row per line in the entity's stored order (partners
// correlate by line position), and a trailer whose control totals are
// computed fresh from the lines being emitted, never copied from the
// entity, so every generated document is internally consistent.

// Generate850 renders a PurchaseOrder as canonical rows.
func Generate850(po *PurchaseOrder) []Row {
	header := NewRow()
	header.Set(FieldOrderNumber, po.OrderNumber)
	header.Set(FieldOrderDate, formatDate(po.OrderDate))
	if !po.RequestedShipDate.IsZero() {
		header.Set(FieldRequestedShipDate, formatDate(po.RequestedShipDate))
	}
	if po.BuyerID != "" {
		header.Set(FieldBuyerID, po.BuyerID)
	}
	if po.VendorID != "" {
		header.Set(FieldVendorID, po.VendorID)
	}

	rows := make([]Row, 0, len(po.Lines)+2)
	rows = append(rows, header)
	for _, line := range po.Lines {
		r := NewRow()
		r.Set(FieldItemID, line.ItemID)
		r.Set(FieldQuantity, line.Quantity.String())
		r.Set(FieldUnitPrice, line.UnitPrice.String())
		if line.UnitOfMeasure != "" {
			r.Set(FieldUnitOfMeasure, line.UnitOfMeasure)
		}
		rows = append(rows, r)
	}

	trailer := NewRow()
	trailer.Set(FieldTotalLineItems, strconv.Itoa(len(po.Lines)))
	return append(rows, trailer)
}

// Generate810 renders an Invoice as canonical rows. The trailer total is
// the sum of the emitted line amounts.
func Generate810(inv *Invoice) []Row {
	header := NewRow()
	header.Set(FieldInvoiceNumber, inv.InvoiceNumber)
	header.Set(FieldInvoiceDate, formatDate(inv.InvoiceDate))
	header.Set(FieldOrderNumber, inv.OrderNumber)
	if inv.Terms != "" {
		header.Set(FieldTerms, inv.Terms)
	}

	rows := make([]Row, 0, len(inv.Lines)+2)
	rows = append(rows, header)
	total := decimal.Zero
	for _, line := range inv.Lines {
		r := NewRow()
		r.Set(FieldItemID, line.ItemID)
		r.Set(FieldQuantity, line.Quantity.String())
		r.Set(FieldUnitPrice, line.UnitPrice.String())
		r.Set(FieldLineAmount, line.LineAmount.String())
		rows = append(rows, r)
		total = total.Add(line.LineAmount)
	}

	trailer := NewRow()
	trailer.Set(FieldTotalAmount, total.String())
	trailer.Set(FieldTotalLineItems, strconv.Itoa(len(inv.Lines)))
	return append(rows, trailer)
}

// Generate856 renders a ShipmentNotice as canonical rows.
func Generate856(sn *ShipmentNotice) []Row {
	header := NewRow()
	header.Set(FieldShipmentID, sn.ShipmentID)
	header.Set(FieldShipDate, formatDate(sn.ShipDate))
	header.Set(FieldOrderNumber, sn.OrderNumber)
	if sn.Carrier != "" {
		header.Set(FieldCarrier, sn.Carrier)
	}
	if sn.TrackingNumber != "" {
		header.Set(FieldTrackingNumber, sn.TrackingNumber)
	}

	rows := make([]Row, 0, len(sn.Lines)+2)
	rows = append(rows, header)
	for _, line := range sn.Lines {
		r := NewRow()
		r.Set(FieldItemID, line.ItemID)
		r.Set(FieldQuantityShipped, line.QuantityShipped.String())
		if line.PackagingUnit != "" {
			r.Set(FieldPackagingUnit, line.PackagingUnit)
		}
		rows = append(rows, r)
	}

	trailer := NewRow()
	trailer.Set(FieldTotalLineItems, strconv.Itoa(len(sn.Lines)))
	return append(rows, trailer)
}
