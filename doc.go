// Package editrans translates EDI trading-partner documents to and from
// canonical ERP business records.
//
// Inbound, raw document bytes (X12, CSV, XML, JSON or XLSX) are decoded by a
// format codec into a flat sequence of field/value rows, renamed through a
// per-partner field mapping table, and assembled by a transaction set
// interpreter into a typed entity (PurchaseOrder, Invoice, ShipmentNotice).
// Outbound is the mirror image, and a batch of interpretation outcomes can
// be summarized as a 997 functional acknowledgment.
//
// Every operation in this package is a pure, stateless transform over
// in-memory buffers: there is no I/O, no retained state between calls, and
// all exported functions are safe for concurrent use. Persistence,
// transport and partner connectivity belong to the calling service.
package editrans
