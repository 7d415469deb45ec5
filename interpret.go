package editrans

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InterpretOptions tunes transaction set interpretation. The zero value is
// usable: marker fields and the amount tolerance fall back to per-set
// defaults, and a nil Logger means no logging.
type InterpretOptions struct {
	// TrailerMarkerField identifies the trailer/summary row: the first row
	// after the header that carries this field. Defaults to
	// "totalLineItems" (850/856) or "totalAmount" (810).
	TrailerMarkerField string
	// AmountTolerance bounds acceptable rounding drift when reconciling an
	// invoice total against its line amounts. Defaults to 0.01 when not
	// valid; a valid zero demands exact agreement.
	AmountTolerance decimal.NullDecimal
	// Logger, when set, receives interpretation warnings at Warn level.
	Logger *slog.Logger
}

func (o *InterpretOptions) markerField(fallback string) string {
	if o != nil && o.TrailerMarkerField != "" {
		return o.TrailerMarkerField
	}
	return fallback
}

func (o *InterpretOptions) amountTolerance() decimal.Decimal {
	if o != nil && o.AmountTolerance.Valid {
		return o.AmountTolerance.Decimal
	}
	return decimal.New(1, -2)
}

func (o *InterpretOptions) logger() *slog.Logger {
	if o == nil {
		return nil
	}
	return o.Logger
}

// InterpretReport accompanies every successfully interpreted entity. It
// carries the recoverable findings: control total mismatches and other
// warnings, plus the detail rows that were excluded as defective. The
// DocumentID correlates the interpretation with downstream logs and 997
// acknowledgment batches.
type InterpretReport struct {
	DocumentID uuid.UUID
	Warnings   []error
	LineErrors []LineError
}

// Clean reports whether interpretation completed without warnings or
// excluded lines.
func (r *InterpretReport) Clean() bool {
	return len(r.Warnings) == 0 && len(r.LineErrors) == 0
}

func newInterpretReport() *InterpretReport {
	return &InterpretReport{DocumentID: uuid.New()}
}

func (r *InterpretReport) warn(logger *slog.Logger, err error) {
	r.Warnings = append(r.Warnings, err)
	if logger != nil {
		logger.Warn(
			"interpretation warning",
			"documentId", r.DocumentID,
			"error", err,
		)
	}
}

func (r *InterpretReport) flagLine(logger *slog.Logger, lineErr LineError) {
	r.LineErrors = append(r.LineErrors, lineErr)
	if logger != nil {
		logger.Warn(
			"detail row excluded",
			"documentId", r.DocumentID,
			"row", lineErr.Row,
			"error", lineErr.Err,
		)
	}
}

var dateLayouts = []string{
	"20060102",
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// headerReader wraps required/optional field access over the header row,
// turning failures into fatal TransactionError values.
type headerReader struct {
	set TransactionSet
	row Row
	err error
}

func (h *headerReader) require(field string) string {
	if h.err != nil {
		return ""
	}
	v, ok := h.row.Lookup(field)
	if !ok || v == "" {
		h.err = missingField(h.set, field, 0)
		return ""
	}
	return v
}

func (h *headerReader) optional(field string) string {
	return h.row.Get(field)
}

func (h *headerReader) requireDate(field string) time.Time {
	v := h.require(field)
	if h.err != nil {
		return time.Time{}
	}
	t, err := parseDate(v)
	if err != nil {
		h.err = invalidValue(h.set, field, v, 0, err)
		return time.Time{}
	}
	return t
}

func (h *headerReader) optionalDate(field string) time.Time {
	v, ok := h.row.Lookup(field)
	if h.err != nil || !ok || v == "" {
		return time.Time{}
	}
	t, err := parseDate(v)
	if err != nil {
		h.err = invalidValue(h.set, field, v, 0, err)
		return time.Time{}
	}
	return t
}

func (h *headerReader) optionalDecimal(field string) (decimal.Decimal, bool) {
	v, ok := h.row.Lookup(field)
	if h.err != nil || !ok || v == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		h.err = invalidValue(h.set, field, v, 0, err)
		return decimal.Zero, false
	}
	return d, true
}

// lineReader is the detail-row counterpart: a failure marks the row
// defective (recorded on the report, row excluded) instead of aborting the
// document.
type lineReader struct {
	row Row
	// index is the 1-based input row index, for operator-facing errors.
	index int
	err   *LineError
}

func (l *lineReader) require(field string) string {
	if l.err != nil {
		return ""
	}
	v, ok := l.row.Lookup(field)
	if !ok || v == "" {
		l.err = &LineError{Row: l.index, Field: field, Err: ErrMissingRequiredField}
		return ""
	}
	return v
}

func (l *lineReader) requireDecimal(field string) decimal.Decimal {
	v := l.require(field)
	if l.err != nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		l.err = &LineError{
			Row: l.index, Field: field, Value: v,
			Err: fmt.Errorf("%w: %w", ErrInvalidFieldValue, err),
		}
		return decimal.Zero
	}
	return d
}

func (l *lineReader) optionalDecimal(field string) (decimal.Decimal, bool) {
	v, ok := l.row.Lookup(field)
	if l.err != nil || !ok || v == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		l.err = &LineError{
			Row: l.index, Field: field, Value: v,
			Err: fmt.Errorf("%w: %w", ErrInvalidFieldValue, err),
		}
		return decimal.Zero, false
	}
	return d, true
}

func (l *lineReader) optional(field string) string {
	return l.row.Get(field)
}

// splitDocument separates the header row, detail rows and optional trailer
// row. Detail rows keep their original 1-based input index for error
// reporting. The trailer is the first non-header row carrying the marker
// field.
type indexedRow struct {
	index int
	row   Row
}

func splitDocument(rows []Row, marker string) (header Row, details []indexedRow, trailer *Row) {
	header = rows[0]
	for i, row := range rows[1:] {
		if trailer == nil && row.Has(marker) {
			r := row
			trailer = &r
			continue
		}
		details = append(details, indexedRow{index: i + 2, row: row})
	}
	return header, details, trailer
}

// checkLineCount compares a trailer-declared line count against the lines
// actually assembled. A mismatch is recoverable: detail data is usually
// more trustworthy than a stale trailer, so the entity is still returned
// with the warning attached.
func checkLineCount(set TransactionSet, trailer *Row, assembled int, report *InterpretReport, logger *slog.Logger) error {
	if trailer == nil {
		return nil
	}
	v, ok := trailer.Lookup(FieldTotalLineItems)
	if !ok || v == "" {
		return nil
	}
	declared, err := decimal.NewFromString(v)
	if err != nil {
		return invalidValue(set, FieldTotalLineItems, v, 0, err)
	}
	actual := decimal.NewFromInt(int64(assembled))
	if !declared.Equal(actual) {
		report.warn(logger, &ControlTotalError{
			Field:    FieldTotalLineItems,
			Expected: declared,
			Actual:   actual,
		})
	}
	return nil
}

// Interpret850 assembles a PurchaseOrder from an 850-shaped row sequence:
// one header row, detail rows in partner order, and an optional trailer
// whose line count is checked against the assembled lines.
func Interpret850(rows []Row, opts *InterpretOptions) (*PurchaseOrder, *InterpretReport, error) {
	if len(rows) == 0 {
		return nil, nil, &TransactionError{Set: Set850, Err: ErrEmptyDocument}
	}
	report := newInterpretReport()
	logger := opts.logger()
	headerRow, details, trailer := splitDocument(rows, opts.markerField(FieldTotalLineItems))

	h := &headerReader{set: Set850, row: headerRow}
	po := &PurchaseOrder{
		OrderNumber:       h.require(FieldOrderNumber),
		OrderDate:         h.requireDate(FieldOrderDate),
		RequestedShipDate: h.optionalDate(FieldRequestedShipDate),
		BuyerID:           h.optional(FieldBuyerID),
		VendorID:          h.optional(FieldVendorID),
	}
	if h.err != nil {
		return nil, nil, h.err
	}

	for _, d := range details {
		l := &lineReader{row: d.row, index: d.index}
		line := PurchaseOrderLine{
			ItemID:        l.require(FieldItemID),
			Quantity:      l.requireDecimal(FieldQuantity),
			UnitOfMeasure: l.optional(FieldUnitOfMeasure),
		}
		line.UnitPrice, _ = l.optionalDecimal(FieldUnitPrice)
		if l.err != nil {
			report.flagLine(logger, *l.err)
			continue
		}
		po.Lines = append(po.Lines, line)
	}

	if err := checkLineCount(Set850, trailer, len(po.Lines), report, logger); err != nil {
		return nil, nil, err
	}
	return po, report, nil
}

// Interpret810 assembles an Invoice. The line amount is taken from the
// partner's lineAmount field when present, otherwise computed as quantity
// times unit price. The declared invoice total (trailer, or header as some
// flat-file partners send it) is reconciled against the line sum within
// the configured tolerance.
func Interpret810(rows []Row, opts *InterpretOptions) (*Invoice, *InterpretReport, error) {
	if len(rows) == 0 {
		return nil, nil, &TransactionError{Set: Set810, Err: ErrEmptyDocument}
	}
	report := newInterpretReport()
	logger := opts.logger()
	headerRow, details, trailer := splitDocument(rows, opts.markerField(FieldTotalAmount))

	h := &headerReader{set: Set810, row: headerRow}
	inv := &Invoice{
		InvoiceNumber: h.require(FieldInvoiceNumber),
		InvoiceDate:   h.requireDate(FieldInvoiceDate),
		OrderNumber:   h.require(FieldOrderNumber),
		Terms:         h.optional(FieldTerms),
	}
	declaredTotal, haveTotal := h.optionalDecimal(FieldTotalAmount)
	if h.err != nil {
		return nil, nil, h.err
	}

	for _, d := range details {
		l := &lineReader{row: d.row, index: d.index}
		line := InvoiceLine{
			ItemID:   l.require(FieldItemID),
			Quantity: l.requireDecimal(FieldQuantity),
		}
		line.UnitPrice, _ = l.optionalDecimal(FieldUnitPrice)
		amount, haveAmount := l.optionalDecimal(FieldLineAmount)
		if l.err != nil {
			report.flagLine(logger, *l.err)
			continue
		}
		if !haveAmount {
			amount = line.Quantity.Mul(line.UnitPrice)
		}
		line.LineAmount = amount
		inv.Lines = append(inv.Lines, line)
	}

	if trailer != nil {
		if v, ok := trailer.Lookup(FieldTotalAmount); ok && v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return nil, nil, invalidValue(Set810, FieldTotalAmount, v, 0, err)
			}
			declaredTotal, haveTotal = d, true
		}
		if err := checkLineCount(Set810, trailer, len(inv.Lines), report, logger); err != nil {
			return nil, nil, err
		}
	}

	lineTotal := inv.LineTotal()
	if haveTotal {
		inv.TotalAmount = declaredTotal
		if declaredTotal.Sub(lineTotal).Abs().GreaterThan(opts.amountTolerance()) {
			report.warn(logger, &ControlTotalError{
				Field:    FieldTotalAmount,
				Expected: declaredTotal,
				Actual:   lineTotal,
			})
		}
	} else {
		inv.TotalAmount = lineTotal
	}
	return inv, report, nil
}

// Interpret856 assembles a ShipmentNotice.
func Interpret856(rows []Row, opts *InterpretOptions) (*ShipmentNotice, *InterpretReport, error) {
	if len(rows) == 0 {
		return nil, nil, &TransactionError{Set: Set856, Err: ErrEmptyDocument}
	}
	report := newInterpretReport()
	logger := opts.logger()
	headerRow, details, trailer := splitDocument(rows, opts.markerField(FieldTotalLineItems))

	h := &headerReader{set: Set856, row: headerRow}
	sn := &ShipmentNotice{
		ShipmentID:     h.require(FieldShipmentID),
		ShipDate:       h.requireDate(FieldShipDate),
		Carrier:        h.optional(FieldCarrier),
		TrackingNumber: h.optional(FieldTrackingNumber),
		OrderNumber:    h.require(FieldOrderNumber),
	}
	if h.err != nil {
		return nil, nil, h.err
	}

	for _, d := range details {
		l := &lineReader{row: d.row, index: d.index}
		line := ShipmentLine{
			ItemID:          l.require(FieldItemID),
			QuantityShipped: l.requireDecimal(FieldQuantityShipped),
			PackagingUnit:   l.optional(FieldPackagingUnit),
		}
		if l.err != nil {
			report.flagLine(logger, *l.err)
			continue
		}
		sn.Lines = append(sn.Lines, line)
	}

	if err := checkLineCount(Set856, trailer, len(sn.Lines), report, logger); err != nil {
		return nil, nil, err
	}
	return sn, report, nil
}
