package editrans

import (
	"fmt"
	"strings"
)

// Format identifies a document wire format. The set is closed: the
// dispatcher switches over it exhaustively, so adding a format is a
// compile-time visible change rather than a string-switch fallthrough.
type Format uint

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatXML
	FormatJSON
	FormatXLSX
	FormatX12
)

var formatNames = map[Format]string{
	FormatUnknown: "",
	FormatCSV:     "csv",
	FormatXML:     "xml",
	FormatJSON:    "json",
	FormatXLSX:    "xlsx",
	FormatX12:     "x12",
}

func (f Format) String() string {
	return formatNames[f]
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseFormat resolves a declared format tag, case-insensitively. An
// unrecognized tag is a caller error surfaced before any parsing attempt.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xml":
		return FormatXML, nil
	case "json":
		return FormatJSON, nil
	case "xlsx":
		return FormatXLSX, nil
	case "x12":
		return FormatX12, nil
	default:
		return FormatUnknown, &UnsupportedFormatError{Requested: s}
	}
}

// TransactionSet identifies an X12 transaction set.
type TransactionSet uint

const (
	SetUnknown TransactionSet = iota
	Set850                    // Purchase Order
	Set810                    // Invoice
	Set856                    // Advance Ship Notice
	Set997                    // Functional Acknowledgment (generation only)
)

var transactionSetCodes = map[TransactionSet]string{
	SetUnknown: "",
	Set850:     "850",
	Set810:     "810",
	Set856:     "856",
	Set997:     "997",
}

// Code returns the X12 transaction set code, e.g. "850".
func (s TransactionSet) Code() string {
	return transactionSetCodes[s]
}

func (s TransactionSet) String() string {
	switch s {
	case Set850:
		return "850 Purchase Order"
	case Set810:
		return "810 Invoice"
	case Set856:
		return "856 Ship Notice"
	case Set997:
		return "997 Functional Acknowledgment"
	default:
		return "unknown transaction set"
	}
}

func (s TransactionSet) MarshalText() ([]byte, error) {
	return []byte(s.Code()), nil
}

// ParseTransactionSet resolves a transaction set code.
func ParseTransactionSet(code string) (TransactionSet, error) {
	switch strings.TrimSpace(code) {
	case "850":
		return Set850, nil
	case "810":
		return Set810, nil
	case "856":
		return Set856, nil
	case "997":
		return Set997, nil
	default:
		return SetUnknown, &UnsupportedFormatError{Requested: code}
	}
}

// DocumentOptions tunes the generic codec path. The zero value (or nil) is
// usable everywhere.
type DocumentOptions struct {
	// RootTag and RowTag configure the XML codec. Defaults: "rows", "row".
	RootTag string
	RowTag  string
	// Delimiter overrides the CSV field separator. Default comma.
	Delimiter rune
	// X12 carries delimiters and control numbers for the X12 path.
	X12 *X12Options
	// X12Set declares the transaction set when generating X12 rows.
	X12Set TransactionSet
}

func (o *DocumentOptions) csvDelimiter() rune {
	if o == nil {
		return 0
	}
	return o.Delimiter
}

func (o *DocumentOptions) xmlRootTag() string {
	if o == nil || o.RootTag == "" {
		return defaultRootTag
	}
	return o.RootTag
}

func (o *DocumentOptions) xmlRowTag() string {
	if o == nil || o.RowTag == "" {
		return defaultRowTag
	}
	return o.RowTag
}

func (o *DocumentOptions) x12() *X12Options {
	if o == nil {
		return nil
	}
	return o.X12
}

// ParseDocument routes raw bytes to the codec for the declared format and
// returns canonical rows. For X12 the rows are the rowified transaction
// (header, details, trailer) still keyed by element address; use
// TranslateX12 for the typed-entity path.
func ParseDocument(data []byte, format Format, opts *DocumentOptions) ([]Row, error) {
	switch format {
	case FormatCSV:
		return parseCSV(data, opts)
	case FormatXML:
		return parseXML(data, opts)
	case FormatJSON:
		return parseJSON(data, opts)
	case FormatXLSX:
		return parseXLSX(data, opts)
	case FormatX12:
		txn, err := ParseX12(data, opts.x12())
		if err != nil {
			return nil, err
		}
		return txn.Rows, nil
	case FormatUnknown:
		return nil, &UnsupportedFormatError{Requested: format.String()}
	default:
		return nil, &UnsupportedFormatError{Requested: fmt.Sprintf("format(%d)", format)}
	}
}

// GenerateDocument renders canonical rows in the declared format.
// Generation is deterministic: identical input produces byte-identical
// output for the text formats (XLSX cell content is deterministic but its
// zip container is not byte-stable).
func GenerateDocument(rows []Row, format Format, opts *DocumentOptions) ([]byte, error) {
	switch format {
	case FormatCSV:
		return generateCSV(rows, opts)
	case FormatXML:
		return generateXML(rows, opts)
	case FormatJSON:
		return generateJSON(rows, opts)
	case FormatXLSX:
		return generateXLSX(rows, opts)
	case FormatX12:
		var set TransactionSet
		if opts != nil {
			set = opts.X12Set
		}
		if set == SetUnknown {
			return nil, &UnsupportedFormatError{
				Requested: "x12 generation without a transaction set",
			}
		}
		return generateX12(rows, set, opts.x12())
	case FormatUnknown:
		return nil, &UnsupportedFormatError{Requested: format.String()}
	default:
		return nil, &UnsupportedFormatError{Requested: fmt.Sprintf("format(%d)", format)}
	}
}

// TranslateOptions tunes the typed X12 path.
type TranslateOptions struct {
	// X12 carries delimiters; generation also takes its control number.
	X12 *X12Options
	// Mapping overrides the built-in element-address table for the
	// transaction set, for partners with nonstandard layouts.
	Mapping *MappingTable
	// Interpret is passed through to the transaction set interpreter.
	Interpret *InterpretOptions
}

func (o *TranslateOptions) x12() *X12Options {
	if o == nil {
		return nil
	}
	return o.X12
}

func (o *TranslateOptions) interpret() *InterpretOptions {
	if o == nil {
		return nil
	}
	return o.Interpret
}

func (o *TranslateOptions) mapping(fallback *MappingTable) *MappingTable {
	if o == nil || o.Mapping == nil {
		return fallback
	}
	return o.Mapping
}

// TranslationResult is the outcome of the typed X12 inbound path. Exactly
// one of the entity fields is non-nil, matching Set.
type TranslationResult struct {
	Set            TransactionSet
	ControlNumber  string
	PurchaseOrder  *PurchaseOrder
	Invoice        *Invoice
	ShipmentNotice *ShipmentNotice
	Report         *InterpretReport
}

// Outcome summarizes the result as a 997 batch entry.
func (r *TranslationResult) Outcome() TransactionOutcome {
	return OutcomeFromReport(r.ControlNumber, r.Set, r.Report, nil)
}

// TranslateX12 runs the full inbound X12 path: tokenize and rowify the
// payload, identify the transaction set from ST01, rename element
// addresses to canonical fields through the set's mapping table, and run
// the matching interpreter. X12 is dispatched separately from the generic
// row path because the transaction set must be identified before the right
// interpreter can run.
func TranslateX12(data []byte, opts *TranslateOptions) (*TranslationResult, error) {
	txn, err := ParseX12(data, opts.x12())
	if err != nil {
		return nil, err
	}
	result := &TranslationResult{
		Set:           txn.Set,
		ControlNumber: txn.ControlNumber,
	}
	switch txn.Set {
	case Set850:
		rows := ApplyFieldMappings(txn.Rows, opts.mapping(Default850Mapping))
		result.PurchaseOrder, result.Report, err = Interpret850(rows, opts.interpret())
	case Set810:
		rows := ApplyFieldMappings(txn.Rows, opts.mapping(Default810Mapping))
		result.Invoice, result.Report, err = Interpret810(rows, opts.interpret())
	case Set856:
		rows := ApplyFieldMappings(txn.Rows, opts.mapping(Default856Mapping))
		result.ShipmentNotice, result.Report, err = Interpret856(rows, opts.interpret())
	case Set997, SetUnknown:
		// ParseX12 rejects these before we get here.
		return nil, &UnsupportedFormatError{Requested: txn.Set.String()}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RenderX12PurchaseOrder renders an 850 payload for the given order.
func RenderX12PurchaseOrder(po *PurchaseOrder, opts *TranslateOptions) ([]byte, error) {
	rows := ReverseFieldMappings(Generate850(po), opts.mapping(Default850Mapping))
	return generateX12(rows, Set850, opts.x12())
}

// RenderX12Invoice renders an 810 payload for the given invoice. The IT1
// loop has no extended-amount element, so unless the mapping table places
// lineAmount somewhere, it is dropped here and re-derived from quantity
// and unit price on the inbound side.
func RenderX12Invoice(inv *Invoice, opts *TranslateOptions) ([]byte, error) {
	table := opts.mapping(Default810Mapping)
	rows := Generate810(inv)
	if _, ok := table.External(FieldLineAmount); !ok {
		rows = withoutField(rows, FieldLineAmount)
	}
	return generateX12(ReverseFieldMappings(rows, table), Set810, opts.x12())
}

// RenderX12ShipmentNotice renders an 856 payload for the given notice.
func RenderX12ShipmentNotice(sn *ShipmentNotice, opts *TranslateOptions) ([]byte, error) {
	rows := ReverseFieldMappings(Generate856(sn), opts.mapping(Default856Mapping))
	return generateX12(rows, Set856, opts.x12())
}
