package editrans

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MappingTable is a validated, bidirectional table of external field name to
// canonical field name, scoped to one document or transaction type. Tables
// are immutable once built and may be shared across concurrent calls.
type MappingTable struct {
	name    string
	forward map[string]string // external -> canonical
	inverse map[string]string // canonical -> external
}

// NewMappingTable builds a table from external→canonical pairs. Two
// external fields mapping to the same canonical field would make the
// reverse direction ambiguous, so that is rejected here, at build time,
// rather than checked per row.
func NewMappingTable(name string, pairs map[string]string) (*MappingTable, error) {
	t := &MappingTable{
		name:    name,
		forward: make(map[string]string, len(pairs)),
		inverse: make(map[string]string, len(pairs)),
	}
	for external, canonical := range pairs {
		if external == "" || canonical == "" {
			return nil, fmt.Errorf(
				"mapping table %q: empty field name in entry %q -> %q",
				name, external, canonical,
			)
		}
		if prior, ok := t.inverse[canonical]; ok {
			// Map iteration order is random; report the pair stably.
			first, second := prior, external
			if second < first {
				first, second = second, first
			}
			return nil, fmt.Errorf(
				"%w: table %q: %q and %q both map to %q",
				ErrAmbiguousMapping, name, first, second, canonical,
			)
		}
		t.forward[external] = canonical
		t.inverse[canonical] = external
	}
	return t, nil
}

// Name returns the table's configured name.
func (t *MappingTable) Name() string {
	return t.name
}

// Len returns the number of entries.
func (t *MappingTable) Len() int {
	return len(t.forward)
}

// Canonical returns the canonical name for an external field, with ok
// reporting whether the table maps it.
func (t *MappingTable) Canonical(external string) (string, bool) {
	v, ok := t.forward[external]
	return v, ok
}

// External returns the external name for a canonical field, with ok
// reporting whether the table maps it.
func (t *MappingTable) External(canonical string) (string, bool) {
	v, ok := t.inverse[canonical]
	return v, ok
}

// ApplyFieldMappings renames each row's external field names to their
// canonical names. Fields absent from the table pass through untouched:
// partner documents commonly carry fields the ERP does not use, and those
// are preserved, not dropped. The input rows are never mutated.
func ApplyFieldMappings(rows []Row, table *MappingTable) []Row {
	return renameRows(rows, table, false)
}

// ReverseFieldMappings is the exact inverse of ApplyFieldMappings for the
// same table: canonical names become external names, everything else
// passes through.
func ReverseFieldMappings(rows []Row, table *MappingTable) []Row {
	return renameRows(rows, table, true)
}

func renameRows(rows []Row, table *MappingTable, reverse bool) []Row {
	if table == nil {
		table = &MappingTable{}
	}
	lookup := table.forward
	if reverse {
		lookup = table.inverse
	}
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = row.rename(lookup)
	}
	return out
}

// mappingTableDoc is the YAML shape produced by the partner configuration
// store: a table name plus external→canonical field pairs.
type mappingTableDoc struct {
	Name   string            `yaml:"name"`
	Fields map[string]string `yaml:"fields"`
}

// LoadMappingTable decodes and validates a mapping table from YAML bytes.
// Fetching those bytes (database, file, admin API) is the caller's concern.
func LoadMappingTable(data []byte) (*MappingTable, error) {
	var doc mappingTableDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding mapping table: %w", err)
	}
	if len(doc.Fields) == 0 {
		return nil, fmt.Errorf("mapping table %q: no field entries", doc.Name)
	}
	return NewMappingTable(doc.Name, doc.Fields)
}

// Built-in tables translating X12 element addresses (BEG03, IT102, ...) to
// the canonical vocabulary. TranslateX12 and RenderX12 use these unless the
// caller supplies a partner-specific table. Plain addresses are derived
// from the segment element indexes in global.go; qualified addresses
// (DTM_010, REF_CN, N1_BY_ID) are spelled out since the qualifier value is
// part of the name.
var (
	Default850Mapping = mustMappingTable("x12-850", default850Fields())
	Default810Mapping = mustMappingTable("x12-810", default810Fields())
	Default856Mapping = mustMappingTable("x12-856", default856Fields())
)

func default850Fields() map[string]string {
	f := make(map[string]string)
	f[elementAddress(begSegmentID, begIndexOrderNumber)] = FieldOrderNumber
	f[elementAddress(begSegmentID, begIndexDate)] = FieldOrderDate
	f["DTM_010"] = FieldRequestedShipDate
	f["N1_BY_ID"] = FieldBuyerID
	f["N1_VN_ID"] = FieldVendorID
	f[elementAddress(po1SegmentID, po1IndexQuantity)] = FieldQuantity
	f[elementAddress(po1SegmentID, po1IndexUnitOfMeasure)] = FieldUnitOfMeasure
	f[elementAddress(po1SegmentID, po1IndexUnitPrice)] = FieldUnitPrice
	f[elementAddress(po1SegmentID, po1IndexItemID)] = FieldItemID
	f[elementAddress(cttSegmentID, cttIndexLineItems)] = FieldTotalLineItems
	return f
}

func default810Fields() map[string]string {
	f := make(map[string]string)
	f[elementAddress(bigSegmentID, bigIndexInvoiceDate)] = FieldInvoiceDate
	f[elementAddress(bigSegmentID, bigIndexInvoiceNumber)] = FieldInvoiceNumber
	f[elementAddress(bigSegmentID, bigIndexOrderNumber)] = FieldOrderNumber
	f[elementAddress(itdSegmentID, itdIndexTermsDescription)] = FieldTerms
	f[elementAddress(it1SegmentID, it1IndexQuantity)] = FieldQuantity
	f[elementAddress(it1SegmentID, it1IndexUnitOfMeasure)] = FieldUnitOfMeasure
	f[elementAddress(it1SegmentID, it1IndexUnitPrice)] = FieldUnitPrice
	f[elementAddress(it1SegmentID, it1IndexItemID)] = FieldItemID
	f[elementAddress(tdsSegmentID, tdsIndexTotalAmount)] = FieldTotalAmount
	f[elementAddress(cttSegmentID, cttIndexLineItems)] = FieldTotalLineItems
	return f
}

func default856Fields() map[string]string {
	f := make(map[string]string)
	f[elementAddress(bsnSegmentID, bsnIndexShipmentID)] = FieldShipmentID
	f[elementAddress(bsnSegmentID, bsnIndexDate)] = FieldShipDate
	f[elementAddress(prfSegmentID, prfIndexOrderNumber)] = FieldOrderNumber
	f[elementAddress(td5SegmentID, td5IndexRouting)] = FieldCarrier
	f["REF_CN"] = FieldTrackingNumber
	f[elementAddress(linSegmentID, linIndexItemID)] = FieldItemID
	f[elementAddress(sn1SegmentID, sn1IndexQuantityShipped)] = FieldQuantityShipped
	f[elementAddress(sn1SegmentID, sn1IndexUnitOfMeasure)] = FieldPackagingUnit
	f[elementAddress(cttSegmentID, cttIndexLineItems)] = FieldTotalLineItems
	return f
}

func mustMappingTable(name string, pairs map[string]string) *MappingTable {
	t, err := NewMappingTable(name, pairs)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in mapping table %s: %s", name, err))
	}
	return t
}
