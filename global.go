package editrans

const (
	isaSegmentID = "ISA"
	ieaSegmentID = "IEA"
	gsSegmentID  = "GS"
	geSegmentID  = "GE"
	stSegmentID  = "ST"
	seSegmentID  = "SE"

	begSegmentID = "BEG"
	bigSegmentID = "BIG"
	bsnSegmentID = "BSN"
	prfSegmentID = "PRF"
	refSegmentID = "REF"
	dtmSegmentID = "DTM"
	itdSegmentID = "ITD"
	td5SegmentID = "TD5"
	n1SegmentID  = "N1"
	po1SegmentID = "PO1"
	it1SegmentID = "IT1"
	linSegmentID = "LIN"
	sn1SegmentID = "SN1"
	pidSegmentID = "PID"
	cttSegmentID = "CTT"
	tdsSegmentID = "TDS"
	ak1SegmentID = "AK1"
	ak2SegmentID = "AK2"
	ak5SegmentID = "AK5"
	ak9SegmentID = "AK9"

	basicCharacterSet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 !\"&'()+*,-./:;?="
	extendedCharacterSet = basicCharacterSet + "abcdefghijklmnopqrstuvwxyz%~@[]_{}\\|<>^`#$"

	isaElementCount          = 17
	isaByteCount             = 106
	isaElementSeparatorIndex = 3
)

// Default X12 delimiters, used when a payload carries no ISA header to
// negotiate them from and the caller does not override.
const (
	defaultElementSeparator    = '*'
	defaultSegmentTerminator   = '~'
	defaultComponentSeparator  = ':'
	defaultRepetitionSeparator = '^'
)

const (
	stIndexTransactionSetCode = iota + 1
	stIndexControlNumber
)

const (
	seIndexSegmentCount = iota + 1
	seIndexControlNumber
)

// BEG (850 header): beginning segment for purchase order
const (
	begIndexPurposeCode = iota + 1
	begIndexOrderTypeCode
	begIndexOrderNumber
	begIndexReleaseNumber
	begIndexDate
)

// BIG (810 header): beginning segment for invoice
const (
	bigIndexInvoiceDate = iota + 1
	bigIndexInvoiceNumber
	bigIndexOrderDate
	bigIndexOrderNumber
)

// BSN (856 header): beginning segment for ship notice
const (
	bsnIndexPurposeCode = iota + 1
	bsnIndexShipmentID
	bsnIndexDate
	bsnIndexTime
)

// PO1 (850 detail): baseline item data
const (
	po1IndexAssignedID = iota + 1
	po1IndexQuantity
	po1IndexUnitOfMeasure
	po1IndexUnitPrice
	po1IndexPriceBasis
	po1IndexItemIDQualifier
	po1IndexItemID
)

// IT1 (810 detail): baseline item data, invoice
const (
	it1IndexAssignedID = iota + 1
	it1IndexQuantity
	it1IndexUnitOfMeasure
	it1IndexUnitPrice
	it1IndexPriceBasis
	it1IndexItemIDQualifier
	it1IndexItemID
)

// LIN / SN1 (856 detail): item identification and line detail
const (
	linIndexAssignedID = iota + 1
	linIndexItemIDQualifier
	linIndexItemID
)

const (
	sn1IndexAssignedID = iota + 1
	sn1IndexQuantityShipped
	sn1IndexUnitOfMeasure
)

const (
	cttIndexLineItems = iota + 1
	cttIndexHashTotal
)

const tdsIndexTotalAmount = 1

const prfIndexOrderNumber = 1

const td5IndexRouting = 5

const itdIndexTermsDescription = 12

// Canonical field names shared by the interpreters and generators. Codec
// output reaches these names through a field mapping table; the built-in
// X12 tables in mapping.go translate element addresses to them.
const (
	FieldOrderNumber       = "orderNumber"
	FieldOrderDate         = "orderDate"
	FieldRequestedShipDate = "requestedShipDate"
	FieldBuyerID           = "buyerId"
	FieldVendorID          = "vendorId"

	FieldItemID        = "itemId"
	FieldQuantity      = "quantity"
	FieldUnitPrice     = "unitPrice"
	FieldUnitOfMeasure = "unitOfMeasure"
	FieldLineAmount    = "lineAmount"

	FieldInvoiceNumber = "invoiceNumber"
	FieldInvoiceDate   = "invoiceDate"
	FieldTerms         = "terms"
	FieldTotalAmount   = "totalAmount"

	FieldShipmentID      = "shipmentId"
	FieldShipDate        = "shipDate"
	FieldCarrier         = "carrier"
	FieldTrackingNumber  = "trackingNumber"
	FieldQuantityShipped = "quantityShipped"
	FieldPackagingUnit   = "packagingUnit"

	FieldTotalLineItems = "totalLineItems"
)

// functionalIdentifierCodes maps a transaction set code to the GS01
// functional identifier used when acknowledging it in a 997.
var functionalIdentifierCodes = map[string]string{
	"850": "PO",
	"810": "IN",
	"856": "SH",
	"997": "FA",
}
