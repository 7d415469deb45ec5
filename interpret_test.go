package editrans

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canonical850Rows() []Row {
	return []Row{
		RowOf(
			FieldOrderNumber, "PO-2024-001",
			FieldOrderDate, "2024-01-15",
			FieldRequestedShipDate, "2024-02-01",
			FieldBuyerID, "BUYER01",
			FieldVendorID, "VEND01",
		),
		RowOf(FieldItemID, "WID-100", FieldQuantity, "10", FieldUnitOfMeasure, "EA", FieldUnitPrice, "4.25"),
		RowOf(FieldItemID, "WID-200", FieldQuantity, "5", FieldUnitOfMeasure, "EA", FieldUnitPrice, "12.00"),
		RowOf(FieldTotalLineItems, "2"),
	}
}

func TestInterpret850(t *testing.T) {
	po, report, err := Interpret850(canonical850Rows(), nil)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.NotEqual(t, report.DocumentID.String(), "00000000-0000-0000-0000-000000000000")

	assert.Equal(t, "PO-2024-001", po.OrderNumber)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), po.OrderDate)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), po.RequestedShipDate)
	assert.Equal(t, "BUYER01", po.BuyerID)
	require.Len(t, po.Lines, 2)
	assert.Equal(t, "WID-100", po.Lines[0].ItemID)
	assert.True(t, po.Lines[0].Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, po.Lines[1].UnitPrice.Equal(decimal.RequireFromString("12.00")))
}

func TestInterpret850MissingHeaderField(t *testing.T) {
	rows := canonical850Rows()
	rows[0] = RowOf(FieldOrderDate, "2024-01-15")
	_, _, err := Interpret850(rows, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequiredField)
	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, FieldOrderNumber, txErr.Field)
}

func TestInterpret850InvalidHeaderDate(t *testing.T) {
	rows := canonical850Rows()
	rows[0].Set(FieldOrderDate, "not-a-date")
	_, _, err := Interpret850(rows, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFieldValue)
}

// A defective detail row is excluded and flagged; the rest of the
// document still interprets.
func TestInterpret850DefectiveLine(t *testing.T) {
	rows := canonical850Rows()
	rows[1] = RowOf(FieldQuantity, "10") // itemId missing
	po, report, err := Interpret850(rows, nil)
	require.NoError(t, err)
	require.Len(t, po.Lines, 1)
	assert.Equal(t, "WID-200", po.Lines[0].ItemID)
	require.Len(t, report.LineErrors, 1)
	assert.Equal(t, 2, report.LineErrors[0].Row)
	assert.Equal(t, FieldItemID, report.LineErrors[0].Field)
	assert.ErrorIs(t, &report.LineErrors[0], ErrMissingRequiredField)
	// The one excluded line also trips the trailer count check.
	require.Len(t, report.Warnings, 1)
	var ctErr *ControlTotalError
	assert.ErrorAs(t, report.Warnings[0], &ctErr)
}

func TestInterpret850BadQuantity(t *testing.T) {
	rows := canonical850Rows()
	rows[2].Set(FieldQuantity, "ten")
	_, report, err := Interpret850(rows, nil)
	require.NoError(t, err)
	require.Len(t, report.LineErrors, 1)
	assert.Equal(t, 3, report.LineErrors[0].Row)
	assert.ErrorIs(t, &report.LineErrors[0], ErrInvalidFieldValue)
}

func TestInterpret850Empty(t *testing.T) {
	_, _, err := Interpret850(nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestInterpret810(t *testing.T) {
	rows := []Row{
		RowOf(
			FieldInvoiceNumber, "INV-1001",
			FieldInvoiceDate, "2024-02-01",
			FieldOrderNumber, "PO-2024-001",
			FieldTerms, "NET30",
		),
		RowOf(FieldItemID, "WID-100", FieldQuantity, "10", FieldUnitPrice, "4.25"),
		RowOf(FieldItemID, "WID-200", FieldQuantity, "5", FieldUnitPrice, "12.00", FieldLineAmount, "60.00"),
		RowOf(FieldTotalAmount, "102.50", FieldTotalLineItems, "2"),
	}
	inv, report, err := Interpret810(rows, nil)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, "INV-1001", inv.InvoiceNumber)
	assert.Equal(t, "NET30", inv.Terms)
	require.Len(t, inv.Lines, 2)
	// First line has no lineAmount, so it is computed from qty and price.
	assert.True(t, inv.Lines[0].LineAmount.Equal(decimal.RequireFromString("42.50")))
	assert.True(t, inv.Lines[1].LineAmount.Equal(decimal.RequireFromString("60.00")))
	assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("102.50")))
}

func TestInterpret810TotalMismatch(t *testing.T) {
	rows := []Row{
		RowOf(FieldInvoiceNumber, "INV-1", FieldInvoiceDate, "2024-02-01", FieldOrderNumber, "PO-1"),
		RowOf(FieldItemID, "A", FieldQuantity, "1", FieldUnitPrice, "95.00"),
		RowOf(FieldTotalAmount, "100.00"),
	}
	inv, report, err := Interpret810(rows, nil)
	require.NoError(t, err)
	// Declared total wins, mismatch recorded as a warning.
	assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("100.00")))
	require.Len(t, report.Warnings, 1)
	var ctErr *ControlTotalError
	require.ErrorAs(t, report.Warnings[0], &ctErr)
	assert.ErrorIs(t, report.Warnings[0], ErrControlTotalMismatch)
	assert.Equal(t, FieldTotalAmount, ctErr.Field)
	assert.True(t, ctErr.Expected.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, ctErr.Actual.Equal(decimal.RequireFromString("95.00")))
}

func TestInterpret810ToleranceAbsorbsRounding(t *testing.T) {
	rows := []Row{
		RowOf(FieldInvoiceNumber, "INV-1", FieldInvoiceDate, "2024-02-01", FieldOrderNumber, "PO-1"),
		RowOf(FieldItemID, "A", FieldQuantity, "3", FieldUnitPrice, "33.33"),
		RowOf(FieldTotalAmount, "100.00"),
	}
	_, report, err := Interpret810(rows, nil)
	require.NoError(t, err)
	assert.True(t, report.Clean(), "99.99 vs 100.00 is within the default tolerance")
}

// A configured zero tolerance demands exact agreement; the default only
// kicks in while the tolerance is unset.
func TestInterpret810ZeroTolerance(t *testing.T) {
	rows := []Row{
		RowOf(FieldInvoiceNumber, "INV-1", FieldInvoiceDate, "2024-02-01", FieldOrderNumber, "PO-1"),
		RowOf(FieldItemID, "A", FieldQuantity, "3", FieldUnitPrice, "33.33"),
		RowOf(FieldTotalAmount, "100.00"),
	}
	opts := &InterpretOptions{AmountTolerance: decimal.NewNullDecimal(decimal.Zero)}
	_, report, err := Interpret810(rows, opts)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.ErrorIs(t, report.Warnings[0], ErrControlTotalMismatch)
}

func TestInterpret810HeaderTotal(t *testing.T) {
	// Some flat-file partners carry the total on the header and send no
	// trailer at all. With a custom marker no row matches as trailer.
	rows := []Row{
		RowOf(
			FieldInvoiceNumber, "INV-1",
			FieldInvoiceDate, "2024-02-01",
			FieldOrderNumber, "PO-1",
			FieldTotalAmount, "42.50",
		),
		RowOf(FieldItemID, "A", FieldQuantity, "10", FieldUnitPrice, "4.25"),
	}
	inv, report, err := Interpret810(rows, &InterpretOptions{TrailerMarkerField: "__none__"})
	require.NoError(t, err)
	assert.True(t, report.Clean())
	require.Len(t, inv.Lines, 1)
	assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("42.50")))
}

func TestInterpret810NoDeclaredTotal(t *testing.T) {
	rows := []Row{
		RowOf(FieldInvoiceNumber, "INV-1", FieldInvoiceDate, "2024-02-01", FieldOrderNumber, "PO-1"),
		RowOf(FieldItemID, "A", FieldQuantity, "2", FieldUnitPrice, "5.00"),
	}
	inv, report, err := Interpret810(rows, nil)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("10.00")))
}

func TestInterpret856(t *testing.T) {
	rows := []Row{
		RowOf(
			FieldShipmentID, "SHP-500",
			FieldShipDate, "2024-02-10",
			FieldOrderNumber, "PO-2024-001",
			FieldCarrier, "UPS GROUND",
			FieldTrackingNumber, "1Z999AA10123456784",
		),
		RowOf(FieldItemID, "WID-100", FieldQuantityShipped, "10", FieldPackagingUnit, "EA"),
		RowOf(FieldItemID, "WID-200", FieldQuantityShipped, "5", FieldPackagingUnit, "EA"),
		RowOf(FieldTotalLineItems, "2"),
	}
	sn, report, err := Interpret856(rows, nil)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, "SHP-500", sn.ShipmentID)
	assert.Equal(t, "1Z999AA10123456784", sn.TrackingNumber)
	require.Len(t, sn.Lines, 2)
	assert.True(t, sn.Lines[1].QuantityShipped.Equal(decimal.NewFromInt(5)))
}

func TestInterpret856MissingShipmentID(t *testing.T) {
	rows := []Row{
		RowOf(FieldShipDate, "2024-02-10", FieldOrderNumber, "PO-1"),
	}
	_, _, err := Interpret856(rows, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequiredField)
}

func TestInterpret856LineCountMismatch(t *testing.T) {
	rows := []Row{
		RowOf(FieldShipmentID, "S", FieldShipDate, "2024-02-10", FieldOrderNumber, "PO-1"),
		RowOf(FieldItemID, "A", FieldQuantityShipped, "1"),
		RowOf(FieldTotalLineItems, "3"),
	}
	_, report, err := Interpret856(rows, nil)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.ErrorIs(t, report.Warnings[0], ErrControlTotalMismatch)
}

func TestParseDateLayouts(t *testing.T) {
	for _, value := range []string{"20240115", "2024-01-15", "01/15/2024"} {
		ts, err := parseDate(value)
		require.NoError(t, err, value)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), ts)
	}
	_, err := parseDate("Jan 15")
	assert.Error(t, err)
}
