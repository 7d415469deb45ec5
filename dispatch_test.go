package editrans

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"csv", FormatCSV},
		{"XML", FormatXML},
		{" json ", FormatJSON},
		{"xlsx", FormatXLSX},
		{"x12", FormatX12},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("edifact")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseTransactionSet(t *testing.T) {
	set, err := ParseTransactionSet("850")
	require.NoError(t, err)
	assert.Equal(t, Set850, set)
	assert.Equal(t, "850", set.Code())

	_, err = ParseTransactionSet("204")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseDocumentUnknownFormat(t *testing.T) {
	_, err := ParseDocument([]byte("x"), FormatUnknown, nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = ParseDocument([]byte("x"), Format(99), nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestGenerateDocumentX12RequiresSet(t *testing.T) {
	rows := []Row{RowOf("BEG03", "PO-1")}
	_, err := GenerateDocument(rows, FormatX12, nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	out, err := GenerateDocument(rows, FormatX12, &DocumentOptions{X12Set: Set850})
	require.NoError(t, err)
	assert.Contains(t, string(out), "BEG***PO-1~")
}

// The same rows survive a pass through every text format.
func TestCrossFormatRoundTrip(t *testing.T) {
	rows := []Row{
		RowOf("id", "1", "desc", "left <bracket> & \"quote\"", "qty", "5"),
		RowOf("id", "2", "desc", "", "qty", "3"),
	}
	for _, format := range []Format{FormatCSV, FormatXML, FormatJSON, FormatXLSX} {
		t.Run(format.String(), func(t *testing.T) {
			data, err := GenerateDocument(rows, format, nil)
			require.NoError(t, err)
			back, err := ParseDocument(data, format, nil)
			require.NoError(t, err)
			assert.True(t, EqualRows(rows, back), "rows changed through %s", format)
		})
	}
}

func TestTranslateX12PurchaseOrder(t *testing.T) {
	result, err := TranslateX12(fixture(t, "850.txt"), nil)
	require.NoError(t, err)
	assert.Equal(t, Set850, result.Set)
	assert.Equal(t, "0001", result.ControlNumber)
	require.NotNil(t, result.PurchaseOrder)
	assert.Nil(t, result.Invoice)
	assert.True(t, result.Report.Clean())

	po := result.PurchaseOrder
	assert.Equal(t, "PO-2024-001", po.OrderNumber)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), po.OrderDate)
	assert.Equal(t, "BUYER01", po.BuyerID)
	assert.Equal(t, "VEND01", po.VendorID)
	require.Len(t, po.Lines, 2)
	assert.Equal(t, "WID-100", po.Lines[0].ItemID)
	assert.True(t, po.Lines[0].Quantity.Equal(decimal.NewFromInt(10)))

	outcome := result.Outcome()
	assert.Equal(t, AckAccepted, outcome.Status)
	assert.Equal(t, "0001", outcome.TransactionID)
}

func TestTranslateX12Invoice(t *testing.T) {
	result, err := TranslateX12(fixture(t, "810.txt"), nil)
	require.NoError(t, err)
	require.NotNil(t, result.Invoice)
	assert.True(t, result.Report.Clean())

	inv := result.Invoice
	assert.Equal(t, "INV-1001", inv.InvoiceNumber)
	assert.Equal(t, "PO-2024-001", inv.OrderNumber)
	require.Len(t, inv.Lines, 2)
	assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("102.50")))
}

func TestTranslateX12ShipmentNotice(t *testing.T) {
	result, err := TranslateX12(fixture(t, "856.txt"), nil)
	require.NoError(t, err)
	require.NotNil(t, result.ShipmentNotice)
	assert.True(t, result.Report.Clean())

	sn := result.ShipmentNotice
	assert.Equal(t, "SHP-500", sn.ShipmentID)
	assert.Equal(t, "UPS GROUND", sn.Carrier)
	assert.Equal(t, "1Z999AA10123456784", sn.TrackingNumber)
	require.Len(t, sn.Lines, 2)
	assert.True(t, sn.Lines[0].QuantityShipped.Equal(decimal.NewFromInt(10)))
}

func TestTranslateX12CustomMapping(t *testing.T) {
	// An override replaces the built-in table entirely, so fields it does
	// not cover stay unmapped.
	table, err := NewMappingTable("partner", map[string]string{
		"BEG03": FieldOrderNumber,
		"BEG05": FieldOrderDate,
		"PO107": FieldItemID,
		"PO102": FieldQuantity,
		"CTT01": FieldTotalLineItems,
	})
	require.NoError(t, err)
	result, err := TranslateX12(fixture(t, "850.txt"), &TranslateOptions{Mapping: table})
	require.NoError(t, err)
	po := result.PurchaseOrder
	assert.Equal(t, "PO-2024-001", po.OrderNumber)
	assert.Empty(t, po.BuyerID, "buyerId is not mapped by the partner table")
}

func TestRenderX12PurchaseOrderRoundTrip(t *testing.T) {
	po := samplePurchaseOrder()
	payload, err := RenderX12PurchaseOrder(po, nil)
	require.NoError(t, err)

	result, err := TranslateX12(payload, nil)
	require.NoError(t, err)
	require.NotNil(t, result.PurchaseOrder)
	assert.True(t, result.Report.Clean())
	back := result.PurchaseOrder
	assert.Equal(t, po.OrderNumber, back.OrderNumber)
	assert.True(t, po.OrderDate.Equal(back.OrderDate))
	assert.Equal(t, po.BuyerID, back.BuyerID)
	require.Len(t, back.Lines, len(po.Lines))
	for i := range po.Lines {
		assert.Equal(t, po.Lines[i].ItemID, back.Lines[i].ItemID)
		assert.True(t, po.Lines[i].Quantity.Equal(back.Lines[i].Quantity))
	}
}

func TestRenderX12InvoiceRoundTrip(t *testing.T) {
	inv := &Invoice{
		InvoiceNumber: "INV-1001",
		InvoiceDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		OrderNumber:   "PO-2024-001",
		Lines: []InvoiceLine{
			{ItemID: "WID-100", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("4.25"), LineAmount: decimal.RequireFromString("42.50")},
		},
	}
	payload, err := RenderX12Invoice(inv, nil)
	require.NoError(t, err)

	result, err := TranslateX12(payload, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Invoice)
	assert.True(t, result.Report.Clean())
	back := result.Invoice
	assert.Equal(t, inv.InvoiceNumber, back.InvoiceNumber)
	require.Len(t, back.Lines, 1)
	// The wire format has no line amount element, so it comes back derived.
	assert.True(t, back.Lines[0].LineAmount.Equal(decimal.RequireFromString("42.50")))
	assert.True(t, back.TotalAmount.Equal(decimal.RequireFromString("42.50")))
}

func TestRenderX12ShipmentNoticeRoundTrip(t *testing.T) {
	sn := &ShipmentNotice{
		ShipmentID:     "SHP-500",
		ShipDate:       time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		OrderNumber:    "PO-2024-001",
		Carrier:        "UPS GROUND",
		TrackingNumber: "1Z999AA10123456784",
		Lines: []ShipmentLine{
			{ItemID: "WID-100", QuantityShipped: decimal.NewFromInt(10), PackagingUnit: "EA"},
		},
	}
	payload, err := RenderX12ShipmentNotice(sn, nil)
	require.NoError(t, err)

	result, err := TranslateX12(payload, nil)
	require.NoError(t, err)
	require.NotNil(t, result.ShipmentNotice)
	assert.True(t, result.Report.Clean())
	back := result.ShipmentNotice
	assert.Equal(t, sn.ShipmentID, back.ShipmentID)
	assert.Equal(t, sn.TrackingNumber, back.TrackingNumber)
	require.Len(t, back.Lines, 1)
	assert.Equal(t, "EA", back.Lines[0].PackagingUnit)
}

func TestRenderX12ControlNumber(t *testing.T) {
	payload, err := RenderX12PurchaseOrder(samplePurchaseOrder(), &TranslateOptions{
		X12: &X12Options{ControlNumber: "7777"},
	})
	require.NoError(t, err)
	result, err := TranslateX12(payload, nil)
	require.NoError(t, err)
	assert.Equal(t, "7777", result.ControlNumber)
}
