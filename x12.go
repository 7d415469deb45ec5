package editrans

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// X12Options carries the control characters and envelope values used when
// reading or writing an X12 transaction payload. The zero value means
// "negotiate from the ISA header if present, else use the conventional
// defaults" (* element, ~ segment, : component, ^ repetition).
type X12Options struct {
	SegmentTerminator   rune
	ElementSeparator    rune
	ComponentSeparator  rune
	RepetitionSeparator rune
	// ControlNumber is the ST02 value on generated payloads. Defaults to
	// "0001".
	ControlNumber string
	// GroupControlNumber is the AK1 reference on generated 997s. Defaults
	// to "1".
	GroupControlNumber string
}

type x12Delimiters struct {
	segment    rune
	element    rune
	component  rune
	repetition rune
}

func (o *X12Options) delimiters() x12Delimiters {
	d := x12Delimiters{
		segment:    defaultSegmentTerminator,
		element:    defaultElementSeparator,
		component:  defaultComponentSeparator,
		repetition: defaultRepetitionSeparator,
	}
	if o == nil {
		return d
	}
	if o.SegmentTerminator != 0 {
		d.segment = o.SegmentTerminator
	}
	if o.ElementSeparator != 0 {
		d.element = o.ElementSeparator
	}
	if o.ComponentSeparator != 0 {
		d.component = o.ComponentSeparator
	}
	if o.RepetitionSeparator != 0 {
		d.repetition = o.RepetitionSeparator
	}
	return d
}

func (o *X12Options) controlNumber() string {
	if o == nil || o.ControlNumber == "" {
		return "0001"
	}
	return o.ControlNumber
}

func (o *X12Options) groupControlNumber() string {
	if o == nil || o.GroupControlNumber == "" {
		return "1"
	}
	return o.GroupControlNumber
}

func (d x12Delimiters) validate() error {
	all := []rune{d.segment, d.element, d.component, d.repetition}
	seen := make(map[rune]bool, len(all))
	for _, r := range all {
		if seen[r] {
			return fmt.Errorf(
				"%w: separators must be distinct (got %q)",
				ErrInvalidSeparators, string(all),
			)
		}
		seen[r] = true
	}
	return nil
}

// rawSegment is one tokenized X12 segment: the segment ID followed by its
// elements.
type rawSegment []string

func (s rawSegment) ID() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func (s rawSegment) at(i int) string {
	if i < 0 || i >= len(s) {
		return ""
	}
	return s[i]
}

// X12Transaction is one parsed transaction-level payload: its set code,
// ST control number, and the canonical rows (header, details, optional
// trailer) produced from its segments.
type X12Transaction struct {
	Set           TransactionSet
	ControlNumber string
	Rows          []Row
}

// ParseX12 tokenizes a single X12 transaction payload into canonical rows.
// If the payload opens with an ISA header, the element separator and
// segment terminator are taken from their fixed positions in the 106-byte
// ISA and the component separator from ISA16; envelope segments
// (ISA/GS/GE/IEA) are then skipped, since envelope batching is the
// transport layer's concern. Without an ISA, delimiters come from opts.
func ParseX12(data []byte, opts *X12Options) (*X12Transaction, error) {
	if !utf8.Valid(data) {
		return nil, newFormatError(FormatX12, 0, errors.New("payload is not valid UTF-8"))
	}
	text := strings.TrimLeftFunc(string(data), unicode.IsSpace)
	if text == "" {
		return nil, newFormatError(FormatX12, 0, ErrEmptyDocument)
	}

	delims := opts.delimiters()
	if strings.HasPrefix(text, isaSegmentID) {
		var err error
		delims, err = negotiateDelimiters(text, delims)
		if err != nil {
			return nil, newFormatError(FormatX12, 0, err)
		}
	}
	if err := delims.validate(); err != nil {
		return nil, newFormatError(FormatX12, 0, err)
	}

	segments, err := splitSegments(text, delims)
	if err != nil {
		return nil, newFormatError(FormatX12, 0, err)
	}

	stSegments, controlNumber, setCode, err := transactionSegments(segments)
	if err != nil {
		return nil, newFormatError(FormatX12, 0, err)
	}
	set, err := ParseTransactionSet(setCode)
	if err != nil {
		return nil, newFormatError(
			FormatX12, 0,
			fmt.Errorf("unknown transaction set code %q", setCode),
		)
	}
	if set == Set997 {
		return nil, &UnsupportedFormatError{Requested: "x12 997 interpretation"}
	}

	rows := rowifySegments(set, stSegments)
	return &X12Transaction{
		Set:           set,
		ControlNumber: controlNumber,
		Rows:          rows,
	}, nil
}

// negotiateDelimiters reads the element separator and segment terminator
// from their fixed offsets in the ISA segment, and the component separator
// from ISA16.
func negotiateDelimiters(text string, delims x12Delimiters) (x12Delimiters, error) {
	runes := []rune(text)
	if len(runes) < isaByteCount {
		return delims, fmt.Errorf(
			"message too short to accommodate ISA segment (expected at least %d bytes, got %d)",
			isaByteCount, len(runes),
		)
	}
	delims.element = runes[isaElementSeparatorIndex]
	delims.segment = runes[isaByteCount-1]
	if delims.segment == delims.element {
		return delims, fmt.Errorf(
			"%w: segment terminator %q cannot be the same as the element separator",
			ErrInvalidSeparators, delims.segment,
		)
	}

	isaLine := string(runes[:isaByteCount-1])
	elems := strings.Split(isaLine, string(delims.element))
	if len(elems) != isaElementCount {
		return delims, fmt.Errorf(
			"ISA segment has %d elements, expected %d",
			len(elems), isaElementCount,
		)
	}
	component := elems[isaElementCount-1]
	if len(component) != 1 {
		return delims, fmt.Errorf(
			"invalid component separator %q (expected a single character)",
			component,
		)
	}
	delims.component = rune(component[0])
	// ISA11 carries the repetition separator only since version 004020;
	// before that it is the interchange standards identifier ("U").
	if version := elems[12]; version >= "00402" {
		if repetition := elems[11]; len(repetition) == 1 {
			delims.repetition = rune(repetition[0])
		}
	}
	return delims, nil
}

// textCleanup drops characters outside the extended X12 character set,
// keeping the segment terminator when it is itself a control character.
func textCleanup(text string, segmentTerminator rune) string {
	keep := extendedCharacterSet
	switch segmentTerminator {
	case '\n', '\r', '\t':
		keep += string(segmentTerminator)
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(keep, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func splitSegments(text string, delims x12Delimiters) ([]rawSegment, error) {
	cleaned := textCleanup(text, delims.segment)
	lines := strings.Split(cleaned, string(delims.segment))
	segments := make([]rawSegment, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seg := rawSegment(strings.Split(line, string(delims.element)))
		if seg.ID() == "" {
			return nil, fmt.Errorf("segment %d has no ID", len(segments)+1)
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return nil, ErrEmptyDocument
	}
	return segments, nil
}

// transactionSegments extracts the single ST..SE bounded group, verifying
// the SE01 segment count against the segments actually present.
func transactionSegments(segments []rawSegment) ([]rawSegment, string, string, error) {
	start := -1
	for i, seg := range segments {
		switch seg.ID() {
		case stSegmentID:
			if start >= 0 {
				return nil, "", "", errors.New(
					"multiple ST segments: one transaction per call",
				)
			}
			start = i
		case isaSegmentID, gsSegmentID, geSegmentID, ieaSegmentID:
			// Envelope segments are tolerated and skipped.
		}
	}
	if start < 0 {
		return nil, "", "", errors.New("no ST segment found")
	}
	end := -1
	for i := start + 1; i < len(segments); i++ {
		if segments[i].ID() == seSegmentID {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, "", "", errors.New("ST segment has no matching SE")
	}

	st := segments[start]
	se := segments[end]
	setCode := st.at(stIndexTransactionSetCode)
	controlNumber := st.at(stIndexControlNumber)

	if declared := se.at(seIndexSegmentCount); declared != "" {
		count, err := strconv.Atoi(declared)
		if err != nil {
			return nil, "", "", fmt.Errorf("invalid SE01 segment count %q", declared)
		}
		actual := end - start + 1
		if count != actual {
			return nil, "", "", fmt.Errorf(
				"SE01 declares %d segments, transaction has %d", count, actual,
			)
		}
	}
	if seControl := se.at(seIndexControlNumber); seControl != "" && seControl != controlNumber {
		return nil, "", "", fmt.Errorf(
			"SE02 control number %q does not match ST02 %q", seControl, controlNumber,
		)
	}
	return segments[start+1 : end], controlNumber, setCode, nil
}

// x12SetLayout describes the segment shape of one transaction set: which
// segment opens the header, which opens each detail loop, which segments
// belong to a detail loop, and which form the summary area.
type x12SetLayout struct {
	detailTrigger string
	detailSegs    map[string]bool
	trailerSegs   map[string]bool
	headerOrder   []string
	detailOrder   []string
	trailerOrder  []string
}

var x12Layouts = map[TransactionSet]x12SetLayout{
	Set850: {
		detailTrigger: po1SegmentID,
		detailSegs:    map[string]bool{pidSegmentID: true},
		trailerSegs:   map[string]bool{cttSegmentID: true},
		headerOrder:   []string{begSegmentID, refSegmentID, itdSegmentID, dtmSegmentID, td5SegmentID, n1SegmentID},
		detailOrder:   []string{po1SegmentID, pidSegmentID},
		trailerOrder:  []string{cttSegmentID},
	},
	Set810: {
		detailTrigger: it1SegmentID,
		detailSegs:    map[string]bool{pidSegmentID: true},
		trailerSegs:   map[string]bool{tdsSegmentID: true, cttSegmentID: true},
		headerOrder:   []string{bigSegmentID, refSegmentID, itdSegmentID, dtmSegmentID, n1SegmentID},
		detailOrder:   []string{it1SegmentID, pidSegmentID},
		trailerOrder:  []string{tdsSegmentID, cttSegmentID},
	},
	Set856: {
		detailTrigger: linSegmentID,
		detailSegs:    map[string]bool{sn1SegmentID: true, pidSegmentID: true},
		trailerSegs:   map[string]bool{cttSegmentID: true},
		headerOrder:   []string{bsnSegmentID, dtmSegmentID, prfSegmentID, td5SegmentID, refSegmentID, n1SegmentID},
		detailOrder:   []string{linSegmentID, sn1SegmentID, pidSegmentID},
		trailerOrder:  []string{cttSegmentID},
	},
}

// rowifySegments folds the transaction's segments into one header row, one
// row per detail loop, and one trailer row when a summary area is present.
// Fields are keyed by segment-qualified element addresses (BEG03, PO102);
// DTM, REF and N1 segments key off their qualifier element (DTM_010,
// REF_CN, N1_BY) so repeated segments stay distinct.
func rowifySegments(set TransactionSet, segments []rawSegment) []Row {
	layout := x12Layouts[set]
	header := NewRow()
	rows := []Row{}
	var detail *Row
	var trailer *Row

	for _, seg := range segments {
		id := seg.ID()
		switch {
		case layout.trailerSegs[id]:
			if trailer == nil {
				t := NewRow()
				trailer = &t
			}
			addSegmentFields(trailer, seg)
		case id == layout.detailTrigger:
			rows = append(rows, NewRow())
			detail = &rows[len(rows)-1]
			addSegmentFields(detail, seg)
		case detail != nil:
			addSegmentFields(detail, seg)
		default:
			addSegmentFields(&header, seg)
		}
	}

	out := make([]Row, 0, len(rows)+2)
	out = append(out, header)
	out = append(out, rows...)
	if trailer != nil {
		out = append(out, *trailer)
	}
	return out
}

// addSegmentFields writes one segment's elements into the row. Empty
// elements are positional placeholders and emit nothing.
func addSegmentFields(row *Row, seg rawSegment) {
	id := seg.ID()
	switch id {
	case dtmSegmentID, refSegmentID:
		qualifier := seg.at(1)
		if qualifier == "" {
			return
		}
		row.Set(id+"_"+qualifier, seg.at(2))
	case n1SegmentID:
		qualifier := seg.at(1)
		if qualifier == "" {
			return
		}
		key := id + "_" + qualifier
		row.Set(key, seg.at(2))
		if v := seg.at(3); v != "" {
			row.Set(key+"_IDQ", v)
		}
		if v := seg.at(4); v != "" {
			row.Set(key+"_ID", v)
		}
	default:
		for i := 1; i < len(seg); i++ {
			if seg[i] == "" {
				continue
			}
			row.Set(elementAddress(id, i), seg[i])
		}
	}
}

// elementAddress is the field name for a plain segment element:
// elementAddress("PO1", 2) == "PO102". splitX12Field is its inverse.
func elementAddress(tag string, index int) string {
	return fmt.Sprintf("%s%02d", tag, index)
}

// generateX12 is the inverse of ParseX12's rowification: rows in the
// element-address vocabulary become segments wrapped in a fresh ST/SE
// envelope, serialized with the configured delimiters. Every payload it
// produces re-parses through ParseX12 to the same rows.
func generateX12(rows []Row, set TransactionSet, opts *X12Options) ([]byte, error) {
	if set == Set997 {
		return nil, &UnsupportedFormatError{Requested: "x12 997 row generation (use GenerateX12997)"}
	}
	layout, ok := x12Layouts[set]
	if !ok {
		return nil, &UnsupportedFormatError{Requested: fmt.Sprintf("x12 %s generation", set)}
	}
	if len(rows) == 0 {
		return nil, newFormatError(FormatX12, 0, ErrEmptyDocument)
	}
	delims := opts.delimiters()
	if err := delims.validate(); err != nil {
		return nil, newFormatError(FormatX12, 0, err)
	}

	controlNumber := opts.controlNumber()
	segments := []rawSegment{{stSegmentID, set.Code(), controlNumber}}

	var trailerRows []Row
	bodyRows := []Row{rows[0]}
	for _, row := range rows[1:] {
		if rowHasSegmentTag(row, layout.trailerSegs) {
			trailerRows = append(trailerRows, row)
			continue
		}
		bodyRows = append(bodyRows, row)
	}

	segs, err := segmentizeRow(bodyRows[0], layout.headerOrder)
	if err != nil {
		return nil, newFormatError(FormatX12, 1, err)
	}
	segments = append(segments, segs...)
	for i, row := range bodyRows[1:] {
		segs, err := segmentizeRow(row, layout.detailOrder)
		if err != nil {
			return nil, newFormatError(FormatX12, i+2, err)
		}
		segments = append(segments, segs...)
	}
	for _, row := range trailerRows {
		segs, err := segmentizeRow(row, layout.trailerOrder)
		if err != nil {
			return nil, newFormatError(FormatX12, 0, err)
		}
		segments = append(segments, segs...)
	}

	segments = append(segments, rawSegment{
		seSegmentID,
		strconv.Itoa(len(segments) + 1),
		controlNumber,
	})
	return serializeSegments(segments, delims)
}

// qualifiedGroup accumulates the qualified-segment fields (DTM_010,
// N1_BY_ID) of one row, grouped by segment tag and qualifier.
type qualifiedGroup struct {
	tag       string
	qualifier string
	value     string
	idq       string
	id        string
}

// segmentizeRow rebuilds segments from a row's element-address fields.
// Tags listed in order come out first; any remaining tags follow sorted,
// so generation stays deterministic regardless of field order.
func segmentizeRow(row Row, order []string) ([]rawSegment, error) {
	plain := make(map[string]map[int]string)
	plainMax := make(map[string]int)
	qualified := make(map[string]map[string]*qualifiedGroup)

	for _, field := range row.Fields() {
		value := row.Get(field)
		tag, index, qualifier, sub, err := splitX12Field(field)
		if err != nil {
			return nil, err
		}
		if qualifier == "" {
			if plain[tag] == nil {
				plain[tag] = make(map[int]string)
			}
			plain[tag][index] = value
			if index > plainMax[tag] {
				plainMax[tag] = index
			}
			continue
		}
		if qualified[tag] == nil {
			qualified[tag] = make(map[string]*qualifiedGroup)
		}
		g := qualified[tag][qualifier]
		if g == nil {
			g = &qualifiedGroup{tag: tag, qualifier: qualifier}
			qualified[tag][qualifier] = g
		}
		switch sub {
		case "":
			g.value = value
		case "IDQ":
			g.idq = value
		case "ID":
			g.id = value
		default:
			return nil, fmt.Errorf("unrecognized field name %q", field)
		}
	}

	tags := make([]string, 0, len(plain)+len(qualified))
	seen := make(map[string]bool)
	for _, tag := range order {
		if (plain[tag] != nil || qualified[tag] != nil) && !seen[tag] {
			tags = append(tags, tag)
			seen[tag] = true
		}
	}
	var rest []string
	for tag := range plain {
		if !seen[tag] {
			rest = append(rest, tag)
			seen[tag] = true
		}
	}
	for tag := range qualified {
		if !seen[tag] {
			rest = append(rest, tag)
			seen[tag] = true
		}
	}
	sort.Strings(rest)
	tags = append(tags, rest...)

	var segments []rawSegment
	for _, tag := range tags {
		if elems := plain[tag]; elems != nil {
			seg := make(rawSegment, plainMax[tag]+1)
			seg[0] = tag
			for i, v := range elems {
				seg[i] = v
			}
			segments = append(segments, seg)
		}
		if groups := qualified[tag]; groups != nil {
			qualifiers := make([]string, 0, len(groups))
			for q := range groups {
				qualifiers = append(qualifiers, q)
			}
			sort.Strings(qualifiers)
			for _, q := range qualifiers {
				g := groups[q]
				seg := rawSegment{tag, g.qualifier, g.value}
				if g.idq != "" || g.id != "" {
					seg = append(seg, g.idq, g.id)
				}
				segments = append(segments, seg)
			}
		}
	}
	return segments, nil
}

// splitX12Field decomposes a field name into its segment address. Plain
// addresses look like BEG03 (tag + two-digit element index); qualified
// addresses look like DTM_010, REF_CN, N1_BY, N1_BY_ID, N1_BY_IDQ.
func splitX12Field(name string) (tag string, index int, qualifier, sub string, err error) {
	if i := strings.IndexByte(name, '_'); i > 0 {
		tag = name[:i]
		rest := name[i+1:]
		if j := strings.LastIndexByte(rest, '_'); j > 0 {
			suffix := rest[j+1:]
			if suffix == "ID" || suffix == "IDQ" {
				return tag, 0, rest[:j], suffix, nil
			}
		}
		if rest == "" {
			return "", 0, "", "", fmt.Errorf("unrecognized field name %q", name)
		}
		return tag, 0, rest, "", nil
	}
	if len(name) < 3 {
		return "", 0, "", "", fmt.Errorf("unrecognized field name %q", name)
	}
	idx, convErr := strconv.Atoi(name[len(name)-2:])
	if convErr != nil || idx < 1 {
		return "", 0, "", "", fmt.Errorf("unrecognized field name %q", name)
	}
	return name[:len(name)-2], idx, "", "", nil
}

// rowHasSegmentTag reports whether any of the row's fields address one of
// the given segment tags.
func rowHasSegmentTag(row Row, tags map[string]bool) bool {
	for _, field := range row.Fields() {
		tag, _, _, _, err := splitX12Field(field)
		if err == nil && tags[tag] {
			return true
		}
	}
	return false
}

// serializeSegments writes segments using the given delimiters, checking
// that no element value contains a delimiter, which would make the output
// unparseable.
func serializeSegments(segments []rawSegment, delims x12Delimiters) ([]byte, error) {
	var b strings.Builder
	for _, seg := range segments {
		for i, elem := range seg {
			if strings.ContainsAny(elem, string([]rune{
				delims.segment, delims.element, delims.component,
			})) {
				return nil, newFormatError(
					FormatX12, 0,
					fmt.Errorf(
						"segment %s element %d value %q contains a delimiter",
						seg.ID(), i, elem,
					),
				)
			}
			if i > 0 {
				b.WriteRune(delims.element)
			}
			b.WriteString(elem)
		}
		b.WriteRune(delims.segment)
	}
	return []byte(b.String()), nil
}
