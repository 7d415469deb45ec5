package editrans

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// AckStatus is the per-transaction disposition reported in a 997.
type AckStatus uint

const (
	// AckAccepted: interpretation succeeded with no findings.
	AckAccepted AckStatus = iota
	// AckAcceptedWithErrors: interpretation succeeded but carried
	// recoverable findings (control total mismatches, excluded lines).
	AckAcceptedWithErrors
	// AckRejected: interpretation failed structurally.
	AckRejected
)

func (s AckStatus) String() string {
	switch s {
	case AckAccepted:
		return "accepted"
	case AckAcceptedWithErrors:
		return "accepted_with_errors"
	case AckRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Code returns the X12 AK5 acknowledgment code for the status.
func (s AckStatus) Code() string {
	switch s {
	case AckAccepted:
		return "A"
	case AckAcceptedWithErrors:
		return "E"
	case AckRejected:
		return "R"
	default:
		return ""
	}
}

// TransactionOutcome records how one inbound transaction fared during
// interpretation. A 997 batch is built from these, one per transaction, in
// the order the transactions were processed.
type TransactionOutcome struct {
	// TransactionID is the partner's reference for the transaction (the
	// ST02 control number for X12 inputs).
	TransactionID string
	Set           TransactionSet
	Status        AckStatus
	Errors        []string
}

// OutcomeFromReport derives an outcome from an interpretation result: a
// fatal error rejects the transaction, recoverable findings accept it with
// errors, a clean report accepts it.
func OutcomeFromReport(transactionID string, set TransactionSet, report *InterpretReport, err error) TransactionOutcome {
	outcome := TransactionOutcome{TransactionID: transactionID, Set: set}
	switch {
	case err != nil:
		outcome.Status = AckRejected
		outcome.Errors = []string{err.Error()}
	case report != nil && !report.Clean():
		outcome.Status = AckAcceptedWithErrors
		for _, w := range report.Warnings {
			outcome.Errors = append(outcome.Errors, w.Error())
		}
		for _, le := range report.LineErrors {
			outcome.Errors = append(outcome.Errors, le.Error())
		}
	default:
		outcome.Status = AckAccepted
	}
	return outcome
}

// AckBatch is the input to 997 generation: the outcomes of one processing
// run, in received order. BatchID ties the acknowledgment back to the run
// that produced it.
type AckBatch struct {
	BatchID  uuid.UUID
	Outcomes []TransactionOutcome
}

// NewAckBatch assembles a batch, assigning it a fresh BatchID.
func NewAckBatch(outcomes ...TransactionOutcome) *AckBatch {
	return &AckBatch{BatchID: uuid.New(), Outcomes: outcomes}
}

// Generate997 renders the batch as canonical rows: exactly one row per
// outcome, in batch order, since partners correlate acknowledgment entries
// to their submissions positionally and by reference number.
func Generate997(batch *AckBatch) []Row {
	rows := make([]Row, 0, len(batch.Outcomes))
	for _, outcome := range batch.Outcomes {
		r := NewRow()
		r.Set("transactionId", outcome.TransactionID)
		r.Set("transactionSet", outcome.Set.Code())
		r.Set("status", outcome.Status.String())
		r.Set("statusCode", outcome.Status.Code())
		r.Set("errorCount", strconv.Itoa(len(outcome.Errors)))
		r.Set("errors", strings.Join(outcome.Errors, "; "))
		r.Set("batchId", batch.BatchID.String())
		rows = append(rows, r)
	}
	return rows
}

// GenerateX12997 renders the batch as an X12 997 transaction payload:
// ST, AK1, one AK2/AK5 pair per outcome, AK9 with freshly computed counts,
// SE. Delimiters and control numbers come from opts.
func GenerateX12997(batch *AckBatch, opts *X12Options) ([]byte, error) {
	delims := opts.delimiters()
	if err := delims.validate(); err != nil {
		return nil, newFormatError(FormatX12, 0, err)
	}
	controlNumber := opts.controlNumber()

	functionalID := functionalIdentifierCodes[Set997.Code()]
	if len(batch.Outcomes) > 0 {
		functionalID = functionalIdentifierCodes[batch.Outcomes[0].Set.Code()]
	}

	segments := []rawSegment{
		{stSegmentID, Set997.Code(), controlNumber},
		{ak1SegmentID, functionalID, opts.groupControlNumber()},
	}
	accepted := 0
	for _, outcome := range batch.Outcomes {
		segments = append(segments,
			rawSegment{ak2SegmentID, outcome.Set.Code(), outcome.TransactionID},
			rawSegment{ak5SegmentID, outcome.Status.Code()},
		)
		if outcome.Status != AckRejected {
			accepted++
		}
	}

	groupCode := "A"
	switch {
	case len(batch.Outcomes) == 0:
	case accepted == 0:
		groupCode = "R"
	case accepted < len(batch.Outcomes):
		groupCode = "P"
	}
	received := strconv.Itoa(len(batch.Outcomes))
	segments = append(segments, rawSegment{
		ak9SegmentID, groupCode, received, received, strconv.Itoa(accepted),
	})
	segments = append(segments, rawSegment{
		seSegmentID, strconv.Itoa(len(segments) + 1), controlNumber,
	})
	return serializeSegments(segments, delims)
}
