package pipeline

// InquiryStatus represents the lifecycle state of an inquiry
type InquiryStatus string

const (
	InquiryNew           InquiryStatus = "NEW"
	InquiryContacted     InquiryStatus = "CONTACTED"
	InquiryQualified     InquiryStatus = "QUALIFIED"
	InquiryQuotationSent InquiryStatus = "QUOTATION_SENT"
	InquiryConverted     InquiryStatus = "CONVERTED"
	InquiryLost          InquiryStatus = "LOST"
)

// inquiryRank orders the forward chain NEW -> CONTACTED -> QUALIFIED ->
// QUOTATION_SENT -> CONVERTED. LOST sits outside the chain.
var inquiryRank = map[InquiryStatus]int{
	InquiryNew:           0,
	InquiryContacted:     1,
	InquiryQualified:     2,
	InquiryQuotationSent: 3,
	InquiryConverted:     4,
}

// Valid reports whether the status is a member of the closed enum
func (s InquiryStatus) Valid() bool {
	if s == InquiryLost {
		return true
	}
	_, ok := inquiryRank[s]
	return ok
}

// Terminal reports whether no further transitions are allowed
func (s InquiryStatus) Terminal() bool {
	return s == InquiryConverted || s == InquiryLost
}

// CanTransition reports whether moving from s to next is legal. Forward moves
// through the chain may skip intermediate states; backward moves are rejected.
// LOST is reachable from any non-terminal state.
func (s InquiryStatus) CanTransition(next InquiryStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s.Terminal() {
		return false
	}
	if next == InquiryLost {
		return true
	}
	return inquiryRank[next] > inquiryRank[s]
}

// QuotationStatus represents the lifecycle state of a quotation
type QuotationStatus string

const (
	QuotationDraft    QuotationStatus = "DRAFT"
	QuotationSent     QuotationStatus = "SENT"
	QuotationAccepted QuotationStatus = "ACCEPTED"
	QuotationRejected QuotationStatus = "REJECTED"
	QuotationExpired  QuotationStatus = "EXPIRED"
)

// quotationTransitions is the exhaustive transition table. SENT -> SENT
// covers re-sending a quotation to the client.
var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationDraft:    {QuotationSent, QuotationExpired},
	QuotationSent:     {QuotationSent, QuotationAccepted, QuotationRejected, QuotationExpired},
	QuotationAccepted: {},
	QuotationRejected: {},
	QuotationExpired:  {},
}

// Valid reports whether the status is a member of the closed enum
func (s QuotationStatus) Valid() bool {
	_, ok := quotationTransitions[s]
	return ok
}

// Terminal reports whether no further transitions are allowed
func (s QuotationStatus) Terminal() bool {
	return s == QuotationAccepted || s == QuotationRejected || s == QuotationExpired
}

// Editable reports whether line items, discounts, taxes, commission and
// validity may still be modified
func (s QuotationStatus) Editable() bool {
	return s == QuotationDraft || s == QuotationSent
}

// CanTransition reports whether moving from s to next is legal
func (s QuotationStatus) CanTransition(next QuotationStatus) bool {
	for _, allowed := range quotationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
