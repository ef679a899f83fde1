package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInquiryTransitions(t *testing.T) {
	cases := []struct {
		from, to InquiryStatus
		ok       bool
	}{
		{InquiryNew, InquiryContacted, true},
		{InquiryNew, InquiryQuotationSent, true}, // skipping forward is allowed
		{InquiryNew, InquiryConverted, true},
		{InquiryContacted, InquiryNew, false},
		{InquiryQualified, InquiryContacted, false},
		{InquiryNew, InquiryLost, true},
		{InquiryQuotationSent, InquiryLost, true},
		{InquiryConverted, InquiryLost, false},
		{InquiryLost, InquiryContacted, false},
		{InquiryNew, InquiryStatus("BOGUS"), false},
		{InquiryStatus("BOGUS"), InquiryNew, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestInquiryTerminal(t *testing.T) {
	assert.True(t, InquiryConverted.Terminal())
	assert.True(t, InquiryLost.Terminal())
	assert.False(t, InquiryQuotationSent.Terminal())
}

func TestQuotationTransitions(t *testing.T) {
	cases := []struct {
		from, to QuotationStatus
		ok       bool
	}{
		{QuotationDraft, QuotationSent, true},
		{QuotationSent, QuotationSent, true}, // resend
		{QuotationSent, QuotationAccepted, true},
		{QuotationSent, QuotationRejected, true},
		{QuotationDraft, QuotationAccepted, false},
		{QuotationDraft, QuotationExpired, true},
		{QuotationAccepted, QuotationRejected, false},
		{QuotationRejected, QuotationSent, false},
		{QuotationExpired, QuotationSent, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestQuotationEditable(t *testing.T) {
	assert.True(t, QuotationDraft.Editable())
	assert.True(t, QuotationSent.Editable())
	assert.False(t, QuotationAccepted.Editable())
	assert.False(t, QuotationRejected.Editable())
	assert.False(t, QuotationExpired.Editable())
}

func TestEffectiveQuotationStatus(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	// SENT past its deadline reads as EXPIRED
	got := EffectiveQuotationStatus(QuotationSent, now.Add(-time.Hour), now)
	assert.Equal(t, QuotationExpired, got)

	// still valid
	got = EffectiveQuotationStatus(QuotationSent, now.Add(time.Hour), now)
	assert.Equal(t, QuotationSent, got)

	// terminal states are never rewritten
	got = EffectiveQuotationStatus(QuotationAccepted, now.Add(-time.Hour), now)
	assert.Equal(t, QuotationAccepted, got)

	// zero deadline means no expiry
	got = EffectiveQuotationStatus(QuotationDraft, time.Time{}, now)
	assert.Equal(t, QuotationDraft, got)
}
