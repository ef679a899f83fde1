package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHotelCode(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Acme Grand", "ACM"},
		{"acme", "ACM"},
		{"A 1 Hotel", "A1H"},
		{"Ñandú Resort", "ÑAN"},
		{"München Hof", "MÜN"},
		{"Zo", "HTL"},
		{"", "HTL"},
		{"---", "HTL"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HotelCode(c.name), c.name)
	}
}

func TestFormatReference(t *testing.T) {
	at := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "Q-ACM-2608-0001", FormatReference("Acme Grand", at, 1))
	assert.Equal(t, "Q-HTL-2608-0042", FormatReference("", at, 42))
	assert.Equal(t, "Q-ACM-2608-12345", FormatReference("Acme Grand", at, 12345))
}

func TestPeriodBucketsByMonth(t *testing.T) {
	aug := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	sep := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2608", Period(aug))
	assert.Equal(t, "2609", Period(sep))
	assert.NotEqual(t, Period(aug), Period(sep))
}
