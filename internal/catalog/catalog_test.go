package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDurationTable(t *testing.T) {
	table, err := NewDurationTable(DefaultRouteDurations)
	require.NoError(t, err)

	assert.Equal(t, 4, table.Len())
	assert.Equal(t, []string{"Jakarta-Padang", "Jakarta-Surabaya", "Jakarta-Bali", "Jakarta-Makassar"}, table.Routes())

	mins, ok := table.Duration("Jakarta-Padang")
	assert.True(t, ok)
	assert.Equal(t, 110, mins)

	_, ok = table.Duration("Jakarta-Medan")
	assert.False(t, ok)
	assert.False(t, table.Has("Padang-Jakarta"))
}

func TestNewDurationTable_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		routes []RouteDuration
	}{
		{"empty", nil},
		{"no separator", []RouteDuration{{"JakartaPadang", 110}}},
		{"too many separators", []RouteDuration{{"Jakarta-Padang-Medan", 110}}},
		{"blank origin", []RouteDuration{{"-Padang", 110}}},
		{"zero duration", []RouteDuration{{"Jakarta-Padang", 0}}},
		{"negative duration", []RouteDuration{{"Jakarta-Padang", -5}}},
		{"duplicate", []RouteDuration{{"Jakarta-Padang", 110}, {"Jakarta-Padang", 90}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDurationTable(tt.routes)
			assert.Error(t, err)
		})
	}
}

func TestDurationTable_RoutesIsCopy(t *testing.T) {
	table, err := NewDurationTable(DefaultRouteDurations)
	require.NoError(t, err)

	routes := table.Routes()
	routes[0] = "mutated"
	assert.Equal(t, "Jakarta-Padang", table.Routes()[0])
}

func TestDurationTable_KeepsConfiguredOrder(t *testing.T) {
	table, err := NewDurationTable([]RouteDuration{
		{"Jakarta-Makassar", 200},
		{"Jakarta-Bali", 170},
		{"Jakarta-Padang", 110},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jakarta-Makassar", "Jakarta-Bali", "Jakarta-Padang"}, table.Routes())
}

func TestSplitRoute(t *testing.T) {
	o, d, ok := SplitRoute("Jakarta-Makassar")
	assert.True(t, ok)
	assert.Equal(t, "Jakarta", o)
	assert.Equal(t, "Makassar", d)

	_, _, ok = SplitRoute("Jakarta")
	assert.False(t, ok)

	assert.Equal(t, "Jakarta-Surabaya", RouteKey("Jakarta", "Surabaya"))
}

func TestLabelEncoder(t *testing.T) {
	enc, err := NewLabelEncoder(EncoderAirline, []string{"Batik Air", "Citilink", "Garuda Indonesia", "Lion Air"})
	require.NoError(t, err)

	code, err := enc.Transform("Garuda Indonesia")
	require.NoError(t, err)
	assert.Equal(t, 2, code)

	_, err = enc.Transform("Sriwijaya Air")
	var unknown *UnknownLabelError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, EncoderAirline, unknown.Encoder)
	assert.Equal(t, "Sriwijaya Air", unknown.Label)

	assert.Equal(t, 4, enc.Len())
}

func TestLabelEncoder_CodeOrderIsClassOrder(t *testing.T) {
	enc, err := NewLabelEncoder(EncoderDescription, []string{"hujan", "cerah", "berawan"})
	require.NoError(t, err)

	code, err := enc.Transform("cerah")
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	assert.Equal(t, []string{"hujan", "cerah", "berawan"}, enc.Classes())
	assert.Equal(t, []string{"berawan", "cerah", "hujan"}, enc.SortedClasses())
}

func TestNewLabelEncoder_Invalid(t *testing.T) {
	_, err := NewLabelEncoder("x", nil)
	assert.Error(t, err)

	_, err = NewLabelEncoder("x", []string{"a", ""})
	assert.Error(t, err)

	_, err = NewLabelEncoder("x", []string{"a", "b", "a"})
	assert.Error(t, err)
}

func TestNewEncoders(t *testing.T) {
	encs, err := NewEncoders(map[string][]string{
		EncoderAirline:     {"Garuda Indonesia"},
		EncoderRoute:       {"Jakarta-Padang"},
		EncoderDescription: {"cerah"},
	})
	require.NoError(t, err)
	assert.Equal(t, EncoderRoute, encs.Route.Name())

	_, err = NewEncoders(map[string][]string{
		EncoderAirline: {"Garuda Indonesia"},
		EncoderRoute:   {"Jakarta-Padang"},
	})
	assert.ErrorContains(t, err, EncoderDescription)
}
