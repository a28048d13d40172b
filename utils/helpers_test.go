package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name  string
		input string
		exp   string
	}{
		{name: "small value unchanged", input: "950", exp: "950"},
		{name: "thousands grouped", input: "10000", exp: "10,000"},
		{name: "millions grouped", input: "1234567", exp: "1,234,567"},
		{name: "cents preserved", input: "10000.55", exp: "10,000.55"},
		{name: "no padding added", input: "10000.5", exp: "10,000.5"},
		{name: "negative credit balance", input: "-500", exp: "-500"},
		{name: "negative grouped", input: "-1234567.5", exp: "-1,234,567.5"},
		{name: "zero", input: "0", exp: "0"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tc.input)
			if err != nil {
				t.Fatalf("bad test input %q: %v", tc.input, err)
			}
			if got := FormatMoney(d); got != tc.exp {
				t.Fatalf("expected %q, got %q", tc.exp, got)
			}
		})
	}
}
