package budget

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEpsilonComparisons(t *testing.T) {
	if !ApproxEqual(dec("100"), dec("100.004")) {
		t.Error("100 and 100.004 should be equal within epsilon")
	}
	if ApproxEqual(dec("100"), dec("100.006")) {
		t.Error("100 and 100.006 should differ")
	}
	if !AtLeast(dec("99.996"), dec("100")) {
		t.Error("99.996 should count as at least 100")
	}
	if AtLeast(dec("99.99"), dec("100")) {
		t.Error("99.99 should not count as at least 100")
	}
	if Exceeds(dec("60.005"), dec("60")) {
		t.Error("60.005 should not exceed 60 within epsilon")
	}
	if !Exceeds(dec("70"), dec("60")) {
		t.Error("70 should exceed 60")
	}
	if !IsZero(dec("0.004")) || IsZero(dec("0.01")) {
		t.Error("IsZero boundary is wrong")
	}
}
