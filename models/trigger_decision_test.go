package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCumulativeTriggerDue(t *testing.T) {
	last1000 := d("1000")
	last2000 := d("2000")

	cases := []struct {
		name    string
		value   decimal.Decimal
		last    *decimal.Decimal
		trigger decimal.Decimal
		want    bool
	}{
		{"first reading counts from zero", d("1000"), nil, d("1000"), true},
		{"below threshold from zero", d("999.99"), nil, d("1000"), false},
		{"full interval elapsed", d("2000"), &last1000, d("1000"), true},
		{"exactly at threshold fires", d("2000"), &last1000, d("1000"), true},
		{"partial interval does not fire", d("2500"), &last2000, d("1000"), false},
		{"just under interval", d("2999.9999"), &last2000, d("1000"), false},
		{"interval overshoot fires once", d("3100"), &last2000, d("1000"), true},
		{"meter rollback never fires", d("500"), &last1000, d("1000"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cumulativeTriggerDue(tc.value, tc.last, tc.trigger)
			if got != tc.want {
				t.Fatalf("cumulativeTriggerDue(%s, %v, %s) = %v; want %v",
					tc.value, tc.last, tc.trigger, got, tc.want)
			}
		})
	}
}

func TestGaugeTriggerDue(t *testing.T) {
	cases := []struct {
		name      string
		condition TriggerCondition
		value     decimal.Decimal
		trigger   decimal.Decimal
		want      bool
	}{
		{"above: over threshold", TriggerConditionAboveThreshold, d("80.01"), d("80"), true},
		{"above: exactly at threshold does not fire", TriggerConditionAboveThreshold, d("80"), d("80"), false},
		{"above: under threshold", TriggerConditionAboveThreshold, d("79.99"), d("80"), false},
		{"below: under threshold", TriggerConditionBelowThreshold, d("19.5"), d("20"), true},
		{"below: exactly at threshold does not fire", TriggerConditionBelowThreshold, d("20"), d("20"), false},
		{"below: over threshold", TriggerConditionBelowThreshold, d("20.01"), d("20"), false},
		{"every-x-units is not a gauge condition", TriggerConditionEveryXUnits, d("100"), d("1"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := gaugeTriggerDue(tc.condition, tc.value, tc.trigger)
			if got != tc.want {
				t.Fatalf("gaugeTriggerDue(%s, %s, %s) = %v; want %v",
					tc.condition, tc.value, tc.trigger, got, tc.want)
			}
		})
	}
}
