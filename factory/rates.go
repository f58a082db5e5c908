package factory

import (
	"encoding/json"
	"fmt"

	"github.com/Chung0221/salary-tracker/payroll"
	"github.com/shopspring/decimal"
)

// =============================================================================
// RATES
// =============================================================================

// RatesJSON is the JSON representation of a RateConfig. Omitted fields keep
// the value of the base configuration they are applied to.
type RatesJSON struct {
	HourlyRate          *decimal.Decimal `json:"hourly_rate,omitempty"`
	OvertimeMultiplier1 *decimal.Decimal `json:"overtime_multiplier1,omitempty"`
	OvertimeMultiplier2 *decimal.Decimal `json:"overtime_multiplier2,omitempty"`
	DefaultBreakMinutes *int             `json:"default_break_minutes,omitempty" validate:"omitempty,min=0,max=1440"`
	SettlementDay       *int             `json:"settlement_day,omitempty" validate:"omitempty,min=1,max=28"`
}

// ParseRates parses a JSON string and applies it on top of base.
func ParseRates(jsonStr string, base payroll.RateConfig) (payroll.RateConfig, error) {
	var rj RatesJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return payroll.RateConfig{}, fmt.Errorf("failed to parse rates JSON: %w", err)
	}
	return RatesFromJSON(rj, base), nil
}

// RatesFromJSON overlays the fields present in rj onto base. The result is
// not validated; callers pass it to Book.UpdateRates.
func RatesFromJSON(rj RatesJSON, base payroll.RateConfig) payroll.RateConfig {
	rc := base
	if rj.HourlyRate != nil {
		rc.HourlyRate = *rj.HourlyRate
	}
	if rj.OvertimeMultiplier1 != nil {
		rc.OvertimeMultiplier1 = *rj.OvertimeMultiplier1
	}
	if rj.OvertimeMultiplier2 != nil {
		rc.OvertimeMultiplier2 = *rj.OvertimeMultiplier2
	}
	if rj.DefaultBreakMinutes != nil {
		rc.DefaultBreakMinutes = *rj.DefaultBreakMinutes
	}
	if rj.SettlementDay != nil {
		rc.SettlementDay = *rj.SettlementDay
	}
	return rc
}

// RatesToJSON converts a RateConfig to a fully populated RatesJSON.
func RatesToJSON(rc payroll.RateConfig) RatesJSON {
	hourly, m1, m2 := rc.HourlyRate, rc.OvertimeMultiplier1, rc.OvertimeMultiplier2
	breakMinutes, settlementDay := rc.DefaultBreakMinutes, rc.SettlementDay
	return RatesJSON{
		HourlyRate:          &hourly,
		OvertimeMultiplier1: &m1,
		OvertimeMultiplier2: &m2,
		DefaultBreakMinutes: &breakMinutes,
		SettlementDay:       &settlementDay,
	}
}

// =============================================================================
// PRESETS
// =============================================================================

// DefaultRatesJSON returns the JSON of DefaultRateConfig.
func DefaultRatesJSON() string {
	b, _ := json.Marshal(RatesToJSON(payroll.DefaultRateConfig()))
	return string(b)
}

// RatesJSONFor builds a rates JSON string for the given hourly rate with the
// default overtime multipliers.
func RatesJSONFor(hourlyRate int64, settlementDay int) string {
	rc := payroll.DefaultRateConfig()
	rc.HourlyRate = decimal.NewFromInt(hourlyRate)
	rc.SettlementDay = settlementDay
	b, _ := json.Marshal(RatesToJSON(rc))
	return string(b)
}
