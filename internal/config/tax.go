package config

import (
	"fmt"
	"os"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// taxScheduleFile is the on-disk shape of TAX_SCHEDULE_FILE:
//
//	bands:
//	  - upper_bound: 4380
//	    rate: 0
//	  - rate: 0.35
type taxScheduleFile struct {
	Bands []struct {
		UpperBound *float64 `yaml:"upper_bound"`
		Rate       float64  `yaml:"rate"`
	} `yaml:"bands"`
}

// ParseTaxSchedule decodes and validates an annual band table.
func ParseTaxSchedule(raw []byte) (payroll.TaxSchedule, error) {
	var file taxScheduleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", payroll.ErrInvalidTaxSchedule, err)
	}

	schedule := make(payroll.TaxSchedule, 0, len(file.Bands))
	for _, b := range file.Bands {
		band := payroll.TaxBand{Rate: decimal.NewFromFloat(b.Rate)}
		if b.UpperBound != nil {
			upper := decimal.NewFromFloat(*b.UpperBound)
			band.UpperBound = &upper
		}
		schedule = append(schedule, band)
	}

	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	return schedule, nil
}

// PayrollRules builds the calculator rules: statutory defaults, the
// configured tier ceiling, and the tax schedule file when one is set.
func (c *Config) PayrollRules() (payroll.Rules, error) {
	rules := payroll.DefaultRules()
	rules.Rates.TierCeiling = c.Payroll.TierCeiling

	if c.Payroll.TaxScheduleFile == "" {
		return rules, nil
	}

	raw, err := os.ReadFile(c.Payroll.TaxScheduleFile)
	if err != nil {
		return payroll.Rules{}, fmt.Errorf("failed to read tax schedule file: %w", err)
	}
	schedule, err := ParseTaxSchedule(raw)
	if err != nil {
		return payroll.Rules{}, fmt.Errorf("failed to load %s: %w", c.Payroll.TaxScheduleFile, err)
	}
	rules.Tax = schedule
	return rules, nil
}
