package planner

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// RiskTolerance is an ordinal scale of how much volatility the investor accepts.
type RiskTolerance int

// Risk tolerances in increasing order. The zero value is invalid.
const (
	Conservative RiskTolerance = iota + 1
	Moderate
	Aggressive
)

var riskToleranceNames = map[RiskTolerance]string{
	Conservative: "Conservative",
	Moderate:     "Moderate",
	Aggressive:   "Aggressive",
}

func (r RiskTolerance) String() string {
	if name, ok := riskToleranceNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RiskTolerance(%d)", int(r))
}

// Valid reports whether r is one of the declared tolerances.
func (r RiskTolerance) Valid() bool {
	_, ok := riskToleranceNames[r]
	return ok
}

// ParseRiskTolerance accepts any casing and spacing of a tolerance name.
func ParseRiskTolerance(s string) (RiskTolerance, error) {
	key := enumKey(s)
	for r, name := range riskToleranceNames {
		if enumKey(name) == key {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown risk tolerance %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (r RiskTolerance) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid risk tolerance %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RiskTolerance) UnmarshalText(b []byte) error {
	parsed, err := ParseRiskTolerance(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// InvestmentGoal is the primary objective the plan is built around.
type InvestmentGoal int

// Investment goals. The zero value is invalid.
const (
	GoalRetirement InvestmentGoal = iota + 1
	GoalHouse
	GoalEducation
	GoalEmergencyFund
	GoalWealthBuilding
)

var investmentGoalNames = map[InvestmentGoal]string{
	GoalRetirement:     "Retirement",
	GoalHouse:          "House",
	GoalEducation:      "Education",
	GoalEmergencyFund:  "Emergency Fund",
	GoalWealthBuilding: "Wealth Building",
}

func (g InvestmentGoal) String() string {
	if name, ok := investmentGoalNames[g]; ok {
		return name
	}
	return fmt.Sprintf("InvestmentGoal(%d)", int(g))
}

// Valid reports whether g is one of the declared goals.
func (g InvestmentGoal) Valid() bool {
	_, ok := investmentGoalNames[g]
	return ok
}

// ParseInvestmentGoal accepts "Emergency Fund", "emergency_fund", "EMERGENCYFUND" and so on.
func ParseInvestmentGoal(s string) (InvestmentGoal, error) {
	key := enumKey(s)
	for g, name := range investmentGoalNames {
		if enumKey(name) == key {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown investment goal %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (g InvestmentGoal) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid investment goal %d", int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *InvestmentGoal) UnmarshalText(b []byte) error {
	parsed, err := ParseInvestmentGoal(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// TimeHorizon is the investment horizon in whole years.
type TimeHorizon int

// Supported horizons.
var timeHorizons = []TimeHorizon{5, 10, 20, 30, 40}

// Years returns the horizon as an int.
func (h TimeHorizon) Years() int { return int(h) }

// Months returns the horizon in months.
func (h TimeHorizon) Months() int { return int(h) * 12 }

// Valid reports whether h is one of the supported horizons.
func (h TimeHorizon) Valid() bool {
	return slices.Contains(timeHorizons, h)
}

func (h TimeHorizon) String() string {
	return fmt.Sprintf("%d years", int(h))
}

// MarshalText implements encoding.TextMarshaler.
func (h TimeHorizon) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *TimeHorizon) UnmarshalText(b []byte) error {
	parsed, err := parseTimeHorizon(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Profile is the canonical, validated planner input.
type Profile struct {
	Age              int            `json:"age"`
	Income           float64        `json:"income"`
	RiskTolerance    RiskTolerance  `json:"riskTolerance"`
	InvestmentGoal   InvestmentGoal `json:"investmentGoal"`
	TimeHorizon      TimeHorizon    `json:"timeHorizon"`
	CurrentSavings   float64        `json:"currentSavings"`
	MonthlyExpenses  float64        `json:"monthlyExpenses"`
	HasEmergencyFund bool           `json:"hasEmergencyFund"`
	Has401k          bool           `json:"has401k"`
	EmployerMatch    float64        `json:"employerMatch"`
}

// MonthlyIncome is the gross annual income spread over twelve months.
func (p Profile) MonthlyIncome() float64 {
	return p.Income / 12
}

// Validate checks every field in declaration order and reports the first violation.
func (p Profile) Validate() error {
	checks := []func() *ValidationError{
		func() *ValidationError { return checkAge(p.Age) },
		func() *ValidationError { return checkAmount("income", p.Income) },
		func() *ValidationError {
			if !p.RiskTolerance.Valid() {
				return invalid("riskTolerance", "must be one of Conservative, Moderate, Aggressive")
			}
			return nil
		},
		func() *ValidationError {
			if !p.InvestmentGoal.Valid() {
				return invalid("investmentGoal", "must be one of Retirement, House, Education, Emergency Fund, Wealth Building")
			}
			return nil
		},
		func() *ValidationError {
			if !p.TimeHorizon.Valid() {
				return invalid("timeHorizon", "must be one of 5, 10, 20, 30, 40 years")
			}
			return nil
		},
		func() *ValidationError { return checkAmount("currentSavings", p.CurrentSavings) },
		func() *ValidationError { return checkAmount("monthlyExpenses", p.MonthlyExpenses) },
		func() *ValidationError { return checkMatch(p.EmployerMatch) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// RawProfile is loosely typed profile input as decoded from JSON, YAML or form values.
// Keys are lowerCamelCase; snake_case aliases are also accepted.
type RawProfile map[string]any

var fieldAliases = map[string]string{
	"riskTolerance":    "risk_tolerance",
	"investmentGoal":   "investment_goal",
	"timeHorizon":      "time_horizon",
	"currentSavings":   "current_savings",
	"monthlyExpenses":  "monthly_expenses",
	"hasEmergencyFund": "has_emergency_fund",
	"has401k":          "has_401k",
	"employerMatch":    "employer_match",
}

func (r RawProfile) lookup(field string) (any, bool) {
	v, ok := r[field]
	if !ok {
		if alias, has := fieldAliases[field]; has {
			v, ok = r[alias]
		}
	}
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

// Normalize validates and coerces raw input into a Profile. Required fields are
// checked in declaration order so the error names the first offending field.
func Normalize(raw RawProfile) (Profile, error) {
	var p Profile

	v, ok := raw.lookup("age")
	if !ok {
		return Profile{}, invalid("age", "is required")
	}
	age, err := toWholeNumber(v)
	if err != nil {
		return Profile{}, invalid("age", "must be a whole number")
	}
	if verr := checkAge(age); verr != nil {
		return Profile{}, verr
	}
	p.Age = age

	if p.Income, err = requiredAmount(raw, "income"); err != nil {
		return Profile{}, err
	}

	v, ok = raw.lookup("riskTolerance")
	if !ok {
		return Profile{}, invalid("riskTolerance", "is required")
	}
	if p.RiskTolerance, err = ParseRiskTolerance(cast.ToString(v)); err != nil {
		return Profile{}, invalid("riskTolerance", "must be one of Conservative, Moderate, Aggressive")
	}

	v, ok = raw.lookup("investmentGoal")
	if !ok {
		return Profile{}, invalid("investmentGoal", "is required")
	}
	if p.InvestmentGoal, err = ParseInvestmentGoal(cast.ToString(v)); err != nil {
		return Profile{}, invalid("investmentGoal", "must be one of Retirement, House, Education, Emergency Fund, Wealth Building")
	}

	v, ok = raw.lookup("timeHorizon")
	if !ok {
		return Profile{}, invalid("timeHorizon", "is required")
	}
	if p.TimeHorizon, err = toTimeHorizon(v); err != nil {
		return Profile{}, invalid("timeHorizon", "must be one of 5, 10, 20, 30, 40 years")
	}

	if p.CurrentSavings, err = optionalAmount(raw, "currentSavings"); err != nil {
		return Profile{}, err
	}
	if p.MonthlyExpenses, err = optionalAmount(raw, "monthlyExpenses"); err != nil {
		return Profile{}, err
	}
	if p.HasEmergencyFund, err = optionalBool(raw, "hasEmergencyFund"); err != nil {
		return Profile{}, err
	}
	if p.Has401k, err = optionalBool(raw, "has401k"); err != nil {
		return Profile{}, err
	}

	if v, ok = raw.lookup("employerMatch"); ok {
		match, perr := toFraction(v)
		if perr != nil {
			return Profile{}, invalid("employerMatch", "must be a fraction or percentage")
		}
		if verr := checkMatch(match); verr != nil {
			return Profile{}, verr
		}
		p.EmployerMatch = match
	}

	return p, nil
}

func checkAge(age int) *ValidationError {
	if age < 18 || age > 100 {
		return invalid("age", "must be between 18 and 100")
	}
	return nil
}

func checkAmount(field string, v float64) *ValidationError {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "must be a finite number")
	}
	if v < 0 {
		return invalid(field, "must not be negative")
	}
	return nil
}

func checkMatch(v float64) *ValidationError {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return invalid("employerMatch", "must be between 0 and 1")
	}
	return nil
}

func requiredAmount(raw RawProfile, field string) (float64, error) {
	v, ok := raw.lookup(field)
	if !ok {
		return 0, invalid(field, "is required")
	}
	return amountField(field, v)
}

func optionalAmount(raw RawProfile, field string) (float64, error) {
	v, ok := raw.lookup(field)
	if !ok {
		return 0, nil
	}
	return amountField(field, v)
}

func amountField(field string, v any) (float64, error) {
	f, err := toAmount(v)
	if err != nil {
		return 0, invalid(field, "must be a number")
	}
	if verr := checkAmount(field, f); verr != nil {
		return 0, verr
	}
	return f, nil
}

func optionalBool(raw RawProfile, field string) (bool, error) {
	v, ok := raw.lookup(field)
	if !ok {
		return false, nil
	}
	if s, isString := v.(string); isString {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "y", "on":
			return true, nil
		case "no", "n", "off":
			return false, nil
		}
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, invalid(field, "must be true or false")
	}
	return b, nil
}

// toAmount accepts numbers and currency strings such as "$85,000".
func toAmount(v any) (float64, error) {
	switch x := v.(type) {
	case bool:
		return 0, fmt.Errorf("boolean %v is not an amount", x)
	case string:
		s := strings.TrimSpace(x)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("amount %v is not finite", f)
	}
	return f, nil
}

func toWholeNumber(v any) (int, error) {
	f, err := toAmount(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not a whole number", f)
	}
	return int(f), nil
}

// toFraction accepts 0.05, "0.05" and "5%".
func toFraction(v any) (float64, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if pct, found := strings.CutSuffix(s, "%"); found {
			f, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
			if err != nil {
				return 0, err
			}
			return f / 100, nil
		}
	}
	return toAmount(v)
}

func toTimeHorizon(v any) (TimeHorizon, error) {
	if s, ok := v.(string); ok {
		return parseTimeHorizon(s)
	}
	years, err := toWholeNumber(v)
	if err != nil {
		return 0, err
	}
	h := TimeHorizon(years)
	if !h.Valid() {
		return 0, fmt.Errorf("unsupported time horizon %d", years)
	}
	return h, nil
}

// parseTimeHorizon accepts "30 years", "30 yrs", "1 year" style text as well as bare numbers.
func parseTimeHorizon(s string) (TimeHorizon, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	for _, suffix := range []string{"years", "year", "yrs", "yr", "y"} {
		if trimmed, found := strings.CutSuffix(t, suffix); found {
			t = strings.TrimSpace(trimmed)
			break
		}
	}
	years, err := strconv.Atoi(t)
	if err != nil {
		return 0, fmt.Errorf("invalid time horizon %q", s)
	}
	h := TimeHorizon(years)
	if !h.Valid() {
		return 0, fmt.Errorf("unsupported time horizon %q", s)
	}
	return h, nil
}

func enumKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}
