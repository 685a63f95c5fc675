package planner

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moderateSaver() Profile {
	return Profile{
		Age:              32,
		Income:           85000,
		RiskTolerance:    Moderate,
		InvestmentGoal:   GoalRetirement,
		TimeHorizon:      30,
		CurrentSavings:   45000,
		MonthlyExpenses:  4200,
		HasEmergencyFund: false,
		Has401k:          true,
		EmployerMatch:    0.05,
	}
}

func TestNormalize_Coercion(t *testing.T) {
	raw := RawProfile{
		"age":              "32",
		"income":           "$85,000",
		"riskTolerance":    "moderate",
		"investmentGoal":   "wealth_building",
		"timeHorizon":      "30 years",
		"currentSavings":   45000,
		"monthlyExpenses":  "4,200",
		"hasEmergencyFund": false,
		"has401k":          "yes",
		"employerMatch":    "5%",
	}

	p, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, 32, p.Age)
	assert.InDelta(t, 85000, p.Income, 0.001)
	assert.Equal(t, Moderate, p.RiskTolerance)
	assert.Equal(t, GoalWealthBuilding, p.InvestmentGoal)
	assert.Equal(t, 30, p.TimeHorizon.Years())
	assert.InDelta(t, 45000, p.CurrentSavings, 0.001)
	assert.InDelta(t, 4200, p.MonthlyExpenses, 0.001)
	assert.False(t, p.HasEmergencyFund)
	assert.True(t, p.Has401k)
	assert.InDelta(t, 0.05, p.EmployerMatch, 1e-9)
}

func TestNormalize_Defaults(t *testing.T) {
	p, err := Normalize(RawProfile{
		"age":            40,
		"income":         60000.0,
		"riskTolerance":  "Aggressive",
		"investmentGoal": "Emergency Fund",
		"timeHorizon":    10,
	})
	require.NoError(t, err)

	assert.Equal(t, GoalEmergencyFund, p.InvestmentGoal)
	assert.Equal(t, TimeHorizon(10), p.TimeHorizon)
	assert.Zero(t, p.CurrentSavings)
	assert.Zero(t, p.MonthlyExpenses)
	assert.False(t, p.Has401k)
	assert.Zero(t, p.EmployerMatch)
}

func TestNormalize_SnakeCaseKeys(t *testing.T) {
	p, err := Normalize(RawProfile{
		"age":              45,
		"income":           120000,
		"risk_tolerance":   "CONSERVATIVE",
		"investment_goal":  "education",
		"time_horizon":     "20",
		"monthly_expenses": 3000,
		"has_401k":         true,
		"employer_match":   0.04,
	})
	require.NoError(t, err)

	assert.Equal(t, Conservative, p.RiskTolerance)
	assert.Equal(t, GoalEducation, p.InvestmentGoal)
	assert.Equal(t, TimeHorizon(20), p.TimeHorizon)
	assert.True(t, p.Has401k)
	assert.InDelta(t, 0.04, p.EmployerMatch, 1e-9)
}

func TestNormalize_ValidationErrors(t *testing.T) {
	valid := func() RawProfile {
		return RawProfile{
			"age":            32,
			"income":         85000,
			"riskTolerance":  "Moderate",
			"investmentGoal": "Retirement",
			"timeHorizon":    "30 years",
		}
	}
	with := func(key string, value any) RawProfile {
		r := valid()
		r[key] = value
		return r
	}

	tests := []struct {
		name      string
		raw       RawProfile
		wantField string
	}{
		{name: "empty input names age first", raw: RawProfile{}, wantField: "age"},
		{name: "blank age is missing", raw: with("age", "  "), wantField: "age"},
		{name: "non numeric age", raw: with("age", "thirty"), wantField: "age"},
		{name: "fractional age", raw: with("age", 32.5), wantField: "age"},
		{name: "age below range", raw: with("age", 17), wantField: "age"},
		{name: "age above range", raw: with("age", "101"), wantField: "age"},
		{name: "missing income", raw: RawProfile{"age": 32}, wantField: "income"},
		{name: "negative income", raw: with("income", "-5"), wantField: "income"},
		{name: "boolean income", raw: with("income", true), wantField: "income"},
		{name: "unknown risk tolerance", raw: with("riskTolerance", "reckless"), wantField: "riskTolerance"},
		{name: "unknown goal", raw: with("investmentGoal", "yacht"), wantField: "investmentGoal"},
		{name: "unsupported horizon", raw: with("timeHorizon", "15 years"), wantField: "timeHorizon"},
		{name: "numeric unsupported horizon", raw: with("timeHorizon", 7), wantField: "timeHorizon"},
		{name: "negative savings", raw: with("currentSavings", -1), wantField: "currentSavings"},
		{name: "negative expenses", raw: with("monthlyExpenses", "-100"), wantField: "monthlyExpenses"},
		{name: "bad boolean", raw: with("has401k", "maybe"), wantField: "has401k"},
		{name: "match above one", raw: with("employerMatch", 1.5), wantField: "employerMatch"},
		{name: "match percent above hundred", raw: with("employerMatch", "150%"), wantField: "employerMatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.NotEmpty(t, verr.Constraint)
		})
	}
}

func TestProfile_Validate(t *testing.T) {
	p := moderateSaver()
	require.NoError(t, p.Validate())

	p.RiskTolerance = 0
	var verr *ValidationError
	require.ErrorAs(t, p.Validate(), &verr)
	assert.Equal(t, "riskTolerance", verr.Field)

	p = moderateSaver()
	p.TimeHorizon = 15
	require.ErrorAs(t, p.Validate(), &verr)
	assert.Equal(t, "timeHorizon", verr.Field)
}

func TestProfile_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(moderateSaver())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"riskTolerance":"Moderate"`)
	assert.Contains(t, string(data), `"timeHorizon":"30 years"`)
	assert.Contains(t, string(data), `"investmentGoal":"Retirement"`)

	var decoded Profile
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, moderateSaver(), decoded)
}

func TestParseInvestmentGoal(t *testing.T) {
	tests := []struct {
		input string
		want  InvestmentGoal
	}{
		{"Retirement", GoalRetirement},
		{"house", GoalHouse},
		{"Emergency Fund", GoalEmergencyFund},
		{"emergency-fund", GoalEmergencyFund},
		{"WealthBuilding", GoalWealthBuilding},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInvestmentGoal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseInvestmentGoal("")
	assert.Error(t, err)
}
