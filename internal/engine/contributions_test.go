package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysekkat/payroll-engine/internal/domain"
)

func ceiling(v int64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
}

func TestComputeContributions(t *testing.T) {
	tests := []struct {
		name          string
		grossPay      decimal.Decimal
		rules         []domain.ContributionRule
		expectedError bool
		errorContains string
		validate      func(*testing.T, []domain.ContributionLine, decimal.Decimal)
	}{
		{
			name:     "Ceiling caps the base not the amount",
			grossPay: decimal.NewFromInt(15000),
			rules: []domain.ContributionRule{
				{Name: "social_security", Rate: decimal.NewFromFloat(0.0448), Ceiling: ceiling(6000)},
			},
			validate: func(t *testing.T, lines []domain.ContributionLine, total decimal.Decimal) {
				require.Len(t, lines, 1)
				// 6000 * 0.0448, not 15000 * 0.0448
				assert.True(t, lines[0].Amount.Equal(decimal.NewFromFloat(268.80)),
					"got %s", lines[0].Amount)
				assert.True(t, lines[0].Base.Equal(decimal.NewFromInt(6000)))
				assert.True(t, total.Equal(decimal.NewFromFloat(268.80)))
			},
		},
		{
			name:     "Gross below ceiling uses full gross",
			grossPay: decimal.NewFromInt(5000),
			rules: []domain.ContributionRule{
				{Name: "social_security", Rate: decimal.NewFromFloat(0.0448), Ceiling: ceiling(6000)},
			},
			validate: func(t *testing.T, lines []domain.ContributionLine, total decimal.Decimal) {
				assert.True(t, total.Equal(decimal.NewFromFloat(224.00)), "got %s", total)
			},
		},
		{
			name:     "Multiple rules apply independently to the same gross",
			grossPay: decimal.NewFromInt(10000),
			rules: []domain.ContributionRule{
				{Name: "social_security", Rate: decimal.NewFromFloat(0.0448), Ceiling: ceiling(6000)},
				{Name: "health", Rate: decimal.NewFromFloat(0.0226)},
			},
			validate: func(t *testing.T, lines []domain.ContributionLine, total decimal.Decimal) {
				require.Len(t, lines, 2)
				// Health applies to the full 10000, not to 10000 - 268.80.
				assert.True(t, lines[1].Base.Equal(decimal.NewFromInt(10000)))
				assert.True(t, lines[1].Amount.Equal(decimal.NewFromFloat(226.00)))
				assert.True(t, total.Equal(decimal.NewFromFloat(494.80)), "got %s", total)
			},
		},
		{
			name:     "Residual rule applies to gross minus prior amounts",
			grossPay: decimal.NewFromInt(1000),
			rules: []domain.ContributionRule{
				{Name: "base_levy", Rate: decimal.NewFromFloat(0.10)},
				{Name: "solidarity", Rate: decimal.NewFromFloat(0.01), Residual: true},
			},
			validate: func(t *testing.T, lines []domain.ContributionLine, total decimal.Decimal) {
				require.Len(t, lines, 2)
				assert.True(t, lines[1].Base.Equal(decimal.NewFromInt(900)))
				assert.True(t, lines[1].Amount.Equal(decimal.NewFromInt(9)))
			},
		},
		{
			name:     "Zero gross yields zero amounts",
			grossPay: decimal.Zero,
			rules: []domain.ContributionRule{
				{Name: "social_security", Rate: decimal.NewFromFloat(0.0448)},
			},
			validate: func(t *testing.T, lines []domain.ContributionLine, total decimal.Decimal) {
				assert.True(t, total.IsZero())
			},
		},
		{
			name:          "Negative gross pay is a validation error",
			grossPay:      decimal.NewFromInt(-100),
			rules:         []domain.ContributionRule{{Name: "x", Rate: decimal.NewFromFloat(0.1)}},
			expectedError: true,
			errorContains: "negative",
		},
		{
			name:          "Zero rate is a validation error not a clamp",
			grossPay:      decimal.NewFromInt(1000),
			rules:         []domain.ContributionRule{{Name: "x", Rate: decimal.Zero}},
			expectedError: true,
			errorContains: "rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, total, err := ComputeContributions(tt.grossPay, tt.rules)

			if tt.expectedError {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				return
			}

			require.NoError(t, err)
			tt.validate(t, lines, total)
		})
	}
}
