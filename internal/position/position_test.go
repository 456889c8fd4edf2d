package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitStatus(t *testing.T) {
	t.Run("percentage levels", func(t *testing.T) {
		p := Position{
			EntryPrice:      2.00,
			Quantity:        100,
			EntryValue:      200,
			StopLossPrice:   1.00, // 50% stop
			TakeProfitPrice: 5.00, // 150% target
		}

		tests := []struct {
			name  string
			price float64
			want  Status
		}{
			{"between levels stays open", 2.50, StatusOpen},
			{"at stop closes", 1.00, StatusClosedStop},
			{"below stop closes", 0.80, StatusClosedStop},
			{"at target closes", 5.00, StatusClosedTarget},
			{"above target closes", 6.00, StatusClosedTarget},
			{"just above stop stays open", 1.01, StatusOpen},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, p.ExitStatus(tt.price))
			})
		}
	})

	t.Run("fixed notional loss cut", func(t *testing.T) {
		// $2000 at $50 with a $200 loss cut: close at or below $45
		p := Position{
			EntryPrice:    50,
			Quantity:      40,
			EntryValue:    2000,
			LossThreshold: 200,
		}

		assert.Equal(t, StatusOpen, p.ExitStatus(46))
		assert.Equal(t, StatusOpen, p.ExitStatus(45.01))
		assert.Equal(t, StatusClosedLossCut, p.ExitStatus(45), "exact boundary closes")
		assert.Equal(t, StatusClosedLossCut, p.ExitStatus(40))
	})

	t.Run("stop wins over loss cut on the same tick", func(t *testing.T) {
		p := Position{
			EntryPrice:    50,
			Quantity:      40,
			EntryValue:    2000,
			StopLossPrice: 45,
			LossThreshold: 200,
		}
		assert.Equal(t, StatusClosedStop, p.ExitStatus(44))
	})

	t.Run("zero levels disable triggers", func(t *testing.T) {
		p := Position{EntryPrice: 50, Quantity: 40, EntryValue: 2000}
		assert.Equal(t, StatusOpen, p.ExitStatus(0.01))
		assert.Equal(t, StatusOpen, p.ExitStatus(1000))
	})
}

func TestStatusClosed(t *testing.T) {
	assert.False(t, StatusOpen.Closed())
	assert.True(t, StatusClosedStop.Closed())
	assert.True(t, StatusClosedTarget.Closed())
	assert.True(t, StatusClosedLossCut.Closed())
}

func TestCurrentValue(t *testing.T) {
	p := Position{Quantity: 40}
	assert.Equal(t, 1800.0, p.CurrentValue(45))
}
