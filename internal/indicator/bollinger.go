package indicator

import "math"

// Band holds one set of Bollinger Band values.
type Band struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// CalculateBollinger computes Bollinger Bands over prices: the middle band is
// a simple moving average of the last period closes, the upper and lower
// bands sit stdDevMult population standard deviations away. The result has
// the same length as the input with NaN bands during warm-up, mirroring
// CalculateRSI.
func CalculateBollinger(prices []float64, period int, stdDevMult float64) ([]Band, error) {
	if period <= 0 || len(prices) < period {
		return nil, ErrInsufficientHistory
	}

	bands := make([]Band, len(prices))
	for i := 0; i < period-1; i++ {
		bands[i] = Band{Upper: math.NaN(), Middle: math.NaN(), Lower: math.NaN()}
	}

	for i := period - 1; i < len(prices); i++ {
		window := prices[i-period+1 : i+1]

		var sum float64
		for _, p := range window {
			sum += p
		}
		mean := sum / float64(period)

		var variance float64
		for _, p := range window {
			d := p - mean
			variance += d * d
		}
		stdDev := math.Sqrt(variance / float64(period))

		bands[i] = Band{
			Upper:  mean + stdDevMult*stdDev,
			Middle: mean,
			Lower:  mean - stdDevMult*stdDev,
		}
	}

	return bands, nil
}

// CalculateLastBollinger returns only the latest band for the series.
func CalculateLastBollinger(prices []float64, period int, stdDevMult float64) (Band, error) {
	bands, err := CalculateBollinger(prices, period, stdDevMult)
	if err != nil {
		return Band{}, err
	}
	return bands[len(bands)-1], nil
}
