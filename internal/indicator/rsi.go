package indicator

import "math"

// CalculateRSI computes the Relative Strength Index over prices using
// Wilder's smoothing. The result has the same length as the input; the first
// period-1 slots are NaN because no value exists during warm-up. When the
// average loss over the window is zero the RSI saturates at 100.
//
// The full trailing series is returned, not just the tail: crossing
// detection needs the previous value as well as the latest.
func CalculateRSI(prices []float64, period int) ([]float64, error) {
	if period <= 0 || len(prices) < period {
		return nil, ErrInsufficientHistory
	}

	rsi := make([]float64, len(prices))
	for i := 0; i < period-1; i++ {
		rsi[i] = math.NaN()
	}

	var gainSum, lossSum float64
	for i := 1; i < period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum += -change
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	rsi[period-1] = rsiFromAverages(avgGain, avgLoss)

	for i := period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		rsi[i] = rsiFromAverages(avgGain, avgLoss)
	}

	return rsi, nil
}

// CalculateLastRSI returns only the latest RSI value for the series.
func CalculateLastRSI(prices []float64, period int) (float64, error) {
	series, err := CalculateRSI(prices, period)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}
