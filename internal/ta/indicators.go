package ta

import "math"

// MeanStd returns the mean and population standard deviation (divisor n,
// not n-1) of values. The Bollinger band widths and volatility-expansion
// thresholds downstream are calibrated against the population form.
func MeanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

// SMALast returns the simple moving average of the trailing period window.
// ok is false when the series is shorter than period.
func SMALast(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	mean, _ := MeanStd(values[len(values)-period:])
	return mean, true
}

// StdLast returns the population standard deviation of the trailing window.
func StdLast(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	_, std := MeanStd(values[len(values)-period:])
	return std, true
}

// BollingerUpper returns the upper Bollinger band (SMA + stdDevs*std) over
// the trailing period window.
func BollingerUpper(values []float64, period int, stdDevs float64) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	mean, std := MeanStd(values[len(values)-period:])
	return mean + stdDevs*std, true
}

// RSILast computes RSI over the trailing period using rolling averages of
// gains and losses. A window with zero losses returns 100; a flat window
// with neither gains nor losses returns a neutral 50. ok is false when the
// series has fewer than period+1 closes.
func RSILast(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}
	var gainSum, lossSum float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50, true
		}
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), true
}

// EMASeries returns the exponential moving average series for values.
func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	if period <= 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACDSeries returns the MACD line and its signal line.
func MACDSeries(values []float64, fast, slow, signal int) ([]float64, []float64) {
	if len(values) == 0 {
		return nil, nil
	}
	fastEMA := EMASeries(values, fast)
	slowEMA := EMASeries(values, slow)
	macdLine := make([]float64, len(values))
	for i := range values {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine := EMASeries(macdLine, signal)
	return macdLine, signalLine
}

// MinMax returns the minimum and maximum of values.
func MinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
