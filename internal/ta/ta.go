package ta

import "math"

// Series indicators over chronological close prices. Positions with not
// enough history hold NaN, matching the usual charting convention.

func SMA(closes []float64, n int) []float64 {
	out := nanSeries(len(closes))
	if n <= 0 || len(closes) < n {
		return out
	}
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= n {
			sum -= closes[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		}
	}
	return out
}

func EMA(closes []float64, n int) []float64 {
	out := nanSeries(len(closes))
	if n <= 0 || len(closes) < n {
		return out
	}
	// Seed with the SMA of the first n closes.
	seed := 0.0
	for i := 0; i < n; i++ {
		seed += closes[i]
	}
	seed /= float64(n)
	out[n-1] = seed

	k := 2.0 / float64(n+1)
	prev := seed
	for i := n; i < len(closes); i++ {
		prev = (closes[i]-prev)*k + prev
		out[i] = prev
	}
	return out
}

func RSI(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}
	// Wilder smoothing.
	gain, loss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// MACD returns the MACD line (fast EMA minus slow EMA) and its signal line.
func MACD(closes []float64, fast, slow, signal int) (macd, sig []float64) {
	macd = nanSeries(len(closes))
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	for i := range closes {
		if !math.IsNaN(fastEMA[i]) && !math.IsNaN(slowEMA[i]) {
			macd[i] = fastEMA[i] - slowEMA[i]
		}
	}

	// Signal line is an EMA over the defined part of the MACD line.
	sig = nanSeries(len(closes))
	start := firstDefined(macd)
	if start < 0 || len(closes)-start < signal {
		return macd, sig
	}
	sub := EMA(macd[start:], signal)
	copy(sig[start:], sub)
	return macd, sig
}

// Bollinger returns the middle, upper and lower bands.
func Bollinger(closes []float64, n int, k float64) (mid, up, low []float64) {
	mid = SMA(closes, n)
	up = nanSeries(len(closes))
	low = nanSeries(len(closes))
	if n <= 0 || len(closes) < n {
		return mid, up, low
	}
	for i := n - 1; i < len(closes); i++ {
		m := mid[i]
		s := 0.0
		for j := i - n + 1; j <= i; j++ {
			d := closes[j] - m
			s += d * d
		}
		sd := math.Sqrt(s / float64(n))
		up[i] = m + k*sd
		low[i] = m - k*sd
	}
	return mid, up, low
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func firstDefined(vals []float64) int {
	for i, v := range vals {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}
