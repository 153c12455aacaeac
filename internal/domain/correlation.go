package domain

// CorrelationMatrix maps ticker pairs to a Pearson correlation coefficient in
// [-1, 1]. The matrix is symmetric and its diagonal entries are exactly 1.
type CorrelationMatrix map[string]map[string]float64

// Symbols returns the tickers present in the matrix, in no particular order.
func (m CorrelationMatrix) Symbols() []string {
	out := make([]string, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	return out
}
