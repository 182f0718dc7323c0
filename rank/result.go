package rank

import "github.com/viant/vecsearch/vector"

// ScoredResult pairs a record with its similarity to the query.
type ScoredResult struct {
	Record vector.Record
	Score  float64
}

// ResultSet is the ordered outcome of one ranking pass.
type ResultSet struct {
	Kind    vector.Kind
	Results []ScoredResult

	// Candidates is the number of records the engine was given.
	Candidates int
	// Missing counts candidates without a vector of Kind.
	Missing int
	// Skipped counts candidates excluded as degenerate.
	Skipped int
}

// Len returns the number of ranked results.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Results)
}

// Top returns at most k leading results. k <= 0 returns all of them.
func (rs *ResultSet) Top(k int) []ScoredResult {
	if rs == nil {
		return nil
	}
	if k <= 0 || k > len(rs.Results) {
		return rs.Results
	}
	return rs.Results[:k]
}

// First returns the best result, if any.
func (rs *ResultSet) First() (ScoredResult, bool) {
	if rs.Len() == 0 {
		return ScoredResult{}, false
	}
	return rs.Results[0], true
}
