package vector

import (
	"context"

	"github.com/viant/vecsearch/similarity"
)

// Report summarizes the vectors of one kind across a corpus. It is used to
// diagnose the ingestion problems that surface as search configuration
// errors, such as mixed dimensionality.
type Report struct {
	Kind       Kind
	Records    int
	Missing    int
	Degenerate int
	Dimensions map[int]int
}

// Consistent reports whether every present vector shares one dimensionality.
func (r Report) Consistent() bool { return len(r.Dimensions) <= 1 }

// Inspector is implemented by stores that can compute a Report natively.
type Inspector interface {
	Inspect(ctx context.Context, kind Kind) (Report, error)
}

// Inspect returns a Report for kind using the store's native implementation
// when available and a full snapshot scan otherwise.
func Inspect(ctx context.Context, r Reader, kind Kind) (Report, error) {
	if in, ok := r.(Inspector); ok {
		return in.Inspect(ctx, kind)
	}
	records, err := r.FetchAll(ctx)
	if err != nil {
		return Report{}, err
	}
	return InspectRecords(records, kind), nil
}

// InspectRecords computes a Report over an in-memory record set.
func InspectRecords(records []Record, kind Kind) Report {
	rep := Report{Kind: kind, Records: len(records), Dimensions: map[int]int{}}
	for _, rec := range records {
		v, ok := rec.Vector(kind)
		if !ok {
			rep.Missing++
			continue
		}
		rep.Dimensions[len(v)]++
		if similarity.Norm(v) == 0 {
			rep.Degenerate++
		}
	}
	return rep
}
