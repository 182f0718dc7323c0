package engine

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"

	"github.com/viant/vecsearch/similarity"
	sqlite "modernc.org/sqlite"
)

var registerOnce sync.Once

// RegisterVectorFunctions registers vec_cosine, vec_l2, vec_dim and vec_norm
// with the driver so they are available on connections opened after this
// call. Existing open connections will not see new functions.
//
//	vec_cosine(a, b) cosine similarity, NULL for NULL or zero-norm input
//	vec_l2(a, b)     Euclidean distance
//	vec_dim(a)       number of float32 components
//	vec_norm(a)      L2 norm
func RegisterVectorFunctions() error {
	var err error
	registerOnce.Do(func() {
		err = errors.Join(
			sqlite.RegisterDeterministicScalarFunction("vec_cosine", 2, vecCosineImpl),
			sqlite.RegisterDeterministicScalarFunction("vec_l2", 2, vecL2Impl),
			sqlite.RegisterDeterministicScalarFunction("vec_dim", 1, vecDimImpl),
			sqlite.RegisterDeterministicScalarFunction("vec_norm", 1, vecNormImpl),
		)
	})
	return err
}

func asEmbedding(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return decodeEmbedding(v)
	default:
		return nil, fmt.Errorf("vec: unsupported argument type %T for embedding; want BLOB", arg)
	}
}

func pair(name string, args []driver.Value) ([]float32, []float32, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
	}
	a, err := asEmbedding(args[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := asEmbedding(args[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func vecCosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := pair("vec_cosine", args)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	sim, err := similarity.Cosine(a, b)
	if errors.Is(err, similarity.ErrDegenerateVector) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vec_cosine: %w", err)
	}
	return sim, nil
}

func vecL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := pair("vec_l2", args)
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	d, err := similarity.L2Distance(a, b)
	if errors.Is(err, similarity.ErrDegenerateVector) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vec_l2: %w", err)
	}
	return d, nil
}

func vecDimImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("vec_dim: expected 1 argument, got %d", len(args))
	}
	v, err := asEmbedding(args[0])
	if err != nil {
		return nil, err
	}
	return int64(len(v)), nil
}

func vecNormImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("vec_norm: expected 1 argument, got %d", len(args))
	}
	v, err := asEmbedding(args[0])
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return similarity.Norm(v), nil
}
