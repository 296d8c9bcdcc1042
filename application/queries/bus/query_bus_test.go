package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countQuery struct {
	Owner string
}

func (q countQuery) Validate() error {
	if q.Owner == "" {
		return errors.New("owner is required")
	}
	return nil
}

type queryMetrics struct {
	names []string
}

func (m *queryMetrics) RecordQueryExecution(_ context.Context, name string, _ time.Duration, _ error) {
	m.names = append(m.names, name)
}

func TestQueryBus_Ask(t *testing.T) {
	metrics := &queryMetrics{}
	b := NewQueryBusWithMetrics(metrics)
	require.NoError(t, b.Register(countQuery{}, QueryHandlerFunc(func(_ context.Context, q Query) (interface{}, error) {
		return len(q.(countQuery).Owner), nil
	})))

	got, err := b.Ask(context.Background(), countQuery{Owner: "abc"})
	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.Equal(t, []string{"countQuery"}, metrics.names)

	_, err = b.Ask(context.Background(), countQuery{})
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Len(t, metrics.names, 1)
}

func TestQueryBus_Unregistered(t *testing.T) {
	_, err := NewQueryBus().Ask(context.Background(), countQuery{Owner: "x"})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestQueryBus_DuplicateRegistration(t *testing.T) {
	b := NewQueryBus()
	h := QueryHandlerFunc(func(context.Context, Query) (interface{}, error) { return nil, nil })
	require.NoError(t, b.Register(countQuery{}, h))
	assert.Error(t, b.Register(countQuery{}, h))
}
