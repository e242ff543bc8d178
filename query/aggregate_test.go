package query

import (
	"testing"

	"github.com/hupe1980/frozen/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	s := countries(t).Scope()

	sum, err := s.Sum("population")
	require.NoError(t, err)
	assert.InDelta(t, 108.042, sum, 1e-9)

	sum, err = s.Where(Criteria{"king": nil}).Sum("density")
	require.NoError(t, err)
	assert.InDelta(t, 216.3, sum, 1e-9)

	// Aggregates ignore limit and offset.
	sum, err = s.Limit(1).Offset(1).Sum("id")
	require.NoError(t, err)
	assert.Equal(t, 6.0, sum)

	sum, err = s.Where(Criteria{"name": "Atlantis"}).Sum("density")
	require.NoError(t, err)
	assert.Zero(t, sum)

	_, err = s.Sum("name")
	var nne *NonNumericError
	require.ErrorAs(t, err, &nne)
	assert.Equal(t, "name", nne.Field)
	assert.Equal(t, record.Int(1), nne.Key)
	assert.Equal(t, record.KindString, nne.Kind)

	_, err = s.Sum("capital")
	assert.ErrorIs(t, err, ErrUnsupportedField)
}

func TestAverage(t *testing.T) {
	s := countries(t).Scope()

	avg, err := s.Where(Criteria{"nato": true}).Average("density")
	require.NoError(t, err)
	assert.InDelta(t, 59.75, avg, 1e-9)

	_, err = s.Where(Criteria{"name": "Atlantis"}).Average("density")
	assert.ErrorIs(t, err, ErrDivisionByZero)

	// Only nulls contribute nothing.
	_, err = s.Where(Criteria{"king": nil}).Average("king")
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = s.Average("king")
	assert.ErrorIs(t, err, ErrNonNumeric)
}

func TestMinimumMaximum(t *testing.T) {
	s := countries(t).Scope()

	v, err := s.Minimum("density")
	require.NoError(t, err)
	assert.Equal(t, record.Float(3.5), v)

	v, err = s.Maximum("density")
	require.NoError(t, err)
	assert.Equal(t, record.Int(116), v)

	v, err = s.Minimum("name")
	require.NoError(t, err)
	assert.Equal(t, record.String("Austria"), v)

	v, err = s.Maximum("updated_at")
	require.NoError(t, err)
	assert.Equal(t, record.String("2014-02-24T19:08:06-05:00"), v)

	// Nulls are skipped.
	v, err = s.Minimum("king")
	require.NoError(t, err)
	assert.Equal(t, record.String("Elizabeth II"), v)

	_, err = s.Where(Criteria{"nato": false}).Maximum("king")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = s.Where(Criteria{"name": "Atlantis"}).Minimum("density")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = s.Maximum("capital")
	assert.ErrorIs(t, err, ErrUnsupportedField)
}
