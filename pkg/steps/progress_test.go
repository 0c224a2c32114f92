package steps

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completeStep fills every field one schema owns with a valid value.
func completeStep(v Values, index int) {
	schema, ok := At(index)
	if !ok {
		panic(fmt.Sprintf("no step %d", index))
	}
	for _, f := range schema.Fields {
		switch f.Kind {
		case String:
			v[f.Name] = "value"
		case StringArray:
			v[f.Name] = []string{"English"}
		case Bool:
			v[f.Name] = true
		case Date:
			v[f.Name] = "2010-01-01"
		case ObjectArray:
			element := Values{}
			for _, sub := range f.Sub {
				switch sub.Kind {
				case Date:
					element[sub.Name] = "2010-01-01"
				default:
					element[sub.Name] = "value"
				}
			}
			v[f.Name] = []Values{element}
		}
	}
}

func TestProgressBoundaries(t *testing.T) {
	assert.Equal(t, 0, Progress(Values{}))

	v := Values{}
	completeStep(v, 0)
	assert.Equal(t, 13, Progress(v), "one of eight steps")

	for i := 1; i < 7; i++ {
		completeStep(v, i)
	}
	assert.Equal(t, 88, Progress(v), "seven of eight steps")

	completeStep(v, 7)
	assert.Equal(t, 100, Progress(v))
}

func TestProgressMonotonic(t *testing.T) {
	v := Values{}
	prev := Progress(v)
	for i := 0; i < Count(); i++ {
		completeStep(v, i)
		cur := Progress(v)
		require.GreaterOrEqual(t, cur, prev, "completing step %d must not decrease progress", i)
		prev = cur
	}
	assert.Equal(t, 100, prev)
}

func TestProgressPartialStepCountsNothing(t *testing.T) {
	// Step 1 owns three fields; filling two of them leaves the step, and
	// therefore progress, at zero.
	v := Values{"dateOfBirth": "2010-05-04", "nationality": "GH"}
	assert.Equal(t, 0, Progress(v))

	v["sex"] = "F"
	assert.Equal(t, 13, Progress(v))
}

func TestProgressEmptyCollectionsIncomplete(t *testing.T) {
	v := Values{}
	completeStep(v, 6)
	require.Equal(t, 13, Progress(v))

	// Clearing either collection drops the step.
	v["previousSchools"] = []Values{}
	assert.Equal(t, 0, Progress(v))
}

func TestProgressDeclarationRequiresTrue(t *testing.T) {
	v := Values{"declarationAccepted": false, "feePaymentMethod": "CASH"}
	assert.Equal(t, 0, Progress(v))

	v["declarationAccepted"] = true
	assert.Equal(t, 13, Progress(v))
}
