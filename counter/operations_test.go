package counter

import (
	"math"
	"testing"

	"github.com/jaswdr/faker"
	"github.com/stretchr/testify/assert"
)

type test = func(t *testing.T)

func incrementsFromZero(f faker.Faker) test {
	return func(t *testing.T) {
		n := f.IntBetween(0, 500)

		state := Counter{}
		for i := 0; i < n; i++ {
			state = Apply(state, Increment{})
		}

		assert.Equal(t, n, state.Count)
	}
}

func decrementInvertsIncrement(f faker.Faker) test {
	return func(t *testing.T) {
		for i := 0; i < 100; i++ {
			start := Counter{Count: f.IntBetween(-10000, 10000)}
			assert.Equal(t, start, Apply(Apply(start, Increment{}), Decrement{}))
		}
	}
}

func resetAlwaysZero(f faker.Faker) test {
	return func(t *testing.T) {
		for i := 0; i < 100; i++ {
			start := Counter{Count: f.IntBetween(-10000, 10000)}
			once := Apply(start, Reset{})

			assert.Equal(t, 0, once.Count)
			assert.Equal(t, once, Apply(once, Reset{}))
		}
	}
}

func incrementByAdds(f faker.Faker) test {
	return func(t *testing.T) {
		for i := 0; i < 100; i++ {
			c := f.IntBetween(-10000, 10000)
			k := f.IntBetween(-10000, 10000)

			assert.Equal(t, c+k, Apply(Counter{Count: c}, IncrementBy{Amount: k}).Count)
		}
	}
}

func acceptsPointerVariants(t *testing.T) {
	state := Apply(Counter{}, &Increment{})
	state = Apply(state, &IncrementBy{Amount: 4})
	state = Apply(state, &Decrement{})
	assert.Equal(t, 4, state.Count)
	assert.Equal(t, 0, Apply(state, &Reset{}).Count)
}

func unbounded(t *testing.T) {
	assert.Equal(t, math.MinInt+1, Apply(Counter{Count: math.MinInt + 2}, Decrement{}).Count)
	assert.Equal(t, math.MaxInt, Apply(Counter{Count: math.MaxInt - 1}, Increment{}).Count)
}

func namesOperations(t *testing.T) {
	assert.Equal(t, "counter:increment", Increment{}.TypeName())
	assert.Equal(t, "counter:decrement", Decrement{}.TypeName())
	assert.Equal(t, "counter:reset", Reset{}.TypeName())
	assert.Equal(t, "counter:increment-by", IncrementBy{Amount: 5}.TypeName())
}

func TestApply(t *testing.T) {
	f := faker.New()

	t.Run("increment n times from zero yields n", incrementsFromZero(f))
	t.Run("decrement is the inverse of increment", decrementInvertsIncrement(f))
	t.Run("reset yields zero and is idempotent", resetAlwaysZero(f))
	t.Run("increment by k adds k", incrementByAdds(f))
	t.Run("accepts pointer variants", acceptsPointerVariants)
	t.Run("does not bound the count", unbounded)
	t.Run("names operations", namesOperations)
}
