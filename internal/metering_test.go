package internal

import (
	"testing"
	"time"

	specs "github.com/chrisconley/ocpirating/specs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMetering(t *testing.T) {
	t.Run("measured boundaries keep their readings", func(t *testing.T) {
		samples := newTestSamples(t, tenAM, "0", tenAM.Add(20*time.Minute), "1500", elevenAM, "4000")
		periods := buildPeriods([]time.Time{tenAM, tenAM.Add(20 * time.Minute)}, elevenAM)

		err := resolveMetering(periods, samples)

		require.NoError(t, err)
		assert.Equal(t, MeteringValueMeasured, periods[0].startValue.Kind())
		assert.Equal(t, MeteringValueMeasured, periods[0].stopValue.Kind())
		assert.Equal(t, "1500", periods[0].stopValue.EnergyWh().String())
		assert.Equal(t, MeteringValueMeasured, periods[1].stopValue.Kind())
		assert.Equal(t, "4000", periods[1].stopValue.EnergyWh().String())
	})

	t.Run("imputes an unmeasured start towards the next measured start", func(t *testing.T) {
		samples := newTestSamples(t, tenAM, "0", tenAM.Add(40*time.Minute), "4000", elevenAM, "4000")
		markers := []time.Time{tenAM, tenAM.Add(10 * time.Minute), tenAM.Add(40 * time.Minute)}
		periods := buildPeriods(markers, elevenAM)

		err := resolveMetering(periods, samples)

		require.NoError(t, err)
		assert.Equal(t, MeteringValueImputed, periods[1].startValue.Kind())
		assertDecimal(t, "1000", periods[1].startValue.EnergyWh().String())
		assert.Equal(t, tenAM.Add(10*time.Minute), periods[1].startValue.Timestamp())
		assert.Equal(t, *periods[1].startValue, *periods[0].stopValue)
	})

	t.Run("chains imputations across consecutive unmeasured starts", func(t *testing.T) {
		samples := newTestSamples(t, tenAM, "0", elevenAM, "6000")
		markers := []time.Time{tenAM, tenAM.Add(15 * time.Minute), tenAM.Add(30 * time.Minute), tenAM.Add(45 * time.Minute)}
		periods := buildPeriods(markers, elevenAM)

		err := resolveMetering(periods, samples)

		require.NoError(t, err)
		assertDecimal(t, "1500", periods[1].startValue.EnergyWh().String())
		assertDecimal(t, "3000", periods[2].startValue.EnergyWh().String())
		assertDecimal(t, "4500", periods[3].startValue.EnergyWh().String())
		assertDecimal(t, "6000", periods[3].stopValue.EnergyWh().String())
	})

	t.Run("fails without a reading at the first period start", func(t *testing.T) {
		samples := newTestSamples(t, tenAM.Add(5*time.Minute), "0", elevenAM, "6000")
		periods := buildPeriods([]time.Time{tenAM}, elevenAM)

		err := resolveMetering(periods, samples)

		require.Error(t, err)
		assert.ErrorIs(t, err, specs.ErrImputationImpossible)
	})

	t.Run("fails without a following anchor", func(t *testing.T) {
		samples := newTestSamples(t, tenAM, "0", tenAM.Add(10*time.Minute), "600")
		periods := buildPeriods([]time.Time{tenAM, tenAM.Add(30 * time.Minute)}, elevenAM)

		err := resolveMetering(periods, samples)

		require.Error(t, err)
		assert.ErrorIs(t, err, specs.ErrImputationImpossible)
	})
}

func TestInterpolate(t *testing.T) {
	t.Run("interpolates linearly in time", func(t *testing.T) {
		from := MeteringValue{timestamp: tenAM, energyWh: NewDecimalFromInt64(1000), kind: MeteringValueMeasured}
		to := MeteringValue{timestamp: elevenAM, energyWh: NewDecimalFromInt64(4000), kind: MeteringValueMeasured}

		v := interpolate(from, to, tenAM.Add(20*time.Minute))

		assertDecimal(t, "2000", v.EnergyWh().String())
		assert.Equal(t, MeteringValueImputed, v.Kind())
	})

	t.Run("holds the value when anchors coincide", func(t *testing.T) {
		from := MeteringValue{timestamp: tenAM, energyWh: NewDecimalFromInt64(1000)}

		v := interpolate(from, from, tenAM)

		assertDecimal(t, "1000", v.EnergyWh().String())
	})
}
