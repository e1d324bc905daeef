package internal

import (
	"testing"
	"time"

	specs "github.com/chrisconley/ocpirating/specs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	t.Run("orders samples by timestamp", func(t *testing.T) {
		spec := newTestSessionSpec(withSessionSamples(
			specs.NewMeteringSample("5000", elevenAM),
			specs.NewMeteringSample("1000", tenAM.Add(12*time.Minute)),
			specs.NewMeteringSample("0", tenAM),
		))

		session, err := NewSession(spec, nil)

		require.NoError(t, err)
		require.Len(t, session.Samples, 3)
		assert.Equal(t, tenAM, session.Samples[0].Timestamp())
		assert.Equal(t, tenAM.Add(12*time.Minute), session.Samples[1].Timestamp())
		assert.Equal(t, elevenAM, session.Samples[2].Timestamp())
	})

	t.Run("explicit samples take precedence over session samples", func(t *testing.T) {
		session, err := NewSession(newTestSessionSpec(), []specs.MeteringSampleSpec{
			specs.NewMeteringSample("100", tenAM),
			specs.NewMeteringSample("700", elevenAM),
		})

		require.NoError(t, err)
		assert.Equal(t, "100", session.Samples[0].EnergyWh().String())
		assert.Equal(t, "700", session.Samples[1].EnergyWh().String())
	})

	t.Run("sources samples from signed meter data", func(t *testing.T) {
		spec := newTestSessionSpec(withSessionSamples())
		spec.SignedData = &specs.SignedMeterDataSpec{StartValue: "12000", StopValue: "19500"}

		session, err := NewSession(spec, nil)

		require.NoError(t, err)
		require.Len(t, session.Samples, 2)
		assert.Equal(t, tenAM, session.Samples[0].Timestamp())
		assert.Equal(t, "12000", session.Samples[0].EnergyWh().String())
		assert.Equal(t, elevenAM, session.Samples[1].Timestamp())
		assert.Equal(t, "19500", session.Samples[1].EnergyWh().String())
	})

	t.Run("sources samples from the last charging period energy", func(t *testing.T) {
		spec := newTestSessionSpec(withSessionSamples())
		spec.ChargingPeriods = []specs.ChargingPeriodSpec{
			{Dimensions: []specs.CdrDimensionSpec{{Type: "ENERGY", Volume: "3.2"}}},
			{Dimensions: []specs.CdrDimensionSpec{{Type: "TIME", Volume: "1"}, {Type: "ENERGY", Volume: "7.5"}}},
		}

		session, err := NewSession(spec, nil)

		require.NoError(t, err)
		require.Len(t, session.Samples, 2)
		assertDecimal(t, "0", session.Samples[0].EnergyWh().String())
		assertDecimal(t, "7500", session.Samples[1].EnergyWh().String())
	})

	t.Run("without any metering source returns missing metering data", func(t *testing.T) {
		_, err := NewSession(newTestSessionSpec(withSessionSamples()), nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, specs.ErrMissingMeteringData)
	})

	t.Run("collapses duplicate readings", func(t *testing.T) {
		spec := newTestSessionSpec(withSessionSamples(
			specs.NewMeteringSample("0", tenAM),
			specs.NewMeteringSample("0", tenAM),
			specs.NewMeteringSample("5000", elevenAM),
		))

		session, err := NewSession(spec, nil)

		require.NoError(t, err)
		assert.Len(t, session.Samples, 2)
	})

	t.Run("two readings at the same instant count once", func(t *testing.T) {
		spec := newTestSessionSpec(withSessionSamples(
			specs.NewMeteringSample("0", tenAM),
			specs.NewMeteringSample("0", tenAM),
		))

		_, err := NewSession(spec, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, specs.ErrMissingMeteringData)
	})

	t.Run("conflicting readings at one instant are rejected", func(t *testing.T) {
		spec := newTestSessionSpec(withSessionSamples(
			specs.NewMeteringSample("0", tenAM),
			specs.NewMeteringSample("10", tenAM),
			specs.NewMeteringSample("5000", elevenAM),
		))

		_, err := NewSession(spec, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, specs.ErrNonMonotonicMetering)
	})

	t.Run("decreasing readings are rejected", func(t *testing.T) {
		spec := newTestSessionSpec(withSessionSamples(
			specs.NewMeteringSample("0", tenAM),
			specs.NewMeteringSample("3000", tenAM.Add(30*time.Minute)),
			specs.NewMeteringSample("2000", elevenAM),
		))

		_, err := NewSession(spec, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, specs.ErrNonMonotonicMetering)
	})

	t.Run("sample before start is out of bounds", func(t *testing.T) {
		spec := newTestSessionSpec(withSessionSamples(
			specs.NewMeteringSample("0", tenAM.Add(-time.Minute)),
			specs.NewMeteringSample("5000", elevenAM),
		))

		_, err := NewSession(spec, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, specs.ErrOutOfBoundsSample)
	})

	t.Run("sample after end is out of bounds", func(t *testing.T) {
		spec := newTestSessionSpec(withSessionSamples(
			specs.NewMeteringSample("0", tenAM),
			specs.NewMeteringSample("5000", elevenAM.Add(time.Second)),
		))

		_, err := NewSession(spec, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, specs.ErrOutOfBoundsSample)
	})

	t.Run("series ending before the session end is out of bounds", func(t *testing.T) {
		spec := newTestSessionSpec(withSessionSamples(
			specs.NewMeteringSample("0", tenAM),
			specs.NewMeteringSample("4000", tenAM.Add(50*time.Minute)),
		))

		_, err := NewSession(spec, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, specs.ErrOutOfBoundsSample)
		assert.Contains(t, err.Error(), "last sample")
	})

	t.Run("with start not before end returns invalid session", func(t *testing.T) {
		_, err := NewSession(newTestSessionSpec(withSessionSpan(elevenAM, tenAM)), nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, specs.ErrInvalidSession)
		assert.Contains(t, err.Error(), "start must be before end")
	})

	t.Run("with zero end returns invalid session", func(t *testing.T) {
		_, err := NewSession(newTestSessionSpec(withSessionSpan(tenAM, time.Time{})), nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, specs.ErrInvalidSession)
	})

	t.Run("with unknown time zone returns invalid session", func(t *testing.T) {
		_, err := NewSession(newTestSessionSpec(withSessionTimeZone("Mars/Olympus_Mons")), nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, specs.ErrInvalidSession)
	})

	t.Run("with unparseable energy returns missing metering data", func(t *testing.T) {
		spec := newTestSessionSpec(withSessionSamples(
			specs.NewMeteringSample("zero", tenAM),
			specs.NewMeteringSample("5000", elevenAM),
		))

		_, err := NewSession(spec, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, specs.ErrMissingMeteringData)
		assert.Contains(t, err.Error(), "invalid energy")
	})
}
