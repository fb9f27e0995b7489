package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFake_PlayPause(t *testing.T) {
	f := NewFake(60)
	require.True(t, f.Ready())
	assert.False(t, f.State().Playing)

	f.Play()
	assert.True(t, f.State().Playing)

	f.Pause()
	assert.False(t, f.State().Playing)

	assert.Equal(t, []Call{{Op: OpPlay}, {Op: OpPause}}, f.Calls())
}

func TestFake_SeekClamps(t *testing.T) {
	f := NewFake(60)

	f.Seek(30)
	assert.Equal(t, 30.0, f.State().CurrentSec)

	f.Seek(-5)
	assert.Equal(t, 0.0, f.State().CurrentSec)

	f.Seek(600)
	assert.Equal(t, 60.0, f.State().CurrentSec)
}

func TestFake_SetRateIgnoresNonPositive(t *testing.T) {
	f := NewFake(60)

	f.SetRate(2)
	assert.Equal(t, 2.0, f.State().Rate)

	f.SetRate(0)
	assert.Equal(t, 2.0, f.State().Rate)
	f.SetRate(-1)
	assert.Equal(t, 2.0, f.State().Rate)

	assert.Equal(t, []Call{{Op: OpRate, Arg: 2}}, f.Calls())
}

func TestFake_UnreadyIgnoresCommands(t *testing.T) {
	f := NewFake(60)
	f.SetReady(false)

	f.Play()
	f.Seek(10)
	f.SetRate(2)
	f.Pause()

	assert.Equal(t, State{Rate: 1}, f.State())
	assert.Empty(t, f.Calls())

	f.SetReady(true)
	f.Play()
	assert.True(t, f.State().Playing)
}

func TestFake_AdvanceScalesByRate(t *testing.T) {
	f := NewFake(60)
	f.Play()
	f.SetRate(2)

	f.Advance(3)
	assert.InDelta(t, 6.0, f.State().CurrentSec, 1e-9)

	f.Pause()
	f.Advance(3)
	assert.InDelta(t, 6.0, f.State().CurrentSec, 1e-9)
}

func TestFake_AdvancePausesAtEnd(t *testing.T) {
	f := NewFake(10)
	f.Play()
	f.Advance(30)

	st := f.State()
	assert.Equal(t, 10.0, st.CurrentSec)
	assert.False(t, st.Playing)
}

func TestObserve_SeesIssuedCommands(t *testing.T) {
	f := NewFake(60)
	f.SetReady(false)

	var seen []Call
	c := Observe(f, func(call Call) { seen = append(seen, call) })

	c.Play()
	c.Seek(13.4)
	c.SetRate(0.5)
	c.Pause()

	// The observer sees what was issued even though the unready player
	// accepted nothing.
	assert.Equal(t, []Call{
		{Op: OpPlay},
		{Op: OpSeek, Arg: 13.4},
		{Op: OpRate, Arg: 0.5},
		{Op: OpPause},
	}, seen)
	assert.Empty(t, f.Calls())
}

func TestObserve_ForwardsStateAndReadiness(t *testing.T) {
	f := NewFake(60)
	c := Observe(f, func(Call) {})

	assert.True(t, c.Ready())
	c.Seek(5)
	assert.Equal(t, 5.0, c.State().CurrentSec)
}

func TestCall_String(t *testing.T) {
	assert.Equal(t, "play", Call{Op: OpPlay}.String())
	assert.Equal(t, "pause", Call{Op: OpPause}.String())
	assert.Equal(t, "seek 13.4", Call{Op: OpSeek, Arg: 13.4}.String())
	assert.Equal(t, "rate 0.5", Call{Op: OpRate, Arg: 0.5}.String())
	assert.Equal(t, "seek 30", Call{Op: OpSeek, Arg: 30}.String())
}
