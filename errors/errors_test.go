// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	err := errors.New("something went wrong")
	internalErr := NewInternalError(err)
	require.Error(t, internalErr)
	require.EqualError(t, internalErr, "internal error: something went wrong")
	assert.ErrorIs(t, internalErr.Unwrap(), err)

	err = errors.New("something went wrong")
	spawnErr := NewSpawnError(err)
	require.Error(t, spawnErr)
	require.EqualError(t, spawnErr, "spawn error: something went wrong")
	assert.ErrorIs(t, spawnErr.Unwrap(), err)

	err = errors.New("boom")
	panicErr := NewPanicError(err)
	require.Error(t, panicErr)
	require.EqualError(t, panicErr, "panic: boom")
	assert.ErrorIs(t, panicErr.Unwrap(), err)
}

func TestErrorConstructors(t *testing.T) {
	assert.ErrorIs(t, NewErrTransportFailure(errors.New("dial refused")), ErrTransportFailure)
	assert.ErrorIs(t, NewErrDecode(errors.New("short buffer")), ErrDecode)

	err := NewErrClosureResolutionError("fib", errors.New("label not found"))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrClosureResolutionError)
	assert.Contains(t, err.Error(), "fib")

	require.Error(t, NewErrProcessDead("node1:7"))
	assert.ErrorIs(t, NewErrProcessDead("node1:7"), ErrProcessDead)

	require.Error(t, NewErrMonitorNotFound("mref-1"))
	assert.ErrorIs(t, NewErrMonitorNotFound("mref-1"), ErrMonitorNotFound)

	require.Error(t, NewErrNodeUnreachable("node2"))
	assert.ErrorIs(t, NewErrNodeUnreachable("node2"), ErrNodeUnreachable)

	require.Error(t, NewErrInvalidNodeName("bad name"))
	assert.ErrorIs(t, NewErrInvalidNodeName("bad name"), ErrInvalidNodeName)

	require.Error(t, NewErrPeerNotFound("peer-1"))
	assert.ErrorIs(t, NewErrPeerNotFound("peer-1"), ErrPeerNotFound)
}

func TestDeathReason(t *testing.T) {
	t.Run("Normal", func(t *testing.T) {
		reason := Normal()
		assert.True(t, reason.IsNormal())
		assert.Equal(t, "normal", reason.String())
	})

	t.Run("Exception", func(t *testing.T) {
		reason := Exception("boom")
		assert.True(t, reason.IsException())
		assert.Equal(t, "boom", reason.Description())
		assert.Equal(t, "exception(boom)", reason.String())
	})

	t.Run("Disconnected", func(t *testing.T) {
		reason := Disconnected()
		assert.True(t, reason.IsDisconnected())
		assert.Equal(t, "disconnected", reason.String())
	})

	t.Run("Unreachable", func(t *testing.T) {
		reason := Unreachable()
		assert.True(t, reason.IsUnreachable())
		assert.Equal(t, "unreachable", reason.String())
	})

	t.Run("LinkedDeath", func(t *testing.T) {
		upstream := Exception("child crashed")
		reason := LinkedDeath("pid-7", upstream)
		assert.True(t, reason.IsLinkedDeath())
		assert.Equal(t, "pid-7", reason.OtherProcess())
		assert.Equal(t, "linked-death(pid-7, exception(child crashed))", reason.String())
	})
}
