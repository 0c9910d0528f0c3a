package log

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type logMock struct {
	mock.Mock
}

func (l *logMock) Debugf(f string, v ...interface{}) {
	l.Called(f, v)
}

func TestDebugf(t *testing.T) {
	current := logger
	defer func() { logger = current }()

	SetLogger(noopLogger{})
	assert.False(t, DebugEnabled())

	l := new(logMock)

	SetLogger(l)
	assert.True(t, DebugEnabled())

	msg := "restore of %s failed"
	arg := "[0x1000, 0x2000)"

	l.On("Debugf", msg, []interface{}{arg}).Return().Once()
	Debugf(msg, arg)

	l.AssertExpectations(t)

	SetLogger(nil)
	assert.False(t, DebugEnabled())

	// The one expected call to Debugf has already occurred, verify the previously supplied logger is no longer used.
	Debugf(msg, arg)
}

func TestFunc(t *testing.T) {
	current := logger
	defer func() { logger = current }()

	var got string

	SetLogger(Func(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	}))
	assert.True(t, DebugEnabled())

	Debugf("guard %d", 7)
	assert.Equal(t, "guard 7", got)

	SetLogger(Func(nil))
	assert.False(t, DebugEnabled())
	assert.NotPanics(t, func() { Debugf("guard %d", 8) })
}
