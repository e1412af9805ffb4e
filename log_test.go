package xmss

import "testing"

type testLogger struct {
	t *testing.T
}

func (l testLogger) Logf(format string, args ...interface{}) {
	l.t.Logf(format, args...)
}

func TestSetLoggerRoundTrip(t *testing.T) {
	SetLogger(testLogger{t})
	defer SetLogger(nil)

	pkgLogger.Logf("test message %d", 1)

	SetLogger(nil)
	if _, ok := pkgLogger.(dummyLogger); !ok {
		t.Fatalf("SetLogger(nil) did not restore dummyLogger")
	}
}

func TestEnableLogging(t *testing.T) {
	EnableLogging()
	defer SetLogger(nil)
	if _, ok := pkgLogger.(stdlibLogger); !ok {
		t.Fatalf("EnableLogging did not install stdlibLogger")
	}
}
