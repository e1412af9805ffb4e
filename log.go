package xmss

import "log"

// Logger receives coarse operational events -- a container opened or
// closed, a key generated -- never secret material. Grounded on the
// teacher's misc.go Logger/dummyLogger/SetLogger/EnableLogging.
type Logger interface {
	Logf(format string, args ...interface{})
}

type dummyLogger struct{}

func (dummyLogger) Logf(string, ...interface{}) {}

type stdlibLogger struct{}

func (stdlibLogger) Logf(format string, args ...interface{}) {
	log.Printf("xmss: "+format, args...)
}

var pkgLogger Logger = dummyLogger{}

// SetLogger installs logger as the package-wide destination for
// operational log messages. Passing nil silences logging again.
func SetLogger(logger Logger) {
	if logger == nil {
		pkgLogger = dummyLogger{}
		return
	}
	pkgLogger = logger
}

// EnableLogging is a shorthand for SetLogger(stdlibLogger{}), logging
// through the standard library's log package.
func EnableLogging() {
	pkgLogger = stdlibLogger{}
}
