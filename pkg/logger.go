package scifi

type Logger interface {
	Info(message string, module string)
	Error(string)
}

type nopLogger struct{}

func (nopLogger) Info(string, string) {}
func (nopLogger) Error(string)        {}

var logger Logger = nopLogger{}

// verbosity gates the informational messages of the reconstruction stages,
// same levels as the driver configuration.
var verbosity int

func SetLogger(l Logger) {
	if l == nil {
		logger = nopLogger{}
		return
	}
	logger = l
}

func SetVerbosity(level int) {
	verbosity = level
}
