package convlog

const (
	// DefaultScope labels records when Options leave Scope empty.
	DefaultScope = "application"

	timestampLayout = "2006-01-02T15:04:05.000000Z"
	emptyString     = ""
)

const (
	errMsgNilOptions     = "options are nil"
	errMsgOptionsInvalid = "options are invalid"
	errMsgNilHandlerOpts = "file handler options are nil"
	errMsgHandlerInvalid = "file handler options are invalid"
	errMsgBothRotations  = "size and time rotation are mutually exclusive"
	errMsgNilLogger      = "logger is nil"
	errMsgNilSink        = "sink is nil"
	errMsgClosed         = "logger is closed"
	errMsgNilConfig      = "config is nil"
	errMsgConfigInvalid  = "config file is invalid"
)
