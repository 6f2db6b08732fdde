package core

// Process exit codes. Signal-driven exits follow the 128+signal convention
// so supervisors can distinguish an interrupt from a startup failure.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeSIGINT  = 130
	ExitCodeSIGTERM = 143
)
