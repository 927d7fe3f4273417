package codes

// ErrorCodes maps xcodebuild exit codes (BSD sysexits) to their descriptions
var ErrorCodes = map[int]string{
	0:  "Success",
	1:  "General failure",
	64: "Command line usage error",
	65: "Build failed",
	66: "Cannot open input (project, workspace or scheme not found)",
	69: "Service unavailable (no matching destination or SDK)",
	70: "Internal xcodebuild error",
	74: "Input/output error",
	75: "Temporary failure, retry may succeed",
	77: "Permission denied (code signing or keychain access)",
}

// IsSuccess returns true if the exit code indicates a successful build
func IsSuccess(code int) bool {
	return code == 0
}

// GetErrorMessage returns the error message for a given exit code, or a generic message if unknown
func GetErrorMessage(code int) string {
	if msg, ok := ErrorCodes[code]; ok {
		return msg
	}

	return "Unknown error"
}
