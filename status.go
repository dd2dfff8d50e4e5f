package kinetic

// Status is the closed set of outcomes a completed Operation can resolve
// to. Every completed operation produces exactly one Status.
type Status int32

const (
	SUCCESS Status = iota
	INVALID
	CONNECTION_ERROR
	MEMORY_ERROR
	REQUEST_REJECTED
	OPERATION_INVALID
	OPERATION_FAILED
	BUFFER_OVERRUN
	INVALID_FILE
	SOCKET_TIMEOUT
	DATA_ERROR

	// Remote, mapped from the server's status code.
	REMOTE_VERSION_MISMATCH
	REMOTE_NOT_FOUND
	REMOTE_NOT_AUTHORIZED
	REMOTE_INTERNAL_ERROR
	REMOTE_NO_SPACE
	REMOTE_CONNECTION_ERROR
	REMOTE_NOT_ATTEMPTED
	REMOTE_DATA_ERROR
	REMOTE_EXPIRED
	REMOTE_SERVICE_BUSY
)

var statusNames = map[Status]string{
	SUCCESS:                 "SUCCESS",
	INVALID:                 "INVALID",
	CONNECTION_ERROR:        "CONNECTION_ERROR",
	MEMORY_ERROR:            "MEMORY_ERROR",
	REQUEST_REJECTED:        "REQUEST_REJECTED",
	OPERATION_INVALID:       "OPERATION_INVALID",
	OPERATION_FAILED:        "OPERATION_FAILED",
	BUFFER_OVERRUN:          "BUFFER_OVERRUN",
	INVALID_FILE:            "INVALID_FILE",
	SOCKET_TIMEOUT:          "SOCKET_TIMEOUT",
	DATA_ERROR:              "DATA_ERROR",
	REMOTE_VERSION_MISMATCH: "REMOTE_VERSION_MISMATCH",
	REMOTE_NOT_FOUND:        "REMOTE_NOT_FOUND",
	REMOTE_NOT_AUTHORIZED:   "REMOTE_NOT_AUTHORIZED",
	REMOTE_INTERNAL_ERROR:   "REMOTE_INTERNAL_ERROR",
	REMOTE_NO_SPACE:         "REMOTE_NO_SPACE",
	REMOTE_CONNECTION_ERROR: "REMOTE_CONNECTION_ERROR",
	REMOTE_NOT_ATTEMPTED:    "REMOTE_NOT_ATTEMPTED",
	REMOTE_DATA_ERROR:       "REMOTE_DATA_ERROR",
	REMOTE_EXPIRED:          "REMOTE_EXPIRED",
	REMOTE_SERVICE_BUSY:     "REMOTE_SERVICE_BUSY",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "INVALID"
}

// remoteCode mirrors the server's statusCode enumeration.
type remoteCode int32

const (
	remoteOK remoteCode = iota
	remoteNotAttempted
	remoteInvalidStatusCode
	remoteVersionMismatch
	remoteNotFound
	remoteNotAuthorized
	remoteDataError
	remoteInternalError
	remoteCopyFailure
	remoteExpired
	remoteNoSpace
	remoteConnectionError
	remoteServiceBusy
)

// FromRemoteCode maps a server status code to the local Status
// taxonomy. Unknown codes map to INVALID.
func FromRemoteCode(code int32) Status {
	switch remoteCode(code) {
	case remoteOK:
		return SUCCESS
	case remoteVersionMismatch:
		return REMOTE_VERSION_MISMATCH
	case remoteNotFound:
		return REMOTE_NOT_FOUND
	case remoteNotAuthorized:
		return REMOTE_NOT_AUTHORIZED
	case remoteInternalError:
		return REMOTE_INTERNAL_ERROR
	case remoteNoSpace:
		return REMOTE_NO_SPACE
	case remoteConnectionError:
		return REMOTE_CONNECTION_ERROR
	case remoteNotAttempted:
		return REMOTE_NOT_ATTEMPTED
	case remoteDataError:
		return REMOTE_DATA_ERROR
	case remoteExpired:
		return REMOTE_EXPIRED
	case remoteServiceBusy:
		return REMOTE_SERVICE_BUSY
	default:
		return INVALID
	}
}
