package placeholder

import "os"

// lookupEnv is a variable indirection over os.LookupEnv so tests can stub
// the host environment without mutating the real process environment.
var lookupEnv = os.LookupEnv
