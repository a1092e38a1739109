package ketchup

import "github.com/tliron/commonlog"

// Loggers are looked up on use so that a backend registered after this
// package is initialized still receives them.
func logger(name string) commonlog.Logger {
	return commonlog.GetLogger("ketchup." + name)
}
