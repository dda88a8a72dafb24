package util

import (
	"github.com/sirupsen/logrus"
)

// Debug is the highest DPrintf level that gets printed.
var Debug uint64 = 0

func SetDebug(level uint64) {
	Debug = level
	if level > 0 {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		logrus.WithField("dlevel", level).Debugf(format, a...)
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}
