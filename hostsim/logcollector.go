package hostsim

import (
	"fmt"
)

const logTruncatedMarker = "Log truncated"

// LogCollector keeps transaction log lines up to a byte budget. The
// first line that would overflow the budget is replaced by a single
// truncation marker and everything after it is dropped.
type LogCollector struct {
	messages   []string
	bytesUsed  int
	bytesLimit int
	truncated  bool
	printDebug bool
}

// NewLogCollector returns a collector keeping at most bytesLimit bytes
// of messages. A non-positive limit means unlimited.
func NewLogCollector(bytesLimit int, printDebug bool) *LogCollector {
	return &LogCollector{bytesLimit: bytesLimit, printDebug: printDebug}
}

func (lc *LogCollector) Log(message string) {
	if lc.truncated {
		return
	}
	if lc.bytesLimit > 0 && lc.bytesUsed+len(message) > lc.bytesLimit {
		lc.truncated = true
		lc.messages = append(lc.messages, logTruncatedMarker)
		return
	}
	lc.bytesUsed += len(message)
	lc.messages = append(lc.messages, message)
	if lc.printDebug {
		fmt.Println(message)
	}
}

// Messages returns the collected lines in arrival order.
func (lc *LogCollector) Messages() []string {
	return append([]string(nil), lc.messages...)
}
