package log

// A LogContext contributes ambient fields to every emitted entry, whatever
// the module. The mailbox pump registers one so each line carries the
// current pump cycle.
type LogContext interface {
	AddLogContext(e *EntryZ)
}

var contexts []LogContext

func AddContext(c LogContext) {
	contexts = append(contexts, c)
}
