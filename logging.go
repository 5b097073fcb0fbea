package proxygen

import "log"

//  ██╗      ██████╗  ██████╗  ██████╗ ██╗███╗   ██╗ ██████╗
//  ██║     ██╔═══██╗██╔════╝ ██╔════╝ ██║████╗  ██║██╔════╝
//  ██║     ██║   ██║██║  ███╗██║  ███╗██║██╔██╗ ██║██║  ███╗
//  ██║     ██║   ██║██║   ██║██║   ██║██║██║╚██╗██║██║   ██║
//  ███████╗╚██████╔╝╚██████╔╝╚██████╔╝██║██║ ╚████║╚██████╔╝
//  ╚══════╝ ╚═════╝  ╚═════╝  ╚═════╝ ╚═╝╚═╝  ╚═══╝ ╚═════╝
//

// logSink receives every log line, in addition to the stdlib logger; the
// dashboard (web.go) installs itself here to broadcast log lines to
// connected clients. Nil by default.
var logSink func(level, msg string)

func logDebug(msg string) { emit("debug", msg) }
func logWarn(msg string)  { emit("warn", msg) }
func logError(msg string) { emit("error", msg) }

func emit(level, msg string) {
	log.Printf("[%s] %s", level, msg)
	if logSink != nil {
		logSink(level, msg)
	}
}
