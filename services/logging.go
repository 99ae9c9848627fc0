package services

import "log"

// Debug включает DEBUG-сообщения сервисов (logs.level: debug)
var Debug bool

func debugf(format string, args ...interface{}) {
	if Debug {
		log.Printf("DEBUG: "+format, args...)
	}
}
