package logging

import (
	"log"
	"os"
)

var (
	InfoLog = log.New(os.Stdout, "INFO: ", log.Lshortfile)
	WarnLog = log.New(os.Stdout, "WARN: ", log.Lshortfile)
	ErrLog  = log.New(os.Stderr, "ERR: ", log.Lshortfile)
)
