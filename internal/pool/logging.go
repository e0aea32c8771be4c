package pool

import (
	"os"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("pool")

func init() {
	format := logging.MustStringFormatter(`%{color}%{time:15:04:05.000} %{level:.4s} %{shortfile}%{color:reset} %{message}`)
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	logging.SetBackend(logging.NewBackendFormatter(backend, format))
}
