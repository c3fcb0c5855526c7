package logging

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HandlerFunc is an HTTP handler that reports failures instead of logging them.
type HandlerFunc func(http.ResponseWriter, *http.Request, *LogData) error

// LoggingWrapper adapts a HandlerFunc, giving each request its own LogData
// and logging start, completion and errors under loggingName.
func LoggingWrapper(loggingName string, log logrus.FieldLogger, handler HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		logData := NewLogData(log)
		logData.AddData("requestId", uuid.NewString())
		logData.AddData("method", req.Method)
		logData.AddData("path", req.URL.Path)

		log.Infof("Handler.%v.Start", loggingName)

		endTimer := logData.AddTiming("duration")
		err := handler(w, req, logData)
		endTimer()
		if err != nil {
			logData.Log().WithError(err).Errorf("Handler.%v.Error", loggingName)
			return
		}

		logData.Log().Infof("Handler.%v.Complete", loggingName)
	}
}
