package logger

import "github.com/sirupsen/logrus"

// Log — общий структурированный логгер приложения.
var Log *logrus.Logger

// Init инициализирует логгер с заданным уровнем.
// Неизвестный уровень трактуется как info.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// По умолчанию пишем JSON, удобный для сборщиков логов.
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter переключает вывод на читаемый текстовый формат
// для локальной разработки.
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}
