package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	ArchiveFilepath      string        `env:"ARCHIVE_FILEPATH,required=true"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=5s"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=5s"`
	ArchiveInterval      time.Duration `env:"ARCHIVE_INTERVAL,default=24h"`
	RetentionWindow      time.Duration `env:"RETENTION_WINDOW,default=24h"`
}
