package config

import (
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// Deployment-specific values live here. Override these for live and beta
// deploys; the defaults are suitable for local development.
var Config = MbbsConfig{
	Env:      Dev,
	Addr:     "localhost:9001",
	BaseUrl:  "http://localhost:9001",
	LogLevel: zerolog.DebugLevel,

	ResourceBaseUrl: "http://localhost:9002/resources/",

	Postgres: PostgresConfig{
		User:     "mbbs",
		Password: "password",
		Hostname: "localhost",
		Port:     5432,
		DbName:   "mbbs",
		LogLevel: tracelog.LogLevelDebug,
		MinConn:  2,
		MaxConn:  10,
	},
}
