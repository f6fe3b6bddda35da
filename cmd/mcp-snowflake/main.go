package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("mcp-snowflake failed")
	}
}
