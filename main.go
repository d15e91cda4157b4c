package main

import (
	"slotpoll/core/logger"
	"slotpoll/core/server"
)

// @title SlotPoll API
// @version 1.0
// @description Group availability polling: propose candidate dates, collect 30-minute availability marks and finalize one slot.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7070
// @BasePath /api/v1

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
	}
}
