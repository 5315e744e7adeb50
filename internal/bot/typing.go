package bot

import (
	"log/slog"
	"time"
)

const typingInterval = 5 * time.Second

// AsyncType shows the typing indicator in channelID until the returned stop
// function is called.
func AsyncType(s Sender, channelID string, every time.Duration, logger *slog.Logger) (stop func()) {
	// send a typing status once at the start
	if err := s.ChannelTyping(channelID); err != nil {
		logger.Warn("typing indicator failed", "error", err)
	}

	// then refresh it while the channel is still waiting on us
	ticker := time.NewTicker(every)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := s.ChannelTyping(channelID); err != nil {
					logger.Warn("typing indicator failed", "error", err)
				}
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}
