package channel

import (
	"strings"

	"github.com/weiawesome/wes-io-live/livechat/internal/domain"
)

// Topic joins a destination prefix with a streamer id: ("/stream", 2) -> "/stream/2".
func Topic(prefix string, streamerID domain.ID) string {
	return strings.TrimRight(prefix, "/") + "/" + streamerID.String()
}
