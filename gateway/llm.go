package gateway

import "context"

// ChatClient 抽象远程聊天补全能力，便于替换/Mock。
//
// Complete sends one user-role message built from parts and returns the first
// choice's message text, or the empty string when the response carried no
// content. There is no retry, no timeout, and no cancellation beyond ctx; a
// failure propagates opaque, carrying whatever message the remote produced.
type ChatClient interface {
	Complete(ctx context.Context, cfg ModelConfig, parts []ContentPart) (string, error)
}

// Fixed sampling parameters for every call.
const (
	samplingTemperature = 0.7
	maxOutputTokens     = 8192
)
