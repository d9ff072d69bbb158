// Package inputmode decides which of the three mutually exclusive job
// creation paths the current inputs select: remote source download,
// deferred local file upload, or direct audio URL submission.
package inputmode

import (
	"net/url"
	"path"
	"strings"
)

type Mode int

const (
	ModeNone Mode = iota
	// ModeExistingTask reuses an acquisition task that already ran.
	ModeExistingTask
	// ModePendingFile uploads the armed local file, then transcribes.
	ModePendingFile
	// ModeDirectURL submits the audio URL without an acquisition phase.
	ModeDirectURL
	// ModeRemoteSource downloads a page or video URL first.
	ModeRemoteSource
)

func (m Mode) String() string {
	switch m {
	case ModeExistingTask:
		return "existing task"
	case ModePendingFile:
		return "pending file"
	case ModeDirectURL:
		return "direct audio url"
	case ModeRemoteSource:
		return "remote source"
	default:
		return "none"
	}
}

// Inputs mirrors the user facing fields the resolver arbitrates over.
type Inputs struct {
	SourceURL     string
	PendingFile   string
	AudioURL      string
	CurrentTaskID string
}

var mediaExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".wav":  true,
	".flac": true,
	".aac":  true,
	".ogg":  true,
	".opus": true,
	".wma":  true,
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
}

// Object storage host suffixes. Alibaba OSS and Tencent COS first (the
// two providers the backend uploads to itself), then the big three.
var storageHostSuffixes = []string{
	".aliyuncs.com",
	".myqcloud.com",
	".amazonaws.com",
	".storage.googleapis.com",
	".blob.core.windows.net",
}

// IsDirectAudioURL reports whether raw points at a playable media
// resource. Only well formed http(s) URLs with a media file extension or
// an object storage host qualify. Everything else is treated as a page
// or video URL belonging to the download path.
func IsDirectAudioURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	if parsed.Host == "" {
		return false
	}

	ext := strings.ToLower(path.Ext(parsed.Path))
	if mediaExtensions[ext] {
		return true
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "storage.googleapis.com" {
		return true
	}
	for _, suffix := range storageHostSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// ResolveTranscribe picks the creation path for a transcription request.
// Precedence is fixed: an in flight or completed acquisition task beats a
// pending local file, which beats a recognized direct audio URL. The
// ordering prevents silently discarding a file the user already selected
// in favor of a stale URL field.
func ResolveTranscribe(in Inputs) Mode {
	if in.CurrentTaskID != "" {
		return ModeExistingTask
	}
	if strings.TrimSpace(in.PendingFile) != "" {
		return ModePendingFile
	}
	if IsDirectAudioURL(in.AudioURL) {
		return ModeDirectURL
	}
	return ModeNone
}

// ResolveDownload picks the creation path for a download request. Only
// the remote source field matters here.
func ResolveDownload(in Inputs) Mode {
	if strings.TrimSpace(in.SourceURL) == "" {
		return ModeNone
	}
	return ModeRemoteSource
}
