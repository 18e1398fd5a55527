package sources

// YouTube implementation is split across files by responsibility:
//   youtube_innertube.go  Innertube API types, constants, and low-level HTTP primitives
//   youtube_ref.go        video and playlist URL parsing
//   youtube_transcript.go caption tracks (watch page + ANDROID player fallback) and timedtext
//   youtube_playlist.go   playlist resolution (Data API v3, ytInitialData scraping + /browse continuations)
//   transcript.go         language/track fallback chain producing a SourceDocument
