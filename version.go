package curator

// Version is the release version reported by the CLI and traces.
var Version = "0.1.0"
